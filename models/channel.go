package models

import (
	"fmt"
	"strings"
)

// Channel is the delivery medium of a reminder.
type Channel string

const (
	ChannelPush     Channel = "push"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// Channels lists every supported channel.
var Channels = []Channel{ChannelPush, ChannelSMS, ChannelWhatsApp}

func (c Channel) Valid() bool {
	switch c {
	case ChannelPush, ChannelSMS, ChannelWhatsApp:
		return true
	}
	return false
}

func (c Channel) String() string { return string(c) }

// ParseChannel accepts a channel name in any case.
func ParseChannel(s string) (Channel, error) {
	c := Channel(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown channel %q", s)
	}
	return c, nil
}
