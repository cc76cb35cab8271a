package reminderRepo

import (
	"testing"
	"time"

	"emireminder/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestOutcomeFilterPinsDeliveryKey(t *testing.T) {
	r := models.Reminder{ID: "r1", Status: models.ReminderSent, DeliveryKey: "key-1"}

	assert.Equal(t, bson.M{
		"id":          "r1",
		"status":      string(models.ReminderPending),
		"deliveryKey": "key-1",
	}, outcomeFilter(r))
}

func TestDocuments(t *testing.T) {
	fireAt := time.Date(2025, 1, 3, 3, 30, 0, 0, time.UTC)
	in := []models.Reminder{
		{ID: "r1", BillID: "b1", FireAt: fireAt, Channel: models.ChannelSMS, Status: models.ReminderPending, DeliveryKey: "k1"},
		{ID: "r2", BillID: "b1", FireAt: fireAt, Channel: models.ChannelPush, Status: models.ReminderPending, DeliveryKey: "k2"},
	}

	docs := Documents(in)
	require.Len(t, docs, 2)
	first, ok := docs[0].(reminderDocument)
	require.True(t, ok)
	assert.Equal(t, "sms", first.Channel)
	assert.Equal(t, "k1", first.DeliveryKey)
	assert.Equal(t, in[1], docs[1].(reminderDocument).toModel())
}
