package utils

import "time"

// Redis key layout. Everything lives under one prefix so a shared Redis
// can be inspected or flushed per application.
const (
	RedisKeyPrefix = "emireminder:"

	// SweepLeaseKey serializes sweeps across replicas.
	SweepLeaseKey = RedisKeyPrefix + "sweep:lease"
	// DeliveryKeyPrefix marks reminders already handed to a transport.
	DeliveryKeyPrefix = RedisKeyPrefix + "delivery:"
	// InsightCachePrefix holds narrated insights.
	InsightCachePrefix = RedisKeyPrefix + "insight:"
)

// DefaultDeliveryKeyTTL outlives any realistic retry window of a failed persist.
const DefaultDeliveryKeyTTL = 72 * time.Hour
