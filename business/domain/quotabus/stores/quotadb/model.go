package quotadb

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/quotabus"
)

type trackingDB struct {
	TenantID            uuid.UUID    `db:"tenant_id"`
	SentToday           int          `db:"sent_today"`
	SentThisHour        int          `db:"sent_this_hour"`
	LastDailyReset      time.Time    `db:"last_daily_reset"`
	LastHourlyReset     time.Time    `db:"last_hourly_reset"`
	ConsecutiveFailures int          `db:"consecutive_failures"`
	CircuitTrippedAt    sql.NullTime `db:"circuit_tripped_at"`
	LastSendAt          sql.NullTime `db:"last_send_at"`
}

func toDBTracking(bus quotabus.Tracking) trackingDB {
	db := trackingDB{
		TenantID:            bus.TenantID,
		SentToday:           bus.SentToday,
		SentThisHour:        bus.SentThisHour,
		LastDailyReset:      bus.LastDailyReset.UTC(),
		LastHourlyReset:     bus.LastHourlyReset.UTC(),
		ConsecutiveFailures: bus.ConsecutiveFailures,
	}

	if bus.CircuitTrippedAt != nil {
		db.CircuitTrippedAt = sql.NullTime{Time: bus.CircuitTrippedAt.UTC(), Valid: true}
	}

	if bus.LastSendAt != nil {
		db.LastSendAt = sql.NullTime{Time: bus.LastSendAt.UTC(), Valid: true}
	}

	return db
}

func toBusTracking(db trackingDB) quotabus.Tracking {
	bus := quotabus.Tracking{
		TenantID:            db.TenantID,
		SentToday:           db.SentToday,
		SentThisHour:        db.SentThisHour,
		LastDailyReset:      db.LastDailyReset.UTC(),
		LastHourlyReset:     db.LastHourlyReset.UTC(),
		ConsecutiveFailures: db.ConsecutiveFailures,
	}

	if db.CircuitTrippedAt.Valid {
		t := db.CircuitTrippedAt.Time.UTC()
		bus.CircuitTrippedAt = &t
	}

	if db.LastSendAt.Valid {
		t := db.LastSendAt.Time.UTC()
		bus.LastSendAt = &t
	}

	return bus
}
