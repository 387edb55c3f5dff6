// Package quotadb contains quota tracking related CRUD functionality.
package quotadb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/quotabus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/sqldb"
	"github.com/kenxsak/omniflow-buisness-sub001/foundation/logger"
)

// Store manages the set of APIs for quota tracking database access.
type Store struct {
	log *logger.Logger
	db  sqlx.ExtContext
}

// NewStore constructs the api for data access.
func NewStore(log *logger.Logger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

// NewWithTx constructs a new Store value replacing the sqlx DB value with a
// sqlx DB value that is currently inside a transaction.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (quotabus.Storer, error) {
	ec, err := sqldb.GetExtContext(tx)
	if err != nil {
		return nil, err
	}

	store := Store{
		log: s.log,
		db:  ec,
	}

	return &store, nil
}

// Upsert inserts or replaces the tracking row for a tenant.
func (s *Store) Upsert(ctx context.Context, t quotabus.Tracking) error {
	const q = `
	INSERT INTO "public"."quota_tracking"
		(tenant_id, sent_today, sent_this_hour, last_daily_reset, last_hourly_reset,
		 consecutive_failures, circuit_tripped_at, last_send_at)
	VALUES
		(:tenant_id, :sent_today, :sent_this_hour, :last_daily_reset, :last_hourly_reset,
		 :consecutive_failures, :circuit_tripped_at, :last_send_at)
	ON CONFLICT (tenant_id) DO UPDATE SET
		sent_today = EXCLUDED.sent_today,
		sent_this_hour = EXCLUDED.sent_this_hour,
		last_daily_reset = EXCLUDED.last_daily_reset,
		last_hourly_reset = EXCLUDED.last_hourly_reset,
		consecutive_failures = EXCLUDED.consecutive_failures,
		circuit_tripped_at = EXCLUDED.circuit_tripped_at,
		last_send_at = EXCLUDED.last_send_at`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBTracking(t)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByTenantID gets the tracking row for the specified tenant.
func (s *Store) QueryByTenantID(ctx context.Context, tenantID uuid.UUID) (quotabus.Tracking, error) {
	data := struct {
		ID string `db:"tenant_id"`
	}{
		ID: tenantID.String(),
	}

	const q = `
	SELECT
		tenant_id, sent_today, sent_this_hour, last_daily_reset, last_hourly_reset,
		consecutive_failures, circuit_tripped_at, last_send_at
	FROM
		"public"."quota_tracking"
	WHERE
		tenant_id = :tenant_id`

	var dbT trackingDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbT); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return quotabus.Tracking{}, fmt.Errorf("db: %w", quotabus.ErrNotFound)
		}
		return quotabus.Tracking{}, fmt.Errorf("db: %w", err)
	}

	return toBusTracking(dbT), nil
}
