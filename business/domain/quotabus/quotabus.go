// Package quotabus provides business access to the per-tenant send quota
// tracking in the system.
package quotabus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/sqldb"
	"github.com/kenxsak/omniflow-buisness-sub001/foundation/logger"
	"github.com/kenxsak/omniflow-buisness-sub001/foundation/otel"
)

var (
	ErrNotFound = errors.New("quota tracking not found")
)

// Storer defines the behavior required by the quotabus to interact with the
// database.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Upsert(ctx context.Context, t Tracking) error
	QueryByTenantID(ctx context.Context, tenantID uuid.UUID) (Tracking, error)
}

// Core manages the set of APIs for quota tracking access.
type Core struct {
	storer Storer
	log    *logger.Logger
}

// NewCore constructs a core for quota tracking api access.
func NewCore(log *logger.Logger, storer Storer) *Core {
	return &Core{
		storer: storer,
		log:    log,
	}
}

// NewWithTx constructs a new Core value replacing the Storer value with a
// Storer value that is currently inside a transaction.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, fmt.Errorf("newWithTx: %w", err)
	}

	return NewCore(c.log, storer), nil
}

// Track returns the tenant's tracking, creating a zeroed value lazily on
// first access. The fresh value is not persisted until the first Save.
func (c *Core) Track(ctx context.Context, tenantID uuid.UUID, now time.Time) (Tracking, error) {
	ctx, span := otel.AddSpan(ctx, "business.quotabus.track")
	defer span.End()

	t, err := c.storer.QueryByTenantID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return NewTracking(tenantID, now), nil
		}
		return Tracking{}, fmt.Errorf("query: tenantID[%s]: %w", tenantID, err)
	}

	return t, nil
}

// Save persists the tracking value. The tenant run processor calls this
// after window resets and after every send outcome, since a send is an
// external side effect that cannot be rolled back.
func (c *Core) Save(ctx context.Context, t Tracking) error {
	ctx, span := otel.AddSpan(ctx, "business.quotabus.save")
	defer span.End()

	if err := c.storer.Upsert(ctx, t); err != nil {
		return fmt.Errorf("upsert: tenantID[%s]: %w", t.TenantID, err)
	}

	return nil
}
