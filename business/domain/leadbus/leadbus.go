// Package leadbus provides business access to lead data.
package leadbus

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

// ErrNotFound is returned when a lead does not exist. The engine treats an
// orphaned state record as a skip, not a failure.
var ErrNotFound = errors.New("lead not found")

// Lead represents a contact owned by a tenant.
type Lead struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Email     string
	Name      string
	CreatedAt time.Time
}

// NewLead contains information needed to create a new lead.
type NewLead struct {
	TenantID uuid.UUID
	Email    string
	Name     string
}

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, ld Lead) error
	QueryByID(ctx context.Context, leadID uuid.UUID) (Lead, error)
}

// Core manages the set of APIs for lead access.
type Core struct {
	log    *logger.Logger
	storer Storer
}

// NewCore constructs a lead core API for use.
func NewCore(log *logger.Logger, storer Storer) *Core {
	return &Core{
		log:    log,
		storer: storer,
	}
}

// NewWithTx constructs a new core value that will use the specified
// transaction in any store related calls.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	core := Core{
		log:    c.log,
		storer: storer,
	}

	return &core, nil
}

// Create adds a new lead to the system.
func (c *Core) Create(ctx context.Context, nl NewLead) (Lead, error) {
	ctx, span := otel.AddSpan(ctx, "business.leadbus.create")
	defer span.End()

	ld := Lead{
		ID:        uuid.New(),
		TenantID:  nl.TenantID,
		Email:     nl.Email,
		Name:      nl.Name,
		CreatedAt: time.Now().UTC(),
	}

	if err := c.storer.Create(ctx, ld); err != nil {
		return Lead{}, fmt.Errorf("create: %w", err)
	}

	return ld, nil
}

// QueryByID finds the lead by the specified ID.
func (c *Core) QueryByID(ctx context.Context, leadID uuid.UUID) (Lead, error) {
	ctx, span := otel.AddSpan(ctx, "business.leadbus.querybyid")
	defer span.End()

	ld, err := c.storer.QueryByID(ctx, leadID)
	if err != nil {
		return Lead{}, fmt.Errorf("query: leadID[%s]: %w", leadID, err)
	}

	return ld, nil
}
