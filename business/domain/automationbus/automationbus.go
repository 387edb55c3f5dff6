// Package automationbus provides business access to automation definitions
// and to the per-lead state records that track progress through them.
package automationbus

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

// Set of error variables for CRUD operations.
var (
	ErrNotFound      = errors.New("automation not found")
	ErrStateNotFound = errors.New("automation state not found")
	ErrNotInError    = errors.New("automation state is not in error status")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, atm Automation) error
	QueryByID(ctx context.Context, automationID uuid.UUID) (Automation, error)
	QueryEnabledByTenant(ctx context.Context, tenantID uuid.UUID) ([]Automation, error)
	CreateState(ctx context.Context, st State) error
	UpdateStates(ctx context.Context, sts []State) error
	QueryStateByID(ctx context.Context, stateID uuid.UUID) (State, error)
	QueryActiveStates(ctx context.Context, tenantID uuid.UUID) ([]State, error)
}

// Core manages the set of APIs for automation access.
type Core struct {
	log    *logger.Logger
	storer Storer
}

// NewCore constructs an automation core API for use.
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

// Create adds a new automation to the system.
func (c *Core) Create(ctx context.Context, na NewAutomation) (Automation, error) {
	ctx, span := otel.AddSpan(ctx, "business.automationbus.create")
	defer span.End()

	now := time.Now().UTC()

	atm := Automation{
		ID:        uuid.New(),
		TenantID:  na.TenantID,
		Name:      na.Name,
		Provider:  na.Provider,
		Enabled:   true,
		Steps:     na.Steps,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storer.Create(ctx, atm); err != nil {
		return Automation{}, fmt.Errorf("create: %w", err)
	}

	return atm, nil
}

// QueryByID finds the automation by the specified ID.
func (c *Core) QueryByID(ctx context.Context, automationID uuid.UUID) (Automation, error) {
	ctx, span := otel.AddSpan(ctx, "business.automationbus.querybyid")
	defer span.End()

	atm, err := c.storer.QueryByID(ctx, automationID)
	if err != nil {
		return Automation{}, fmt.Errorf("query: automationID[%s]: %w", automationID, err)
	}

	return atm, nil
}

// QueryEnabledByTenant returns the enabled automation definitions for a
// tenant. Definitions are read fresh at the start of every run.
func (c *Core) QueryEnabledByTenant(ctx context.Context, tenantID uuid.UUID) ([]Automation, error) {
	ctx, span := otel.AddSpan(ctx, "business.automationbus.queryenabledbytenant")
	defer span.End()

	atms, err := c.storer.QueryEnabledByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query: tenantID[%s]: %w", tenantID, err)
	}

	return atms, nil
}

// Enroll creates the state record that tracks a lead through an automation.
// The first step is due immediately.
func (c *Core) Enroll(ctx context.Context, atm Automation, leadID uuid.UUID, now time.Time) (State, error) {
	ctx, span := otel.AddSpan(ctx, "business.automationbus.enroll")
	defer span.End()

	st := State{
		ID:            uuid.New(),
		TenantID:      atm.TenantID,
		AutomationID:  atm.ID,
		LeadID:        leadID,
		NextStepIndex: 0,
		NextStepTime:  now.UTC(),
		Status:        StatusActive,
		UpdatedAt:     now.UTC(),
	}

	if err := c.storer.CreateState(ctx, st); err != nil {
		return State{}, fmt.Errorf("createstate: %w", err)
	}

	return st, nil
}

// UpdateStates persists a batch of state records. The engine calls this
// inside a transaction so a tenant's run commits atomically.
func (c *Core) UpdateStates(ctx context.Context, sts []State) error {
	ctx, span := otel.AddSpan(ctx, "business.automationbus.updatestates")
	defer span.End()

	if len(sts) == 0 {
		return nil
	}

	if err := c.storer.UpdateStates(ctx, sts); err != nil {
		return fmt.Errorf("updatestates: %w", err)
	}

	return nil
}

// QueryActiveStates returns the active state records for a tenant.
func (c *Core) QueryActiveStates(ctx context.Context, tenantID uuid.UUID) ([]State, error) {
	ctx, span := otel.AddSpan(ctx, "business.automationbus.queryactivestates")
	defer span.End()

	sts, err := c.storer.QueryActiveStates(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query: tenantID[%s]: %w", tenantID, err)
	}

	return sts, nil
}

// Reactivate moves a state out of error status back to active. The step
// index is left untouched so the next run retries the step that failed.
func (c *Core) Reactivate(ctx context.Context, stateID uuid.UUID, now time.Time) (State, error) {
	ctx, span := otel.AddSpan(ctx, "business.automationbus.reactivate")
	defer span.End()

	st, err := c.storer.QueryStateByID(ctx, stateID)
	if err != nil {
		return State{}, fmt.Errorf("querystatebyid: stateID[%s]: %w", stateID, err)
	}

	if !st.Status.Equal(StatusError) {
		return State{}, ErrNotInError
	}

	st.Status = StatusActive
	st.ErrorMessage = ""
	st.NextStepTime = now.UTC()
	st.UpdatedAt = now.UTC()

	if err := c.storer.UpdateStates(ctx, []State{st}); err != nil {
		return State{}, fmt.Errorf("updatestates: %w", err)
	}

	return st, nil
}
