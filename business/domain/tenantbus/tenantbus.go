// Package tenantbus provides business access to tenant data in the system.
package tenantbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/delivery"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/sqldb"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
	"github.com/kenxsak/omniflow-buisness-sub001/foundation/logger"
	"github.com/kenxsak/omniflow-buisness-sub001/foundation/otel"
)

var (
	ErrNotFound           = errors.New("tenant not found")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrUniqueSlug         = errors.New("slug is not unique")
)

// Storer defines the behavior required by the tenantbus to interact with the
// database.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)

	Create(ctx context.Context, t Tenant) error
	Update(ctx context.Context, t Tenant) error
	QueryByID(ctx context.Context, tenantID uuid.UUID) (Tenant, error)

	// QueryActive returns the tenants eligible for an engine run: active
	// lifecycle status with a default provider configured.
	QueryActive(ctx context.Context) ([]Tenant, error)

	QueryCredential(ctx context.Context, tenantID uuid.UUID, p provider.Provider) (delivery.Credential, error)
	UpsertCredential(ctx context.Context, tenantID uuid.UUID, p provider.Provider, cred delivery.Credential) error
}

// Core manages the set of APIs for tenant access.
type Core struct {
	storer Storer
	log    *logger.Logger
}

// NewCore constructs a core for tenant api access.
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

// Create adds a new tenant to the system.
func (c *Core) Create(ctx context.Context, nt NewTenant) (Tenant, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.create")
	defer span.End()

	now := time.Now()

	t := Tenant{
		ID:              uuid.New(),
		Name:            nt.Name,
		Slug:            nt.Slug,
		Status:          StatusActive,
		Plan:            nt.Plan,
		DefaultProvider: nt.DefaultProvider,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := c.storer.Create(ctx, t); err != nil {
		return Tenant{}, fmt.Errorf("create: %w", err)
	}

	return t, nil
}

// Update modifies data about a tenant.
func (c *Core) Update(ctx context.Context, t Tenant, ut UpdateTenant) (Tenant, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.update")
	defer span.End()

	if ut.Name != nil {
		t.Name = *ut.Name
	}

	if ut.Status != nil {
		t.Status = *ut.Status
	}

	if ut.Plan != nil {
		t.Plan = *ut.Plan
	}

	if ut.DefaultProvider != nil {
		t.DefaultProvider = *ut.DefaultProvider
	}

	t.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, t); err != nil {
		return Tenant{}, fmt.Errorf("update: %w", err)
	}

	return t, nil
}

// QueryByID finds the tenant by the specified ID.
func (c *Core) QueryByID(ctx context.Context, tenantID uuid.UUID) (Tenant, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.queryByID")
	defer span.End()

	tenant, err := c.storer.QueryByID(ctx, tenantID)
	if err != nil {
		return Tenant{}, fmt.Errorf("query: tenantID[%s]: %w", tenantID, err)
	}

	return tenant, nil
}

// QueryActive returns the tenants eligible for processing in an engine run.
func (c *Core) QueryActive(ctx context.Context) ([]Tenant, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.queryActive")
	defer span.End()

	tenants, err := c.storer.QueryActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("queryActive: %w", err)
	}

	return tenants, nil
}

// QueryCredential returns the tenant's stored credential for the specified
// provider. The engine treats the credential as opaque beyond completeness.
func (c *Core) QueryCredential(ctx context.Context, tenantID uuid.UUID, p provider.Provider) (delivery.Credential, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.queryCredential")
	defer span.End()

	cred, err := c.storer.QueryCredential(ctx, tenantID, p)
	if err != nil {
		return delivery.Credential{}, fmt.Errorf("queryCredential: tenantID[%s] provider[%s]: %w", tenantID, p, err)
	}

	return cred, nil
}

// SaveCredential stores or replaces a tenant's credential for a provider.
func (c *Core) SaveCredential(ctx context.Context, tenantID uuid.UUID, p provider.Provider, cred delivery.Credential) error {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.saveCredential")
	defer span.End()

	if err := c.storer.UpsertCredential(ctx, tenantID, p, cred); err != nil {
		return fmt.Errorf("upsertCredential: tenantID[%s] provider[%s]: %w", tenantID, p, err)
	}

	return nil
}
