package tenantdb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/tenantbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/delivery"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/plan"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
)

type tenantDB struct {
	ID              uuid.UUID `db:"tenant_id"`
	Name            string    `db:"name"`
	Slug            string    `db:"slug"`
	Status          string    `db:"status"`
	Plan            string    `db:"plan"`
	DefaultProvider string    `db:"default_provider"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func toDBTenant(bus tenantbus.Tenant) tenantDB {
	return tenantDB{
		ID:              bus.ID,
		Name:            bus.Name,
		Slug:            bus.Slug,
		Status:          bus.Status.String(),
		Plan:            bus.Plan.String(),
		DefaultProvider: bus.DefaultProvider.String(),
		CreatedAt:       bus.CreatedAt.UTC(),
		UpdatedAt:       bus.UpdatedAt.UTC(),
	}
}

func toBusTenant(db tenantDB) (tenantbus.Tenant, error) {
	status, err := tenantbus.ParseStatus(db.Status)
	if err != nil {
		return tenantbus.Tenant{}, fmt.Errorf("parse status: %w", err)
	}

	// An unrecognized plan is not an error condition. It degrades to the
	// most conservative quota set downstream.
	pln, err := plan.Parse(db.Plan)
	if err != nil {
		pln = plan.Free
	}

	var prv provider.Provider
	if db.DefaultProvider != "" {
		prv, err = provider.Parse(db.DefaultProvider)
		if err != nil {
			return tenantbus.Tenant{}, fmt.Errorf("parse provider: %w", err)
		}
	}

	bus := tenantbus.Tenant{
		ID:              db.ID,
		Name:            db.Name,
		Slug:            db.Slug,
		Status:          status,
		Plan:            pln,
		DefaultProvider: prv,
		CreatedAt:       db.CreatedAt.In(time.Local),
		UpdatedAt:       db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}

func toBusTenants(dbs []tenantDB) ([]tenantbus.Tenant, error) {
	bus := make([]tenantbus.Tenant, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusTenant(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}

// =============================================================================

type credentialDB struct {
	TenantID  uuid.UUID `db:"tenant_id"`
	Provider  string    `db:"provider"`
	APIKey    string    `db:"api_key"`
	FromEmail string    `db:"from_email"`
	FromName  string    `db:"from_name"`
	Host      string    `db:"host"`
	Port      int       `db:"port"`
	Username  string    `db:"username"`
	Password  string    `db:"password"`
}

func toDBCredential(tenantID uuid.UUID, p provider.Provider, bus delivery.Credential) credentialDB {
	return credentialDB{
		TenantID:  tenantID,
		Provider:  p.String(),
		APIKey:    bus.APIKey,
		FromEmail: bus.FromEmail,
		FromName:  bus.FromName,
		Host:      bus.Host,
		Port:      bus.Port,
		Username:  bus.Username,
		Password:  bus.Password,
	}
}

func toBusCredential(db credentialDB) delivery.Credential {
	return delivery.Credential{
		APIKey:    db.APIKey,
		FromEmail: db.FromEmail,
		FromName:  db.FromName,
		Host:      db.Host,
		Port:      db.Port,
		Username:  db.Username,
		Password:  db.Password,
	}
}
