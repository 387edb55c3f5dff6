// Package tenantdb contains tenant related CRUD functionality.
package tenantdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/tenantbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/delivery"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/sqldb"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
	"github.com/kenxsak/omniflow-buisness-sub001/foundation/logger"
)

// Store manages the set of APIs for tenant database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (tenantbus.Storer, error) {
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

// Create inserts a new tenant into the database.
func (s *Store) Create(ctx context.Context, t tenantbus.Tenant) error {
	const q = `
	INSERT INTO "public"."tenant"
		(tenant_id, name, slug, status, plan, default_provider, created_at, updated_at)
	VALUES
		(:tenant_id, :name, :slug, :status, :plan, :default_provider, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBTenant(t)); err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) {
			if dupErr.Column == "slug" || dupErr.Column == "uq_tenant_slug" {
				return fmt.Errorf("namedexeccontext: %w", tenantbus.ErrUniqueSlug)
			}
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update replaces a tenant document in the database.
func (s *Store) Update(ctx context.Context, t tenantbus.Tenant) error {
	const q = `
	UPDATE
		"public"."tenant"
	SET
		name = :name,
		status = :status,
		plan = :plan,
		default_provider = :default_provider,
		updated_at = :updated_at
	WHERE
		tenant_id = :tenant_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBTenant(t)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID gets the specified tenant from the database.
func (s *Store) QueryByID(ctx context.Context, tenantID uuid.UUID) (tenantbus.Tenant, error) {
	data := struct {
		ID string `db:"tenant_id"`
	}{
		ID: tenantID.String(),
	}

	const q = `
	SELECT
		tenant_id, name, slug, status, plan, default_provider, created_at, updated_at
	FROM
		"public"."tenant"
	WHERE
		tenant_id = :tenant_id`

	var dbT tenantDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbT); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return tenantbus.Tenant{}, fmt.Errorf("db: %w", tenantbus.ErrNotFound)
		}
		return tenantbus.Tenant{}, fmt.Errorf("db: %w", err)
	}

	return toBusTenant(dbT)
}

// QueryActive returns the tenants eligible for an engine run.
func (s *Store) QueryActive(ctx context.Context) ([]tenantbus.Tenant, error) {
	data := struct {
		Status string `db:"status"`
	}{
		Status: tenantbus.StatusActive.String(),
	}

	const q = `
	SELECT
		tenant_id, name, slug, status, plan, default_provider, created_at, updated_at
	FROM
		"public"."tenant"
	WHERE
		status = :status AND default_provider <> ''
	ORDER BY
		created_at`

	var dbTs []tenantDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbTs); err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	return toBusTenants(dbTs)
}

// QueryCredential gets the tenant's credential for the specified provider.
func (s *Store) QueryCredential(ctx context.Context, tenantID uuid.UUID, p provider.Provider) (delivery.Credential, error) {
	data := struct {
		TenantID string `db:"tenant_id"`
		Provider string `db:"provider"`
	}{
		TenantID: tenantID.String(),
		Provider: p.String(),
	}

	const q = `
	SELECT
		tenant_id, provider, api_key, from_email, from_name, host, port, username, password
	FROM
		"public"."provider_credential"
	WHERE
		tenant_id = :tenant_id AND provider = :provider`

	var dbC credentialDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbC); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return delivery.Credential{}, tenantbus.ErrCredentialNotFound
		}
		return delivery.Credential{}, fmt.Errorf("db: %w", err)
	}

	return toBusCredential(dbC), nil
}

// UpsertCredential stores or replaces the tenant's credential for a provider.
func (s *Store) UpsertCredential(ctx context.Context, tenantID uuid.UUID, p provider.Provider, cred delivery.Credential) error {
	const q = `
	INSERT INTO "public"."provider_credential"
		(tenant_id, provider, api_key, from_email, from_name, host, port, username, password)
	VALUES
		(:tenant_id, :provider, :api_key, :from_email, :from_name, :host, :port, :username, :password)
	ON CONFLICT (tenant_id, provider) DO UPDATE SET
		api_key = EXCLUDED.api_key,
		from_email = EXCLUDED.from_email,
		from_name = EXCLUDED.from_name,
		host = EXCLUDED.host,
		port = EXCLUDED.port,
		username = EXCLUDED.username,
		password = EXCLUDED.password`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBCredential(tenantID, p, cred)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}
