// Package tenantcache contains tenant related CRUD functionality with a
// read-through cache. The engine re-reads tenants and credentials on every
// scheduled run, so these lookups are worth keeping hot.
package tenantcache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/tenantbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/delivery"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/sqldb"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
	"github.com/kenxsak/omniflow-buisness-sub001/foundation/logger"
	"github.com/viccon/sturdyc"
)

// Store manages the set of APIs for tenant data and caching.
type Store struct {
	log     *logger.Logger
	storer  tenantbus.Storer
	tenants *sturdyc.Client[tenantbus.Tenant]
	creds   *sturdyc.Client[delivery.Credential]
}

// NewStore constructs the api for data and caching access.
func NewStore(log *logger.Logger, storer tenantbus.Storer, ttl time.Duration) *Store {
	const capacity = 10000
	const numShards = 10
	const evictionPercentage = 10

	return &Store{
		log:     log,
		storer:  storer,
		tenants: sturdyc.New[tenantbus.Tenant](capacity, numShards, ttl, evictionPercentage),
		creds:   sturdyc.New[delivery.Credential](capacity, numShards, ttl, evictionPercentage),
	}
}

// NewWithTx constructs a new Store value replacing the storer value with a
// storer value that is currently inside a transaction. The cache is not
// consulted inside a transaction.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (tenantbus.Storer, error) {
	return s.storer.NewWithTx(tx)
}

// Create inserts a new tenant into the database.
func (s *Store) Create(ctx context.Context, t tenantbus.Tenant) error {
	return s.storer.Create(ctx, t)
}

// Update replaces a tenant document in the database and invalidates the
// cached copy.
func (s *Store) Update(ctx context.Context, t tenantbus.Tenant) error {
	if err := s.storer.Update(ctx, t); err != nil {
		return err
	}

	s.tenants.Delete(t.ID.String())

	return nil
}

// QueryByID gets the specified tenant from the cache or the database.
func (s *Store) QueryByID(ctx context.Context, tenantID uuid.UUID) (tenantbus.Tenant, error) {
	return s.tenants.GetOrFetch(ctx, tenantID.String(), func(ctx context.Context) (tenantbus.Tenant, error) {
		return s.storer.QueryByID(ctx, tenantID)
	})
}

// QueryActive returns the tenants eligible for an engine run. The eligible
// set changes out from under the engine, so this read always hits the
// database.
func (s *Store) QueryActive(ctx context.Context) ([]tenantbus.Tenant, error) {
	return s.storer.QueryActive(ctx)
}

// QueryCredential gets the tenant's provider credential from the cache or
// the database.
func (s *Store) QueryCredential(ctx context.Context, tenantID uuid.UUID, p provider.Provider) (delivery.Credential, error) {
	key := tenantID.String() + ":" + p.String()

	return s.creds.GetOrFetch(ctx, key, func(ctx context.Context) (delivery.Credential, error) {
		return s.storer.QueryCredential(ctx, tenantID, p)
	})
}

// UpsertCredential stores the tenant's provider credential and invalidates
// the cached copy.
func (s *Store) UpsertCredential(ctx context.Context, tenantID uuid.UUID, p provider.Provider, cred delivery.Credential) error {
	if err := s.storer.UpsertCredential(ctx, tenantID, p, cred); err != nil {
		return err
	}

	s.creds.Delete(tenantID.String() + ":" + p.String())

	return nil
}
