// Package automationdb contains automation related CRUD functionality.
package automationdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/automationbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/sqldb"
	"github.com/kenxsak/omniflow-buisness-sub001/foundation/logger"
)

// Store manages the set of APIs for automation database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (automationbus.Storer, error) {
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

// Create inserts a new automation into the database.
func (s *Store) Create(ctx context.Context, atm automationbus.Automation) error {
	const q = `
	INSERT INTO "public"."automation"
		(automation_id, tenant_id, name, provider, enabled, steps, created_at, updated_at)
	VALUES
		(:automation_id, :tenant_id, :name, :provider, :enabled, :steps, :created_at, :updated_at)`

	dbAtm, err := toDBAutomation(atm)
	if err != nil {
		return err
	}

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, dbAtm); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID gets the specified automation from the database.
func (s *Store) QueryByID(ctx context.Context, automationID uuid.UUID) (automationbus.Automation, error) {
	data := struct {
		ID string `db:"automation_id"`
	}{
		ID: automationID.String(),
	}

	const q = `
	SELECT
		automation_id, tenant_id, name, provider, enabled, steps, created_at, updated_at
	FROM
		"public"."automation"
	WHERE
		automation_id = :automation_id`

	var dbAtm automationDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbAtm); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return automationbus.Automation{}, fmt.Errorf("db: %w", automationbus.ErrNotFound)
		}
		return automationbus.Automation{}, fmt.Errorf("db: %w", err)
	}

	return toBusAutomation(dbAtm)
}

// QueryEnabledByTenant returns the enabled automations for a tenant.
func (s *Store) QueryEnabledByTenant(ctx context.Context, tenantID uuid.UUID) ([]automationbus.Automation, error) {
	data := struct {
		TenantID string `db:"tenant_id"`
	}{
		TenantID: tenantID.String(),
	}

	const q = `
	SELECT
		automation_id, tenant_id, name, provider, enabled, steps, created_at, updated_at
	FROM
		"public"."automation"
	WHERE
		tenant_id = :tenant_id AND enabled = true
	ORDER BY
		created_at`

	var dbAtms []automationDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbAtms); err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	return toBusAutomations(dbAtms)
}

// CreateState inserts a new automation state into the database.
func (s *Store) CreateState(ctx context.Context, st automationbus.State) error {
	const q = `
	INSERT INTO "public"."automation_state"
		(state_id, tenant_id, automation_id, lead_id, next_step_index, next_step_time, status, error_message, updated_at)
	VALUES
		(:state_id, :tenant_id, :automation_id, :lead_id, :next_step_index, :next_step_time, :status, :error_message, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBState(st)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// UpdateStates replaces a batch of automation state documents in the
// database.
func (s *Store) UpdateStates(ctx context.Context, sts []automationbus.State) error {
	const q = `
	UPDATE
		"public"."automation_state"
	SET
		next_step_index = :next_step_index,
		next_step_time = :next_step_time,
		status = :status,
		error_message = :error_message,
		updated_at = :updated_at
	WHERE
		state_id = :state_id`

	for _, st := range sts {
		if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBState(st)); err != nil {
			return fmt.Errorf("namedexeccontext: stateID[%s]: %w", st.ID, err)
		}
	}

	return nil
}

// QueryStateByID gets the specified automation state from the database.
func (s *Store) QueryStateByID(ctx context.Context, stateID uuid.UUID) (automationbus.State, error) {
	data := struct {
		ID string `db:"state_id"`
	}{
		ID: stateID.String(),
	}

	const q = `
	SELECT
		state_id, tenant_id, automation_id, lead_id, next_step_index, next_step_time, status, error_message, updated_at
	FROM
		"public"."automation_state"
	WHERE
		state_id = :state_id`

	var dbSt stateDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbSt); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return automationbus.State{}, fmt.Errorf("db: %w", automationbus.ErrStateNotFound)
		}
		return automationbus.State{}, fmt.Errorf("db: %w", err)
	}

	return toBusState(dbSt)
}

// QueryActiveStates returns the active automation states for a tenant.
func (s *Store) QueryActiveStates(ctx context.Context, tenantID uuid.UUID) ([]automationbus.State, error) {
	data := struct {
		TenantID string `db:"tenant_id"`
		Status   string `db:"status"`
	}{
		TenantID: tenantID.String(),
		Status:   automationbus.StatusActive.String(),
	}

	const q = `
	SELECT
		state_id, tenant_id, automation_id, lead_id, next_step_index, next_step_time, status, error_message, updated_at
	FROM
		"public"."automation_state"
	WHERE
		tenant_id = :tenant_id AND status = :status
	ORDER BY
		next_step_time`

	var dbSts []stateDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbSts); err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	return toBusStates(dbSts)
}
