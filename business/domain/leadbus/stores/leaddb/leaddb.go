// Package leaddb contains lead related CRUD functionality.
package leaddb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/leadbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/sqldb"
	"github.com/kenxsak/omniflow-buisness-sub001/foundation/logger"
)

// Store manages the set of APIs for lead database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (leadbus.Storer, error) {
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

type leadDB struct {
	ID        uuid.UUID `db:"lead_id"`
	TenantID  uuid.UUID `db:"tenant_id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

func toDBLead(bus leadbus.Lead) leadDB {
	return leadDB{
		ID:        bus.ID,
		TenantID:  bus.TenantID,
		Email:     bus.Email,
		Name:      bus.Name,
		CreatedAt: bus.CreatedAt.UTC(),
	}
}

func toBusLead(db leadDB) leadbus.Lead {
	return leadbus.Lead{
		ID:        db.ID,
		TenantID:  db.TenantID,
		Email:     db.Email,
		Name:      db.Name,
		CreatedAt: db.CreatedAt.In(time.Local),
	}
}

// Create inserts a new lead into the database.
func (s *Store) Create(ctx context.Context, ld leadbus.Lead) error {
	const q = `
	INSERT INTO "public"."lead"
		(lead_id, tenant_id, email, name, created_at)
	VALUES
		(:lead_id, :tenant_id, :email, :name, :created_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBLead(ld)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID gets the specified lead from the database.
func (s *Store) QueryByID(ctx context.Context, leadID uuid.UUID) (leadbus.Lead, error) {
	data := struct {
		ID string `db:"lead_id"`
	}{
		ID: leadID.String(),
	}

	const q = `
	SELECT
		lead_id, tenant_id, email, name, created_at
	FROM
		"public"."lead"
	WHERE
		lead_id = :lead_id`

	var dbLd leadDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbLd); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return leadbus.Lead{}, fmt.Errorf("db: %w", leadbus.ErrNotFound)
		}
		return leadbus.Lead{}, fmt.Errorf("db: %w", err)
	}

	return toBusLead(dbLd), nil
}
