// Package templatedb contains template related CRUD functionality.
package templatedb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/templatebus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/sqldb"
	"github.com/kenxsak/omniflow-buisness-sub001/foundation/logger"
)

// Store manages the set of APIs for template database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (templatebus.Storer, error) {
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

type templateDB struct {
	ID        uuid.UUID `db:"template_id"`
	TenantID  uuid.UUID `db:"tenant_id"`
	Name      string    `db:"name"`
	Subject   string    `db:"subject"`
	HTML      string    `db:"html"`
	CreatedAt time.Time `db:"created_at"`
}

func toDBTemplate(bus templatebus.Template) templateDB {
	return templateDB{
		ID:        bus.ID,
		TenantID:  bus.TenantID,
		Name:      bus.Name,
		Subject:   bus.Subject,
		HTML:      bus.HTML,
		CreatedAt: bus.CreatedAt.UTC(),
	}
}

func toBusTemplate(db templateDB) templatebus.Template {
	return templatebus.Template{
		ID:        db.ID,
		TenantID:  db.TenantID,
		Name:      db.Name,
		Subject:   db.Subject,
		HTML:      db.HTML,
		CreatedAt: db.CreatedAt.In(time.Local),
	}
}

// Create inserts a new template into the database.
func (s *Store) Create(ctx context.Context, tpl templatebus.Template) error {
	const q = `
	INSERT INTO "public"."template"
		(template_id, tenant_id, name, subject, html, created_at)
	VALUES
		(:template_id, :tenant_id, :name, :subject, :html, :created_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBTemplate(tpl)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID gets the specified template from the database.
func (s *Store) QueryByID(ctx context.Context, templateID uuid.UUID) (templatebus.Template, error) {
	data := struct {
		ID string `db:"template_id"`
	}{
		ID: templateID.String(),
	}

	const q = `
	SELECT
		template_id, tenant_id, name, subject, html, created_at
	FROM
		"public"."template"
	WHERE
		template_id = :template_id`

	var dbTpl templateDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbTpl); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return templatebus.Template{}, fmt.Errorf("db: %w", templatebus.ErrNotFound)
		}
		return templatebus.Template{}, fmt.Errorf("db: %w", err)
	}

	return toBusTemplate(dbTpl), nil
}
