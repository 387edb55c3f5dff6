// Package templatebus provides business access to message templates.
package templatebus

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

// ErrNotFound is returned when a template does not exist. A send step that
// references a missing template is skipped, not failed.
var ErrNotFound = errors.New("template not found")

// Template represents the subject and body used by a send step.
type Template struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	Subject   string
	HTML      string
	CreatedAt time.Time
}

// NewTemplate contains information needed to create a new template.
type NewTemplate struct {
	TenantID uuid.UUID
	Name     string
	Subject  string
	HTML     string
}

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, tpl Template) error
	QueryByID(ctx context.Context, templateID uuid.UUID) (Template, error)
}

// Core manages the set of APIs for template access.
type Core struct {
	log    *logger.Logger
	storer Storer
}

// NewCore constructs a template core API for use.
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

// Create adds a new template to the system.
func (c *Core) Create(ctx context.Context, nt NewTemplate) (Template, error) {
	ctx, span := otel.AddSpan(ctx, "business.templatebus.create")
	defer span.End()

	tpl := Template{
		ID:        uuid.New(),
		TenantID:  nt.TenantID,
		Name:      nt.Name,
		Subject:   nt.Subject,
		HTML:      nt.HTML,
		CreatedAt: time.Now().UTC(),
	}

	if err := c.storer.Create(ctx, tpl); err != nil {
		return Template{}, fmt.Errorf("create: %w", err)
	}

	return tpl, nil
}

// QueryByID finds the template by the specified ID.
func (c *Core) QueryByID(ctx context.Context, templateID uuid.UUID) (Template, error) {
	ctx, span := otel.AddSpan(ctx, "business.templatebus.querybyid")
	defer span.End()

	tpl, err := c.storer.QueryByID(ctx, templateID)
	if err != nil {
		return Template{}, fmt.Errorf("query: templateID[%s]: %w", templateID, err)
	}

	return tpl, nil
}
