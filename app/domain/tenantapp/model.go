package tenantapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kenxsak/omniflow-buisness-sub001/app/sdk/errs"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/leadbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/templatebus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/tenantbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/delivery"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/plan"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
)

// Tenant represents information about an individual tenant.
type Tenant struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	Status          string `json:"status"`
	Plan            string `json:"plan"`
	DefaultProvider string `json:"defaultProvider"`
	DateCreated     string `json:"dateCreated"`
	DateUpdated     string `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (t Tenant) Encode() ([]byte, string, error) {
	data, err := json.Marshal(t)
	return data, "application/json", err
}

func toAppTenant(bus tenantbus.Tenant) Tenant {
	return Tenant{
		ID:              bus.ID.String(),
		Name:            bus.Name,
		Slug:            bus.Slug,
		Status:          bus.Status.String(),
		Plan:            bus.Plan.String(),
		DefaultProvider: bus.DefaultProvider.String(),
		DateCreated:     bus.CreatedAt.Format(time.RFC3339),
		DateUpdated:     bus.UpdatedAt.Format(time.RFC3339),
	}
}

// =============================================================================

// NewTenant defines the data needed to add a new tenant.
type NewTenant struct {
	Name            string `json:"name" validate:"required"`
	Slug            string `json:"slug" validate:"required"`
	Plan            string `json:"plan" validate:"required"`
	DefaultProvider string `json:"defaultProvider"`
}

// Decode implements the web.Decoder interface.
func (app *NewTenant) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewTenant) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewTenant(app NewTenant) (tenantbus.NewTenant, error) {
	pln, err := plan.Parse(app.Plan)
	if err != nil {
		return tenantbus.NewTenant{}, fmt.Errorf("parse plan: %w", err)
	}

	var prv provider.Provider
	if app.DefaultProvider != "" {
		prv, err = provider.Parse(app.DefaultProvider)
		if err != nil {
			return tenantbus.NewTenant{}, fmt.Errorf("parse provider: %w", err)
		}
	}

	bus := tenantbus.NewTenant{
		Name:            app.Name,
		Slug:            app.Slug,
		Plan:            pln,
		DefaultProvider: prv,
	}

	return bus, nil
}

// =============================================================================

// UpdateTenant defines the data that can be updated on a tenant.
type UpdateTenant struct {
	Name            *string `json:"name"`
	Status          *string `json:"status"`
	Plan            *string `json:"plan"`
	DefaultProvider *string `json:"defaultProvider"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateTenant) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

func toBusUpdateTenant(app UpdateTenant) (tenantbus.UpdateTenant, error) {
	var bus tenantbus.UpdateTenant

	bus.Name = app.Name

	if app.Status != nil {
		status, err := tenantbus.ParseStatus(*app.Status)
		if err != nil {
			return tenantbus.UpdateTenant{}, fmt.Errorf("parse status: %w", err)
		}
		bus.Status = &status
	}

	if app.Plan != nil {
		pln, err := plan.Parse(*app.Plan)
		if err != nil {
			return tenantbus.UpdateTenant{}, fmt.Errorf("parse plan: %w", err)
		}
		bus.Plan = &pln
	}

	if app.DefaultProvider != nil {
		prv, err := provider.Parse(*app.DefaultProvider)
		if err != nil {
			return tenantbus.UpdateTenant{}, fmt.Errorf("parse provider: %w", err)
		}
		bus.DefaultProvider = &prv
	}

	return bus, nil
}

// =============================================================================

// Credential defines the data needed to store a provider credential.
type Credential struct {
	APIKey    string `json:"apiKey"`
	FromEmail string `json:"fromEmail"`
	FromName  string `json:"fromName"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// Decode implements the web.Decoder interface.
func (app *Credential) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

func toBusCredential(app Credential) delivery.Credential {
	return delivery.Credential{
		APIKey:    app.APIKey,
		FromEmail: app.FromEmail,
		FromName:  app.FromName,
		Host:      app.Host,
		Port:      app.Port,
		Username:  app.Username,
		Password:  app.Password,
	}
}

// =============================================================================

// Lead represents information about an individual lead.
type Lead struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenantId"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	DateCreated string `json:"dateCreated"`
}

// Encode implements the web.Encoder interface.
func (l Lead) Encode() ([]byte, string, error) {
	data, err := json.Marshal(l)
	return data, "application/json", err
}

func toAppLead(bus leadbus.Lead) Lead {
	return Lead{
		ID:          bus.ID.String(),
		TenantID:    bus.TenantID.String(),
		Email:       bus.Email,
		Name:        bus.Name,
		DateCreated: bus.CreatedAt.Format(time.RFC3339),
	}
}

// NewLead defines the data needed to add a new lead.
type NewLead struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

// Decode implements the web.Decoder interface.
func (app *NewLead) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewLead) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

// =============================================================================

// Template represents information about an individual template.
type Template struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenantId"`
	Name        string `json:"name"`
	Subject     string `json:"subject"`
	HTML        string `json:"html"`
	DateCreated string `json:"dateCreated"`
}

// Encode implements the web.Encoder interface.
func (t Template) Encode() ([]byte, string, error) {
	data, err := json.Marshal(t)
	return data, "application/json", err
}

func toAppTemplate(bus templatebus.Template) Template {
	return Template{
		ID:          bus.ID.String(),
		TenantID:    bus.TenantID.String(),
		Name:        bus.Name,
		Subject:     bus.Subject,
		HTML:        bus.HTML,
		DateCreated: bus.CreatedAt.Format(time.RFC3339),
	}
}

// NewTemplate defines the data needed to add a new template.
type NewTemplate struct {
	Name    string `json:"name" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	HTML    string `json:"html" validate:"required"`
}

// Decode implements the web.Decoder interface.
func (app *NewTemplate) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewTemplate) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}
