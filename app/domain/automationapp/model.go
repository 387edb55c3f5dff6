package automationapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kenxsak/omniflow-buisness-sub001/app/sdk/errs"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/automationbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/channel"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/stepkind"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/timeunit"
)

// Automation represents information about an individual automation.
type Automation struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenantId"`
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Enabled     bool   `json:"enabled"`
	Steps       []Step `json:"steps"`
	DateCreated string `json:"dateCreated"`
	DateUpdated string `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (a Automation) Encode() ([]byte, string, error) {
	data, err := json.Marshal(a)
	return data, "application/json", err
}

// Step represents one step of an automation.
type Step struct {
	Kind       string `json:"kind" validate:"required"`
	Amount     int    `json:"amount"`
	Unit       string `json:"unit"`
	Channel    string `json:"channel"`
	TemplateID string `json:"templateId"`
}

func toAppAutomation(bus automationbus.Automation) Automation {
	steps := make([]Step, len(bus.Steps))
	for i, s := range bus.Steps {
		steps[i] = Step{
			Kind:    s.Kind.String(),
			Amount:  s.Amount,
			Unit:    s.Unit.String(),
			Channel: s.Channel.String(),
		}
		if s.TemplateID != uuid.Nil {
			steps[i].TemplateID = s.TemplateID.String()
		}
	}

	return Automation{
		ID:          bus.ID.String(),
		TenantID:    bus.TenantID.String(),
		Name:        bus.Name,
		Provider:    bus.Provider.String(),
		Enabled:     bus.Enabled,
		Steps:       steps,
		DateCreated: bus.CreatedAt.Format(time.RFC3339),
		DateUpdated: bus.UpdatedAt.Format(time.RFC3339),
	}
}

// =============================================================================

// NewAutomation defines the data needed to add a new automation.
type NewAutomation struct {
	Name     string `json:"name" validate:"required"`
	Provider string `json:"provider"`
	Steps    []Step `json:"steps" validate:"required,min=1,dive"`
}

// Decode implements the web.Decoder interface.
func (app *NewAutomation) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewAutomation) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewAutomation(tenantID uuid.UUID, app NewAutomation) (automationbus.NewAutomation, error) {
	var prv provider.Provider
	if app.Provider != "" {
		var err error
		prv, err = provider.Parse(app.Provider)
		if err != nil {
			return automationbus.NewAutomation{}, fmt.Errorf("parse provider: %w", err)
		}
	}

	steps := make([]automationbus.Step, len(app.Steps))
	for i, s := range app.Steps {
		kind, err := stepkind.Parse(s.Kind)
		if err != nil {
			return automationbus.NewAutomation{}, fmt.Errorf("parse step kind: %w", err)
		}

		step := automationbus.Step{
			Kind:   kind,
			Amount: s.Amount,
		}

		switch {
		case kind.Equal(stepkind.Delay):
			if s.Amount <= 0 {
				return automationbus.NewAutomation{}, fmt.Errorf("delay step requires a positive amount")
			}
			step.Unit, err = timeunit.Parse(s.Unit)
			if err != nil {
				return automationbus.NewAutomation{}, fmt.Errorf("parse step unit: %w", err)
			}

		case kind.Equal(stepkind.Send):
			step.Channel, err = channel.Parse(s.Channel)
			if err != nil {
				return automationbus.NewAutomation{}, fmt.Errorf("parse step channel: %w", err)
			}
			step.TemplateID, err = uuid.Parse(s.TemplateID)
			if err != nil {
				return automationbus.NewAutomation{}, fmt.Errorf("parse step template id: %w", err)
			}
		}

		steps[i] = step
	}

	bus := automationbus.NewAutomation{
		TenantID: tenantID,
		Name:     app.Name,
		Provider: prv,
		Steps:    steps,
	}

	return bus, nil
}

// =============================================================================

// State represents the progress of one lead through one automation.
type State struct {
	ID            string `json:"id"`
	TenantID      string `json:"tenantId"`
	AutomationID  string `json:"automationId"`
	LeadID        string `json:"leadId"`
	NextStepIndex int    `json:"nextStepIndex"`
	NextStepTime  string `json:"nextStepTime"`
	Status        string `json:"status"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
}

// Encode implements the web.Encoder interface.
func (s State) Encode() ([]byte, string, error) {
	data, err := json.Marshal(s)
	return data, "application/json", err
}

func toAppState(bus automationbus.State) State {
	return State{
		ID:            bus.ID.String(),
		TenantID:      bus.TenantID.String(),
		AutomationID:  bus.AutomationID.String(),
		LeadID:        bus.LeadID.String(),
		NextStepIndex: bus.NextStepIndex,
		NextStepTime:  bus.NextStepTime.Format(time.RFC3339),
		Status:        bus.Status.String(),
		ErrorMessage:  bus.ErrorMessage,
	}
}

// =============================================================================

// NewEnrollment defines the data needed to enroll a lead in an automation.
type NewEnrollment struct {
	LeadID string `json:"leadId" validate:"required"`
}

// Decode implements the web.Decoder interface.
func (app *NewEnrollment) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewEnrollment) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}
