package automationdb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/automationbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/channel"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/stepkind"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/timeunit"
)

type automationDB struct {
	ID        uuid.UUID `db:"automation_id"`
	TenantID  uuid.UUID `db:"tenant_id"`
	Name      string    `db:"name"`
	Provider  string    `db:"provider"`
	Enabled   bool      `db:"enabled"`
	Steps     []byte    `db:"steps"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type stepDB struct {
	Kind       string `json:"kind"`
	Amount     int    `json:"amount,omitempty"`
	Unit       string `json:"unit,omitempty"`
	Channel    string `json:"channel,omitempty"`
	TemplateID string `json:"template_id,omitempty"`
}

func toDBAutomation(bus automationbus.Automation) (automationDB, error) {
	steps := make([]stepDB, len(bus.Steps))
	for i, s := range bus.Steps {
		steps[i] = stepDB{
			Kind:    s.Kind.String(),
			Amount:  s.Amount,
			Unit:    s.Unit.String(),
			Channel: s.Channel.String(),
		}
		if s.TemplateID != uuid.Nil {
			steps[i].TemplateID = s.TemplateID.String()
		}
	}

	data, err := json.Marshal(steps)
	if err != nil {
		return automationDB{}, fmt.Errorf("marshal steps: %w", err)
	}

	return automationDB{
		ID:        bus.ID,
		TenantID:  bus.TenantID,
		Name:      bus.Name,
		Provider:  bus.Provider.String(),
		Enabled:   bus.Enabled,
		Steps:     data,
		CreatedAt: bus.CreatedAt.UTC(),
		UpdatedAt: bus.UpdatedAt.UTC(),
	}, nil
}

func toBusAutomation(db automationDB) (automationbus.Automation, error) {
	var prv provider.Provider
	if db.Provider != "" {
		var err error
		prv, err = provider.Parse(db.Provider)
		if err != nil {
			return automationbus.Automation{}, fmt.Errorf("parse provider: %w", err)
		}
	}

	var dbSteps []stepDB
	if err := json.Unmarshal(db.Steps, &dbSteps); err != nil {
		return automationbus.Automation{}, fmt.Errorf("unmarshal steps: %w", err)
	}

	steps := make([]automationbus.Step, len(dbSteps))
	for i, s := range dbSteps {
		kind, err := stepkind.Parse(s.Kind)
		if err != nil {
			return automationbus.Automation{}, fmt.Errorf("parse step kind: %w", err)
		}

		step := automationbus.Step{
			Kind:   kind,
			Amount: s.Amount,
		}

		if s.Unit != "" {
			step.Unit, err = timeunit.Parse(s.Unit)
			if err != nil {
				return automationbus.Automation{}, fmt.Errorf("parse step unit: %w", err)
			}
		}

		if s.Channel != "" {
			step.Channel, err = channel.Parse(s.Channel)
			if err != nil {
				return automationbus.Automation{}, fmt.Errorf("parse step channel: %w", err)
			}
		}

		if s.TemplateID != "" {
			step.TemplateID, err = uuid.Parse(s.TemplateID)
			if err != nil {
				return automationbus.Automation{}, fmt.Errorf("parse step template id: %w", err)
			}
		}

		steps[i] = step
	}

	bus := automationbus.Automation{
		ID:        db.ID,
		TenantID:  db.TenantID,
		Name:      db.Name,
		Provider:  prv,
		Enabled:   db.Enabled,
		Steps:     steps,
		CreatedAt: db.CreatedAt.In(time.Local),
		UpdatedAt: db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}

func toBusAutomations(dbs []automationDB) ([]automationbus.Automation, error) {
	bus := make([]automationbus.Automation, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusAutomation(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}

// =============================================================================

type stateDB struct {
	ID            uuid.UUID `db:"state_id"`
	TenantID      uuid.UUID `db:"tenant_id"`
	AutomationID  uuid.UUID `db:"automation_id"`
	LeadID        uuid.UUID `db:"lead_id"`
	NextStepIndex int       `db:"next_step_index"`
	NextStepTime  time.Time `db:"next_step_time"`
	Status        string    `db:"status"`
	ErrorMessage  string    `db:"error_message"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func toDBState(bus automationbus.State) stateDB {
	return stateDB{
		ID:            bus.ID,
		TenantID:      bus.TenantID,
		AutomationID:  bus.AutomationID,
		LeadID:        bus.LeadID,
		NextStepIndex: bus.NextStepIndex,
		NextStepTime:  bus.NextStepTime.UTC(),
		Status:        bus.Status.String(),
		ErrorMessage:  bus.ErrorMessage,
		UpdatedAt:     bus.UpdatedAt.UTC(),
	}
}

func toBusState(db stateDB) (automationbus.State, error) {
	status, err := automationbus.ParseStatus(db.Status)
	if err != nil {
		return automationbus.State{}, fmt.Errorf("parse status: %w", err)
	}

	bus := automationbus.State{
		ID:            db.ID,
		TenantID:      db.TenantID,
		AutomationID:  db.AutomationID,
		LeadID:        db.LeadID,
		NextStepIndex: db.NextStepIndex,
		NextStepTime:  db.NextStepTime.In(time.Local),
		Status:        status,
		ErrorMessage:  db.ErrorMessage,
		UpdatedAt:     db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}

func toBusStates(dbs []stateDB) ([]automationbus.State, error) {
	bus := make([]automationbus.State, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusState(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
