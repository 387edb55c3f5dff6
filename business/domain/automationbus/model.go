package automationbus

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/channel"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/stepkind"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/timeunit"
)

// Automation represents a tenant-scoped ordered sequence of steps applied to
// leads that enter it.
//
// Definitions are read fresh on every run. Editing a definition while
// instances are mid-sequence can desynchronize their step index semantics,
// so step lists should be treated as append-only once instances reference
// them. An instance whose index runs past a shortened list completes.
type Automation struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	Provider  provider.Provider
	Enabled   bool
	Steps     []Step
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Step represents one unit of an automation: a fixed delay or a message
// send. Which fields are meaningful depends on the kind.
type Step struct {
	Kind       stepkind.StepKind
	Amount     int
	Unit       timeunit.TimeUnit
	Channel    channel.Channel
	TemplateID uuid.UUID
}

// StepAt returns the step at the specified index and whether one exists.
func (a Automation) StepAt(i int) (Step, bool) {
	if i < 0 || i >= len(a.Steps) {
		return Step{}, false
	}

	return a.Steps[i], true
}

// NewAutomation contains information needed to create a new automation.
type NewAutomation struct {
	TenantID uuid.UUID
	Name     string
	Provider provider.Provider
	Steps    []Step
}

// =============================================================================

// State represents the progress record of one lead through one automation.
type State struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	AutomationID  uuid.UUID
	LeadID        uuid.UUID
	NextStepIndex int
	NextStepTime  time.Time
	Status        Status
	ErrorMessage  string
	UpdatedAt     time.Time
}

// IsDue reports whether the state is eligible for advancement.
func (s State) IsDue(now time.Time) bool {
	return s.Status.Equal(StatusActive) && !s.NextStepTime.After(now)
}

// =============================================================================

// The set of statuses an automation state can be in. Completed and Error are
// terminal: a state never transitions out of them during a run.
var (
	StatusActive    = newStatus("ACTIVE")
	StatusCompleted = newStatus("COMPLETED")
	StatusError     = newStatus("ERROR")
)

var statuses = make(map[string]Status)

// Status represents an automation state status in the system.
type Status struct {
	value string
}

func newStatus(status string) Status {
	s := Status{status}
	statuses[status] = s
	return s
}

// String returns the name of the status.
func (s Status) String() string {
	return s.value
}

// Equal provides support for the go-cmp package and testing.
func (s Status) Equal(s2 Status) bool {
	return s.value == s2.value
}

// MarshalText provides support for logging and any marshal needs.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.value), nil
}

// ParseStatus parses the string value and returns a status if one exists.
func ParseStatus(value string) (Status, error) {
	status, exists := statuses[value]
	if !exists {
		return Status{}, fmt.Errorf("invalid status %q", value)
	}

	return status, nil
}
