package tenantbus

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/plan"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
)

// Tenant represents a client organization in the system. The engine reads
// tenants, it never owns their lifecycle.
type Tenant struct {
	ID              uuid.UUID
	Name            string
	Slug            string
	Status          Status
	Plan            plan.Plan
	DefaultProvider provider.Provider
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewTenant contains information needed to create a new tenant.
type NewTenant struct {
	Name            string
	Slug            string
	Plan            plan.Plan
	DefaultProvider provider.Provider
}

// UpdateTenant contains information needed to update a tenant.
type UpdateTenant struct {
	Name            *string
	Status          *Status
	Plan            *plan.Plan
	DefaultProvider *provider.Provider
}

// =============================================================================

// The set of lifecycle statuses a tenant can be in.
var (
	StatusActive    = newStatus("ACTIVE")
	StatusSuspended = newStatus("SUSPENDED")
	StatusChurned   = newStatus("CHURNED")
)

var statuses = make(map[string]Status)

// Status represents a tenant lifecycle status in the system.
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
