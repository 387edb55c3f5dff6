// Package timeunit represents the delay time unit type in the system.
package timeunit

import (
	"fmt"
	"time"
)

// The set of time units that can be used. Days convert with fixed-duration
// arithmetic (24h), not calendar arithmetic.
var (
	Minutes = newTimeUnit("MINUTES", time.Minute)
	Hours   = newTimeUnit("HOURS", time.Hour)
	Days    = newTimeUnit("DAYS", 24*time.Hour)
)

// =============================================================================

// Set of known time units.
var timeUnits = make(map[string]TimeUnit)

// TimeUnit represents a delay time unit in the system.
type TimeUnit struct {
	value string
	unit  time.Duration
}

func newTimeUnit(value string, unit time.Duration) TimeUnit {
	tu := TimeUnit{value, unit}
	timeUnits[value] = tu
	return tu
}

// String returns the name of the time unit.
func (tu TimeUnit) String() string {
	return tu.value
}

// Duration returns the duration for n units.
func (tu TimeUnit) Duration(n int) time.Duration {
	return time.Duration(n) * tu.unit
}

// Equal provides support for the go-cmp package and testing.
func (tu TimeUnit) Equal(tu2 TimeUnit) bool {
	return tu.value == tu2.value
}

// MarshalText provides support for logging and any marshal needs.
func (tu TimeUnit) MarshalText() ([]byte, error) {
	return []byte(tu.value), nil
}

// =============================================================================

// Parse parses the string value and returns a time unit if one exists.
func Parse(value string) (TimeUnit, error) {
	unit, exists := timeUnits[value]
	if !exists {
		return TimeUnit{}, fmt.Errorf("invalid time unit %q", value)
	}

	return unit, nil
}

// MustParse parses the string value and returns a time unit if one exists.
// If an error occurs the function panics.
func MustParse(value string) TimeUnit {
	unit, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return unit
}
