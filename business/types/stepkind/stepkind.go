// Package stepkind represents the automation step kind type in the system.
package stepkind

import "fmt"

// The set of step kinds that can be used.
var (
	Delay = newStepKind("DELAY")
	Send  = newStepKind("SEND")
)

// =============================================================================

// Set of known step kinds.
var stepKinds = make(map[string]StepKind)

// StepKind represents a kind of automation step in the system.
type StepKind struct {
	value string
}

func newStepKind(kind string) StepKind {
	sk := StepKind{kind}
	stepKinds[kind] = sk
	return sk
}

// String returns the name of the step kind.
func (sk StepKind) String() string {
	return sk.value
}

// Equal provides support for the go-cmp package and testing.
func (sk StepKind) Equal(sk2 StepKind) bool {
	return sk.value == sk2.value
}

// MarshalText provides support for logging and any marshal needs.
func (sk StepKind) MarshalText() ([]byte, error) {
	return []byte(sk.value), nil
}

// =============================================================================

// Parse parses the string value and returns a step kind if one exists.
func Parse(value string) (StepKind, error) {
	kind, exists := stepKinds[value]
	if !exists {
		return StepKind{}, fmt.Errorf("invalid step kind %q", value)
	}

	return kind, nil
}

// MustParse parses the string value and returns a step kind if one exists.
// If an error occurs the function panics.
func MustParse(value string) StepKind {
	kind, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return kind
}
