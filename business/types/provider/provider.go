// Package provider represents the delivery provider type in the system.
package provider

import "fmt"

// The set of providers that can be used.
var (
	SendGrid = newProvider("SENDGRID")
	Brevo    = newProvider("BREVO")
	SMTP     = newProvider("SMTP")
)

// =============================================================================

// Set of known providers.
var providers = make(map[string]Provider)

// Provider represents a delivery provider in the system.
type Provider struct {
	value string
}

func newProvider(provider string) Provider {
	p := Provider{provider}
	providers[provider] = p
	return p
}

// String returns the name of the provider.
func (p Provider) String() string {
	return p.value
}

// Equal provides support for the go-cmp package and testing.
func (p Provider) Equal(p2 Provider) bool {
	return p.value == p2.value
}

// MarshalText provides support for logging and any marshal needs.
func (p Provider) MarshalText() ([]byte, error) {
	return []byte(p.value), nil
}

// =============================================================================

// Parse parses the string value and returns a provider if one exists.
func Parse(value string) (Provider, error) {
	provider, exists := providers[value]
	if !exists {
		return Provider{}, fmt.Errorf("invalid provider %q", value)
	}

	return provider, nil
}

// MustParse parses the string value and returns a provider if one exists. If
// an error occurs the function panics.
func MustParse(value string) Provider {
	provider, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return provider
}
