// Package delivery provides the uniform send abstraction over the outbound
// delivery vendors.
package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
)

// Set of error variables for send operations.
var (
	ErrUnknownProvider   = errors.New("unknown provider")
	ErrInvalidCredential = errors.New("incomplete provider credential")
)

// Error represents a failure reported by a vendor. It is distinct from a
// configuration problem: a vendor failure counts toward the tenant's
// circuit breaker, a configuration problem does not.
type Error struct {
	Provider provider.Provider
	Message  string
}

// NewError constructs a vendor failure error.
func NewError(p provider.Provider, format string, v ...any) *Error {
	return &Error{
		Provider: p,
		Message:  fmt.Sprintf(format, v...),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("delivery failed: provider[%s]: %s", e.Provider, e.Message)
}

// IsError tests the concrete error is of the Error type.
func IsError(err error) bool {
	var de *Error
	return errors.As(err, &de)
}

// =============================================================================

// Credential represents the vendor credentials configured for a tenant. The
// engine treats the values as opaque beyond completeness checks.
type Credential struct {
	APIKey    string
	FromEmail string
	FromName  string
	Host      string
	Port      int
	Username  string
	Password  string
}

// Message represents a single outbound message.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
}

// Provider declares the behavior every delivery vendor adapter implements.
type Provider interface {
	Name() provider.Provider
	ValidateCredential(cred Credential) bool
	Send(ctx context.Context, cred Credential, msg Message) (messageID string, err error)
}
