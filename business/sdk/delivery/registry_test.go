package delivery_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/delivery"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name provider.Provider
}

func (s stubProvider) Name() provider.Provider                          { return s.name }
func (s stubProvider) ValidateCredential(cred delivery.Credential) bool { return cred.APIKey != "" }
func (s stubProvider) Send(ctx context.Context, cred delivery.Credential, msg delivery.Message) (string, error) {
	return "msg-1", nil
}

func TestRegistryLookup(t *testing.T) {
	reg := delivery.NewRegistry(provider.SendGrid,
		stubProvider{name: provider.SendGrid},
		stubProvider{name: provider.Brevo},
	)

	adapter, err := reg.Lookup(provider.Brevo)
	require.NoError(t, err)
	require.True(t, adapter.Name().Equal(provider.Brevo))

	adapter, err = reg.Lookup(provider.Provider{})
	require.NoError(t, err)
	require.True(t, adapter.Name().Equal(provider.SendGrid), "the zero provider resolves to the platform default")

	_, err = reg.Lookup(provider.SMTP)
	require.ErrorIs(t, err, delivery.ErrUnknownProvider)
}

func TestDeliveryError(t *testing.T) {
	err := delivery.NewError(provider.SendGrid, "status %d", 502)
	require.Equal(t, "delivery failed: provider[SENDGRID]: status 502", err.Error())
	require.True(t, delivery.IsError(err))
	require.True(t, delivery.IsError(fmt.Errorf("send: %w", err)))
	require.False(t, delivery.IsError(errors.New("connection refused")))
}
