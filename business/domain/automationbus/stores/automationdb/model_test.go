package automationdb

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/automationbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/channel"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/stepkind"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/timeunit"
	"github.com/stretchr/testify/require"
)

func TestAutomationRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	atm := automationbus.Automation{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Name:     "welcome series",
		Provider: provider.Brevo,
		Enabled:  true,
		Steps: []automationbus.Step{
			{Kind: stepkind.Delay, Amount: 2, Unit: timeunit.Days},
			{Kind: stepkind.Send, Channel: channel.Email, TemplateID: uuid.New()},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	db, err := toDBAutomation(atm)
	require.NoError(t, err)

	got, err := toBusAutomation(db)
	require.NoError(t, err)

	require.Equal(t, atm.ID, got.ID)
	require.True(t, got.Provider.Equal(provider.Brevo))
	require.Len(t, got.Steps, 2)
	require.True(t, got.Steps[0].Kind.Equal(stepkind.Delay))
	require.Equal(t, 2, got.Steps[0].Amount)
	require.True(t, got.Steps[0].Unit.Equal(timeunit.Days))
	require.True(t, got.Steps[1].Channel.Equal(channel.Email))
	require.Equal(t, atm.Steps[1].TemplateID, got.Steps[1].TemplateID)
}

func TestAutomationRoundTripNoProvider(t *testing.T) {
	atm := automationbus.Automation{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Name:     "welcome series",
		Enabled:  true,
		Steps: []automationbus.Step{
			{Kind: stepkind.Send, Channel: channel.Email, TemplateID: uuid.New()},
		},
	}

	db, err := toDBAutomation(atm)
	require.NoError(t, err)
	require.Equal(t, "", db.Provider)

	got, err := toBusAutomation(db)
	require.NoError(t, err, "an automation without a provider selection resolves to the tenant default at send time")
	require.Equal(t, "", got.Provider.String())
}
