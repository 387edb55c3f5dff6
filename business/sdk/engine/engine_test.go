package engine_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/automationbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/leadbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/quotabus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/templatebus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/tenantbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/delivery"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/engine"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/sqldb"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/channel"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/plan"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/stepkind"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/timeunit"
	"github.com/kenxsak/omniflow-buisness-sub001/foundation/logger"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// In-memory fakes

type fakeTx struct{}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return sql.ErrTxDone }

type fakeBeginner struct{}

func (fakeBeginner) Begin() (sqldb.CommitRollbacker, error) { return fakeTx{}, nil }

type tenantStore struct {
	tenants []tenantbus.Tenant
	creds   map[string]delivery.Credential
}

func (s *tenantStore) NewWithTx(tx sqldb.CommitRollbacker) (tenantbus.Storer, error) { return s, nil }
func (s *tenantStore) Create(ctx context.Context, t tenantbus.Tenant) error          { return nil }
func (s *tenantStore) Update(ctx context.Context, t tenantbus.Tenant) error          { return nil }
func (s *tenantStore) QueryByID(ctx context.Context, tenantID uuid.UUID) (tenantbus.Tenant, error) {
	for _, t := range s.tenants {
		if t.ID == tenantID {
			return t, nil
		}
	}
	return tenantbus.Tenant{}, tenantbus.ErrNotFound
}
func (s *tenantStore) QueryActive(ctx context.Context) ([]tenantbus.Tenant, error) {
	return s.tenants, nil
}
func (s *tenantStore) QueryCredential(ctx context.Context, tenantID uuid.UUID, p provider.Provider) (delivery.Credential, error) {
	cred, exists := s.creds[tenantID.String()+":"+p.String()]
	if !exists {
		return delivery.Credential{}, tenantbus.ErrCredentialNotFound
	}
	return cred, nil
}
func (s *tenantStore) UpsertCredential(ctx context.Context, tenantID uuid.UUID, p provider.Provider, cred delivery.Credential) error {
	s.creds[tenantID.String()+":"+p.String()] = cred
	return nil
}

type quotaStore struct {
	trackings map[uuid.UUID]quotabus.Tracking
	saves     int
}

func (s *quotaStore) NewWithTx(tx sqldb.CommitRollbacker) (quotabus.Storer, error) { return s, nil }
func (s *quotaStore) Upsert(ctx context.Context, t quotabus.Tracking) error {
	s.trackings[t.TenantID] = t
	s.saves++
	return nil
}
func (s *quotaStore) QueryByTenantID(ctx context.Context, tenantID uuid.UUID) (quotabus.Tracking, error) {
	t, exists := s.trackings[tenantID]
	if !exists {
		return quotabus.Tracking{}, quotabus.ErrNotFound
	}
	return t, nil
}

type autoStore struct {
	automations map[uuid.UUID][]automationbus.Automation
	states      map[uuid.UUID]automationbus.State
	queryErr    map[uuid.UUID]error
}

func (s *autoStore) NewWithTx(tx sqldb.CommitRollbacker) (automationbus.Storer, error) {
	return s, nil
}
func (s *autoStore) Create(ctx context.Context, atm automationbus.Automation) error { return nil }
func (s *autoStore) QueryByID(ctx context.Context, automationID uuid.UUID) (automationbus.Automation, error) {
	for _, atms := range s.automations {
		for _, atm := range atms {
			if atm.ID == automationID {
				return atm, nil
			}
		}
	}
	return automationbus.Automation{}, automationbus.ErrNotFound
}
func (s *autoStore) QueryEnabledByTenant(ctx context.Context, tenantID uuid.UUID) ([]automationbus.Automation, error) {
	if err := s.queryErr[tenantID]; err != nil {
		return nil, err
	}
	return s.automations[tenantID], nil
}
func (s *autoStore) CreateState(ctx context.Context, st automationbus.State) error {
	s.states[st.ID] = st
	return nil
}
func (s *autoStore) UpdateStates(ctx context.Context, sts []automationbus.State) error {
	for _, st := range sts {
		s.states[st.ID] = st
	}
	return nil
}
func (s *autoStore) QueryStateByID(ctx context.Context, stateID uuid.UUID) (automationbus.State, error) {
	st, exists := s.states[stateID]
	if !exists {
		return automationbus.State{}, automationbus.ErrStateNotFound
	}
	return st, nil
}
func (s *autoStore) QueryActiveStates(ctx context.Context, tenantID uuid.UUID) ([]automationbus.State, error) {
	var sts []automationbus.State
	for _, st := range s.states {
		if st.TenantID == tenantID && st.Status.Equal(automationbus.StatusActive) {
			sts = append(sts, st)
		}
	}
	return sts, nil
}

type leadStore struct {
	leads map[uuid.UUID]leadbus.Lead
}

func (s *leadStore) NewWithTx(tx sqldb.CommitRollbacker) (leadbus.Storer, error) { return s, nil }
func (s *leadStore) Create(ctx context.Context, ld leadbus.Lead) error {
	s.leads[ld.ID] = ld
	return nil
}
func (s *leadStore) QueryByID(ctx context.Context, leadID uuid.UUID) (leadbus.Lead, error) {
	ld, exists := s.leads[leadID]
	if !exists {
		return leadbus.Lead{}, leadbus.ErrNotFound
	}
	return ld, nil
}

type templateStore struct {
	templates map[uuid.UUID]templatebus.Template
}

func (s *templateStore) NewWithTx(tx sqldb.CommitRollbacker) (templatebus.Storer, error) {
	return s, nil
}
func (s *templateStore) Create(ctx context.Context, tpl templatebus.Template) error {
	s.templates[tpl.ID] = tpl
	return nil
}
func (s *templateStore) QueryByID(ctx context.Context, templateID uuid.UUID) (templatebus.Template, error) {
	tpl, exists := s.templates[templateID]
	if !exists {
		return templatebus.Template{}, templatebus.ErrNotFound
	}
	return tpl, nil
}

type scriptedProvider struct {
	name   provider.Provider
	fail   bool
	sends  int
	onSend func()
}

func (p *scriptedProvider) Name() provider.Provider { return p.name }
func (p *scriptedProvider) ValidateCredential(cred delivery.Credential) bool {
	return cred.APIKey != "" && cred.FromEmail != ""
}
func (p *scriptedProvider) Send(ctx context.Context, cred delivery.Credential, msg delivery.Message) (string, error) {
	p.sends++
	if p.onSend != nil {
		p.onSend()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.fail {
		return "", delivery.NewError(p.name, "mailbox unavailable")
	}
	return "msg-123", nil
}

// =============================================================================
// Harness

type harness struct {
	coordinator *engine.Coordinator
	tenants     *tenantStore
	quotas      *quotaStore
	autos       *autoStore
	leads       *leadStore
	templates   *templateStore
	vendor      *scriptedProvider
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	h := harness{
		tenants:   &tenantStore{creds: make(map[string]delivery.Credential)},
		quotas:    &quotaStore{trackings: make(map[uuid.UUID]quotabus.Tracking)},
		autos:     &autoStore{automations: make(map[uuid.UUID][]automationbus.Automation), states: make(map[uuid.UUID]automationbus.State), queryErr: make(map[uuid.UUID]error)},
		leads:     &leadStore{leads: make(map[uuid.UUID]leadbus.Lead)},
		templates: &templateStore{templates: make(map[uuid.UUID]templatebus.Template)},
		vendor:    &scriptedProvider{name: provider.SendGrid},
	}

	h.coordinator = engine.New(engine.Config{
		Log:         log,
		DB:          fakeBeginner{},
		TenantBus:   tenantbus.NewCore(log, h.tenants),
		QuotaBus:    quotabus.NewCore(log, h.quotas),
		AutoBus:     automationbus.NewCore(log, h.autos),
		LeadBus:     leadbus.NewCore(log, h.leads),
		TemplateBus: templatebus.NewCore(log, h.templates),
		Registry:    delivery.NewRegistry(provider.SendGrid, h.vendor),
		Workers:     4,
		SendTimeout: time.Second,
	})

	return &h
}

// addTenant wires a tenant with one enabled automation, one enrolled lead
// due now, a welcome template, and a complete credential.
func (h *harness) addTenant(pln plan.Plan, steps []automationbus.Step) (tenantbus.Tenant, automationbus.State) {
	now := time.Now().UTC()

	tnt := tenantbus.Tenant{
		ID:              uuid.New(),
		Name:            "Acme",
		Slug:            "acme",
		Status:          tenantbus.StatusActive,
		Plan:            pln,
		DefaultProvider: provider.SendGrid,
	}
	h.tenants.tenants = append(h.tenants.tenants, tnt)
	h.tenants.creds[tnt.ID.String()+":SENDGRID"] = delivery.Credential{
		APIKey:    "key",
		FromEmail: "hello@acme.test",
	}

	tpl := templatebus.Template{ID: uuid.New(), TenantID: tnt.ID, Subject: "Welcome", HTML: "<p>hi</p>"}
	h.templates.templates[tpl.ID] = tpl

	for i := range steps {
		if steps[i].Kind.Equal(stepkind.Send) && steps[i].TemplateID == uuid.Nil {
			steps[i].TemplateID = tpl.ID
		}
	}

	atm := automationbus.Automation{
		ID:       uuid.New(),
		TenantID: tnt.ID,
		Name:     "welcome series",
		Enabled:  true,
		Steps:    steps,
	}
	h.autos.automations[tnt.ID] = append(h.autos.automations[tnt.ID], atm)

	ld := leadbus.Lead{ID: uuid.New(), TenantID: tnt.ID, Email: "jordan@example.test", Name: "Jordan"}
	h.leads.leads[ld.ID] = ld

	st := automationbus.State{
		ID:           uuid.New(),
		TenantID:     tnt.ID,
		AutomationID: atm.ID,
		LeadID:       ld.ID,
		NextStepTime: now.Add(-time.Minute),
		Status:       automationbus.StatusActive,
	}
	h.autos.states[st.ID] = st

	return tnt, st
}

func freshTracking(tenantID uuid.UUID) quotabus.Tracking {
	return quotabus.NewTracking(tenantID, time.Now().UTC())
}

// =============================================================================

func TestRunDeliversSendStep(t *testing.T) {
	h := newHarness(t)
	tnt, st := h.addTenant(plan.Free, []automationbus.Step{
		{Kind: stepkind.Send, Channel: channel.Email},
		{Kind: stepkind.Delay, Amount: 2, Unit: timeunit.Days},
	})

	summary, err := h.coordinator.RunOnce(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, summary.TenantsProcessed)
	require.Equal(t, 1, summary.SendsDelivered)
	require.Equal(t, 1, summary.StepsAdvanced)
	require.Empty(t, summary.Errors)
	require.Equal(t, 1, h.vendor.sends)

	got := h.autos.states[st.ID]
	require.Equal(t, 1, got.NextStepIndex)
	require.True(t, got.Status.Equal(automationbus.StatusActive))

	tracking := h.quotas.trackings[tnt.ID]
	require.Equal(t, 1, tracking.SentToday)
	require.Equal(t, 1, tracking.SentThisHour)
	require.Equal(t, 0, tracking.ConsecutiveFailures)
}

func TestRunAdvancesDelayStep(t *testing.T) {
	h := newHarness(t)
	_, st := h.addTenant(plan.Free, []automationbus.Step{
		{Kind: stepkind.Delay, Amount: 3, Unit: timeunit.Hours},
		{Kind: stepkind.Send, Channel: channel.Email},
	})

	summary, err := h.coordinator.RunOnce(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, summary.StepsAdvanced)
	require.Equal(t, 0, summary.SendsDelivered)
	require.Equal(t, 0, h.vendor.sends, "a delay step never touches the vendor")

	got := h.autos.states[st.ID]
	require.Equal(t, 1, got.NextStepIndex)
	require.WithinDuration(t, time.Now().Add(3*time.Hour), got.NextStepTime, time.Minute)
}

func TestRunCompletesExhaustedSequence(t *testing.T) {
	h := newHarness(t)
	_, st := h.addTenant(plan.Free, []automationbus.Step{
		{Kind: stepkind.Send, Channel: channel.Email},
	})

	past := h.autos.states[st.ID]
	past.NextStepIndex = 5
	h.autos.states[st.ID] = past

	summary, err := h.coordinator.RunOnce(context.Background())
	require.NoError(t, err)

	require.Equal(t, 0, summary.SendsDelivered)
	got := h.autos.states[st.ID]
	require.True(t, got.Status.Equal(automationbus.StatusCompleted), "an index past the step list completes the state")
}

func TestRunCompletesFinalSendInSameRun(t *testing.T) {
	h := newHarness(t)
	_, st := h.addTenant(plan.Free, []automationbus.Step{
		{Kind: stepkind.Send, Channel: channel.Email},
	})

	summary, err := h.coordinator.RunOnce(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, summary.SendsDelivered)
	got := h.autos.states[st.ID]
	require.Equal(t, 1, got.NextStepIndex)
	require.True(t, got.Status.Equal(automationbus.StatusCompleted), "the run that delivers the last step also completes the state")
}

func TestRunFullSequenceCompletes(t *testing.T) {
	h := newHarness(t)
	_, st := h.addTenant(plan.Free, []automationbus.Step{
		{Kind: stepkind.Delay, Amount: 1, Unit: timeunit.Hours},
		{Kind: stepkind.Send, Channel: channel.Email},
	})

	summary, err := h.coordinator.RunOnce(context.Background())
	require.NoError(t, err)

	require.Equal(t, 0, summary.SendsDelivered)
	got := h.autos.states[st.ID]
	require.Equal(t, 1, got.NextStepIndex)
	require.True(t, got.Status.Equal(automationbus.StatusActive))
	require.WithinDuration(t, time.Now().Add(time.Hour), got.NextStepTime, time.Minute)

	// The delay elapses before the second run.
	got.NextStepTime = time.Now().UTC().Add(-time.Minute)
	h.autos.states[st.ID] = got

	summary, err = h.coordinator.RunOnce(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, summary.SendsDelivered)
	require.Equal(t, 1, h.vendor.sends)

	got = h.autos.states[st.ID]
	require.Equal(t, 2, got.NextStepIndex)
	require.True(t, got.Status.Equal(automationbus.StatusCompleted))
}

func TestRunShutdownDoesNotRecordFailure(t *testing.T) {
	h := newHarness(t)
	tnt, st := h.addTenant(plan.Free, []automationbus.Step{
		{Kind: stepkind.Send, Channel: channel.Email},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.vendor.onSend = cancel

	summary, err := h.coordinator.RunOnce(ctx)
	require.NoError(t, err)

	require.Equal(t, 1, summary.SendsDelivered, "an in-flight send finishes under its own timeout")

	got := h.autos.states[st.ID]
	require.False(t, got.Status.Equal(automationbus.StatusError))
	require.Equal(t, 0, h.quotas.trackings[tnt.ID].ConsecutiveFailures, "a shutdown never feeds the breaker")
}

func TestRunSkipsWhenQuotaExceeded(t *testing.T) {
	h := newHarness(t)
	tnt, st := h.addTenant(plan.Free, []automationbus.Step{
		{Kind: stepkind.Send, Channel: channel.Email},
	})

	tracking := freshTracking(tnt.ID)
	tracking.SentThisHour = 10
	h.quotas.trackings[tnt.ID] = tracking

	summary, err := h.coordinator.RunOnce(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, summary.SkippedQuota)
	require.Equal(t, 0, summary.SendsDelivered)
	require.Equal(t, 0, h.vendor.sends, "gating happens before the vendor is called")

	got := h.autos.states[st.ID]
	require.Equal(t, 0, got.NextStepIndex, "a quota skipped state stays due for the next run")
	require.True(t, got.Status.Equal(automationbus.StatusActive))
}

func TestRunSkipsTenantWithOpenCircuit(t *testing.T) {
	h := newHarness(t)
	tnt, st := h.addTenant(plan.Free, []automationbus.Step{
		{Kind: stepkind.Send, Channel: channel.Email},
	})

	now := time.Now().UTC()
	tripped := now.Add(-5 * time.Minute)
	tracking := freshTracking(tnt.ID)
	tracking.ConsecutiveFailures = 3
	tracking.CircuitTrippedAt = &tripped
	h.quotas.trackings[tnt.ID] = tracking

	summary, err := h.coordinator.RunOnce(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, summary.SkippedCircuitBreaker)
	require.Equal(t, 0, h.vendor.sends)

	got := h.autos.states[st.ID]
	require.Equal(t, 0, got.NextStepIndex)
}

func TestRunAllowsProbeAfterCooldown(t *testing.T) {
	h := newHarness(t)
	tnt, st := h.addTenant(plan.Free, []automationbus.Step{
		{Kind: stepkind.Send, Channel: channel.Email},
	})

	now := time.Now().UTC()
	tripped := now.Add(-quotabus.CooldownPeriod - time.Minute)
	tracking := freshTracking(tnt.ID)
	tracking.ConsecutiveFailures = 3
	tracking.CircuitTrippedAt = &tripped
	h.quotas.trackings[tnt.ID] = tracking

	summary, err := h.coordinator.RunOnce(context.Background())
	require.NoError(t, err)

	require.Equal(t, 0, summary.SkippedCircuitBreaker)
	require.Equal(t, 1, h.vendor.sends, "the elapsed cooldown lets one probe through")
	require.Equal(t, 1, summary.SendsDelivered)

	got := h.autos.states[st.ID]
	require.Equal(t, 1, got.NextStepIndex)
	require.Equal(t, 0, h.quotas.trackings[tnt.ID].ConsecutiveFailures, "the successful probe closes the breaker")
}

func TestRunFailedSendMarksStateError(t *testing.T) {
	h := newHarness(t)
	tnt, st := h.addTenant(plan.Free, []automationbus.Step{
		{Kind: stepkind.Send, Channel: channel.Email},
	})
	h.vendor.fail = true

	summary, err := h.coordinator.RunOnce(context.Background())
	require.NoError(t, err)

	require.Equal(t, 0, summary.SendsDelivered)
	require.Equal(t, 0, summary.StepsAdvanced)
	require.Empty(t, summary.Errors, "a vendor failure is a business outcome, not a tenant error")

	got := h.autos.states[st.ID]
	require.True(t, got.Status.Equal(automationbus.StatusError))
	require.Contains(t, got.ErrorMessage, "mailbox unavailable")
	require.Equal(t, 0, got.NextStepIndex, "the index holds so reactivation retries the same step")

	require.Equal(t, 1, h.quotas.trackings[tnt.ID].ConsecutiveFailures)
}

func TestRunReactivatedStateRetries(t *testing.T) {
	h := newHarness(t)
	_, st := h.addTenant(plan.Free, []automationbus.Step{
		{Kind: stepkind.Send, Channel: channel.Email},
	})
	h.vendor.fail = true

	_, err := h.coordinator.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, h.autos.states[st.ID].Status.Equal(automationbus.StatusError))

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)
	autoBus := automationbus.NewCore(log, h.autos)
	_, err = autoBus.Reactivate(context.Background(), st.ID, time.Now())
	require.NoError(t, err)

	h.vendor.fail = false
	summary, err := h.coordinator.RunOnce(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, summary.SendsDelivered)
	got := h.autos.states[st.ID]
	require.True(t, got.Status.Equal(automationbus.StatusCompleted), "the retried step was the last one")
	require.Equal(t, 1, got.NextStepIndex)
}

func TestRunSkipsOrphanedLead(t *testing.T) {
	h := newHarness(t)
	tnt, st := h.addTenant(plan.Free, []automationbus.Step{
		{Kind: stepkind.Send, Channel: channel.Email},
	})

	orphan := h.autos.states[st.ID]
	orphan.LeadID = uuid.New()
	h.autos.states[st.ID] = orphan

	summary, err := h.coordinator.RunOnce(context.Background())
	require.NoError(t, err)

	require.Equal(t, 0, summary.SendsDelivered)
	require.Empty(t, summary.Errors)
	require.Equal(t, 0, h.vendor.sends)

	got := h.autos.states[st.ID]
	require.True(t, got.Status.Equal(automationbus.StatusActive), "an orphaned state is skipped, not failed")
	require.Equal(t, 0, h.quotas.trackings[tnt.ID].ConsecutiveFailures, "a configuration problem never feeds the breaker")
}

func TestRunSkipsMissingCredential(t *testing.T) {
	h := newHarness(t)
	tnt, st := h.addTenant(plan.Free, []automationbus.Step{
		{Kind: stepkind.Send, Channel: channel.Email},
	})
	delete(h.tenants.creds, tnt.ID.String()+":SENDGRID")

	summary, err := h.coordinator.RunOnce(context.Background())
	require.NoError(t, err)

	require.Equal(t, 0, summary.SendsDelivered)
	require.Equal(t, 0, h.vendor.sends)

	got := h.autos.states[st.ID]
	require.True(t, got.Status.Equal(automationbus.StatusActive))
	require.Equal(t, 0, h.quotas.trackings[tnt.ID].ConsecutiveFailures)
}

func TestRunIsolatesTenantFailures(t *testing.T) {
	h := newHarness(t)
	bad, _ := h.addTenant(plan.Free, []automationbus.Step{
		{Kind: stepkind.Send, Channel: channel.Email},
	})
	_, goodState := h.addTenant(plan.Free, []automationbus.Step{
		{Kind: stepkind.Send, Channel: channel.Email},
	})

	h.autos.queryErr[bad.ID] = errors.New("connection reset")

	summary, err := h.coordinator.RunOnce(context.Background())
	require.NoError(t, err)

	require.Contains(t, summary.Errors, bad.ID)
	require.Equal(t, 1, summary.TenantsProcessed)
	require.Equal(t, 1, summary.SendsDelivered)
	require.Equal(t, 1, h.autos.states[goodState.ID].NextStepIndex)
}
