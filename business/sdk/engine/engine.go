// Package engine implements the scheduled batch runs that move leads
// through their automation sequences tenant by tenant.
package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/automationbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/leadbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/quotabus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/templatebus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/tenantbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/delivery"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/sqldb"
	"github.com/kenxsak/omniflow-buisness-sub001/foundation/logger"
	"github.com/kenxsak/omniflow-buisness-sub001/foundation/otel"
	"golang.org/x/sync/errgroup"
)

// Config holds the dependencies the coordinator needs.
type Config struct {
	Log         *logger.Logger
	DB          sqldb.Beginner
	TenantBus   *tenantbus.Core
	QuotaBus    *quotabus.Core
	AutoBus     *automationbus.Core
	LeadBus     *leadbus.Core
	TemplateBus *templatebus.Core
	Registry    *delivery.Registry
	Workers     int
	SendTimeout time.Duration
}

// Coordinator drives one engine run across all eligible tenants using a
// bounded worker pool. Tenants are fully independent: one tenant's failure
// never stops another tenant's run.
type Coordinator struct {
	log         *logger.Logger
	db          sqldb.Beginner
	tenantBus   *tenantbus.Core
	quotaBus    *quotabus.Core
	autoBus     *automationbus.Core
	leadBus     *leadbus.Core
	templateBus *templatebus.Core
	registry    *delivery.Registry
	workers     int
	sendTimeout time.Duration
	inflight    sync.Map
}

// New constructs a coordinator for use.
func New(cfg Config) *Coordinator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	sendTimeout := cfg.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}

	return &Coordinator{
		log:         cfg.Log,
		db:          cfg.DB,
		tenantBus:   cfg.TenantBus,
		quotaBus:    cfg.QuotaBus,
		autoBus:     cfg.AutoBus,
		leadBus:     cfg.LeadBus,
		templateBus: cfg.TemplateBus,
		registry:    cfg.Registry,
		workers:     workers,
		sendTimeout: sendTimeout,
	}
}

// RunOnce executes a single engine run. Cancellation is honored between
// tenants: a tenant that has started is allowed to finish so its batch
// commits whole. Per-tenant errors and panics land in the summary, only a
// failure to list the eligible tenants fails the run itself.
func (c *Coordinator) RunOnce(ctx context.Context) (Summary, error) {
	ctx, span := otel.AddSpan(ctx, "business.engine.runonce")
	defer span.End()

	now := time.Now().UTC()

	tenants, err := c.tenantBus.QueryActive(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("queryactive: %w", err)
	}

	c.log.Info(ctx, "engine run started", "tenants", len(tenants), "workers", c.workers)

	collector := newSummaryCollector()

	var g errgroup.Group
	g.SetLimit(c.workers)

	for _, tenant := range tenants {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			c.processTenant(ctx, collector, tenant, now)
			return nil
		})
	}

	g.Wait()

	summary := collector.result()

	c.log.Info(ctx, "engine run completed",
		"tenantsProcessed", summary.TenantsProcessed,
		"stepsAdvanced", summary.StepsAdvanced,
		"sendsDelivered", summary.SendsDelivered,
		"skippedQuota", summary.SkippedQuota,
		"skippedCircuitBreaker", summary.SkippedCircuitBreaker,
		"errors", len(summary.Errors))

	return summary, nil
}

// processTenant guards one tenant's run with a single flight lock and a
// panic recovery so a bad tenant cannot take down the run or be processed
// by two overlapping runs at once.
func (c *Coordinator) processTenant(ctx context.Context, collector *summaryCollector, tenant tenantbus.Tenant, now time.Time) {
	if _, loaded := c.inflight.LoadOrStore(tenant.ID, struct{}{}); loaded {
		c.log.Warn(ctx, "engine run overlap, tenant still in flight", "tenantID", tenant.ID)
		return
	}
	defer c.inflight.Delete(tenant.ID)

	defer func() {
		if rec := recover(); rec != nil {
			trace := debug.Stack()
			c.log.Error(ctx, "engine tenant panic", "tenantID", tenant.ID, "panic", rec, "trace", string(trace))
			collector.fail(tenant.ID, fmt.Sprintf("panic: %v", rec))
		}
	}()

	p := processor{
		log:         c.log,
		db:          c.db,
		quotaBus:    c.quotaBus,
		autoBus:     c.autoBus,
		leadBus:     c.leadBus,
		templateBus: c.templateBus,
		tenantBus:   c.tenantBus,
		registry:    c.registry,
		sendTimeout: c.sendTimeout,
	}

	res, err := p.run(ctx, tenant, now)
	if err != nil {
		c.log.Error(ctx, "engine tenant failed", "tenantID", tenant.ID, "err", err)
		collector.fail(tenant.ID, err.Error())
		return
	}

	collector.add(res)
}
