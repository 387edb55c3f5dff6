package main

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/kenxsak/omniflow-buisness-sub001/api/cmd/build/all"
	"github.com/kenxsak/omniflow-buisness-sub001/app/sdk/mux"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/automationbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/automationbus/stores/automationdb"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/leadbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/leadbus/stores/leaddb"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/quotabus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/quotabus/stores/quotadb"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/templatebus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/templatebus/stores/templatedb"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/tenantbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/tenantbus/stores/tenantcache"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/tenantbus/stores/tenantdb"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/delivery"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/delivery/brevo"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/delivery/sendgrid"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/delivery/smtp"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/engine"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/sqldb"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
	"github.com/kenxsak/omniflow-buisness-sub001/foundation/logger"
	"github.com/kenxsak/omniflow-buisness-sub001/foundation/otel"
	"github.com/robfig/cron/v3"
)

var build = "develop"

type Config struct {
	Version struct {
		Build string `json:"build"`
		Desc  string `json:"desc"`
	} `json:"version"`

	Web struct {
		ReadTimeout        time.Duration `envconfig:"WEB_READ_TIMEOUT" default:"5s"`
		WriteTimeout       time.Duration `envconfig:"WEB_WRITE_TIMEOUT" default:"120s"`
		IdleTimeout        time.Duration `envconfig:"WEB_IDLE_TIMEOUT" default:"120s"`
		ShutdownTimeout    time.Duration `envconfig:"WEB_SHUTDOWN_TIMEOUT" default:"20s"`
		APIHost            string        `envconfig:"WEB_API_HOST" default:"0.0.0.0:3000"`
		CORSAllowedOrigins []string      `envconfig:"WEB_CORS_ALLOWED_ORIGINS" default:"*"`
	}
	DB struct {
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:"postgres"`
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Name         string `envconfig:"DB_NAME" default:"automation"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"0"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"0"`
		DisableTLS   bool   `envconfig:"DB_DISABLE_TLS" default:"true"`
	}
	Engine struct {
		Schedule        string        `envconfig:"ENGINE_SCHEDULE" default:"@every 5m"`
		Workers         int           `envconfig:"ENGINE_WORKERS" default:"8"`
		SendTimeout     time.Duration `envconfig:"ENGINE_SEND_TIMEOUT" default:"30s"`
		VendorTimeout   time.Duration `envconfig:"ENGINE_VENDOR_TIMEOUT" default:"20s"`
		DefaultProvider string        `envconfig:"ENGINE_DEFAULT_PROVIDER" default:"SENDGRID"`
		CacheTTL        time.Duration `envconfig:"ENGINE_CACHE_TTL" default:"5m"`
	}
	Tempo struct {
		Host        string  `envconfig:"TEMPO_HOST" default:"tempo:4317"`
		ServiceName string  `envconfig:"TEMPO_SERVICE_NAME" default:"AUTOMATION-ENGINE"`
		Probability float64 `envconfig:"TEMPO_PROBABILITY" default:"0.05"`
		Enabled     bool    `envconfig:"TEMPO_ENABLED" default:"true"`
	}
}

func main() {
	var log *logger.Logger

	events := logger.Events{
		Error: func(ctx context.Context, r logger.Record) {
			log.Info(ctx, "******* SEND ALERT *******")
		},
	}

	log = logger.NewWithEvents(os.Stdout, logger.LevelInfo, "AUTOMATION-ENGINE", otel.GetTraceID, events)

	// -------------------------------------------------------------------------

	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {

	// -------------------------------------------------------------------------
	// GOMAXPROCS

	log.Info(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0))

	// -------------------------------------------------------------------------
	// Configuration

	var cfg Config

	cfg.Version.Build = build
	cfg.Version.Desc = "AUTOMATION-ENGINE"

	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}

	defaultProvider, err := provider.Parse(cfg.Engine.DefaultProvider)
	if err != nil {
		return fmt.Errorf("parsing default provider: %w", err)
	}

	log.Info(ctx, "startup", "version", cfg.Version)
	log.Info(ctx, "startup", "config", sanitizeConfig(cfg))

	// -------------------------------------------------------------------------
	// App Starting

	log.Info(ctx, "starting service", "version", cfg.Version.Build)
	defer log.Info(ctx, "shutdown complete")

	log.BuildInfo(ctx)

	expvar.NewString("build").Set(cfg.Version.Build)

	// -------------------------------------------------------------------------
	// Database Support

	log.Info(ctx, "startup", "status", "initializing database support", "hostport", cfg.DB.Host)

	db, err := sqldb.Open(sqldb.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}

	defer db.Close()

	// -------------------------------------------------------------------------
	// Start Tracing Support

	log.Info(ctx, "startup", "status", "initializing tracing support")

	traceProvider, teardown, err := otel.InitTracing(log, otel.Config{
		ServiceName: cfg.Tempo.ServiceName,
		Host:        cfg.Tempo.Host,
		ExcludedRoutes: map[string]struct{}{
			"/v1/liveness":  {},
			"/v1/readiness": {},
		},
		Probability: cfg.Tempo.Probability,
		Enabled:     cfg.Tempo.Enabled,
	})
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}

	defer teardown(context.Background())

	tracer := traceProvider.Tracer(cfg.Tempo.ServiceName)

	// -------------------------------------------------------------------------
	// Business Domain Support

	log.Info(ctx, "startup", "status", "initializing business domains")

	tenantBus := tenantbus.NewCore(log, tenantcache.NewStore(log, tenantdb.NewStore(log, db), cfg.Engine.CacheTTL))
	quotaBus := quotabus.NewCore(log, quotadb.NewStore(log, db))
	autoBus := automationbus.NewCore(log, automationdb.NewStore(log, db))
	leadBus := leadbus.NewCore(log, leaddb.NewStore(log, db))
	templateBus := templatebus.NewCore(log, templatedb.NewStore(log, db))

	registry := delivery.NewRegistry(defaultProvider,
		sendgrid.New(cfg.Engine.VendorTimeout),
		brevo.New(cfg.Engine.VendorTimeout),
		smtp.New(cfg.Engine.VendorTimeout),
	)

	coordinator := engine.New(engine.Config{
		Log:         log,
		DB:          sqldb.NewBeginner(db),
		TenantBus:   tenantBus,
		QuotaBus:    quotaBus,
		AutoBus:     autoBus,
		LeadBus:     leadBus,
		TemplateBus: templateBus,
		Registry:    registry,
		Workers:     cfg.Engine.Workers,
		SendTimeout: cfg.Engine.SendTimeout,
	})

	// -------------------------------------------------------------------------
	// Scheduled Run Support

	log.Info(ctx, "startup", "status", "initializing engine schedule", "schedule", cfg.Engine.Schedule)

	sched := cron.New()

	if _, err := sched.AddFunc(cfg.Engine.Schedule, func() {
		if _, err := coordinator.RunOnce(context.Background()); err != nil {
			log.Error(ctx, "engine scheduled run", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("scheduling engine run: %w", err)
	}

	sched.Start()

	// -------------------------------------------------------------------------
	// Start API Service

	log.Info(ctx, "startup", "status", "initializing V1 API support")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	cfgMux := mux.Config{
		Build:  cfg.Version.Build,
		Log:    log,
		DB:     db,
		Tracer: tracer,
		BusConfig: mux.BusConfig{
			TenantBus:   tenantBus,
			QuotaBus:    quotaBus,
			AutoBus:     autoBus,
			LeadBus:     leadBus,
			TemplateBus: templateBus,
		},
		Coordinator: coordinator,
	}

	webAPI := mux.WebAPI(cfgMux,
		all.Routes(),
		mux.WithCORS(cfg.Web.CORSAllowedOrigins),
	)

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      webAPI,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     logger.NewStdLogger(log, logger.LevelError),
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Info(ctx, "startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// -------------------------------------------------------------------------
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info(ctx, "shutdown", "status", "shutdown started", "signal", sig)
		defer log.Info(ctx, "shutdown", "status", "shutdown complete", "signal", sig)

		// Let an in-flight scheduled run finish so its batch commits whole.
		<-sched.Stop().Done()

		ctx, cancel := context.WithTimeout(ctx, cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

func sanitizeConfig(cfg Config) string {
	cfg.DB.Password = "[MASKED]"

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Sprintf("%+v", cfg)
	}
	return string(data)
}
