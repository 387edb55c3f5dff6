// This program performs administrative tasks for the automation engine:
// applying the database schema, seeding sample data, and provisioning
// tenants from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/tenantbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/tenantbus/stores/tenantdb"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/migrate"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/sqldb"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/plan"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
	"github.com/kenxsak/omniflow-buisness-sub001/foundation/logger"
)

type Config struct {
	DB struct {
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:"postgres"`
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Name         string `envconfig:"DB_NAME" default:"automation"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"0"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"0"`
		DisableTLS   bool   `envconfig:"DB_DISABLE_TLS" default:"true"`
	}
}

func main() {
	log := logger.New(os.Stdout, logger.LevelInfo, "ADMIN-TOOL", nil)
	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}

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

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: migrate, seed, create-tenant")
		return nil
	}

	switch os.Args[1] {
	case "migrate":
		return runMigrate(ctx, db)
	case "seed":
		return runSeed(ctx, db)
	case "create-tenant":
		return runCreateTenant(ctx, log, db, os.Args[2:])
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

func runMigrate(ctx context.Context, db *sqlx.DB) error {
	if err := migrate.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	fmt.Println("migrations complete")
	return nil
}

func runSeed(ctx context.Context, db *sqlx.DB) error {
	if err := migrate.Seed(ctx, db); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	fmt.Println("seed data complete")
	return nil
}

func runCreateTenant(ctx context.Context, log *logger.Logger, db *sqlx.DB, args []string) error {
	cmd := flag.NewFlagSet("create-tenant", flag.ExitOnError)
	nameStr := cmd.String("name", "", "Tenant name (Required)")
	slugStr := cmd.String("slug", "", "Tenant slug (Required)")
	planStr := cmd.String("plan", "FREE", "Plan (FREE, STARTER, PROFESSIONAL, ENTERPRISE)")
	providerStr := cmd.String("provider", "", "Default provider (SENDGRID, BREVO, SMTP)")
	cmd.Parse(args)

	if *nameStr == "" || *slugStr == "" {
		cmd.PrintDefaults()
		return fmt.Errorf("missing required fields")
	}

	pln, err := plan.Parse(*planStr)
	if err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}

	var prv provider.Provider
	if *providerStr != "" {
		prv, err = provider.Parse(*providerStr)
		if err != nil {
			return fmt.Errorf("invalid provider: %w", err)
		}
	}

	tenantBus := tenantbus.NewCore(log, tenantdb.NewStore(log, db))

	tnt, err := tenantBus.Create(ctx, tenantbus.NewTenant{
		Name:            *nameStr,
		Slug:            *slugStr,
		Plan:            pln,
		DefaultProvider: prv,
	})
	if err != nil {
		return fmt.Errorf("create tenant failed: %w", err)
	}

	fmt.Printf("\nSUCCESS: Tenant created!\nID: %s\nSlug: %s\nPlan: %s\n", tnt.ID, tnt.Slug, tnt.Plan)
	return nil
}

//go run api/tooling/admin/main.go migrate
//go run api/tooling/admin/main.go seed
//go run api/tooling/admin/main.go create-tenant -name "Acme Fitness" -slug "acme-fitness" -plan "PROFESSIONAL" -provider "SENDGRID"
