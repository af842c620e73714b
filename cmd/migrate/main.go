package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/gosimple/slug"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lokasoft/racktables-to-netbox/internal/config"
	"github.com/lokasoft/racktables-to-netbox/internal/migration"
	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
	"github.com/lokasoft/racktables-to-netbox/internal/racktables"
	serviceErrs "github.com/lokasoft/racktables-to-netbox/pkg/errors"
	"github.com/lokasoft/racktables-to-netbox/pkg/scheduler"
)

type cliOptions struct {
	configPath       string
	site             string
	tenant           string
	basicOnly        bool
	extendedOnly     bool
	skipCustomFields bool
}

func main() {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate a Racktables database into NetBox",
		Long: `migrate reads a Racktables MySQL database and recreates its racks,
devices, interfaces, IP space, VLANs, virtual machines and extended data
through the NetBox REST API. The run is idempotent: records that already
exist on the target are detected and skipped, so it can be re-run after
partial failures.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to the YAML configuration file")
	flags.StringVar(&opts.site, "site", "", "restrict the migration to one site and associate created objects with it")
	flags.StringVar(&opts.tenant, "tenant", "", "associate created objects with this tenant, created when missing")
	flags.BoolVar(&opts.basicOnly, "basic-only", false, "run only the core DCIM/IPAM stages")
	flags.BoolVar(&opts.extendedOnly, "extended-only", false, "run only the extended data stages")
	flags.BoolVar(&opts.skipCustomFields, "skip-custom-fields", false, "do not provision custom field definitions")
	root.MarkFlagsMutuallyExclusive("basic-only", "extended-only")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		color.Red("migration failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *cliOptions) error {
	settings, err := config.Load(opts.configPath)
	if err != nil {
		return serviceErrs.NewSetupError("configuration: %v", err)
	}
	if opts.site != "" {
		settings.TargetSite = opts.site
	}
	if opts.tenant != "" {
		settings.TargetTenant = opts.tenant
	}

	if err := setupLogging(settings.LogLevel); err != nil {
		return err
	}
	defer zap.S().Sync() //nolint:errcheck

	db, err := racktables.Open(ctx, settings.MySQL.DSN())
	if err != nil {
		return serviceErrs.NewSetupError("source database: %v", err)
	}
	defer db.Close()

	target := netbox.NewClient(settings.NetBox.BaseURL(), settings.NetBox.Token)
	if err := target.Ping(ctx); err != nil {
		return serviceErrs.NewSetupError("target api: %v", err)
	}

	if !opts.skipCustomFields {
		if err := migration.ProvisionCustomFields(ctx, target); err != nil {
			return serviceErrs.NewSetupError("custom fields: %v", err)
		}
	}

	sink, err := migration.NewErrorSink(settings.ErrorLogPath)
	if err != nil {
		return serviceErrs.NewSetupError("error log: %v", err)
	}
	defer sink.Close()

	prefetch := scheduler.NewScheduler(settings.PrefetchWorkers)
	defer prefetch.Close()

	mc := &migration.Context{
		Settings:      settings,
		Source:        racktables.NewRepository(db),
		Prober:        racktables.NewProber(db),
		Target:        target,
		Resolver:      migration.NewEntityResolver(target),
		XRef:          migration.NewCrossReferenceCache(),
		Errors:        sink,
		Prefetch:      prefetch,
		VLANByNetwork: make(map[int]migration.VLANRef),
		AllocatedIPs:  make(map[string]struct{}),
	}
	if settings.StoreData {
		if err := mc.XRef.Load(settings.SnapshotDir); err != nil {
			zap.S().Warnw("failed to load cross-reference snapshot", "error", err)
		}
		if mc.XRef.Len(migration.XrefPort) == 0 {
			if err := migration.RestorePortMappings(ctx, mc); err != nil {
				zap.S().Warnw("failed to rebuild port cross-references", "error", err)
			}
		}
	}

	if err := resolveAssociations(ctx, mc); err != nil {
		return err
	}

	summary, err := migration.NewPipeline(opts.basicOnly, opts.extendedOnly).Run(ctx, mc)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		color.Yellow("%d records failed, see %s", summary.Failed, settings.ErrorLogPath)
	}
	return nil
}

// resolveAssociations ensures the target site and tenant named on the
// command line exist before any stage runs. Not being able to create
// them is a setup failure, not a record failure.
func resolveAssociations(ctx context.Context, mc *migration.Context) error {
	if mc.Settings.TargetSite != "" {
		id, err := mc.Resolver.Resolve(ctx, migration.KindSite, mc.Settings.TargetSite)
		if err != nil {
			return serviceErrs.NewSetupError("target site %q: %v", mc.Settings.TargetSite, err)
		}
		mc.SiteID = id
	}

	if mc.Settings.TargetTenant != "" {
		name := mc.Settings.TargetTenant
		tenants, err := mc.Target.Tenancy().Tenants(ctx, url.Values{"name": {name}})
		if err != nil {
			return serviceErrs.NewSetupError("target tenant %q: %v", name, err)
		}
		if len(tenants) > 0 {
			mc.TenantID = tenants[0].ID
			return nil
		}
		tenant, err := mc.Target.Tenancy().CreateTenant(ctx, netbox.TenantParams{Name: name, Slug: slug.Make(name)})
		if err != nil {
			return serviceErrs.NewSetupError("target tenant %q: %v", name, err)
		}
		mc.TenantID = tenant.ID
	}
	return nil
}

func setupLogging(level string) error {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return serviceErrs.NewSetupError("log level %q: %v", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return nil
}
