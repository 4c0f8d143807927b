package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harun/toolgate/internal/config"
	"github.com/harun/toolgate/internal/logger"
	"github.com/harun/toolgate/internal/metrics"
	"github.com/harun/toolgate/internal/tracing"
	"github.com/harun/toolgate/pkg/auth"
	"github.com/harun/toolgate/pkg/coretools"
	"github.com/harun/toolgate/pkg/dispatch"
	"github.com/harun/toolgate/pkg/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tool gateway HTTP server",
	Long: `Start the tool gateway in the foreground. The server answers until it
receives SIGINT or SIGTERM, then stops accepting calls and waits for the
in-flight ones to finish.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides server.host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	if err := cfg.Validate(coretools.Names()); err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   cfg.Logging.Console,
		Pretty:    cfg.Logging.Pretty,
		Redaction: cfg.Logging.Redaction,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Close()

	if cfg.Tracing.Enabled {
		if err := tracing.InitOpenTelemetry(context.Background(), tracing.Config{
			ServiceName: cfg.Tracing.ServiceName,
			SampleRatio: cfg.Tracing.SampleRatio,
			Exporter:    cfg.Tracing.Exporter,
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    cfg.Tracing.Insecure,
		}); err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), config.Seconds(5))
			defer cancel()
			_ = tracing.ShutdownOpenTelemetry(ctx)
		}()
	}

	srv, err := newGateway(cfg, log.Component("gateway"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Seconds(cfg.Server.ShutdownTimeout))
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// newGateway wires the credential store, catalog, dispatcher and HTTP server
// from a validated config
func newGateway(cfg *config.Config, log zerolog.Logger) (*server.Server, error) {
	store, err := auth.NewStore(cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	if store.Len() == 0 {
		log.Warn().Msg("No API keys configured; tools that require auth will reject every call")
	}

	opts := coretools.Options{
		N8nWebhookURL: cfg.N8n.WebhookURL,
		N8nTimeout:    config.Seconds(cfg.N8n.Timeout),
		NotionBaseURL: cfg.Notion.BaseURL,
		NotionVersion: cfg.Notion.Version,
		NotionAPIKey:  cfg.Notion.APIKey,
		NotionTimeout: config.Seconds(cfg.Notion.Timeout),
	}

	var (
		m           *metrics.Metrics
		observer    dispatch.Observer
		metricsPath string
	)
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics()
		opts.Recorder = m
		observer = m
		metricsPath = cfg.Metrics.Path
	}

	cat, err := coretools.NewCatalog(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build tool catalog: %w", err)
	}

	dispatcher, err := dispatch.New(cat, auth.NewAuthorizer(store), observer, log)
	if err != nil {
		return nil, err
	}

	return server.NewServer(server.Options{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ServiceName:     cfg.Service.Name,
		Version:         cfg.Service.Version,
		Description:     cfg.Service.Description,
		ShutdownTimeout: config.Seconds(cfg.Server.ShutdownTimeout),
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		MetricsPath:     metricsPath,
	}, cat, dispatcher, m, log)
}

// loadConfig loads the config file and applies the global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}
