package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/vango-dev/inkpad/internal/config"
	"github.com/vango-dev/inkpad/internal/errors"
	"github.com/vango-dev/inkpad/pkg/localization"
	"github.com/vango-dev/inkpad/pkg/reactive"
	"github.com/vango-dev/inkpad/pkg/settings"
	"github.com/vango-dev/inkpad/pkg/store"
	"github.com/vango-dev/inkpad/pkg/syncserver"
	"github.com/vango-dev/inkpad/pkg/telemetry"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the settings server",
		Long: `Run the settings server.

Without --config the server looks for inkpad.json in the working
directory and falls back to defaults when none exists.

Examples:
  inkpad serve
  inkpad serve --port=8080
  inkpad serve --config=/etc/inkpad/inkpad.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to inkpad.json")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from inkpad.json)")

	return cmd
}

// loadConfig reads path, or ./inkpad.json when path is empty. A missing
// ./inkpad.json yields the defaults; a missing explicit path is an error.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.Load(".")
	if errors.HasCode(err, "E302") {
		return config.Default(), nil
	}
	return cfg, err
}

func runServe(ctx context.Context, cfg *config.Config) error {
	level, err := cfg.Level()
	if err != nil {
		return errors.New("E301").WithDetail("logLevel: " + err.Error())
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	reactive.SetLogger(logger.With("component", "reactive"))

	metrics := telemetry.New(telemetry.WithNamespace("inkpad"))
	reactive.SetHooks(metrics)
	defer reactive.SetHooks(nil)

	st, err := buildStore(cfg.Store)
	if err != nil {
		return err
	}

	editor := settings.NewEditor(localization.For(cfg.Locale))

	srv := syncserver.New(editor, store.Traced(st), metrics, &syncserver.Config{
		Address:         cfg.Address(),
		Document:        cfg.Document,
		ShutdownTimeout: cfg.ShutdownTimeout(),
		Logger:          logger,
	})

	logger.Info("inkpad starting",
		"version", version,
		"address", cfg.Address(),
		"store", cfg.Store.Kind,
		"locale", cfg.Locale)

	return srv.Run(ctx)
}

func buildStore(sc config.StoreConfig) (store.Store, error) {
	switch sc.Kind {
	case config.StoreS3:
		opts := s3.Options{
			Region:       sc.Region,
			UsePathStyle: sc.PathStyle,
			Credentials:  aws.NewCredentialsCache(envCredentials()),
		}
		if sc.Endpoint != "" {
			opts.BaseEndpoint = aws.String(sc.Endpoint)
		}
		return store.NewS3Store(s3.New(opts), sc.Bucket, sc.Prefix), nil
	case config.StoreMemory, "":
		return store.NewMemoryStore(), nil
	default:
		return nil, errors.New("E301").
			WithDetail("unknown store kind " + strconv.Quote(sc.Kind))
	}
}

// envCredentials reads the standard AWS_* variables.
func envCredentials() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		creds := aws.Credentials{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "inkpad-env",
		}
		if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
			return aws.Credentials{}, errors.New("E202").
				WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set for the s3 store")
		}
		return creds, nil
	})
}
