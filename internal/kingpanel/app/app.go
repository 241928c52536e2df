package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/aussiebroadwan/kingpanel/pkg/apiclient"
	"github.com/aussiebroadwan/kingpanel/pkg/credstore"
	redisstore "github.com/aussiebroadwan/kingpanel/pkg/credstore/redis"
	"github.com/aussiebroadwan/kingpanel/pkg/credstore/sqlite"
	"github.com/aussiebroadwan/kingpanel/pkg/cryptox"
	"github.com/aussiebroadwan/kingpanel/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the credential store and API client behind the CLI
// commands.
type Application struct {
	cfg    Config
	logger *slog.Logger
	stdout io.Writer

	store  credstore.Store
	client *apiclient.Client
}

// New builds an Application. Command output goes to stdout, logs to stderr.
func New(ctx context.Context, cfg Config, stdout, stderr io.Writer) (*Application, error) {
	if stdout == nil {
		stdout = os.Stdout
	}

	app := &Application{
		cfg:    cfg,
		stdout: stdout,
		logger: slogx.New(slogx.Config{
			Service: "kingpanel",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  stderr,
		}),
	}

	if err := app.initStore(ctx); err != nil {
		return nil, err
	}
	app.initClient()

	return app, nil
}

// Logger returns the application logger.
func (app *Application) Logger() *slog.Logger {
	return app.logger
}

// Client returns the API client.
func (app *Application) Client() *apiclient.Client {
	return app.client
}

// Close releases the credential store.
func (app *Application) Close() error {
	if err := app.store.Close(); err != nil {
		return fmt.Errorf("failed to close credential store: %w", err)
	}
	return nil
}

func (app *Application) initStore(ctx context.Context) error {
	switch app.cfg.Store.Driver {
	case StoreMemory:
		app.store = credstore.NewMemoryStore()

	case StoreRedis:
		store, err := redisstore.New(ctx, redisstore.Options{
			Addr:     app.cfg.Redis.Addr,
			Password: app.cfg.Redis.Password,
			DB:       app.cfg.Redis.DB,
			Prefix:   app.cfg.Redis.Prefix,
		})
		if err != nil {
			return fmt.Errorf("failed to connect credential store: %w", err)
		}
		app.store = store

	case StoreSQLite:
		sealer, err := app.sealer()
		if err != nil {
			return err
		}
		store, err := sqlite.Open(app.cfg.Store.SQLiteFile, sealer)
		if err != nil {
			return fmt.Errorf("failed to open credential store: %w", err)
		}
		app.store = store

	default:
		return fmt.Errorf("unknown store driver %q", app.cfg.Store.Driver)
	}

	app.logger.Debug("credential store ready", "driver", app.cfg.Store.Driver)
	return nil
}

func (app *Application) sealer() (*cryptox.Sealer, error) {
	secret := []byte(app.cfg.Store.MasterKey)
	if len(secret) == 0 {
		key, err := cryptox.LoadOrGenerateMasterKey(app.cfg.Store.MasterKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load master key: %w", err)
		}
		secret = key
	}

	sealer, err := cryptox.NewSealer(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sealer: %w", err)
	}
	return sealer, nil
}

func (app *Application) initClient() {
	app.client = apiclient.New(app.cfg.BaseURL, apiclient.Options{
		HTTPClient: &http.Client{
			Timeout:   app.cfg.HTTPTimeout,
			Transport: &slogx.Transport{},
		},
		Store: app.store,
		Navigator: &apiclient.LogNavigator{
			Logger:  app.logger,
			BaseURL: app.cfg.PanelURL,
		},
		Logger:         app.logger,
		RefreshTimeout: app.cfg.RefreshTimeout,
		RateLimit:      app.cfg.RateLimit,
		RateBurst:      app.cfg.RateBurst,
	})
}
