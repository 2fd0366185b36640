package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/ecotrack/internal/config"
	"github.com/rshade/ecotrack/internal/emission"
	"github.com/rshade/ecotrack/internal/engine"
	"github.com/rshade/ecotrack/internal/greenops"
	"github.com/rshade/ecotrack/internal/logging"
	"github.com/rshade/ecotrack/internal/store"
	"github.com/rshade/ecotrack/internal/store/file"
	"github.com/rshade/ecotrack/internal/store/memory"
	"github.com/rshade/ecotrack/internal/store/postgres"
)

// session is the per-invocation wiring of config, store and tracker.
type session struct {
	cfg     config.Config
	user    string
	format  string
	store   store.Store
	tracker *engine.Tracker
}

// resolveConfig returns a copy of the global config with the persistent
// flags applied, validated.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := *config.GetGlobalConfig()

	if v, _ := cmd.Flags().GetString("output"); v != "" {
		cfg.Output.DefaultFormat = v
	}
	if v, _ := cmd.Flags().GetString("user"); v != "" {
		cfg.User.ID = v
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.Store.Driver = v
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// open builds the session for cmd. The caller must Close it.
func (s *cliState) open(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}

	if err := greenops.SetLocale(cfg.Locale); err != nil {
		log.Warn().Ctx(ctx).Err(err).Str("locale", cfg.Locale).Msg("keeping default number format")
	}

	var catalog *emission.Catalog
	if cfg.Catalog.File != "" {
		catalog, err = emission.Load(cfg.Catalog.File)
		if err != nil {
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
		log.Debug().Ctx(ctx).
			Str("catalog_file", cfg.Catalog.File).
			Str("catalog_version", catalog.Version()).
			Msg("custom catalog loaded")
	}

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	log.Debug().Ctx(ctx).Str("driver", cfg.Store.Driver).Str("user_id", cfg.User.ID).Msg("store opened")

	return &session{
		cfg:     cfg,
		user:    cfg.User.ID,
		format:  cfg.Output.DefaultFormat,
		store:   st,
		tracker: engine.NewTracker(emission.NewCalculator(catalog), st, engine.WithClock(s.now)),
	}, nil
}

// Close releases the store.
func (s *session) Close() error {
	return s.store.Close()
}

// jsonOutput reports whether results are rendered as JSON.
func (s *session) jsonOutput() bool {
	return s.format == config.FormatJSON
}

// openStore opens the store selected by cfg.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case store.DriverMemory:
		return memory.New(), nil
	case store.DriverFile:
		st, err := file.New(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("opening file store: %w", err)
		}
		return st, nil
	case store.DriverPostgres:
		st, err := postgres.Open(ctx, cfg.DSN, cfg.Table)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownDriver, cfg.Driver)
	}
}

// withSession opens a session, runs fn and closes the session.
func (s *cliState) withSession(cmd *cobra.Command, fn func(*session) error) (err error) {
	sess, err := s.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing store: %w", cerr)
		}
	}()
	return fn(sess)
}
