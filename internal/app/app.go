package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirefeed/internal/auth"
	"github.com/vovakirdan/wirefeed/internal/config"
	"github.com/vovakirdan/wirefeed/internal/core"
	"github.com/vovakirdan/wirefeed/internal/service/channels"
	"github.com/vovakirdan/wirefeed/internal/service/messages"
	"github.com/vovakirdan/wirefeed/internal/store"
	"github.com/vovakirdan/wirefeed/internal/store/sqlite"
)

// App wires together storage, services and the observer registry.
// Each App owns exactly one registry.
type App struct {
	Auth     *auth.Service
	Channels *channels.Service
	Messages *messages.Service

	// DefaultChannel is guaranteed to exist once New returns.
	DefaultChannel *store.Channel

	hub   *core.Hub
	store store.Store
	log   *zerolog.Logger
}

// New opens the store described by cfg and constructs the services.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	a, err := NewWithStore(ctx, cfg, st, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return a, nil
}

// NewWithStore constructs the services on top of an already opened store.
// On success the App takes ownership of st.
func NewWithStore(ctx context.Context, cfg *config.Config, st store.Store, logger *zerolog.Logger) (*App, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	hubLog := logger.With().Str("component", "hub").Logger()
	hub := core.NewHub(&hubLog, core.Options{
		MaxConcurrent:   cfg.Fanout.MaxConcurrent,
		DeliveryTimeout: cfg.Fanout.DeliveryTimeout,
	})

	a := &App{
		Auth:     auth.NewService(st, logger),
		Channels: channels.New(st, logger),
		Messages: messages.New(st, hub, logger),
		hub:      hub,
		store:    st,
		log:      logger,
	}

	def, err := a.Channels.EnsureDefault(ctx, cfg.DefaultChannel.Name, cfg.DefaultChannel.Description)
	if err != nil {
		return nil, fmt.Errorf("ensure default channel: %w", err)
	}
	a.DefaultChannel = def

	return a, nil
}

// Close detaches every observer and closes the store.
func (a *App) Close() error {
	a.hub.Clear()

	if a.store == nil {
		return nil
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close store")
		return err
	}
	a.log.Info().Msg("store closed")
	return nil
}
