package channels

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirefeed/internal/common"
	"github.com/vovakirdan/wirefeed/internal/store"
)

// Service provides channel lookup and subscription management.
type Service struct {
	store store.ChannelStore
	log   *zerolog.Logger
}

// New creates a new channel service.
func New(channelStore store.ChannelStore, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		store: channelStore,
		log:   logger,
	}
}

// EnsureDefault returns the named channel, creating it when missing.
func (s *Service) EnsureDefault(ctx context.Context, name, description string) (*store.Channel, error) {
	ch, err := s.FindByName(ctx, name)
	if err == nil {
		return ch, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	ch, err = s.Create(ctx, name, description)
	if errors.Is(err, store.ErrDuplicateChannel) {
		// Lost a race with another process.
		return s.FindByName(ctx, name)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("channel_id", ch.ID).Str("name", ch.Name).Msg("default channel created")
	return ch, nil
}

// Create creates a channel. Name and description are trimmed.
func (s *Service) Create(ctx context.Context, name, description string) (*store.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.InvalidInput("channel name cannot be empty")
	}

	ch, err := s.store.CreateChannel(ctx, &store.Channel{
		Name:        name,
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().Int64("channel_id", ch.ID).Str("name", ch.Name).Msg("channel created")
	return ch, nil
}

// List returns all channels ordered by name.
func (s *Service) List(ctx context.Context) ([]*store.Channel, error) {
	return s.store.ListChannels(ctx)
}

// FindByName looks a channel up by its trimmed name.
func (s *Service) FindByName(ctx context.Context, name string) (*store.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, store.ErrNotFound
	}
	return s.store.GetChannelByName(ctx, name)
}

// FindByID looks a channel up by id.
func (s *Service) FindByID(ctx context.Context, id int64) (*store.Channel, error) {
	return s.store.GetChannelByID(ctx, id)
}

// Subscribe subscribes a user to a channel. Repeated calls are no-ops.
func (s *Service) Subscribe(ctx context.Context, userID, channelID int64) error {
	if err := s.store.Subscribe(ctx, userID, channelID); err != nil {
		return err
	}
	s.log.Debug().Int64("user_id", userID).Int64("channel_id", channelID).Msg("subscribed")
	return nil
}

// Unsubscribe removes a subscription. Repeated calls are no-ops.
func (s *Service) Unsubscribe(ctx context.Context, userID, channelID int64) error {
	if err := s.store.Unsubscribe(ctx, userID, channelID); err != nil {
		return err
	}
	s.log.Debug().Int64("user_id", userID).Int64("channel_id", channelID).Msg("unsubscribed")
	return nil
}

// IsSubscribed reports whether the user follows the channel.
func (s *Service) IsSubscribed(ctx context.Context, userID, channelID int64) (bool, error) {
	return s.store.IsSubscribed(ctx, userID, channelID)
}
