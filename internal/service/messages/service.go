package messages

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirefeed/internal/common"
	"github.com/vovakirdan/wirefeed/internal/core"
	"github.com/vovakirdan/wirefeed/internal/store"
)

// Publisher fans persisted messages out to live observers.
// *core.Hub implements it.
type Publisher interface {
	Attach(o core.Observer)
	Detach(o core.Observer)
	Publish(msg store.Message)
	Count() int
}

// Service validates, persists and distributes channel messages.
type Service struct {
	store store.MessageStore
	hub   Publisher
	log   *zerolog.Logger
}

// New creates a new message service.
func New(messageStore store.MessageStore, hub Publisher, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		store: messageStore,
		hub:   hub,
		log:   logger,
	}
}

// Validate checks message content and returns it trimmed.
// A nil content is treated as missing.
func Validate(content *string) (string, error) {
	if content == nil {
		return "", common.InvalidInput("message content cannot be null")
	}

	trimmed := strings.TrimSpace(*content)
	if trimmed == "" {
		return "", common.InvalidInput("message content cannot be empty")
	}

	if n := utf8.RuneCountInString(trimmed); n > common.MaxMessageLength {
		return "", &common.MessageTooLongError{Actual: n, Max: common.MaxMessageLength}
	}
	return trimmed, nil
}

// Post validates content, persists it and publishes the stored message.
// Storage errors are returned unchanged and nothing is published.
// Delivery failures never fail Post.
func (s *Service) Post(ctx context.Context, channelID, userID int64, content *string) (*store.Message, error) {
	text, err := Validate(content)
	if err != nil {
		return nil, err
	}

	msg, err := s.store.CreateMessage(ctx, channelID, userID, text)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("message_id", msg.ID).
		Int64("channel_id", msg.ChannelID).
		Int64("user_id", msg.UserID).
		Msg("message posted")

	s.hub.Publish(*msg)
	return msg, nil
}

// MessagesForChannel returns the channel history, newest first.
func (s *Service) MessagesForChannel(ctx context.Context, channelID int64) ([]*store.Message, error) {
	return s.store.ListChannelMessages(ctx, channelID)
}

// MessagesForSubscribedChannels returns messages of every channel the user follows, newest first.
func (s *Service) MessagesForSubscribedChannels(ctx context.Context, userID int64) ([]*store.Message, error) {
	return s.store.ListUserFeed(ctx, userID)
}

// Attach registers an observer for newly posted messages.
func (s *Service) Attach(o core.Observer) {
	s.hub.Attach(o)
}

// Detach unregisters an observer.
func (s *Service) Detach(o core.Observer) {
	s.hub.Detach(o)
}

// SubscriberCount returns the number of attached observers.
func (s *Service) SubscriberCount() int {
	return s.hub.Count()
}
