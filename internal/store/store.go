//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_store.go -package=mocks

package store

import (
	"context"
	"time"
)

// User represents a registered user.
type User struct {
	ID           int64
	Email        string
	PasswordHash string // serialized credential, "salt:key"
	CreatedAt    time.Time
}

// Channel represents a named message stream.
type Channel struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// Message represents a persisted channel message.
type Message struct {
	ID          int64
	ChannelID   int64
	UserID      int64
	Content     string
	CreatedAt   time.Time
	AuthorEmail string // populated on reads
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user. Fails with ErrDuplicateUser if the email is taken.
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)

	// GetUserByEmail retrieves a user by normalized email. Returns ErrNotFound if absent.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// UserExistsByEmail checks whether a user with the given email exists.
	UserExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ChannelStore handles channel and subscription persistence.
type ChannelStore interface {
	// CreateChannel inserts a channel and returns it with ID and creation time assigned.
	// Fails with ErrDuplicateChannel if the name is taken.
	CreateChannel(ctx context.Context, ch *Channel) (*Channel, error)

	// GetChannelByName retrieves a channel by name. Returns ErrNotFound if absent.
	GetChannelByName(ctx context.Context, name string) (*Channel, error)

	// GetChannelByID retrieves a channel by ID. Returns ErrNotFound if absent.
	GetChannelByID(ctx context.Context, id int64) (*Channel, error)

	// ListChannels lists all channels ordered by name.
	ListChannels(ctx context.Context) ([]*Channel, error)

	// Subscribe subscribes a user to a channel. Subscribing twice is a no-op.
	Subscribe(ctx context.Context, userID, channelID int64) error

	// Unsubscribe removes a subscription. Removing a missing subscription is a no-op.
	Unsubscribe(ctx context.Context, userID, channelID int64) error

	// IsSubscribed checks if the user is subscribed to the channel.
	IsSubscribed(ctx context.Context, userID, channelID int64) (bool, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// CreateMessage persists a message, assigning its ID and creation time.
	CreateMessage(ctx context.Context, channelID, userID int64, content string) (*Message, error)

	// ListChannelMessages lists messages of a channel, newest first.
	ListChannelMessages(ctx context.Context, channelID int64) ([]*Message, error)

	// ListUserFeed lists messages of every channel the user is subscribed to, newest first.
	ListUserFeed(ctx context.Context, userID int64) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	ChannelStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
