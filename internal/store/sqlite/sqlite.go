package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/wirefeed/internal/store"
)

//go:embed schema.sql
var schema string

const dsnParams = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file, or ":memory:".
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, Migrate)
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a custom schema or seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps ":memory:" alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Migrate applies the embedded schema. It is safe to run on an existing database.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func now() time.Time {
	return time.Now().UTC()
}

// ==== UserStore implementation ====

// CreateUser creates a new user with a serialized credential.
func (s *SQLiteStore) CreateUser(ctx context.Context, email, passwordHash string) (*store.User, error) {
	query := `
		INSERT INTO users (email, password_hash, created_at)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, email, passwordHash, now())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicateUser
		}
		return nil, store.Wrap("insert user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, store.Wrap("get last insert id", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

// UserExistsByEmail checks whether a user with the email exists.
func (s *SQLiteStore) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE email = ?`, email).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, store.Wrap("query user exists", err)
	}
	return true, nil
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*store.User, error) {
	var user store.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %w", store.ErrNotFound)
		}
		return nil, store.Wrap("query user", err)
	}
	return &user, nil
}

// ==== ChannelStore implementation ====

// CreateChannel creates a new channel.
func (s *SQLiteStore) CreateChannel(ctx context.Context, ch *store.Channel) (*store.Channel, error) {
	query := `
		INSERT INTO channels (name, description, created_at)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, ch.Name, ch.Description, now())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicateChannel
		}
		return nil, store.Wrap("insert channel", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, store.Wrap("get last insert id", err)
	}

	return s.GetChannelByID(ctx, id)
}

// GetChannelByID retrieves a channel by ID.
func (s *SQLiteStore) GetChannelByID(ctx context.Context, id int64) (*store.Channel, error) {
	query := `
		SELECT id, name, description, created_at
		FROM channels
		WHERE id = ?
	`
	return s.scanChannel(s.db.QueryRowContext(ctx, query, id))
}

// GetChannelByName retrieves a channel by name.
func (s *SQLiteStore) GetChannelByName(ctx context.Context, name string) (*store.Channel, error) {
	query := `
		SELECT id, name, description, created_at
		FROM channels
		WHERE name = ?
	`
	return s.scanChannel(s.db.QueryRowContext(ctx, query, name))
}

func (s *SQLiteStore) scanChannel(row *sql.Row) (*store.Channel, error) {
	var ch store.Channel
	err := row.Scan(&ch.ID, &ch.Name, &ch.Description, &ch.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("channel %w", store.ErrNotFound)
		}
		return nil, store.Wrap("query channel", err)
	}
	return &ch, nil
}

// ListChannels lists all channels ordered by name.
func (s *SQLiteStore) ListChannels(ctx context.Context) ([]*store.Channel, error) {
	query := `
		SELECT id, name, description, created_at
		FROM channels
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, store.Wrap("query channels", err)
	}
	defer rows.Close()

	var channels []*store.Channel
	for rows.Next() {
		var ch store.Channel
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.Description, &ch.CreatedAt); err != nil {
			return nil, store.Wrap("scan channel", err)
		}
		channels = append(channels, &ch)
	}

	return channels, store.Wrap("iterate channels", rows.Err())
}

// Subscribe adds a subscription.
func (s *SQLiteStore) Subscribe(ctx context.Context, userID, channelID int64) error {
	query := `
		INSERT OR IGNORE INTO subscriptions (user_id, channel_id, subscribed_at)
		VALUES (?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, userID, channelID, now()); err != nil {
		return store.Wrap("insert subscription", err)
	}
	return nil
}

// Unsubscribe removes a subscription.
func (s *SQLiteStore) Unsubscribe(ctx context.Context, userID, channelID int64) error {
	query := `
		DELETE FROM subscriptions
		WHERE user_id = ? AND channel_id = ?
	`
	if _, err := s.db.ExecContext(ctx, query, userID, channelID); err != nil {
		return store.Wrap("delete subscription", err)
	}
	return nil
}

// IsSubscribed checks if the user is subscribed to the channel.
func (s *SQLiteStore) IsSubscribed(ctx context.Context, userID, channelID int64) (bool, error) {
	query := `
		SELECT 1 FROM subscriptions
		WHERE user_id = ? AND channel_id = ?
	`
	var exists int
	err := s.db.QueryRowContext(ctx, query, userID, channelID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, store.Wrap("query subscription", err)
	}
	return true, nil
}

// ==== MessageStore implementation ====

const messageColumns = `m.id, m.channel_id, m.user_id, m.content, m.created_at, u.email`

// CreateMessage persists a message and returns it with the author email populated.
// The insert and the read-back share one transaction.
func (s *SQLiteStore) CreateMessage(ctx context.Context, channelID, userID int64, content string) (*store.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, store.Wrap("begin message tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO messages (channel_id, user_id, content, created_at)
		VALUES (?, ?, ?, ?)
	`, channelID, userID, content, now())
	if err != nil {
		return nil, store.Wrap("insert message", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, store.Wrap("get last insert id", err)
	}

	row := tx.QueryRowContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages m
		JOIN users u ON m.user_id = u.id
		WHERE m.id = ?
	`, id)

	var msg store.Message
	if err := row.Scan(&msg.ID, &msg.ChannelID, &msg.UserID, &msg.Content, &msg.CreatedAt, &msg.AuthorEmail); err != nil {
		return nil, store.Wrap("query created message", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, store.Wrap("commit message tx", err)
	}
	return &msg, nil
}

// ListChannelMessages lists the messages of a channel, newest first.
func (s *SQLiteStore) ListChannelMessages(ctx context.Context, channelID int64) ([]*store.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON m.user_id = u.id
		WHERE m.channel_id = ?
		ORDER BY m.id DESC
	`
	return s.queryMessages(ctx, "query channel messages", query, channelID)
}

// ListUserFeed lists messages across all channels the user is subscribed to, newest first.
func (s *SQLiteStore) ListUserFeed(ctx context.Context, userID int64) ([]*store.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON m.user_id = u.id
		JOIN subscriptions s ON m.channel_id = s.channel_id
		WHERE s.user_id = ?
		ORDER BY m.id DESC
	`
	return s.queryMessages(ctx, "query user feed", query, userID)
}

func (s *SQLiteStore) queryMessages(ctx context.Context, op, query string, args ...any) ([]*store.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.Wrap(op, err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(&msg.ID, &msg.ChannelID, &msg.UserID, &msg.Content, &msg.CreatedAt, &msg.AuthorEmail); err != nil {
			return nil, store.Wrap("scan message", err)
		}
		messages = append(messages, &msg)
	}

	return messages, store.Wrap(op, rows.Err())
}
