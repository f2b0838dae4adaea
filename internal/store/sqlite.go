package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/domain"
)

// TimestampLayout is the on-disk timestamp format. It is fixed-width in UTC
// so lexical order of the TEXT columns equals chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// legacyLayout accepts naive ISO-8601 timestamps written by older deployments.
const legacyLayout = "2006-01-02T15:04:05.999999"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithClock overrides the clock used to stamp rows.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		s.now = now
	}
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string, opts ...Option) (*SQLiteStore, error) {
	inMemory := dsn == ":memory:" || strings.Contains(dsn, "mode=memory")

	db, err := sql.Open("sqlite3", withForeignKeys(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection so the schema does not disappear between calls.
	if inMemory {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// withForeignKeys turns on foreign-key enforcement for every pooled
// connection. A one-off PRAGMA only covers the connection it ran on.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=1"
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			last_session TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			conversation_id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			mood_rating INTEGER,
			notes TEXT,
			FOREIGN KEY (user_id) REFERENCES users (user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, timestamp)`,
		`CREATE TABLE IF NOT EXISTS messages (
			message_id INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation_id INTEGER NOT NULL,
			sender TEXT NOT NULL,
			content TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			FOREIGN KEY (conversation_id) REFERENCES conversations (conversation_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, timestamp)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// withTx runs fn in its own transaction. The transaction is committed when fn
// succeeds and rolled back on every other path.
func (s *SQLiteStore) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return storageErr(op, err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr(op, err)
	}
	return nil
}

// CreateUser inserts a user with created_at and last_session set to now.
func (s *SQLiteStore) CreateUser(ctx context.Context, userID, name string) (*domain.User, error) {
	now := s.stamp()
	user := &domain.User{UserID: userID, Name: name, CreatedAt: now, LastSession: now}
	err := s.withTx(ctx, "create user", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (user_id, name, created_at, last_session) VALUES (?, ?, ?, ?)`,
			userID, name, formatTime(now), formatTime(now))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	var user *domain.User
	err := s.withTx(ctx, "get user", func(tx *sql.Tx) error {
		var u domain.User
		var createdAt, lastSession string
		err := tx.QueryRowContext(ctx,
			`SELECT user_id, name, created_at, last_session FROM users WHERE user_id = ?`,
			userID).Scan(&u.UserID, &u.Name, &createdAt, &lastSession)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		if u.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		if u.LastSession, err = parseTime(lastSession); err != nil {
			return err
		}
		user = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUserSession sets last_session to now. It reports whether the user exists.
func (s *SQLiteStore) UpdateUserSession(ctx context.Context, userID string) (bool, error) {
	var affected bool
	err := s.withTx(ctx, "update user session", func(tx *sql.Tx) error {
		var err error
		affected, err = touchUser(ctx, tx, userID, s.stamp())
		return err
	})
	return affected, err
}

func touchUser(ctx context.Context, tx *sql.Tx, userID string, now time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE users SET last_session = ? WHERE user_id = ?`,
		formatTime(now), userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateConversation opens a conversation for the user and refreshes the
// user's last_session with the same timestamp.
func (s *SQLiteStore) CreateConversation(ctx context.Context, userID string, moodRating *int, notes string) (*domain.Conversation, error) {
	const op = "create conversation"
	if moodRating != nil && !domain.ValidMoodRating(*moodRating) {
		return nil, ratingErr(op, *moodRating)
	}

	now := s.stamp()
	conv := &domain.Conversation{UserID: userID, Timestamp: now, MoodRating: moodRating, Notes: notes}
	err := s.withTx(ctx, op, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO conversations (user_id, timestamp, mood_rating, notes) VALUES (?, ?, ?, ?)`,
			userID, formatTime(now), nullInt(moodRating), nullString(notes))
		if err != nil {
			return err
		}
		if conv.ConversationID, err = res.LastInsertId(); err != nil {
			return err
		}
		_, err = touchUser(ctx, tx, userID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// GetConversation retrieves a conversation by ID.
func (s *SQLiteStore) GetConversation(ctx context.Context, conversationID int64) (*domain.Conversation, error) {
	var conv *domain.Conversation
	err := s.withTx(ctx, "get conversation", func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT conversation_id, user_id, timestamp, mood_rating, notes FROM conversations WHERE conversation_id = ?`,
			conversationID)
		c, err := scanConversation(row)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		conv = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// GetUserConversations lists a user's conversations, most recent first.
// A limit of zero or less returns all of them.
func (s *SQLiteStore) GetUserConversations(ctx context.Context, userID string, limit int) ([]domain.Conversation, error) {
	if limit <= 0 {
		limit = -1
	}

	var conversations []domain.Conversation
	err := s.withTx(ctx, "get user conversations", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT conversation_id, user_id, timestamp, mood_rating, notes FROM conversations
			 WHERE user_id = ?
			 ORDER BY timestamp DESC, conversation_id DESC
			 LIMIT ?`,
			userID, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanConversation(rows)
			if err != nil {
				return err
			}
			conversations = append(conversations, *c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

// CountUserConversations returns how many conversations the user has.
func (s *SQLiteStore) CountUserConversations(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.withTx(ctx, "count user conversations", func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM conversations WHERE user_id = ?`, userID).Scan(&count)
	})
	return count, err
}

// UpdateConversationMood stores a 1-10 mood rating on a conversation.
func (s *SQLiteStore) UpdateConversationMood(ctx context.Context, conversationID int64, rating int) (bool, error) {
	const op = "update conversation mood"
	if !domain.ValidMoodRating(rating) {
		return false, ratingErr(op, rating)
	}
	return s.updateConversation(ctx, op,
		`UPDATE conversations SET mood_rating = ? WHERE conversation_id = ?`, rating, conversationID)
}

// UpdateConversationNotes replaces the notes of a conversation. Empty notes clear the column.
func (s *SQLiteStore) UpdateConversationNotes(ctx context.Context, conversationID int64, notes string) (bool, error) {
	return s.updateConversation(ctx, "update conversation notes",
		`UPDATE conversations SET notes = ? WHERE conversation_id = ?`, nullString(notes), conversationID)
}

func (s *SQLiteStore) updateConversation(ctx context.Context, op, query string, args ...interface{}) (bool, error) {
	var affected bool
	err := s.withTx(ctx, op, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		affected = n > 0
		return nil
	})
	return affected, err
}

// AddMessage appends a message to a conversation.
func (s *SQLiteStore) AddMessage(ctx context.Context, conversationID int64, sender domain.Sender, content string) (*domain.Message, error) {
	now := s.stamp()
	msg := &domain.Message{ConversationID: conversationID, Sender: sender, Content: content, Timestamp: now}
	err := s.withTx(ctx, "add message", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO messages (conversation_id, sender, content, timestamp) VALUES (?, ?, ?, ?)`,
			conversationID, string(sender), content, formatTime(now))
		if err != nil {
			return err
		}
		msg.MessageID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// GetConversationMessages retrieves all messages of a conversation in chronological order.
func (s *SQLiteStore) GetConversationMessages(ctx context.Context, conversationID int64) ([]domain.Message, error) {
	var messages []domain.Message
	err := s.withTx(ctx, "get conversation messages", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT message_id, conversation_id, sender, content, timestamp FROM messages
			 WHERE conversation_id = ?
			 ORDER BY timestamp ASC, message_id ASC`,
			conversationID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var msg domain.Message
			var sender, ts string
			if err := rows.Scan(&msg.MessageID, &msg.ConversationID, &sender, &msg.Content, &ts); err != nil {
				return err
			}
			msg.Sender = domain.Sender(sender)
			if msg.Timestamp, err = parseTime(ts); err != nil {
				return err
			}
			messages = append(messages, msg)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConversation(row rowScanner) (*domain.Conversation, error) {
	var c domain.Conversation
	var ts string
	var mood sql.NullInt64
	var notes sql.NullString
	if err := row.Scan(&c.ConversationID, &c.UserID, &ts, &mood, &notes); err != nil {
		return nil, err
	}
	t, err := parseTime(ts)
	if err != nil {
		return nil, err
	}
	c.Timestamp = t
	if mood.Valid {
		rating := int(mood.Int64)
		c.MoodRating = &rating
	}
	if notes.Valid {
		c.Notes = notes.String
	}
	return &c, nil
}

// stamp returns the current time at the resolution stored on disk.
func (s *SQLiteStore) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, v)
	if err == nil {
		return t, nil
	}
	if t, legacyErr := time.Parse(legacyLayout, v); legacyErr == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", v, err)
}

// storageErr wraps err into a *domain.StorageError, classifying SQLite
// constraint failures.
func storageErr(op string, err error) error {
	var se *domain.StorageError
	if errors.As(err, &se) {
		return se
	}

	kind := domain.StorageErrorInternal
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		kind = domain.StorageErrorConstraint
	}
	return &domain.StorageError{Op: op, Kind: kind, Err: err}
}

func ratingErr(op string, rating int) error {
	return &domain.StorageError{
		Op:   op,
		Kind: domain.StorageErrorConstraint,
		Err:  fmt.Errorf("mood rating %d outside %d-%d", rating, domain.MinMoodRating, domain.MaxMoodRating),
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
