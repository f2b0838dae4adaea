package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/domain"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/store"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/tests/helpers"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newClockedStore(t *testing.T) (*store.SQLiteStore, *helpers.Clock) {
	t.Helper()
	clock := helpers.NewClock(epoch)
	return helpers.NewTestSQLiteStore(t, store.WithClock(clock.Now)), clock
}

func TestSQLiteStoreCreateAndGetUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newClockedStore(t)

	created, err := s.CreateUser(ctx, "u1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", created.UserID)
	assert.Equal(t, "Alice", created.Name)
	assert.True(t, created.CreatedAt.Equal(created.LastSession))

	got, err := s.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
	assert.False(t, got.LastSession.Before(got.CreatedAt))
}

func TestSQLiteStoreGetUserNotFound(t *testing.T) {
	s, _ := newClockedStore(t)

	got, err := s.GetUserByID(context.Background(), "xyz")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStoreDuplicateUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newClockedStore(t)

	_, err := s.CreateUser(ctx, "u1", "Alice")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "u1", "Alice again")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConstraintViolation))

	var se *domain.StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, domain.StorageErrorConstraint, se.Kind)
	assert.Equal(t, "create user", se.Op)

	got, err := s.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
}

func TestSQLiteStoreUpdateUserSession(t *testing.T) {
	ctx := context.Background()
	s, _ := newClockedStore(t)

	created, err := s.CreateUser(ctx, "u1", "Alice")
	require.NoError(t, err)

	ok, err := s.UpdateUserSession(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.LastSession.After(created.LastSession))
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))

	ok, err = s.UpdateUserSession(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStoreCreateConversationRefreshesLastSession(t *testing.T) {
	ctx := context.Background()
	s, _ := newClockedStore(t)

	_, err := s.CreateUser(ctx, "u1", "Alice")
	require.NoError(t, err)
	before, err := s.GetUserByID(ctx, "u1")
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		conv, err := s.CreateConversation(ctx, "u1", nil, "")
		require.NoError(t, err)
		assert.Equal(t, "u1", conv.UserID)
		assert.Nil(t, conv.MoodRating)

		count, err := s.CountUserConversations(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, i, count)

		after, err := s.GetUserByID(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, after.LastSession.Before(before.LastSession))
		assert.True(t, after.LastSession.Equal(conv.Timestamp))
		before = after
	}
}

func TestSQLiteStoreConversationIDsIncrease(t *testing.T) {
	ctx := context.Background()
	s, _ := newClockedStore(t)

	_, err := s.CreateUser(ctx, "u1", "Alice")
	require.NoError(t, err)

	first, err := s.CreateConversation(ctx, "u1", nil, "")
	require.NoError(t, err)
	second, err := s.CreateConversation(ctx, "u1", nil, "")
	require.NoError(t, err)
	assert.Greater(t, second.ConversationID, first.ConversationID)
}

func TestSQLiteStoreCreateConversationUnknownUser(t *testing.T) {
	s, _ := newClockedStore(t)

	conv, err := s.CreateConversation(context.Background(), "ghost", nil, "")
	assert.Nil(t, conv)
	assert.True(t, errors.Is(err, domain.ErrConstraintViolation))
}

func TestSQLiteStoreCreateConversationWithMoodAndNotes(t *testing.T) {
	ctx := context.Background()
	s, _ := newClockedStore(t)

	_, err := s.CreateUser(ctx, "u1", "Alice")
	require.NoError(t, err)

	rating := 6
	conv, err := s.CreateConversation(ctx, "u1", &rating, "slept badly")
	require.NoError(t, err)

	got, err := s.GetConversation(ctx, conv.ConversationID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.MoodRating)
	assert.Equal(t, 6, *got.MoodRating)
	assert.Equal(t, "slept badly", got.Notes)

	bad := 11
	_, err = s.CreateConversation(ctx, "u1", &bad, "")
	assert.True(t, errors.Is(err, domain.ErrConstraintViolation))
}

func TestSQLiteStoreGetUserConversationsOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	s, _ := newClockedStore(t)

	_, err := s.CreateUser(ctx, "u1", "Alice")
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, "u2", "Bob")
	require.NoError(t, err)

	var ids []int64
	for i := 0; i < 5; i++ {
		conv, err := s.CreateConversation(ctx, "u1", nil, "")
		require.NoError(t, err)
		ids = append(ids, conv.ConversationID)
	}
	_, err = s.CreateConversation(ctx, "u2", nil, "")
	require.NoError(t, err)

	recent, err := s.GetUserConversations(ctx, "u1", 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, []int64{ids[4], ids[3], ids[2]}, conversationIDs(recent))
	for i := 1; i < len(recent); i++ {
		assert.False(t, recent[i].Timestamp.After(recent[i-1].Timestamp))
	}

	all, err := s.GetUserConversations(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	none, err := s.GetUserConversations(ctx, "nobody", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStoreConversationsSameTimestamp(t *testing.T) {
	ctx := context.Background()
	clock := helpers.NewClock(epoch)
	clock.Step = 0
	s := helpers.NewTestSQLiteStore(t, store.WithClock(clock.Now))

	_, err := s.CreateUser(ctx, "u1", "Alice")
	require.NoError(t, err)
	a, err := s.CreateConversation(ctx, "u1", nil, "")
	require.NoError(t, err)
	b, err := s.CreateConversation(ctx, "u1", nil, "")
	require.NoError(t, err)

	recent, err := s.GetUserConversations(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ConversationID, a.ConversationID}, conversationIDs(recent))
}

func TestSQLiteStoreMessagesChronological(t *testing.T) {
	ctx := context.Background()
	s, clock := newClockedStore(t)

	_, err := s.CreateUser(ctx, "u1", "Alice")
	require.NoError(t, err)
	conv, err := s.CreateConversation(ctx, "u1", nil, "")
	require.NoError(t, err)

	contents := []string{"hi", "how are you feeling?", "tired", "that sounds hard"}
	senders := []domain.Sender{domain.SenderUser, domain.SenderAssistant, domain.SenderUser, domain.SenderAssistant}
	for i, c := range contents {
		msg, err := s.AddMessage(ctx, conv.ConversationID, senders[i], c)
		require.NoError(t, err)
		assert.NotZero(t, msg.MessageID)
		assert.Equal(t, conv.ConversationID, msg.ConversationID)
	}
	// Two writes inside the same clock tick keep insertion order.
	clock.Step = 0
	_, err = s.AddMessage(ctx, conv.ConversationID, domain.SenderUser, "same tick 1")
	require.NoError(t, err)
	_, err = s.AddMessage(ctx, conv.ConversationID, domain.SenderUser, "same tick 2")
	require.NoError(t, err)

	messages, err := s.GetConversationMessages(ctx, conv.ConversationID)
	require.NoError(t, err)
	require.Len(t, messages, 6)
	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].Timestamp.Before(messages[i-1].Timestamp))
		assert.Greater(t, messages[i].MessageID, messages[i-1].MessageID)
	}
	assert.Equal(t, "hi", messages[0].Content)
	assert.Equal(t, domain.SenderAssistant, messages[1].Sender)
	assert.Equal(t, "same tick 2", messages[5].Content)
}

func TestSQLiteStoreAddMessageUnknownConversation(t *testing.T) {
	ctx := context.Background()
	s, _ := newClockedStore(t)

	msg, err := s.AddMessage(ctx, 42, domain.SenderUser, "hello")
	assert.Nil(t, msg)
	assert.True(t, errors.Is(err, domain.ErrConstraintViolation))

	messages, err := s.GetConversationMessages(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestSQLiteStoreUpdateConversationMood(t *testing.T) {
	ctx := context.Background()
	s, _ := newClockedStore(t)

	_, err := s.CreateUser(ctx, "u1", "Alice")
	require.NoError(t, err)
	conv, err := s.CreateConversation(ctx, "u1", nil, "")
	require.NoError(t, err)

	ok, err := s.UpdateConversationMood(ctx, conv.ConversationID, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetConversation(ctx, conv.ConversationID)
	require.NoError(t, err)
	require.NotNil(t, got.MoodRating)
	assert.Equal(t, 7, *got.MoodRating)

	_, err = s.UpdateConversationMood(ctx, conv.ConversationID, 0)
	assert.True(t, errors.Is(err, domain.ErrConstraintViolation))

	ok, err = s.UpdateConversationMood(ctx, 999, 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStoreUpdateConversationNotes(t *testing.T) {
	ctx := context.Background()
	s, _ := newClockedStore(t)

	_, err := s.CreateUser(ctx, "u1", "Alice")
	require.NoError(t, err)
	conv, err := s.CreateConversation(ctx, "u1", nil, "")
	require.NoError(t, err)

	ok, err := s.UpdateConversationNotes(ctx, conv.ConversationID, "talked about work stress")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetConversation(ctx, conv.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "talked about work stress", got.Notes)

	_, err = s.UpdateConversationNotes(ctx, conv.ConversationID, "")
	require.NoError(t, err)
	got, err = s.GetConversation(ctx, conv.ConversationID)
	require.NoError(t, err)
	assert.Empty(t, got.Notes)
}

func TestSQLiteStoreGetConversationNotFound(t *testing.T) {
	s, _ := newClockedStore(t)

	got, err := s.GetConversation(context.Background(), 1)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "assistant.sqlite") + "?mode=rwc"

	s, err := store.NewSQLiteStore(dsn)
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, "u1", "Alice")
	require.NoError(t, err)
	conv, err := s.CreateConversation(ctx, "u1", nil, "")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := store.NewSQLiteStore(dsn)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)

	// Foreign keys are enforced on pooled file connections too.
	_, err = reopened.AddMessage(ctx, conv.ConversationID+100, domain.SenderUser, "orphan")
	assert.True(t, errors.Is(err, domain.ErrConstraintViolation))

	next, err := reopened.CreateConversation(ctx, "u1", nil, "")
	require.NoError(t, err)
	assert.Greater(t, next.ConversationID, conv.ConversationID)
}

func conversationIDs(convs []domain.Conversation) []int64 {
	ids := make([]int64, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ConversationID)
	}
	return ids
}
