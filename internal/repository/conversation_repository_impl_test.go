package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"appointment-system/internal/domain/entity"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConversationRepo(t *testing.T) (*miniredis.Miniredis, *conversationRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewConversationRepository(client).(*conversationRepository)
}

func TestConversationRepository_GetOrCreateIsIdempotent(t *testing.T) {
	mr, repo := newTestConversationRepo(t)
	ctx := context.Background()
	first := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(5 * time.Minute)

	conv, err := repo.GetOrCreate(ctx, "abc", first)
	require.NoError(t, err)
	assert.Equal(t, "abc", conv.ID)
	assert.Empty(t, conv.History)
	assert.True(t, conv.CreatedAt.Equal(first))
	assert.True(t, conv.UpdatedAt.Equal(first))

	conv, err = repo.GetOrCreate(ctx, "abc", second)
	require.NoError(t, err)
	assert.True(t, conv.CreatedAt.Equal(first), "created_at must not move")
	assert.True(t, conv.UpdatedAt.Equal(second))

	assert.True(t, mr.Exists("conversation:meta:abc"))
}

func TestConversationRepository_AppendKeepsNewestWindow(t *testing.T) {
	mr, repo := newTestConversationRepo(t)
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

	_, err := repo.GetOrCreate(ctx, "abc", now)
	require.NoError(t, err)

	for turn := 0; turn < 12; turn++ {
		ts := now.Add(time.Duration(turn) * time.Minute)
		err := repo.Append(ctx, "abc", []entity.ChatMessage{
			{Role: entity.ChatRoleUser, Content: fmt.Sprintf("q%d", turn), Timestamp: ts},
			{Role: entity.ChatRoleAssistant, Content: fmt.Sprintf("a%d", turn), Timestamp: ts},
		}, entity.ConversationHistoryLimit, ts)
		require.NoError(t, err)
	}

	items, err := mr.List("conversation:history:abc")
	require.NoError(t, err)
	assert.Len(t, items, entity.ConversationHistoryLimit)

	conv, err := repo.FindByID(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, conv)
	require.Len(t, conv.History, entity.ConversationHistoryLimit)
	assert.Equal(t, "q2", conv.History[0].Content)
	assert.Equal(t, entity.ChatRoleUser, conv.History[0].Role)
	assert.Equal(t, "a11", conv.History[19].Content)
	assert.True(t, conv.UpdatedAt.Equal(now.Add(11*time.Minute)))
	assert.True(t, conv.CreatedAt.Equal(now))
}

func TestConversationRepository_GetOrCreateReturnsStoredHistory(t *testing.T) {
	_, repo := newTestConversationRepo(t)
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

	_, err := repo.GetOrCreate(ctx, "abc", now)
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, "abc", []entity.ChatMessage{
		{Role: entity.ChatRoleUser, Content: "hello", Timestamp: now},
		{Role: entity.ChatRoleAssistant, Content: "hi there", Timestamp: now},
	}, entity.ConversationHistoryLimit, now))

	conv, err := repo.GetOrCreate(ctx, "abc", now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, conv.History, 2)
	assert.Equal(t, "hello", conv.History[0].Content)
	assert.Equal(t, "hi there", conv.History[1].Content)
}

func TestConversationRepository_HistorySuffixedIDsDoNotCollide(t *testing.T) {
	_, repo := newTestConversationRepo(t)
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	turn := []entity.ChatMessage{
		{Role: entity.ChatRoleUser, Content: "hello", Timestamp: now},
		{Role: entity.ChatRoleAssistant, Content: "hi there", Timestamp: now},
	}

	cases := []struct {
		name  string
		first string
		then  string
	}{
		{"plain id first", "c1", "c1:history"},
		{"suffixed id first", "c2:history", "c2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.GetOrCreate(ctx, tc.first, now)
			require.NoError(t, err)
			require.NoError(t, repo.Append(ctx, tc.first, turn, entity.ConversationHistoryLimit, now))

			conv, err := repo.GetOrCreate(ctx, tc.then, now)
			require.NoError(t, err)
			assert.Empty(t, conv.History)
			require.NoError(t, repo.Append(ctx, tc.then, turn[:1], entity.ConversationHistoryLimit, now))

			first, err := repo.FindByID(ctx, tc.first)
			require.NoError(t, err)
			require.NotNil(t, first)
			assert.Len(t, first.History, 2)

			then, err := repo.FindByID(ctx, tc.then)
			require.NoError(t, err)
			require.NotNil(t, then)
			assert.Len(t, then.History, 1)
		})
	}
}

func TestConversationRepository_FindByIDUnknown(t *testing.T) {
	_, repo := newTestConversationRepo(t)

	conv, err := repo.FindByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, conv)
}

func TestConversationRepository_StoreUnavailable(t *testing.T) {
	mr, repo := newTestConversationRepo(t)
	mr.Close()

	_, err := repo.GetOrCreate(context.Background(), "abc", time.Now())
	assert.Error(t, err)
}
