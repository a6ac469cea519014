package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/medassist-ai/medassist/chatmodel"
	"github.com/medassist-ai/medassist/pkg/llms"
	"github.com/medassist-ai/medassist/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	rediscon "github.com/testcontainers/testcontainers-go/modules/redis"
)

func Test_RedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := rediscon.Run(ctx, "redis:7",
		testcontainers.WithConfigModifier(func(config *container.Config) {
			config.Env = []string{
				"ALLOW_EMPTY_PASSWORD=yes",
				"REDIS_PASSWORD=redis",
				"REDIS_TLS_PORT=16379",
			}
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, redisContainer.Terminate(ctx))
	})

	state, err := redisContainer.State(ctx)
	require.NoError(t, err)
	require.True(t, state.Running)

	root := fmt.Sprintf("test-%d", time.Now().Unix())

	host, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err)

	options, err := redis.ParseURL(host)
	require.NoError(t, err)

	client := redis.NewClient(options)

	rs := client.Ping(ctx) // Ensure the connection is established
	require.NoError(t, rs.Err(), "failed to connect to Redis")

	st := store.NewRedisStoreManager(client, root)

	tenantID := "tenant1"
	chatID := chatmodel.NewChatID()
	msg1 := llms.MessageFromTextParts(llms.RoleHuman, "Hello")
	msg2 := llms.MessageFromTextParts(llms.RoleAI, "Hi there!")

	// no chat context in ctx
	require.Error(t, st.Reset(ctx))
	require.Error(t, st.Add(ctx, msg1))
	require.Error(t, st.UpdateChat(ctx, "", nil))
	_, err = st.ListChats(ctx)
	require.Error(t, err)
	_, err = st.GetChatInfo(ctx, "")
	require.Error(t, err)
	assert.Empty(t, st.Messages(ctx))

	chatCtx := chatmodel.NewChatContext(tenantID, chatID, "", nil)
	ctx = chatmodel.WithChatContext(ctx, chatCtx)

	tID, cID, err := chatmodel.GetTenantAndChatID(ctx)
	require.NoError(t, err)
	assert.Equal(t, tenantID, tID)
	assert.Equal(t, chatID, cID)

	title, err := st.GetChatTitle(ctx, cID)
	require.NoError(t, err)
	assert.Empty(t, title)

	require.NoError(t, st.Add(ctx, msg1))
	require.NoError(t, st.Add(ctx, msg2))

	title, err = st.GetChatTitle(ctx, cID)
	require.NoError(t, err)
	assert.Equal(t, "New Chat", title)

	require.NoError(t, st.UpdateChat(ctx, "Updated Title", nil))
	title, err = st.GetChatTitle(ctx, cID)
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", title)

	title, err = st.GetChatTitle(ctx, "nonexistent")
	require.NoError(t, err)
	assert.Equal(t, "", title)

	messages := st.Messages(ctx)
	require.Equal(t, 2, len(messages))
	assert.Equal(t, "Hello", messages[0].GetContent())
	assert.Equal(t, "Hi there!", messages[1].GetContent())

	chi, err := st.GetChatInfo(ctx, cID)
	require.NoError(t, err)
	assert.Equal(t, tenantID, chi.TenantID)
	assert.Equal(t, chatID, chi.ChatID)
	assert.Len(t, chi.Messages, 2)

	list, err := st.ListChats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, len(list))

	// a new chat under the same tenant
	chatCtx = chatmodel.NewChatContext(tenantID, "", "", nil)
	ctx = chatmodel.WithChatContext(ctx, chatCtx)

	tID, cID, err = chatmodel.GetTenantAndChatID(ctx)
	require.NoError(t, err)
	assert.Equal(t, tenantID, tID)
	assert.NotEqual(t, chatID, cID)

	now := time.Now()
	time.Sleep(2 * time.Millisecond)
	err = st.UpdateChat(ctx, "New chat", map[string]any{"key": "value"})
	require.NoError(t, err)
	ci, err := st.GetChatInfo(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, chatCtx.GetTenantID(), ci.TenantID)
	assert.Equal(t, chatCtx.GetChatID(), ci.ChatID)
	assert.True(t, ci.CreatedAt.After(now))
	assert.True(t, ci.UpdatedAt.After(now))
	updatedAt := ci.UpdatedAt

	time.Sleep(2 * time.Millisecond)
	require.NoError(t, st.Add(ctx, msg1))
	ci2, err := st.GetChatInfo(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, chatCtx.GetTenantID(), ci2.TenantID)
	assert.Equal(t, chatCtx.GetChatID(), ci2.ChatID)
	assert.True(t, ci2.UpdatedAt.After(updatedAt))

	chats, err := st.ListChats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, len(chats))
	for _, chat := range chats {
		ci, err := st.GetChatInfo(ctx, chat)
		require.NoError(t, err)
		assert.Equal(t, chatCtx.GetTenantID(), ci.TenantID)
	}

	tenants, err := st.ListTenants(ctx)
	require.NoError(t, err)
	assert.Contains(t, tenants, tenantID)

	// nothing is old enough yet
	deleted, err := st.Cleanup(ctx, tenantID, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), deleted)

	deleted, err = st.Cleanup(ctx, tenantID, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), deleted)

	err = st.Reset(ctx)
	require.NoError(t, err)

	messages = st.Messages(ctx)
	assert.Equal(t, 0, len(messages))
}
