package store

import (
	"context"
	"time"

	"github.com/effective-security/xlog"
	"github.com/medassist-ai/medassist/pkg/llms"
)

var logger = xlog.NewPackageLogger("github.com/medassist-ai/medassist", "store")

// MessageStore keeps chat history for the session found in the context.
type MessageStore interface {
	Messages(ctx context.Context) []llms.Message
	Add(ctx context.Context, msgs ...llms.Message) error
	Reset(ctx context.Context) error
}

// ChatInfo is the chat session metadata.
type ChatInfo struct {
	TenantID  string         `json:"tenant_id"`
	ChatID    string         `json:"chat_id"`
	Title     string         `json:"title"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Messages  []llms.Message `json:"messages,omitempty"`
}

// MessageStoreManager extends MessageStore with chat management operations.
type MessageStoreManager interface {
	MessageStore

	// UpdateChat creates or updates the chat title and metadata.
	UpdateChat(ctx context.Context, title string, metadata map[string]any) error
	// ListChats returns the chat IDs for the tenant in the context.
	ListChats(ctx context.Context) ([]string, error)
	// GetChatInfo returns the chat metadata with messages.
	GetChatInfo(ctx context.Context, id string) (*ChatInfo, error)
	// GetChatTitle returns the chat title, or empty if not persisted.
	GetChatTitle(ctx context.Context, id string) (string, error)
	// ListTenants returns all tenants with stored chats.
	ListTenants(ctx context.Context) ([]string, error)
	// Cleanup removes chats not updated within the retention window.
	Cleanup(ctx context.Context, tenantID string, olderThan time.Duration) (uint32, error)
}
