package chatmodel

import (
	"context"
	"strconv"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xdb/pkg/flake"
)

// ChatContext is the context for a chat session.
// It carries the tenant ID, chat ID and the patient the session is about.
type ChatContext interface {
	GetTenantID() string
	GetChatID() string
	// GetPatientID returns the patient the chat is about, may be empty.
	GetPatientID() string
	// AppData returns immutable app data
	AppData() any
	// GetMetadata retrieves metadata by key
	GetMetadata(key string) (value any, ok bool)
	// SetMetadata sets metadata by key
	SetMetadata(key string, value any)
}

type chatContext struct {
	tenantID  string
	chatID    string
	patientID string
	metadata  sync.Map
	appData   any
}

func (c *chatContext) GetTenantID() string {
	return c.tenantID
}

func (c *chatContext) GetChatID() string {
	return c.chatID
}

func (c *chatContext) GetPatientID() string {
	return c.patientID
}

func (c *chatContext) AppData() any {
	return c.appData
}

func (c *chatContext) GetMetadata(key string) (value any, ok bool) {
	return c.metadata.Load(key)
}

func (c *chatContext) SetMetadata(key string, value any) {
	c.metadata.Store(key, value)
}

func NewChatContext(tenantID, chatID, patientID string, appData any) ChatContext {
	return &chatContext{
		tenantID:  tenantID,
		chatID:    values.StringsCoalesce(chatID, NewChatID()),
		patientID: patientID,
		appData:   appData,
		metadata:  sync.Map{},
	}
}

type contextKey int

const (
	keyContext contextKey = iota
)

// WithChatContext returns a new context with ChatContext value
func WithChatContext(ctx context.Context, chatCtx ChatContext) context.Context {
	return context.WithValue(ctx, keyContext, chatCtx)
}

// GetChatContext retrieves the ChatContext from the context
func GetChatContext(ctx context.Context) ChatContext {
	if v, ok := ctx.Value(keyContext).(ChatContext); ok {
		return v
	}
	return nil
}

// GetChatID retrieves the chat ID from the provided context.
// If the context does not contain a ChatContext, it returns an empty string.
func GetChatID(ctx context.Context) string {
	if v, ok := ctx.Value(keyContext).(ChatContext); ok {
		return v.GetChatID()
	}
	return ""
}

// GetTenantID retrieves the tenant ID from the provided context.
func GetTenantID(ctx context.Context) string {
	if v, ok := ctx.Value(keyContext).(ChatContext); ok {
		return v.GetTenantID()
	}
	return ""
}

// GetPatientID retrieves the patient ID from the provided context.
func GetPatientID(ctx context.Context) string {
	if v, ok := ctx.Value(keyContext).(ChatContext); ok {
		return v.GetPatientID()
	}
	return ""
}

// GetTenantAndChatID retrieves the tenant and chat IDs from the context.
// It returns an error when the context has no chat session.
func GetTenantAndChatID(ctx context.Context) (string, string, error) {
	v, ok := ctx.Value(keyContext).(ChatContext)
	if !ok || v.GetTenantID() == "" || v.GetChatID() == "" {
		return "", "", errors.WithStack(ErrInvalidChatContext)
	}
	return v.GetTenantID(), v.GetChatID(), nil
}

// NewChatID generates a new chat ID using the flake ID generator.
func NewChatID() string {
	return strconv.FormatUint(flake.DefaultIDGenerator.NextID(), 10)
}
