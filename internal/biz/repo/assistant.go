package repo

import (
	"context"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/domain"
)

// AssistantRepo is the conversational AI interface
type AssistantRepo interface {
	// CreateSession opens a new conversation
	CreateSession(ctx context.Context) (*domain.AssistantSession, error)

	// Ask sends a prompt within the session and records the exchange.
	// attachment may be nil.
	Ask(ctx context.Context, session *domain.AssistantSession, prompt string, attachment *domain.Attachment) (string, error)

	// DeleteSession tears the conversation down
	DeleteSession(ctx context.Context, session *domain.AssistantSession) error
}
