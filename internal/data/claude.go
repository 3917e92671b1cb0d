package data

import (
	"context"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/domain"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/repo"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/infra/claude"
)

// claudeAPI is the subset of the Claude web client used by the repository
type claudeAPI interface {
	CreateConversation(ctx context.Context) (string, error)
	SendMessage(ctx context.Context, conversationID, prompt string, attachments []claude.Attachment) (string, error)
	DeleteConversation(ctx context.Context, conversationID string) error
}

// claudeRepo implements the assistant repository on Claude web conversations.
// The remote conversation keeps the context, so only the prompt and its own
// attachment go over the wire.
type claudeRepo struct {
	client claudeAPI
}

// NewClaudeRepo creates a Claude assistant repository
func NewClaudeRepo(client claudeAPI) repo.AssistantRepo {
	return &claudeRepo{client: client}
}

// CreateSession opens a remote conversation
func (r *claudeRepo) CreateSession(ctx context.Context) (*domain.AssistantSession, error) {
	id, err := r.client.CreateConversation(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewAssistantSession(id), nil
}

// Ask sends a prompt to the conversation
func (r *claudeRepo) Ask(ctx context.Context, session *domain.AssistantSession, prompt string, attachment *domain.Attachment) (string, error) {
	var attachments []claude.Attachment
	if attachment != nil {
		attachments = append(attachments, claude.NewTextAttachment(attachment.Name, attachment.Content))
	}

	answer, err := r.client.SendMessage(ctx, session.ID, prompt, attachments)
	if err != nil {
		return "", err
	}

	session.Record(prompt, attachment, answer)
	return answer, nil
}

// DeleteSession removes the remote conversation
func (r *claudeRepo) DeleteSession(ctx context.Context, session *domain.AssistantSession) error {
	return r.client.DeleteConversation(ctx, session.ID)
}
