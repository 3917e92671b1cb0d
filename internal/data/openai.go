package data

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/domain"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/repo"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/infra/openai"
)

// chatCompleter is the subset of the OpenAI client used by the repository
type chatCompleter interface {
	Complete(ctx context.Context, messages []openai.Message) (string, error)
}

// openaiRepo implements the assistant repository on a stateless chat API.
// The session lives locally; each prompt replays the session log.
type openaiRepo struct {
	client chatCompleter
}

// NewOpenAIRepo creates an OpenAI-compatible assistant repository
func NewOpenAIRepo(client chatCompleter) repo.AssistantRepo {
	return &openaiRepo{client: client}
}

// CreateSession creates a local session
func (r *openaiRepo) CreateSession(ctx context.Context) (*domain.AssistantSession, error) {
	return domain.NewAssistantSession(uuid.NewString()), nil
}

// Ask sends the session log plus the new prompt
func (r *openaiRepo) Ask(ctx context.Context, session *domain.AssistantSession, prompt string, attachment *domain.Attachment) (string, error) {
	messages := make([]openai.Message, 0, len(session.Exchanges)*2+1)
	for _, ex := range session.Exchanges {
		messages = append(messages,
			openai.Message{Role: openai.RoleUser, Content: renderPrompt(ex.Prompt, ex.Attachment)},
			openai.Message{Role: openai.RoleAssistant, Content: ex.Answer},
		)
	}
	messages = append(messages, openai.Message{Role: openai.RoleUser, Content: renderPrompt(prompt, attachment)})

	answer, err := r.client.Complete(ctx, messages)
	if err != nil {
		return "", err
	}

	session.Record(prompt, attachment, answer)
	return answer, nil
}

// DeleteSession drops the local log
func (r *openaiRepo) DeleteSession(ctx context.Context, session *domain.AssistantSession) error {
	session.Exchanges = nil
	return nil
}

// renderPrompt inlines an attachment ahead of the prompt text
func renderPrompt(prompt string, attachment *domain.Attachment) string {
	if attachment == nil {
		return prompt
	}
	return fmt.Sprintf("文件 %s：\n---begin\n%s\n---end\n\n%s", filepath.Base(attachment.Name), attachment.Content, prompt)
}
