package data

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/domain"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/infra/claude"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/infra/openai"
)

type mockClaude struct {
	sends   [][]claude.Attachment
	deleted []string
	sendErr error
}

func (m *mockClaude) CreateConversation(ctx context.Context) (string, error) {
	return "conv-1", nil
}

func (m *mockClaude) SendMessage(ctx context.Context, conversationID, prompt string, attachments []claude.Attachment) (string, error) {
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.sends = append(m.sends, attachments)
	return "answer to " + prompt, nil
}

func (m *mockClaude) DeleteConversation(ctx context.Context, conversationID string) error {
	m.deleted = append(m.deleted, conversationID)
	return nil
}

func TestClaudeRepo_AttachmentOnlyWhenGiven(t *testing.T) {
	mock := &mockClaude{}
	repo := NewClaudeRepo(mock)
	ctx := context.Background()

	session, err := repo.CreateSession(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if session.ID != "conv-1" {
		t.Errorf("Expected session conv-1, got %s", session.ID)
	}

	att := &domain.Attachment{Name: "data/clean_today_x_20240520.csv", Content: "Alice\thi"}
	if _, err := repo.Ask(ctx, session, "summary", att); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := repo.Ask(ctx, session, "opinion", nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(mock.sends[0]) != 1 || mock.sends[0][0].FileName != "clean_today_x_20240520.csv" {
		t.Errorf("Expected first prompt to carry the attachment, got %+v", mock.sends[0])
	}
	if len(mock.sends[1]) != 0 {
		t.Errorf("Expected no attachment on second prompt, got %+v", mock.sends[1])
	}
	if len(session.Exchanges) != 2 || session.Exchanges[1].Answer != "answer to opinion" {
		t.Errorf("Expected exchanges recorded, got %+v", session.Exchanges)
	}

	repo.DeleteSession(ctx, session)
	if len(mock.deleted) != 1 || mock.deleted[0] != "conv-1" {
		t.Errorf("Expected conv-1 deleted, got %v", mock.deleted)
	}
}

func TestClaudeRepo_FailedAskNotRecorded(t *testing.T) {
	repo := NewClaudeRepo(&mockClaude{sendErr: errors.New("boom")})
	session := domain.NewAssistantSession("conv-1")

	if _, err := repo.Ask(context.Background(), session, "summary", nil); err == nil {
		t.Fatal("Expected error")
	}
	if !session.IsEmpty() {
		t.Error("Expected failed exchange not recorded")
	}
}

type mockCompleter struct {
	calls [][]openai.Message
}

func (m *mockCompleter) Complete(ctx context.Context, messages []openai.Message) (string, error) {
	m.calls = append(m.calls, messages)
	return "reply", nil
}

func TestOpenAIRepo_ReplaysSession(t *testing.T) {
	mock := &mockCompleter{}
	repo := NewOpenAIRepo(mock)
	ctx := context.Background()

	session, _ := repo.CreateSession(ctx)
	if session.ID == "" {
		t.Error("Expected generated session id")
	}

	att := &domain.Attachment{Name: "data/snap.csv", Content: "Alice\thi"}
	repo.Ask(ctx, session, "summary", att)
	repo.Ask(ctx, session, "opinion", nil)

	if len(mock.calls) != 2 {
		t.Fatalf("Expected 2 calls, got %d", len(mock.calls))
	}

	first := mock.calls[0]
	if len(first) != 1 || !strings.Contains(first[0].Content, "Alice\thi") || !strings.HasSuffix(first[0].Content, "summary") {
		t.Errorf("Expected attachment inlined in first prompt, got %+v", first)
	}

	second := mock.calls[1]
	if len(second) != 3 {
		t.Fatalf("Expected replayed history of 3 messages, got %d", len(second))
	}
	if second[1].Role != openai.RoleAssistant || second[1].Content != "reply" {
		t.Errorf("Expected previous answer replayed, got %+v", second[1])
	}
	if !strings.Contains(second[0].Content, "Alice\thi") {
		t.Error("Expected attachment kept in replayed history")
	}
	if second[2].Content != "opinion" {
		t.Errorf("Expected bare second prompt, got %q", second[2].Content)
	}

	repo.DeleteSession(ctx, session)
	if !session.IsEmpty() {
		t.Error("Expected local log dropped")
	}
}
