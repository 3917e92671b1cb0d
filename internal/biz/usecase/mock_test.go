package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/domain"
)

// Mock implementations

type mockChatlogRepo struct {
	messages []domain.RawMessage
	contacts []domain.Contact
	err      error
	calls    int
	keyword  string
}

func (m *mockChatlogRepo) FetchToday(ctx context.Context, targetID string, limit int) ([]domain.RawMessage, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.messages, nil
}

func (m *mockChatlogRepo) SearchContacts(ctx context.Context, keyword string) ([]domain.Contact, error) {
	m.keyword = keyword
	if m.err != nil {
		return nil, m.err
	}
	return m.contacts, nil
}

type mockExportRepo struct {
	saved map[string]domain.Transcript
	err   error
}

func (m *mockExportRepo) Save(path string, transcript domain.Transcript) error {
	if m.err != nil {
		return m.err
	}
	if m.saved == nil {
		m.saved = make(map[string]domain.Transcript)
	}
	m.saved[path] = transcript
	return nil
}

func (m *mockExportRepo) Load(path string) (domain.Transcript, error) {
	t, ok := m.saved[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return t, nil
}

type askCall struct {
	sessionID  string
	prompt     string
	attachment *domain.Attachment
}

type mockAssistantRepo struct {
	answers   []string
	askErrAt  int // 1-based index of the failing Ask, 0 for none
	createErr error
	deleteErr error

	created []*domain.AssistantSession
	deleted []string
	asks    []askCall
}

func (m *mockAssistantRepo) CreateSession(ctx context.Context) (*domain.AssistantSession, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	s := domain.NewAssistantSession(fmt.Sprintf("conv-%d", len(m.created)+1))
	m.created = append(m.created, s)
	return s, nil
}

func (m *mockAssistantRepo) Ask(ctx context.Context, session *domain.AssistantSession, prompt string, attachment *domain.Attachment) (string, error) {
	m.asks = append(m.asks, askCall{sessionID: session.ID, prompt: prompt, attachment: attachment})
	if m.askErrAt == len(m.asks) {
		return "", errors.New("assistant unavailable")
	}
	answer := ""
	if len(m.asks) <= len(m.answers) {
		answer = m.answers[len(m.asks)-1]
	}
	session.Record(prompt, attachment, answer)
	return answer, nil
}

func (m *mockAssistantRepo) DeleteSession(ctx context.Context, session *domain.AssistantSession) error {
	m.deleted = append(m.deleted, session.ID)
	return m.deleteErr
}

type sentMessage struct {
	targets []string
	text    string
}

type mockRelayRepo struct {
	sent   []sentMessage
	failAt map[int]bool // 1-based send indexes that fail
}

func (m *mockRelayRepo) SendText(ctx context.Context, targetIDs []string, text string) error {
	m.sent = append(m.sent, sentMessage{targets: targetIDs, text: text})
	if m.failAt[len(m.sent)] {
		return errors.New("send failed")
	}
	return nil
}

func (m *mockRelayRepo) texts() []string {
	var result []string
	for _, s := range m.sent {
		result = append(result, s.text)
	}
	return result
}
