package domain

import "time"

// Attachment is a text file sent along with a prompt
type Attachment struct {
	Name    string
	Content string
}

// Exchange is one prompt/answer pair of a session
type Exchange struct {
	Prompt     string
	Attachment *Attachment
	Answer     string
}

// AssistantSession represents one conversation with the AI service.
// Later prompts see earlier exchanges, including their attachments.
type AssistantSession struct {
	ID        string
	CreatedAt time.Time
	Exchanges []Exchange
}

// NewAssistantSession creates an empty session
func NewAssistantSession(id string) *AssistantSession {
	return &AssistantSession{
		ID:        id,
		CreatedAt: time.Now(),
	}
}

// IsEmpty reports whether nothing has been exchanged yet
func (s *AssistantSession) IsEmpty() bool {
	return len(s.Exchanges) == 0
}

// Record appends an answered prompt to the session log
func (s *AssistantSession) Record(prompt string, attachment *Attachment, answer string) {
	s.Exchanges = append(s.Exchanges, Exchange{
		Prompt:     prompt,
		Attachment: attachment,
		Answer:     answer,
	})
}
