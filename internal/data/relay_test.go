package data

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/conf"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/infra/wechat"
)

type mockSender struct {
	sent   []string
	failOn string
}

func (m *mockSender) SendText(ctx context.Context, chatID, text string) error {
	if chatID == m.failOn {
		return errors.New("bot not in chat")
	}
	m.sent = append(m.sent, chatID)
	return nil
}

func TestFeishuRelayRepo_ContinuesPastFailures(t *testing.T) {
	mock := &mockSender{failOn: "oc_2"}
	repo := NewFeishuRelayRepo(mock)

	err := repo.SendText(context.Background(), []string{"oc_1", "oc_2", "oc_3"}, "hi")
	if err == nil || !strings.Contains(err.Error(), "oc_2") {
		t.Errorf("Expected error naming oc_2, got %v", err)
	}
	if len(mock.sent) != 2 || mock.sent[1] != "oc_3" {
		t.Errorf("Expected other chats still sent, got %v", mock.sent)
	}
}

func TestWechatRepo(t *testing.T) {
	var sentIDs []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chatlog":
			w.Write([]byte(`[{"title": "header"}, {"title": "Alice：hi", "subTitle": "09:00:00"}]`))
		case "/api/searchContact":
			w.Write([]byte(`[{"userId": "1@chatroom", "title": "Group"}]`))
		case "/api/sendMessage":
			var body struct {
				IDs []string `json:"ids"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			sentIDs = body.IDs
			w.Write([]byte(`{"success": true}`))
		}
	}))
	defer server.Close()

	client := wechat.NewClient(server.URL, time.Second)
	ctx := context.Background()

	raw, err := NewChatlogRepo(client).FetchToday(ctx, "1@chatroom", 100)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(raw) != 1 || raw[0].Title != "Alice：hi" || raw[0].SubTitle != "09:00:00" {
		t.Errorf("Unexpected raw messages: %+v", raw)
	}

	contacts, err := NewChatlogRepo(client).SearchContacts(ctx, "Group")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(contacts) != 1 || contacts[0].UserID != "1@chatroom" {
		t.Errorf("Unexpected contacts: %+v", contacts)
	}

	if err := NewWechatRelayRepo(client).SendText(ctx, []string{"1@chatroom", "2@chatroom"}, "hi"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(sentIDs) != 2 {
		t.Errorf("Expected one call carrying both ids, got %v", sentIDs)
	}
}

func TestNewRepositories_Channels(t *testing.T) {
	cfg := &conf.Config{
		Wechat: conf.WechatConfig{TargetID: "1@chatroom"},
		AI:     conf.AIConfig{Backend: conf.BackendOpenAI, OpenAI: conf.OpenAIConfig{APIKey: "sk"}},
		Feishu: conf.FeishuConfig{AppID: "cli", AppSecret: "secret"},
		Relay:  conf.RelayConfig{Channel: conf.ChannelWechat, NotifyChannel: conf.ChannelFeishu},
	}

	repos := NewRepositories(cfg)
	if _, ok := repos.Relay.(*wechatRepo); !ok {
		t.Errorf("Expected wechat relay, got %T", repos.Relay)
	}
	if _, ok := repos.Notifier.(*feishuRelayRepo); !ok {
		t.Errorf("Expected feishu notifier, got %T", repos.Notifier)
	}
	if _, ok := repos.Assistant.(*openaiRepo); !ok {
		t.Errorf("Expected openai assistant, got %T", repos.Assistant)
	}

	cfg.AI.Backend = conf.BackendClaude
	if _, ok := NewRepositories(cfg).Assistant.(*claudeRepo); !ok {
		t.Error("Expected claude assistant")
	}
}
