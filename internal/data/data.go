package data

import (
	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/repo"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/conf"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/infra/claude"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/infra/feishu"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/infra/openai"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/infra/wechat"
)

// Repositories contains all repositories
type Repositories struct {
	Chatlog   repo.ChatlogRepo
	Relay     repo.RelayRepo
	Notifier  repo.RelayRepo
	Assistant repo.AssistantRepo
	Export    repo.ExportRepo
}

// NewRepositories creates all repositories from the configuration
func NewRepositories(cfg *conf.Config) *Repositories {
	wechatClient := wechat.NewClient(cfg.Wechat.BaseURL, cfg.HTTPTimeout)
	wechatRelay := NewWechatRelayRepo(wechatClient)

	var feishuRelay repo.RelayRepo
	if cfg.UsesFeishu() {
		feishuRelay = NewFeishuRelayRepo(feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret))
	}

	pick := func(channel string) repo.RelayRepo {
		if channel == conf.ChannelFeishu {
			return feishuRelay
		}
		return wechatRelay
	}

	return &Repositories{
		Chatlog:   NewChatlogRepo(wechatClient),
		Relay:     pick(cfg.Relay.Channel),
		Notifier:  pick(cfg.Relay.NotifyChannel),
		Assistant: newAssistantRepo(cfg),
		Export:    NewExportRepo(),
	}
}

func newAssistantRepo(cfg *conf.Config) repo.AssistantRepo {
	if cfg.AI.Backend == conf.BackendOpenAI {
		return NewOpenAIRepo(openai.NewClient(cfg.AI.OpenAI.APIKey, cfg.AI.OpenAI.BaseURL, cfg.AI.OpenAI.Model, cfg.HTTPTimeout))
	}
	return NewClaudeRepo(claude.NewClient(claude.Config{
		Cookie:   cfg.AI.Claude.Cookie,
		BaseURL:  cfg.AI.Claude.BaseURL,
		Model:    cfg.AI.Claude.Model,
		Timezone: cfg.AI.Claude.Timezone,
		Timeout:  cfg.HTTPTimeout,
	}))
}
