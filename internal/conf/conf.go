package conf

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/usecase"
)

// Backends and channels
const (
	BackendClaude = "claude"
	BackendOpenAI = "openai"

	ChannelWechat = "wechat"
	ChannelFeishu = "feishu"
)

// Config represents application configuration
type Config struct {
	// WeChat bridge configuration
	Wechat WechatConfig

	// AI backend configuration
	AI AIConfig

	// Feishu configuration (optional)
	Feishu FeishuConfig

	// Where results and operator alerts go
	Relay RelayConfig

	// Snapshot configuration
	Storage StorageConfig

	// Retry policy
	Retry RetryConfig

	// Analysis configuration (loaded from YAML)
	Analysis *AnalysisFile

	HTTPTimeout time.Duration
	LogFile     string

	analysisErr error
}

// WechatConfig contains WeChat bridge configuration
type WechatConfig struct {
	BaseURL    string
	TargetID   string // Chat to analyze
	OperatorID string // Receives failure alerts
	FetchCount int
}

// AIConfig contains AI backend configuration
type AIConfig struct {
	Backend string // claude or openai
	Claude  ClaudeConfig
	OpenAI  OpenAIConfig
}

// ClaudeConfig contains Claude web configuration
type ClaudeConfig struct {
	Cookie   string
	BaseURL  string
	Model    string
	Timezone string
}

// OpenAIConfig contains OpenAI-compatible API configuration
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// FeishuConfig contains Feishu configuration
type FeishuConfig struct {
	AppID     string
	AppSecret string
}

// RelayConfig selects relay and notification channels
type RelayConfig struct {
	Channel       string
	Targets       []string
	NotifyChannel string
}

// StorageConfig contains snapshot configuration
type StorageConfig struct {
	DataDir string
	Save    bool
}

// RetryConfig contains the job retry policy
type RetryConfig struct {
	Limit    int
	Cooldown time.Duration
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	backend := strings.ToLower(os.Getenv("AI_BACKEND"))
	if backend == "" {
		backend = BackendClaude
	}

	relayChannel := strings.ToLower(os.Getenv("RELAY_CHANNEL"))
	if relayChannel == "" {
		relayChannel = ChannelWechat
	}
	notifyChannel := strings.ToLower(os.Getenv("NOTIFY_CHANNEL"))
	if notifyChannel == "" {
		notifyChannel = relayChannel
	}

	targetID := os.Getenv("TARGET_ID")
	relayTargets := splitList(os.Getenv("RELAY_TARGETS"))
	if len(relayTargets) == 0 && targetID != "" {
		relayTargets = []string{targetID}
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./wechat.log"
	}

	analysis, analysisErr := LoadAnalysisConfig(os.Getenv("ANALYSIS_CONFIG_PATH"))

	return &Config{
		Wechat: WechatConfig{
			BaseURL:    os.Getenv("WECHAT_BRIDGE_URL"),
			TargetID:   targetID,
			OperatorID: os.Getenv("ERROR_USER"),
			FetchCount: envInt("FETCH_COUNT", 10000),
		},
		AI: AIConfig{
			Backend: backend,
			Claude: ClaudeConfig{
				Cookie:   os.Getenv("COOKIE"),
				BaseURL:  os.Getenv("CLAUDE_BASE_URL"),
				Model:    os.Getenv("CLAUDE_MODEL"),
				Timezone: os.Getenv("CLAUDE_TIMEZONE"),
			},
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				BaseURL: os.Getenv("OPENAI_BASE_URL"),
				Model:   os.Getenv("OPENAI_MODEL"),
			},
		},
		Feishu: FeishuConfig{
			AppID:     os.Getenv("FEISHU_APP_ID"),
			AppSecret: os.Getenv("FEISHU_APP_SECRET"),
		},
		Relay: RelayConfig{
			Channel:       relayChannel,
			Targets:       relayTargets,
			NotifyChannel: notifyChannel,
		},
		Storage: StorageConfig{
			DataDir: dataDir,
			Save:    os.Getenv("SAVE_TRANSCRIPT") != "false",
		},
		Retry: RetryConfig{
			Limit:    envInt("RETRY_LIMIT", usecase.DefaultJobConfig.RetryLimit),
			Cooldown: time.Duration(envInt("RETRY_COOLDOWN_SECONDS", 30)) * time.Second,
		},
		Analysis:    analysis,
		HTTPTimeout: time.Duration(envInt("HTTP_TIMEOUT_SECONDS", 300)) * time.Second,
		LogFile:     logFile,
		analysisErr: analysisErr,
	}
}

// LoadAnalysis replaces the analysis configuration with the file at path
func (c *Config) LoadAnalysis(path string) error {
	analysis, err := LoadAnalysisConfig(path)
	if err != nil {
		return err
	}
	c.Analysis = analysis
	c.analysisErr = nil
	return nil
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// UsesFeishu reports whether any channel needs the Feishu bot
func (c *Config) UsesFeishu() bool {
	return c.Relay.Channel == ChannelFeishu || c.Relay.NotifyChannel == ChannelFeishu
}

// ToTranscriptConfig converts to transcript usecase configuration
func (c *Config) ToTranscriptConfig() (usecase.TranscriptConfig, error) {
	analysis := c.analysis()
	patterns, err := usecase.CompilePatterns(analysis.ExcludePatterns)
	if err != nil {
		return usecase.TranscriptConfig{}, &ConfigError{Field: "exclude_patterns", Message: err.Error()}
	}

	return usecase.TranscriptConfig{
		FetchCount:      c.Wechat.FetchCount,
		ExcludeSender:   analysis.ExcludeSender,
		ExcludePatterns: patterns,
		DataDir:         c.Storage.DataDir,
		Save:            c.Storage.Save,
	}, nil
}

// ToAnalysisConfig converts to analysis usecase configuration
func (c *Config) ToAnalysisConfig() usecase.AnalysisConfig {
	analysis := c.analysis()
	return usecase.AnalysisConfig{
		TargetID:     c.Wechat.TargetID,
		RelayTargets: c.Relay.Targets,
		Windows:      analysis.Windows,
		Prompts:      analysis.ToPromptConfig(),
	}
}

// ToJobConfig converts to job runner configuration
func (c *Config) ToJobConfig() usecase.JobConfig {
	return usecase.JobConfig{
		OperatorID: c.Wechat.OperatorID,
		RetryLimit: c.Retry.Limit,
		Cooldown:   c.Retry.Cooldown,
	}
}

func (c *Config) analysis() *AnalysisFile {
	if c.Analysis == nil {
		c.Analysis = DefaultAnalysisFile()
	}
	return c.Analysis
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.analysisErr != nil {
		return &ConfigError{Field: "ANALYSIS_CONFIG_PATH", Message: c.analysisErr.Error()}
	}
	if c.Wechat.TargetID == "" {
		return &ConfigError{Field: "TARGET_ID", Message: "required"}
	}

	switch c.AI.Backend {
	case BackendClaude:
		if c.AI.Claude.Cookie == "" {
			return &ConfigError{Field: "COOKIE", Message: "required for the claude backend"}
		}
	case BackendOpenAI:
		if c.AI.OpenAI.APIKey == "" {
			return &ConfigError{Field: "OPENAI_API_KEY", Message: "required for the openai backend"}
		}
	default:
		return &ConfigError{Field: "AI_BACKEND", Message: "unknown backend " + c.AI.Backend}
	}

	if !validChannel(c.Relay.Channel) {
		return &ConfigError{Field: "RELAY_CHANNEL", Message: "unknown channel " + c.Relay.Channel}
	}
	if !validChannel(c.Relay.NotifyChannel) {
		return &ConfigError{Field: "NOTIFY_CHANNEL", Message: "unknown channel " + c.Relay.NotifyChannel}
	}
	if c.UsesFeishu() && (c.Feishu.AppID == "" || c.Feishu.AppSecret == "") {
		return &ConfigError{Field: "FEISHU_APP_ID/FEISHU_APP_SECRET", Message: "required for the feishu channel"}
	}
	if c.Relay.Channel == ChannelFeishu && len(c.Relay.Targets) == 1 && c.Relay.Targets[0] == c.Wechat.TargetID {
		return &ConfigError{Field: "RELAY_TARGETS", Message: "feishu chat ids required for the feishu channel"}
	}

	if c.Retry.Limit < 0 {
		return &ConfigError{Field: "RETRY_LIMIT", Message: "must not be negative"}
	}
	return nil
}

func validChannel(channel string) bool {
	return channel == ChannelWechat || channel == ChannelFeishu
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
