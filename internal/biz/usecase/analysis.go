package usecase

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/domain"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/repo"
)

// PromptConfig contains the prompt templates of one cycle
type PromptConfig struct {
	Summary string // {{period}} is replaced by the window label
	Opinion string
	Header  string // {{period}} and {{count}} placeholders
}

// DefaultPromptConfig is used when no YAML config overrides it
var DefaultPromptConfig = PromptConfig{
	Summary: `请总结一下主要聊天内容，帮助没有参与的人也能知晓都聊了什么。内容尽量详细，包含关键发言以及发言人。以“下面播报今日{{period}}不能错过的重大事项：”为开头进行回答。
csv文件是一个微信群一天的聊天记录，格式如下：
---begin
每行是一个人的一次发言
每行以制表符	分割
第一列是发言人，第二列是发言内容
---end`,
	Opinion: `根据这份聊天记录，分析谁最有可能是Gay，以及推理原因和依据。
回复去掉“我认为”、“我觉得”等主观性词语，去掉为了凑字数而无意义的词语，只保留推理原因和依据，去掉为了显示局限性而加的额外说明内容。
以“我认为XXX最有可能是Gay，因为XXX”为开头进行回答。
---begin
每行是一个人的一次发言
每行以制表符	分割
第一列是发言人，第二列是发言内容
---end`,
	Header: "{{period}}分析聊天记录数：{{count}}",
}

// SummaryPrompt renders the summary prompt for a window label
func (c PromptConfig) SummaryPrompt(period string) string {
	return strings.ReplaceAll(c.Summary, "{{period}}", period)
}

// HeaderText renders the relay header line
func (c PromptConfig) HeaderText(period string, count int) string {
	text := strings.ReplaceAll(c.Header, "{{period}}", period)
	return strings.ReplaceAll(text, "{{count}}", strconv.Itoa(count))
}

// AnalysisConfig configures an analysis cycle
type AnalysisConfig struct {
	TargetID     string   // Chat whose log is analyzed
	RelayTargets []string // Where results go, defaults to TargetID
	Windows      []domain.TimeWindow
	Prompts      PromptConfig
	Location     *time.Location
}

// CycleReport describes a finished cycle
type CycleReport struct {
	Window   domain.TimeWindow
	Total    int // Records after cleaning
	Selected int // Records inside the window
	Summary  string
	Opinion  string
}

type promptStep struct {
	tag    string
	prompt string
}

// AnalysisUsecase runs one analysis cycle end to end
type AnalysisUsecase struct {
	transcriptUC  *TranscriptUsecase
	assistantRepo repo.AssistantRepo
	relayRepo     repo.RelayRepo
	config        AnalysisConfig
	now           func() time.Time
}

// NewAnalysisUsecase creates a new analysis usecase
func NewAnalysisUsecase(
	transcriptUC *TranscriptUsecase,
	assistantRepo repo.AssistantRepo,
	relayRepo repo.RelayRepo,
	config AnalysisConfig,
) *AnalysisUsecase {
	if len(config.Windows) == 0 {
		config.Windows = domain.DefaultWindows
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if len(config.RelayTargets) == 0 {
		config.RelayTargets = []string{config.TargetID}
	}
	return &AnalysisUsecase{
		transcriptUC:  transcriptUC,
		assistantRepo: assistantRepo,
		relayRepo:     relayRepo,
		config:        config,
		now:           time.Now,
	}
}

// SetClock overrides the time source
func (uc *AnalysisUsecase) SetClock(now func() time.Time) {
	uc.now = now
}

// RunCycle selects the window, analyzes its messages and relays the answers.
// Any error before relaying aborts the cycle.
func (uc *AnalysisUsecase) RunCycle(ctx context.Context) (*CycleReport, error) {
	now := uc.now().In(uc.config.Location)

	window, ok := domain.SelectWindow(uc.config.Windows, domain.DecimalHour(now))
	if !ok {
		return nil, fmt.Errorf("no time windows configured")
	}
	log.Printf("[Analysis] %s\t%s", window.Label, strings.Repeat("-*-", 12))

	transcript, err := uc.transcriptUC.Build(ctx, uc.config.TargetID, now)
	if err != nil {
		return nil, err
	}
	log.Printf("[Analysis] Sum of msg: %d", len(transcript))

	selected, body, err := FilterWindow(transcript, window.Start, uc.config.Location)
	if err != nil {
		return nil, err
	}
	log.Printf("[Analysis] Sum of msg - select: %d", len(selected))

	attachment := &domain.Attachment{
		Name:    uc.transcriptUC.SnapshotPath(uc.config.TargetID, now),
		Content: body,
	}
	prompts := []promptStep{
		{"summary", uc.config.Prompts.SummaryPrompt(window.Label)},
		{"opinion", uc.config.Prompts.Opinion},
	}

	answers, err := uc.ask(ctx, attachment, prompts)
	if err != nil {
		return nil, err
	}

	report := &CycleReport{
		Window:   window,
		Total:    len(transcript),
		Selected: len(selected),
		Summary:  answers[0],
		Opinion:  answers[1],
	}

	uc.relay(ctx, "header", uc.config.Prompts.HeaderText(window.Label, len(selected)))
	uc.relay(ctx, "summary", report.Summary)
	uc.relay(ctx, "opinion", report.Opinion)

	return report, nil
}

// ask sends the prompts in order within one session. Only the first prompt
// carries the transcript; later prompts rely on the session context.
func (uc *AnalysisUsecase) ask(ctx context.Context, attachment *domain.Attachment, prompts []promptStep) ([]string, error) {
	log.Println("[Analysis] Ask assistant ...")

	session, err := uc.assistantRepo.CreateSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer func() {
		// Cleanup must run even when the cycle is being cancelled
		if err := uc.assistantRepo.DeleteSession(context.WithoutCancel(ctx), session); err != nil {
			log.Printf("[Analysis] Failed to delete conversation %s: %v", session.ID, err)
			return
		}
		log.Printf("[Analysis] Conversation %s deleted", session.ID)
	}()

	answers := make([]string, 0, len(prompts))
	for i, p := range prompts {
		var att *domain.Attachment
		if i == 0 {
			att = attachment
		}

		log.Printf("[Analysis] Send message - %s", p.tag)
		answer, err := uc.assistantRepo.Ask(ctx, session, p.prompt, att)
		if err != nil {
			return nil, fmt.Errorf("ask %s: %w", p.tag, err)
		}
		if answer != "" {
			log.Printf("[Analysis] Get answer successfully - %s", p.tag)
		} else {
			log.Printf("[Analysis] Failed to get answer - %s", p.tag)
		}
		answers = append(answers, answer)
	}
	return answers, nil
}

func (uc *AnalysisUsecase) relay(ctx context.Context, tag, text string) {
	if err := uc.relayRepo.SendText(ctx, uc.config.RelayTargets, text); err != nil {
		log.Printf("[Analysis] Failed to send - %s: %v", tag, err)
		return
	}
	log.Printf("[Analysis] Send successfully - %s", tag)
}
