package usecase

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/domain"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/repo"
)

// DefaultExcludePatterns drops placeholder entries the bridge cannot render
var DefaultExcludePatterns = []string{`\[该消息类型暂不能展示\]`}

// DefaultExcludeSender is the bot account that relays the analysis
const DefaultExcludeSender = "芝士夹心饼干"

// MediaExcludePatterns additionally drops image and video placeholders
var MediaExcludePatterns = []string{`\[该消息类型暂不能展示\]`, `\[图片\]`, `\[视频\]`}

// Tabs delimit fields downstream, newlines delimit records
var textNormalizer = strings.NewReplacer("\t", " ", "\r\n", "。", "\n", "。", "\r", "。")

// CompilePatterns compiles title exclusion patterns
func CompilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	result := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		result = append(result, re)
	}
	return result, nil
}

// CleanMessages turns raw chat log entries into sorted text records.
// Entries with placeholder content, a malformed time or no sender
// separator are dropped.
func CleanMessages(raw []domain.RawMessage, patterns []*regexp.Regexp) domain.Transcript {
	result := make(domain.Transcript, 0, len(raw))
	for _, msg := range raw {
		if matchesAny(msg.Title, patterns) {
			continue
		}
		if !validClock(msg.SubTitle) {
			continue
		}
		user, text, ok := strings.Cut(msg.Title, domain.SenderSeparator)
		if !ok || user == "" || text == "" {
			continue
		}
		result = append(result, domain.Record{
			Time: msg.SubTitle,
			User: user,
			Text: textNormalizer.Replace(text),
		})
	}

	// Fixed-width HH:MM:SS sorts chronologically
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Time < result[j].Time
	})
	return result
}

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func validClock(s string) bool {
	if utf8.RuneCountInString(s) != len(domain.ClockLayout) {
		return false
	}
	_, err := time.Parse(domain.ClockLayout, s)
	return err == nil
}

// TranscriptConfig configures transcript building
type TranscriptConfig struct {
	FetchCount      int
	ExcludeSender   string // Bot/self account never analyzed
	ExcludePatterns []*regexp.Regexp
	DataDir         string
	Save            bool // Write the daily snapshot file
}

// TranscriptUsecase builds the day's transcript of a chat
type TranscriptUsecase struct {
	chatlogRepo repo.ChatlogRepo
	exportRepo  repo.ExportRepo
	config      TranscriptConfig
}

// NewTranscriptUsecase creates a new transcript usecase
func NewTranscriptUsecase(
	chatlogRepo repo.ChatlogRepo,
	exportRepo repo.ExportRepo,
	config TranscriptConfig,
) *TranscriptUsecase {
	return &TranscriptUsecase{
		chatlogRepo: chatlogRepo,
		exportRepo:  exportRepo,
		config:      config,
	}
}

// SnapshotPath returns the export file path for a chat and day
func (uc *TranscriptUsecase) SnapshotPath(targetID string, day time.Time) string {
	name := fmt.Sprintf("clean_today_%s_%s.csv", targetID, day.Format(domain.DateLayout))
	return filepath.Join(uc.config.DataDir, name)
}

// Build fetches, cleans and optionally snapshots today's chat log.
// The snapshot keeps every sender; the returned transcript drops the
// excluded sender and carries date-prefixed times.
func (uc *TranscriptUsecase) Build(ctx context.Context, targetID string, now time.Time) (domain.Transcript, error) {
	raw, err := uc.chatlogRepo.FetchToday(ctx, targetID, uc.config.FetchCount)
	if err != nil {
		return nil, fmt.Errorf("fetch chat log: %w", err)
	}

	cleaned := CleanMessages(raw, uc.config.ExcludePatterns)
	log.Printf("[Transcript] %d raw entries, %d text records", len(raw), len(cleaned))

	if uc.config.Save && uc.exportRepo != nil {
		path := uc.SnapshotPath(targetID, now)
		if err := uc.exportRepo.Save(path, cleaned); err != nil {
			return nil, fmt.Errorf("save snapshot: %w", err)
		}
		log.Printf("[Transcript] Snapshot saved to %s", path)
	}

	if uc.config.ExcludeSender != "" {
		cleaned = cleaned.Without(uc.config.ExcludeSender)
	}
	return cleaned.WithDate(now), nil
}

// FindChats searches the bridge's contacts, used to look up target ids
func (uc *TranscriptUsecase) FindChats(ctx context.Context, keyword string) ([]domain.Contact, error) {
	contacts, err := uc.chatlogRepo.SearchContacts(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	return contacts, nil
}
