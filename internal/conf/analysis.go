package conf

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/domain"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/usecase"
)

// DefaultSchedule lists the daily run times
var DefaultSchedule = []string{"11:30", "17:30", "22:00"}

// AnalysisFile contains the analysis configuration loaded from YAML
type AnalysisFile struct {
	Windows         []domain.TimeWindow `yaml:"windows"`
	Schedule        []string            `yaml:"schedule"`
	ExcludeSender   string              `yaml:"exclude_sender"`
	ExcludePatterns []string            `yaml:"exclude_patterns"`
	Prompts         PromptsConfig       `yaml:"prompts"`
}

// PromptsConfig contains the prompt templates
type PromptsConfig struct {
	Summary string `yaml:"summary"`
	Opinion string `yaml:"opinion"`
	Header  string `yaml:"header"`
}

// LoadAnalysisConfig loads the analysis configuration from a YAML file
func LoadAnalysisConfig(configPath string) (*AnalysisFile, error) {
	// Try multiple paths
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/analysis.yaml",
			"/etc/wechat-analysis/analysis.yaml",
		}
		// Add path relative to executable
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "analysis.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	var err error

	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			loadedPath = p
			break
		}
	}

	if data == nil {
		if configPath != "" {
			return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
		}
		log.Println("[Config] No analysis.yaml found, using defaults")
		return DefaultAnalysisFile(), nil
	}

	log.Printf("[Config] Loading analysis config from: %s", loadedPath)

	var config AnalysisFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse analysis.yaml: %w", err)
	}

	config.fillDefaults()

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// fillDefaults fills in default values for empty fields
func (c *AnalysisFile) fillDefaults() {
	defaults := DefaultAnalysisFile()

	if len(c.Windows) == 0 {
		c.Windows = defaults.Windows
	}
	if len(c.Schedule) == 0 {
		c.Schedule = defaults.Schedule
	}
	if c.ExcludeSender == "" {
		c.ExcludeSender = defaults.ExcludeSender
	}
	if len(c.ExcludePatterns) == 0 {
		c.ExcludePatterns = defaults.ExcludePatterns
	}

	if c.Prompts.Summary == "" {
		c.Prompts.Summary = defaults.Prompts.Summary
	}
	if c.Prompts.Opinion == "" {
		c.Prompts.Opinion = defaults.Prompts.Opinion
	}
	if c.Prompts.Header == "" {
		c.Prompts.Header = defaults.Prompts.Header
	}
}

func (c *AnalysisFile) validate() error {
	for _, w := range c.Windows {
		if w.Label == "" || w.Start >= w.End {
			return &ConfigError{Field: "windows", Message: fmt.Sprintf("invalid window %+v", w)}
		}
	}
	if _, err := c.Times(); err != nil {
		return err
	}
	return nil
}

// Times parses the schedule as offsets from midnight
func (c *AnalysisFile) Times() ([]time.Duration, error) {
	times := make([]time.Duration, 0, len(c.Schedule))
	for _, s := range c.Schedule {
		t, err := time.Parse("15:04", s)
		if err != nil {
			return nil, &ConfigError{Field: "schedule", Message: fmt.Sprintf("invalid time %q", s)}
		}
		times = append(times, time.Duration(t.Hour())*time.Hour+time.Duration(t.Minute())*time.Minute)
	}
	return times, nil
}

// ToPromptConfig converts to prompt configuration
func (c *AnalysisFile) ToPromptConfig() usecase.PromptConfig {
	return usecase.PromptConfig{
		Summary: c.Prompts.Summary,
		Opinion: c.Prompts.Opinion,
		Header:  c.Prompts.Header,
	}
}

// DefaultAnalysisFile returns the default analysis configuration
func DefaultAnalysisFile() *AnalysisFile {
	return &AnalysisFile{
		Windows:         append([]domain.TimeWindow(nil), domain.DefaultWindows...),
		Schedule:        append([]string(nil), DefaultSchedule...),
		ExcludeSender:   usecase.DefaultExcludeSender,
		ExcludePatterns: append([]string(nil), usecase.DefaultExcludePatterns...),
		Prompts: PromptsConfig{
			Summary: usecase.DefaultPromptConfig.Summary,
			Opinion: usecase.DefaultPromptConfig.Opinion,
			Header:  usecase.DefaultPromptConfig.Header,
		},
	}
}
