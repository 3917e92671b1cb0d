package repo

import "github.com/Chen-DaYi/WeChatAnalysis/internal/biz/domain"

// ExportRepo persists the daily transcript snapshot
type ExportRepo interface {
	// Save writes (user, text) rows; times are not stored
	Save(path string, transcript domain.Transcript) error

	// Load reads a snapshot back
	Load(path string) (domain.Transcript, error)
}
