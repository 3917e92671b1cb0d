package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/domain"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/repo"
)

var exportHeader = []string{"user", "send_text"}

// tsvExportRepo writes transcripts as tab separated files
type tsvExportRepo struct{}

// NewExportRepo creates the snapshot repository
func NewExportRepo() repo.ExportRepo {
	return &tsvExportRepo{}
}

// Save overwrites path with a header row and one (user, text) row per record
func (r *tsvExportRepo) Save(path string, transcript domain.Transcript) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(exportHeader); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}
	for _, rec := range transcript {
		if err := w.Write([]string{rec.User, rec.Text}); err != nil {
			return fmt.Errorf("write export row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush export file: %w", err)
	}
	return f.Close()
}

// Load reads a snapshot written by Save
func (r *tsvExportRepo) Load(path string) (domain.Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export file: %w", err)
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rd.Comma = '\t'
	rd.FieldsPerRecord = len(exportHeader)

	if _, err := rd.Read(); err != nil {
		if err == io.EOF {
			return domain.Transcript{}, nil
		}
		return nil, fmt.Errorf("read export header: %w", err)
	}

	var transcript domain.Transcript
	for {
		row, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read export row: %w", err)
		}
		transcript = append(transcript, domain.Record{User: row[0], Text: row[1]})
	}
	return transcript, nil
}
