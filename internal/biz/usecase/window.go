package usecase

import (
	"fmt"
	"time"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/domain"
)

// FilterWindow keeps the records at or after lowerBound (decimal hours) and
// returns them with their "user\ttext" submission body.
func FilterWindow(transcript domain.Transcript, lowerBound float64, loc *time.Location) (domain.Transcript, string, error) {
	result := make(domain.Transcript, 0, len(transcript))
	for _, r := range transcript {
		ts, err := r.Timestamp(loc)
		if err != nil {
			return nil, "", fmt.Errorf("parse record time %q: %w", r.Time, err)
		}
		if domain.DecimalHour(ts) >= lowerBound {
			result = append(result, r)
		}
	}
	return result, result.Body(), nil
}
