package domain

import (
	"strings"
	"time"
)

// Layouts used by cleaned records
const (
	ClockLayout     = "15:04:05"
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "20060102"
)

// SenderSeparator separates sender and content in a chat log title
const SenderSeparator = "："

// RawMessage is one entry of the bridge's chat log
type RawMessage struct {
	Title    string `json:"title"`    // "sender：text" for text messages
	SubTitle string `json:"subTitle"` // HH:MM:SS for today's messages
}

// Record represents a cleaned chat line
type Record struct {
	Time string // HH:MM:SS, or "YYYY-MM-DD HH:MM:SS" once date-prefixed
	User string
	Text string
}

// Timestamp parses the date-prefixed time of the record
func (r Record) Timestamp(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(TimestampLayout, r.Time, loc)
}

// Line formats the record as a "user\ttext" transcript line
func (r Record) Line() string {
	return r.User + "\t" + r.Text
}

// Transcript is an ordered list of cleaned records for one day
type Transcript []Record

// Body joins all records into the newline-delimited submission text
func (t Transcript) Body() string {
	lines := make([]string, 0, len(t))
	for _, r := range t {
		lines = append(lines, r.Line())
	}
	return strings.Join(lines, "\n")
}

// Without returns the records whose sender is not user
func (t Transcript) Without(user string) Transcript {
	result := make(Transcript, 0, len(t))
	for _, r := range t {
		if r.User != user {
			result = append(result, r)
		}
	}
	return result
}

// WithDate prefixes every record time with the given day
func (t Transcript) WithDate(day time.Time) Transcript {
	prefix := day.Format("2006-01-02") + " "
	result := make(Transcript, len(t))
	for i, r := range t {
		r.Time = prefix + r.Time
		result[i] = r
	}
	return result
}

// Contact is a search hit from the bridge's contact lookup
type Contact struct {
	UserID   string `json:"userId"`
	Title    string `json:"title"`
	SubTitle string `json:"subTitle"`
}
