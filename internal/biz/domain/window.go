package domain

import "time"

// TimeWindow is a labeled daily period [Start, End) in decimal hours
type TimeWindow struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
	Label string  `yaml:"label"`
}

// DefaultWindows is the standard split of the day
var DefaultWindows = []TimeWindow{
	{Start: 0, End: 11.5, Label: "上午"},
	{Start: 11.5, End: 17.5, Label: "下午"},
	{Start: 17.5, End: 22.5, Label: "晚间"},
}

// Contains reports whether h falls in the half-open window
func (w TimeWindow) Contains(h float64) bool {
	return w.Start <= h && h < w.End
}

// DecimalHour converts a clock time to hour + minute/60. Seconds are ignored.
func DecimalHour(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60
}

// SelectWindow returns the first window containing h.
// When no window matches (the tail after the last End), the last window is
// returned, so the final period stays current until midnight.
func SelectWindow(windows []TimeWindow, h float64) (TimeWindow, bool) {
	if len(windows) == 0 {
		return TimeWindow{}, false
	}
	for _, w := range windows {
		if w.Contains(h) {
			return w, true
		}
	}
	return windows[len(windows)-1], true
}
