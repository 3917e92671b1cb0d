package repo

import "context"

// RelayRepo sends text messages to messaging targets
type RelayRepo interface {
	// SendText sends a text message to every target
	SendText(ctx context.Context, targetIDs []string, text string) error
}
