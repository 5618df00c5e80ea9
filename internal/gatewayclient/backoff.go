package gatewayclient

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 30 * time.Second
)

// openWithBackoff retries session.Open with a doubling backoff capped at
// maxBackoff, until it succeeds or ctx is cancelled. Only the initial
// connection attempt goes through this path; once open, discordgo's own
// session loop owns reconnects.
func openWithBackoff(ctx context.Context, session *discordgo.Session) error {
	backoff := initialBackoff
	for {
		err := session.Open()
		if err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
