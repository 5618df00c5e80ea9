package gatewayclient

import (
	"context"
	"fmt"
)

// SendToChannel posts body to the given channel or thread ID, respecting
// the configured outbound rate limit.
func (c *Client) SendToChannel(ctx context.Context, channelID, body string) error {
	session := c.sessionOrNil()
	if session == nil {
		return fmt.Errorf("gatewayclient: not connected")
	}

	c.limiterMu.Lock()
	limiter := c.limiter
	c.limiterMu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if _, err := session.ChannelMessageSend(channelID, body); err != nil {
		return fmt.Errorf("send message to %s: %w", channelID, err)
	}
	return nil
}
