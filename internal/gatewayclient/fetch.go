package gatewayclient

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// FetchGuild retrieves full guild metadata for topology sync (C3).
func (c *Client) FetchGuild(guildID string) (*discordgo.Guild, error) {
	session := c.sessionOrNil()
	if session == nil {
		return nil, fmt.Errorf("gatewayclient: not connected")
	}
	g, err := session.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("fetch guild %s: %w", guildID, err)
	}
	return g, nil
}

// FetchChannels retrieves the guild's standing channels.
func (c *Client) FetchChannels(guildID string) ([]*discordgo.Channel, error) {
	session := c.sessionOrNil()
	if session == nil {
		return nil, fmt.Errorf("gatewayclient: not connected")
	}
	channels, err := session.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("fetch channels for guild %s: %w", guildID, err)
	}
	return channels, nil
}

// ChannelInfo resolves whether platformChannelID is a thread and, if so,
// its parent channel's platform ID. Used by the runtime supervisor to
// build a forwarder.InboundMessage from a raw MessageCreate event (spec
// §4.4's isThread/parentId fields). The session's state cache is checked
// first to avoid an API round trip on every message.
func (c *Client) ChannelInfo(platformChannelID string) (isThread bool, parentID string, err error) {
	session := c.sessionOrNil()
	if session == nil {
		return false, "", fmt.Errorf("gatewayclient: not connected")
	}

	ch, err := session.State.Channel(platformChannelID)
	if err != nil {
		ch, err = session.Channel(platformChannelID)
		if err != nil {
			return false, "", fmt.Errorf("fetch channel %s: %w", platformChannelID, err)
		}
	}

	switch ch.Type {
	case discordgo.ChannelTypeGuildPublicThread, discordgo.ChannelTypeGuildPrivateThread, discordgo.ChannelTypeGuildNewsThread:
		return true, ch.ParentID, nil
	default:
		return false, "", nil
	}
}
