// Package forwarder maintains an in-memory snapshot of active keyword
// forwarders keyed by source location and matches inbound messages
// against it.
package forwarder

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

// channelKey and threadKey namespace a channel platform ID from a thread platform ID
// ("channel:{id}" / "thread:{id}").
func channelKey(platformID string) string { return "channel:" + platformID }
func threadKey(platformID string) string  { return "thread:" + platformID }

// Cache holds the currently active forwarders, indexed by source location,
// swapped atomically on reload so lookups never block on a rebuild.
type Cache struct {
	forwarders store.ForwarderStore
	snapshot   atomic.Pointer[map[string][]*store.ActiveForwarder]
}

func NewCache(forwarders store.ForwarderStore) *Cache {
	c := &Cache{forwarders: forwarders}
	empty := map[string][]*store.ActiveForwarder{}
	c.snapshot.Store(&empty)
	return c
}

// Load rebuilds the cache from the store and atomically swaps it in. All
// subsequent lookups see either the previous or the new map, never a
// partial state.
func (c *Cache) Load(ctx context.Context) error {
	rules, err := c.forwarders.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("load active forwarders: %w", err)
	}

	next := map[string][]*store.ActiveForwarder{}
	for _, f := range rules {
		if f.SourceThreadID != nil && *f.SourceThreadID != "" {
			key := threadKey(*f.SourceThreadID)
			next[key] = append(next[key], f)
			// Ensure a channel: entry for the parent exists (possibly
			// empty) so messages in the channel proper never pick up a
			// thread-only rule.
			parentKey := channelKey(f.SourceChannelPlatformID)
			if _, ok := next[parentKey]; !ok {
				next[parentKey] = nil
			}
			continue
		}
		key := channelKey(f.SourceChannelPlatformID)
		next[key] = append(next[key], f)
	}

	c.snapshot.Store(&next)
	return nil
}

// Candidates returns the active forwarders that may apply to a message
// posted in sourceChannelPlatformID, optionally inside threadPlatformID.
func (c *Cache) Candidates(sourceChannelPlatformID, threadPlatformID string) []*store.ActiveForwarder {
	snap := *c.snapshot.Load()
	if threadPlatformID == "" {
		return snap[channelKey(sourceChannelPlatformID)]
	}
	out := append([]*store.ActiveForwarder{}, snap[threadKey(threadPlatformID)]...)
	out = append(out, snap[channelKey(sourceChannelPlatformID)]...)
	return out
}
