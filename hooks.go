package ledgersync

import (
	"sync"

	"github.com/ledgersync/ledgersync/pkg/books"
	"github.com/ledgersync/ledgersync/pkg/differ"
)

// Hook function types for line events.
type (
	// LineAddedHook is called when a save creates a line
	LineAddedHook func(line books.LineItem)

	// LineUpdatedHook is called when a save changes the fields of a line
	LineUpdatedHook func(old, new books.LineItem)

	// LineRemovedHook is called when a save deletes a line
	LineRemovedHook func(line books.LineItem)
)

// hooks manages event callbacks for line changes.
type hooks struct {
	mu            sync.RWMutex
	onLineAdded   []LineAddedHook
	onLineUpdated []LineUpdatedHook
	onLineRemoved []LineRemovedHook
}

// newHooks creates a new hooks instance.
func newHooks() *hooks {
	return &hooks{}
}

// OnLineAdded registers a callback for lines created by a save.
func (c *client) OnLineAdded(fn LineAddedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onLineAdded = append(c.hooks.onLineAdded, fn)
}

// OnLineUpdated registers a callback for lines whose fields changed.
func (c *client) OnLineUpdated(fn LineUpdatedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onLineUpdated = append(c.hooks.onLineUpdated, fn)
}

// OnLineRemoved registers a callback for lines deleted by a save.
func (c *client) OnLineRemoved(fn LineRemovedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onLineRemoved = append(c.hooks.onLineRemoved, fn)
}

// trigger fires the registered hooks from a changeset computed between the
// lines persisted before the save and the lines persisted after it. Update
// hooks only fire for lines whose fields actually changed; identity-matched
// lines patched with identical values stay silent.
func (h *hooks) trigger(changeset *differ.LineChangeset) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, line := range changeset.Added {
		for _, hook := range h.onLineAdded {
			hook(line)
		}
	}
	for _, update := range changeset.Updated {
		for _, hook := range h.onLineUpdated {
			hook(update.Existing, update.New)
		}
	}
	for _, line := range changeset.Removed {
		for _, hook := range h.onLineRemoved {
			hook(line)
		}
	}
}
