// Package differ provides field-level change detection between persisted and
// edited line sets. The reconciliation protocol itself diffs identity only;
// the differ is the reporting layer on top of it, used for dry-run views and
// for deciding which update hooks fire.
package differ

import (
	"fmt"
	"strings"

	"github.com/ledgersync/ledgersync/pkg/books"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates an item was added.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates an item was updated.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates an item was removed.
	ChangeTypeRemove ChangeType = "remove"
)

// FieldChange represents a change to a specific field.
type FieldChange struct {
	Path     string     // Field path (e.g., "unit_rate")
	OldValue string     // Previous value (string representation)
	NewValue string     // New value (string representation)
	Type     ChangeType // Type of change
}

// LineUpdate represents an update to an existing line item.
type LineUpdate struct {
	ID       string         // ID of the line being updated
	Existing books.LineItem // Current line
	New      books.LineItem // New line
	Changes  []FieldChange  // Detailed list of field changes
}

// JournalLineUpdate represents an update to an existing journal line.
type JournalLineUpdate struct {
	ID       string            // ID of the line being updated
	Existing books.JournalLine // Current line
	New      books.JournalLine // New line
	Changes  []FieldChange     // Detailed list of field changes
}

// LineChangeset represents changes to a document's line items.
type LineChangeset struct {
	Added   []books.LineItem // New lines
	Updated []LineUpdate     // Updated lines
	Removed []books.LineItem // Removed lines
}

// JournalChangeset represents changes to a journal entry's lines.
type JournalChangeset struct {
	Added   []books.JournalLine // New lines
	Updated []JournalLineUpdate // Updated lines
	Removed []books.JournalLine // Removed lines
}

// HasChanges returns true if the changeset contains any changes.
func (c *LineChangeset) HasChanges() bool {
	return len(c.Added) > 0 || len(c.Updated) > 0 || len(c.Removed) > 0
}

// HasChanges returns true if the changeset contains any changes.
func (c *JournalChangeset) HasChanges() bool {
	return len(c.Added) > 0 || len(c.Updated) > 0 || len(c.Removed) > 0
}

// String returns a human-readable summary of the changeset.
func (c *LineChangeset) String() string {
	if !c.HasChanges() {
		return "No changes detected"
	}

	parts := []string{}
	if len(c.Added) > 0 {
		parts = append(parts, fmt.Sprintf("%d added", len(c.Added)))
	}
	if len(c.Updated) > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", len(c.Updated)))
	}
	if len(c.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", len(c.Removed)))
	}
	return fmt.Sprintf("Lines: %s", strings.Join(parts, ", "))
}

// Format renders the changeset as an indented multi-line report.
func (c *LineChangeset) Format() string {
	var b strings.Builder
	b.WriteString(c.String())
	b.WriteString("\n")

	if len(c.Added) > 0 {
		fmt.Fprintf(&b, "\nAdded lines (%d):\n", len(c.Added))
		for _, line := range c.Added {
			fmt.Fprintf(&b, "  + %s (%s)\n", line.Name, line.ExtendedAmount().String())
		}
	}

	if len(c.Updated) > 0 {
		fmt.Fprintf(&b, "\nUpdated lines (%d):\n", len(c.Updated))
		for _, update := range c.Updated {
			fmt.Fprintf(&b, "  ~ %s:\n", update.ID)
			for _, change := range update.Changes {
				fmt.Fprintf(&b, "    - %s: %s -> %s\n", change.Path, change.OldValue, change.NewValue)
			}
		}
	}

	if len(c.Removed) > 0 {
		fmt.Fprintf(&b, "\nRemoved lines (%d):\n", len(c.Removed))
		for _, line := range c.Removed {
			fmt.Fprintf(&b, "  - %s (%s)\n", line.ID, line.Name)
		}
	}

	return b.String()
}
