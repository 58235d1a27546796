package differ

import (
	"sort"

	"github.com/ledgersync/ledgersync/pkg/books"
)

// Differ handles change detection between line sets.
type Differ interface {
	// Lines compares two sets of document lines and returns changes
	Lines(existing, desired []books.LineItem) *LineChangeset

	// JournalLines compares two sets of journal lines and returns changes
	JournalLines(existing, desired []books.JournalLine) *JournalChangeset
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreFields map[string]bool
}

// New creates a Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{
		ignoreFields: make(map[string]bool),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Lines compares two sets of document lines and returns changes. A desired
// line without an identifier counts as added; a matching identifier counts
// as updated only when a field actually differs.
func (diff *differ) Lines(existing, desired []books.LineItem) *LineChangeset {
	changeset := &LineChangeset{
		Added:   []books.LineItem{},
		Updated: []LineUpdate{},
		Removed: []books.LineItem{},
	}

	existingMap := make(map[string]books.LineItem)
	for _, line := range existing {
		existingMap[line.ID] = line
	}

	desiredMap := make(map[string]books.LineItem)
	for _, line := range desired {
		if line.ID != "" {
			desiredMap[line.ID] = line
		}
	}

	for _, desiredLine := range desired {
		if desiredLine.ID == "" {
			changeset.Added = append(changeset.Added, desiredLine)
			continue
		}
		if existingLine, exists := existingMap[desiredLine.ID]; exists {
			if update := diff.line(existingLine, desiredLine); update != nil {
				changeset.Updated = append(changeset.Updated, *update)
			}
		} else {
			// Unknown identifier; surfaced as an addition for reporting, the
			// reconciler decides whether to reject or recreate it.
			changeset.Added = append(changeset.Added, desiredLine)
		}
	}

	for _, existingLine := range existing {
		if _, exists := desiredMap[existingLine.ID]; !exists {
			changeset.Removed = append(changeset.Removed, existingLine)
		}
	}

	sortLineChangeset(changeset)

	return changeset
}

// JournalLines compares two sets of journal lines and returns changes.
func (diff *differ) JournalLines(existing, desired []books.JournalLine) *JournalChangeset {
	changeset := &JournalChangeset{
		Added:   []books.JournalLine{},
		Updated: []JournalLineUpdate{},
		Removed: []books.JournalLine{},
	}

	existingMap := make(map[string]books.JournalLine)
	for _, line := range existing {
		existingMap[line.ID] = line
	}

	desiredMap := make(map[string]books.JournalLine)
	for _, line := range desired {
		if line.ID != "" {
			desiredMap[line.ID] = line
		}
	}

	for _, desiredLine := range desired {
		if desiredLine.ID == "" {
			changeset.Added = append(changeset.Added, desiredLine)
			continue
		}
		if existingLine, exists := existingMap[desiredLine.ID]; exists {
			if update := diff.journalLine(existingLine, desiredLine); update != nil {
				changeset.Updated = append(changeset.Updated, *update)
			}
		} else {
			changeset.Added = append(changeset.Added, desiredLine)
		}
	}

	for _, existingLine := range existing {
		if _, exists := desiredMap[existingLine.ID]; !exists {
			changeset.Removed = append(changeset.Removed, existingLine)
		}
	}

	return changeset
}

// line compares two document lines and returns an update if they differ.
func (diff *differ) line(existing, desired books.LineItem) *LineUpdate {
	changes := []FieldChange{}

	appendChange := func(path, oldValue, newValue string) {
		if diff.ignoreFields[path] {
			return
		}
		changes = append(changes, FieldChange{
			Path:     path,
			OldValue: oldValue,
			NewValue: newValue,
			Type:     ChangeTypeUpdate,
		})
	}

	if existing.Name != desired.Name {
		appendChange("name", existing.Name, desired.Name)
	}
	if existing.Description != desired.Description {
		appendChange("description", existing.Description, desired.Description)
	}
	if existing.AccountID != desired.AccountID {
		appendChange("account_id", existing.AccountID, desired.AccountID)
	}
	if !existing.Quantity.Equal(desired.Quantity) {
		appendChange("quantity", existing.Quantity.String(), desired.Quantity.String())
	}
	if !existing.UnitRate.Equal(desired.UnitRate) {
		appendChange("unit_rate", existing.UnitRate.String(), desired.UnitRate.String())
	}
	if !existing.Amount.Equal(desired.Amount) {
		appendChange("amount", existing.Amount.String(), desired.Amount.String())
	}

	if len(changes) == 0 {
		return nil
	}

	return &LineUpdate{
		ID:       existing.ID,
		Existing: existing,
		New:      desired,
		Changes:  changes,
	}
}

// journalLine compares two journal lines and returns an update if they differ.
func (diff *differ) journalLine(existing, desired books.JournalLine) *JournalLineUpdate {
	changes := []FieldChange{}

	appendChange := func(path, oldValue, newValue string) {
		if diff.ignoreFields[path] {
			return
		}
		changes = append(changes, FieldChange{
			Path:     path,
			OldValue: oldValue,
			NewValue: newValue,
			Type:     ChangeTypeUpdate,
		})
	}

	if existing.AccountID != desired.AccountID {
		appendChange("account_id", existing.AccountID, desired.AccountID)
	}
	if existing.Description != desired.Description {
		appendChange("description", existing.Description, desired.Description)
	}
	if !existing.Debit.Equal(desired.Debit) {
		appendChange("debit", existing.Debit.String(), desired.Debit.String())
	}
	if !existing.Credit.Equal(desired.Credit) {
		appendChange("credit", existing.Credit.String(), desired.Credit.String())
	}

	if len(changes) == 0 {
		return nil
	}

	return &JournalLineUpdate{
		ID:       existing.ID,
		Existing: existing,
		New:      desired,
		Changes:  changes,
	}
}

// sortLineChangeset sorts all slices in the changeset for consistent output.
func sortLineChangeset(changeset *LineChangeset) {
	sort.Slice(changeset.Added, func(i, j int) bool {
		return changeset.Added[i].Name < changeset.Added[j].Name
	})
	sort.Slice(changeset.Updated, func(i, j int) bool {
		return changeset.Updated[i].ID < changeset.Updated[j].ID
	})
	sort.Slice(changeset.Removed, func(i, j int) bool {
		return changeset.Removed[i].ID < changeset.Removed[j].ID
	})
}
