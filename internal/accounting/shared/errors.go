package shared

import "errors"

var (
	// ErrUnbalanced indicates debit != credit.
	ErrUnbalanced = errors.New("accounting: journal lines must balance")
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("accounting: journal requires at least two lines")
	// ErrEmptyEntry indicates an entry with no movement on either side.
	ErrEmptyEntry = errors.New("accounting: journal total must be positive")
	// ErrAccountNotFound indicates a chart-of-accounts lookup miss.
	ErrAccountNotFound = errors.New("accounting: account not found")
	// ErrOrphanedNature indicates no ancestor carries a nature.
	ErrOrphanedNature = errors.New("accounting: no nature set on account or its ancestors")
	// ErrNotLeafAccount indicates a movement targeting a non sub-account node.
	ErrNotLeafAccount = errors.New("accounting: journal lines may only target sub-accounts")
	// ErrTemplateMisconfigured indicates an unusable accounting function template.
	ErrTemplateMisconfigured = errors.New("accounting: function template misconfigured")
	// ErrCannotGenerate indicates validation blocked line generation.
	ErrCannotGenerate = errors.New("accounting: cannot generate journal lines")
	// ErrMissingCounterparty indicates the template requires a counterparty.
	ErrMissingCounterparty = errors.New("accounting: counterparty required")
	// ErrUnsupportedRole indicates the search account nature maps to no counterparty role.
	ErrUnsupportedRole = errors.New("accounting: unsupported counterparty role")
	// ErrNoItemsSelected indicates an empty open-item selection.
	ErrNoItemsSelected = errors.New("accounting: no open items selected")
	// ErrMissingSubAccount indicates an open item without a resolvable sub-account.
	ErrMissingSubAccount = errors.New("accounting: open item missing sub-account")
	// ErrItemAlreadyClosed indicates a concurrent closure of a selected open item.
	ErrItemAlreadyClosed = errors.New("accounting: open item already closed")
	// ErrEntryNotFound indicates a missing journal entry.
	ErrEntryNotFound = errors.New("accounting: journal entry not found")
	// ErrSourceConflict indicates a duplicate commit of the same source reference.
	ErrSourceConflict = errors.New("accounting: source reference already committed")
	// ErrPersistenceFailed indicates the storage boundary rejected the commit.
	ErrPersistenceFailed = errors.New("accounting: persistence failed")
	// ErrInvalidState indicates a generator transition out of order.
	ErrInvalidState = errors.New("accounting: invalid generator state")
)
