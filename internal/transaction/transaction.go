package transaction

import (
	"errors"

	"github.com/google/uuid"
)

// ErrAborted is raised by the page cache (or its lock manager) when a
// transaction must give up. Operators propagate it unchanged.
var ErrAborted = errors.New("transaction: aborted")

// TransactionID identifies the transaction a scan runs under.
type TransactionID struct {
	id uuid.UUID
}

func NewTransactionID() TransactionID {
	return TransactionID{id: uuid.New()}
}

func (t TransactionID) IsZero() bool { return t.id == uuid.Nil }

func (t TransactionID) String() string { return t.id.String() }

// Permissions is the access mode requested for a page.
type Permissions uint8

const (
	ReadOnly Permissions = iota
	ReadWrite
)

func (p Permissions) String() string {
	switch p {
	case ReadOnly:
		return "READ_ONLY"
	case ReadWrite:
		return "READ_WRITE"
	default:
		return "UNKNOWN"
	}
}
