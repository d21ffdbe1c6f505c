package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the sign of a ledger entry relative to the organization's holdings.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// TransactionStatus controls which balance bucket an entry counts toward.
type TransactionStatus string

const (
	StatusPending TransactionStatus = "pending"
	StatusPosted  TransactionStatus = "posted"
	StatusFailed  TransactionStatus = "failed"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPosted, StatusFailed:
		return true
	}
	return false
}

// Final reports whether the status can no longer change.
func (s TransactionStatus) Final() bool {
	return s == StatusPosted || s == StatusFailed
}

// TransactionKind describes what produced a ledger entry.
type TransactionKind string

const (
	KindPayment    TransactionKind = "payment"
	KindBuy        TransactionKind = "buy"
	KindSend       TransactionKind = "send"
	KindReceive    TransactionKind = "receive"
	KindAdjustment TransactionKind = "adjustment"
)

// Transaction is an immutable ledger entry once posted.
type Transaction struct {
	ID             string            `json:"id" db:"id"`
	OrganizationID string            `json:"organizationId" db:"organization_id"`
	ModuleID       *string           `json:"moduleId,omitempty" db:"module_id"`
	Kind           TransactionKind   `json:"kind" db:"kind"`
	Direction      Direction         `json:"direction" db:"direction"`
	Status         TransactionStatus `json:"status" db:"status"`
	Amount         decimal.Decimal   `json:"amount" db:"amount"`
	Currency       string            `json:"currency" db:"currency"`
	Counterparty   string            `json:"counterparty,omitempty" db:"counterparty"`
	Reference      string            `json:"reference,omitempty" db:"reference"`
	Metadata       Metadata          `json:"metadata,omitempty" db:"metadata"`
	CreatedAt      time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time         `json:"updatedAt" db:"updated_at"`
}

// Signed returns the amount with the direction applied.
func (t Transaction) Signed() decimal.Decimal {
	if t.Direction == DirectionOut {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	Status    TransactionStatus
	Direction Direction
	Kind      TransactionKind
}
