package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/garrisonhq/garrison-backend/pkg/enums"
)

// Transaction is one immutable ledger record. Rows are append-only: no
// updated_at, no soft delete, never mutated after commit.
//
// Exactly one of FromBaseID/ToBaseID is set, per kind:
//
//	PURCHASE, TRANSFER_IN        → ToBaseID
//	TRANSFER_OUT, ASSIGNMENT,
//	EXPENDITURE                  → FromBaseID
//
// The two halves of a transfer share TransferGroupID and are committed in a
// single database transaction. CounterpartyBaseID carries the other end of a
// transfer for display only; balance math never reads it.
type Transaction struct {
	ID                 uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Kind               enums.TransactionKind `gorm:"column:kind;type:transaction_kind_enum;not null" json:"kind"`
	AssetTypeID        uuid.UUID             `gorm:"column:asset_type_id;type:uuid;not null" json:"asset_type_id"`
	Quantity           int64                 `gorm:"column:quantity;not null" json:"quantity"`
	FromBaseID         *uuid.UUID            `gorm:"column:from_base_id;type:uuid" json:"from_base_id,omitempty"`
	ToBaseID           *uuid.UUID            `gorm:"column:to_base_id;type:uuid" json:"to_base_id,omitempty"`
	CounterpartyBaseID *uuid.UUID            `gorm:"column:counterparty_base_id;type:uuid" json:"counterparty_base_id,omitempty"`
	TransferGroupID    *uuid.UUID            `gorm:"column:transfer_group_id;type:uuid" json:"transfer_group_id,omitempty"`
	Recipient          *string               `gorm:"column:recipient;type:text" json:"recipient,omitempty"`
	OccurredAt         time.Time             `gorm:"column:occurred_at;not null" json:"occurred_at"`
	PerformedBy        uuid.UUID             `gorm:"column:performed_by;type:uuid;not null" json:"performed_by"`
	CreatedAt          time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// BaseID returns the single base this record is attributed to.
func (t Transaction) BaseID() uuid.UUID {
	if t.ToBaseID != nil {
		return *t.ToBaseID
	}
	if t.FromBaseID != nil {
		return *t.FromBaseID
	}
	return uuid.Nil
}
