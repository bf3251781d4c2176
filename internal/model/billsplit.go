package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillSplit divides a session's bill among several payers.  Share
// amounts are fixed at creation and never re-derived; a complete
// re-split requires creating a new BillSplit.  Only recording a share
// payment mutates the split afterwards.
//
// Fields:
//  ID        – primary key identifier.
//  SessionID – session whose bill is being split.
//  Strategy  – EQUAL, BY_PERSON or BY_ITEM.
//  Variance  – total minus the sum of share amounts.  Non-zero only for
//              BY_PERSON splits, where staff discretion (tips, rounding)
//              is allowed and reported rather than rejected.
//  CreatedAt – when staff initiated the split.
type BillSplit struct {
	ID        uint64          // bill_splits.id
	SessionID uint64          // bill_splits.session_id
	Strategy  string          // bill_splits.strategy
	Variance  decimal.Decimal // bill_splits.variance DECIMAL(10,2)
	CreatedAt time.Time       // bill_splits.created_at

	Shares []Share
}

// Share is one payer's portion of a split bill, tracked independently
// for partial payment.  Position preserves the caller-supplied payer
// ordering.
//
// Fields:
//  ID         – primary key identifier.
//  SplitID    – owning bill split.
//  Position   – zero-based payer index within the split.
//  Label      – payer label shown to staff ("Alice", "Seat 3").
//  AmountOwed – this payer's portion, fixed at split creation.
//  AmountPaid – accumulated payments recorded so far.
//  Status     – UNPAID, PARTIAL or PAID.
type Share struct {
	ID         uint64          // bill_split_shares.id
	SplitID    uint64          // bill_split_shares.split_id
	Position   uint32          // bill_split_shares.position
	Label      string          // bill_split_shares.label
	AmountOwed decimal.Decimal // bill_split_shares.amount_owed DECIMAL(10,2)
	AmountPaid decimal.Decimal // bill_split_shares.amount_paid DECIMAL(10,2)
	Status     string          // bill_split_shares.status
}
