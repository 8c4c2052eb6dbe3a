package models

import "time"

// Transfer is an append-only audit record of a peer-to-peer tip. The id is
// generated client-side; the primary-key constraint makes replays safe to
// retry.
type Transfer struct {
	ID            string    `db:"id"`
	FromAccountID int64     `db:"from_account_id"`
	ToAccountID   int64     `db:"to_account_id"`
	Amount        int64     `db:"amount"`
	Currency      Currency  `db:"currency"`
	CreatedAt     time.Time `db:"created_at"`
}

// DivyMode selects how a multi-recipient tip divides its amount.
type DivyMode string

const (
	// DivySplit divides a fixed total evenly across recipients with integer
	// floor division; the remainder stays with the sender.
	DivySplit DivyMode = "split"

	// DivyEach sends the given amount to every recipient; the sender is
	// debited amount times the recipient count.
	DivyEach DivyMode = "each"
)

// TransferSplitResult reports one recipient's credit from a multi-recipient
// tip.
type TransferSplitResult struct {
	ToAccountID int64
	Amount      int64
}
