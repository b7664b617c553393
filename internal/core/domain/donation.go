package domain

import (
	"time"
)

// Donation is an immutable ledger entry for a completed value transfer.
// IDs are assigned sequentially starting at 0, with no gaps and no reuse.
type Donation struct {
	ID        int64     `json:"id"`
	Donor     Identity  `json:"donor"`
	NGO       Identity  `json:"ngo"`
	Amount    int64     `json:"amount"`
	ProjectID string    `json:"project_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
