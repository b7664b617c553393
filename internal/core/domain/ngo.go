package domain

import (
	"time"
)

// NGOStatus represents the verification lifecycle state of an organization.
type NGOStatus string

const (
	NGOStatusUnregistered NGOStatus = "UNREGISTERED"
	NGOStatusPending      NGOStatus = "PENDING"
	NGOStatusVerified     NGOStatus = "VERIFIED"
	NGOStatusSuspended    NGOStatus = "SUSPENDED"
)

// legalTransitions holds the only permitted lifecycle edges. Suspended is
// terminal; no edge ever returns to a prior state.
var legalTransitions = map[NGOStatus]map[NGOStatus]bool{
	NGOStatusUnregistered: {NGOStatusPending: true},
	NGOStatusPending:      {NGOStatusVerified: true},
	NGOStatusVerified:     {NGOStatusSuspended: true},
}

// CanTransition reports whether moving from one lifecycle state to another
// is a legal edge.
func CanTransition(from, to NGOStatus) bool {
	return legalTransitions[from][to]
}

// NGO represents a registered organization. Name, description and wallet
// identity are immutable after registration.
type NGO struct {
	Identity       Identity  `json:"identity"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Email          string    `json:"email"`
	WalletIdentity Identity  `json:"wallet_identity"`
	TotalDonations int64     `json:"total_donations"`
	Status         NGOStatus `json:"status"`
	RegisteredAt   time.Time `json:"registered_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsVerified reports whether the organization may receive donations.
func (n *NGO) IsVerified() bool {
	return n.Status == NGOStatusVerified
}
