package dto

// RegisterAccountRequest is the request body for account registration.
type RegisterAccountRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// RegisterAccountResponse is the response body for successful registration.
type RegisterAccountResponse struct {
	Identity string `json:"identity"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// RegisterNGORequest is the request body for organization registration.
type RegisterNGORequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=1000"`
	Email       string `json:"email" binding:"required,email,max=254"`
}

// NGOResponse is the response body for organization queries.
type NGOResponse struct {
	Identity       string `json:"identity"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Email          string `json:"email"`
	Status         string `json:"status"`
	TotalDonations int64  `json:"total_donations"`
	RegisteredAt   string `json:"registered_at"`
}

// DonateRequest is the request body for a donation.
type DonateRequest struct {
	NGO       string `json:"ngo" binding:"required,safe_id"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	ProjectID string `json:"project_id" binding:"max=100"`
}

// DonationResponse is the response body for donation results and lookups.
type DonationResponse struct {
	ID        int64  `json:"id"`
	Donor     string `json:"donor"`
	NGO       string `json:"ngo"`
	Amount    int64  `json:"amount"`
	ProjectID string `json:"project_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

// VerifierRequest is the request body for adding a verifier.
type VerifierRequest struct {
	Identity string `json:"identity" binding:"required,safe_id"`
}

// VerifierStatusResponse is the response for verifier membership queries.
type VerifierStatusResponse struct {
	Identity string `json:"identity"`
	Verifier bool   `json:"verifier"`
}

// DepositRequest is the request body for a wallet deposit.
type DepositRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// BalanceResponse is the response for balance queries and deposits.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// StatsResponse is the response for registry and ledger cardinalities.
type StatsResponse struct {
	TotalNGOs      int64 `json:"total_ngos"`
	TotalDonations int64 `json:"total_donations"`
}
