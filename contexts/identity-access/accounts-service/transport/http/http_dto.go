package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Locale   string `json:"locale,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Name   *string `json:"name,omitempty"`
	Locale *string `json:"locale,omitempty"`
}

type UpdateSMTPRequest struct {
	SMTPURL string `json:"smtp_url"`
}

type AccountDTO struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Locale    string `json:"locale"`
	SMTPSet   bool   `json:"smtp_set"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type RegisterResponse struct {
	Account AccountDTO `json:"account"`
}

type LoginResponse struct {
	Account   AccountDTO `json:"account"`
	Token     string     `json:"token"`
	ExpiresAt string     `json:"expires_at"`
}

type GetAccountResponse struct {
	Account AccountDTO `json:"account"`
}
