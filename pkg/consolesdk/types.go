package consolesdk

// ErrorResponse is the error body the backend sends. Older endpoints use
// "error" instead of "message".
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// TokenResponse is returned by login and renewal.
type TokenResponse struct {
	Token string `json:"token"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetRequest is the body of POST /auth/request-reset.
type ResetRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password. Confirm
// is only used for client-side validation and never sent.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
	Confirm  string `json:"-"`
}
