package dto

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" form:"username" example:"admin"`
	Password string `json:"password" form:"password" example:"s3cret"`
}

// TokenResponse represents JWT token information.
// Token is the field the roster front end reads.
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType" example:"Bearer"`
	ExpiresIn int64  `json:"expiresIn" example:"3600"`
}
