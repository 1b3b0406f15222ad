package outbound

// TokenClaims identifies the caller behind a bearer token.
type TokenClaims struct {
	Subject string `json:"sub"`
	Name    string `json:"name,omitempty"`
}

type TokenService interface {
	GenerateAccessToken(claims TokenClaims) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}
