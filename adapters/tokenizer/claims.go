package tokenizer

import "github.com/golang-jwt/jwt/v5"

// ServiceClaims are the claims carried by outbound service tokens
type ServiceClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}
