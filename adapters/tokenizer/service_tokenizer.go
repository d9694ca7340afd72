package tokenizer

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/layer-3/cookiecheck/ports"
)

const (
	AudienceVerifier = "cookie-verifier"
	ScopeVerify      = "cookies:verify"

	defaultTTL = time.Minute
)

// JWTTokenizer implements the Tokenizer interface using HS256 JWTs
type JWTTokenizer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(secret []byte, issuer string) *JWTTokenizer {
	return &JWTTokenizer{
		secret: secret,
		issuer: issuer,
		ttl:    defaultTTL,
		now:    time.Now,
	}
}

var _ ports.Tokenizer = (*JWTTokenizer)(nil)

// ServiceToken mints a short-lived token for a single outbound call
func (j *JWTTokenizer) ServiceToken(subject string) (string, error) {
	now := j.now()
	claims := ServiceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			Audience:  jwt.ClaimStrings{AudienceVerifier},
		},
		Scope: ScopeVerify,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}
