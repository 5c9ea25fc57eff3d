package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tasklight/tasklight-core/pkg/config"
)

// TokenIssuer mints the signed credential handed back by the identity
// flows. Issue fails only on invalid required inputs.
type TokenIssuer interface {
	Issue(identityKey, displayName, contactAddress string, extraClaims map[string]any) (string, error)
}

var (
	ErrMissingIdentityKey = errors.New("identity key is required")
	ErrMissingDisplayName = errors.New("display name is required")
)

// JWTIssuer signs HS256 bearer tokens compatible with the auth middleware.
type JWTIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

func NewJWTIssuer(secret []byte, issuer, audience string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (j *JWTIssuer) Issue(identityKey, displayName, contactAddress string, extraClaims map[string]any) (string, error) {
	if identityKey == "" {
		return "", ErrMissingIdentityKey
	}
	if displayName == "" {
		return "", ErrMissingDisplayName
	}

	now := j.now().UTC()
	claims := jwt.MapClaims{
		"iss":  j.issuer,
		"aud":  j.audience,
		"sub":  identityKey,
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"exp":  now.Add(j.ttl).Unix(),
		"jti":  uuid.NewString(),
		"name": displayName,
	}
	if contactAddress != "" {
		claims["email"] = contactAddress
	}
	if _, ok := extraClaims["role"]; !ok {
		claims["role"] = "user"
	}
	for k, v := range extraClaims {
		claims[k] = v
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// ProvideTokenIssuer wires the issuer from process configuration.
func ProvideTokenIssuer(cfg *config.Config) TokenIssuer {
	return NewJWTIssuer([]byte(cfg.TokenSecret), cfg.TokenIssuer, cfg.TokenAudience, cfg.TokenTTL)
}
