package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "cinelog"

// tokenUse values distinguish the two locally minted token kinds.
const (
	useSession = "session"
	useCustom  = "custom"
)

type sessionClaims struct {
	jwt.RegisteredClaims
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Picture  string `json:"picture,omitempty"`
	TokenUse string `json:"token_use"`
}

// tokenCodec mints and verifies the HS256 tokens the provider issues.
type tokenCodec struct {
	secret []byte
	ttl    time.Duration
}

func (c *tokenCodec) mint(sessionID string, user User, expiresAt time.Time) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   user.UID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Name:     user.DisplayName,
		Email:    user.Email,
		Picture:  user.PhotoURL,
		TokenUse: useSession,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

func (c *tokenCodec) parse(raw, wantUse string) (*sessionClaims, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.TokenUse != wantUse {
		return nil, fmt.Errorf("unexpected token use %q", claims.TokenUse)
	}
	return &claims, nil
}

// MintCustomToken signs a token asserting an externally managed identity.
// A trusted backend mints one and hands it to a client, which exchanges it
// for a session via SignInWithToken.
func MintCustomToken(secret string, user User, ttl time.Duration) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		Name:     user.DisplayName,
		Email:    user.Email,
		Picture:  user.PhotoURL,
		TokenUse: useCustom,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign custom token: %w", err)
	}
	return signed, nil
}
