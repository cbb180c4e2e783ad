package identity

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
)

// externalClaims contains the profile data we extract from IdP tokens.
type externalClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Validate does nothing; it only satisfies validator.CustomClaims.
func (c externalClaims) Validate(ctx context.Context) error {
	return nil
}

// ExternalVerifier validates tokens issued by the configured identity
// provider (an Auth0-style OIDC issuer) against its JWKS endpoint. It backs
// the interactive sign-in flow.
type ExternalVerifier struct {
	validator *validator.Validator
}

// NewExternalVerifier builds a verifier for the given IdP domain and API
// audience.
func NewExternalVerifier(domain, audience string) (*ExternalVerifier, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &externalClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT validator: %w", err)
	}

	return &ExternalVerifier{validator: jwtValidator}, nil
}

// Verify checks the raw IdP token and returns the identity it asserts.
func (e *ExternalVerifier) Verify(ctx context.Context, raw string) (User, error) {
	parsed, err := e.validator.ValidateToken(ctx, raw)
	if err != nil {
		return User{}, fmt.Errorf("failed to validate provider token: %w", err)
	}

	claims, ok := parsed.(*validator.ValidatedClaims)
	if !ok {
		return User{}, fmt.Errorf("unexpected claims type %T", parsed)
	}

	user := User{UID: claims.RegisteredClaims.Subject}
	if custom, ok := claims.CustomClaims.(*externalClaims); ok {
		user.DisplayName = custom.Name
		user.Email = custom.Email
		user.PhotoURL = custom.Picture
	}
	return user, nil
}
