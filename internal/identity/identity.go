// Package identity implements the session gate for cinelog: sign-in flows,
// session persistence and revocation, and user-change notifications.
//
// The gate has two states per caller, anonymous and authenticated. Every
// write path in the application resolves the caller through this package
// first; an anonymous caller is rejected with ErrUnauthorized before any
// store access happens.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"cinelog/internal/logging"
	"cinelog/internal/store"
)

// SessionCollection is the store path holding active sessions.
const SessionCollection = "sessions"

// ErrUnauthorized is returned when a request carries no valid session.
var ErrUnauthorized = errors.New("unauthorized")

// User is the identity attached to an authenticated session.
type User struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// Session is the stored record for one signed-in user.
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	Method    string    `json:"method"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Verifier validates a token from an external identity provider and
// returns the identity it asserts.
type Verifier interface {
	Verify(ctx context.Context, raw string) (User, error)
}

// Provider owns sign-in, sign-out and session resolution. All three sign-in
// flows end in the same place: a persisted session and a minted session
// token, so the rest of the application only ever sees "a user is present".
type Provider struct {
	store    store.Store
	tokens   tokenCodec
	external Verifier

	mu        sync.Mutex
	observers map[int]func(uid string, user *User)
	nextObs   int
}

// NewProvider creates a Provider. external may be nil, in which case
// interactive sign-in is unavailable.
func NewProvider(st store.Store, secret string, ttl time.Duration, external Verifier) *Provider {
	return &Provider{
		store:     st,
		tokens:    tokenCodec{secret: []byte(secret), ttl: ttl},
		external:  external,
		observers: make(map[int]func(uid string, user *User)),
	}
}

// SignInAnonymous creates a guest session.
func (p *Provider) SignInAnonymous(ctx context.Context) (string, User, error) {
	user := User{
		UID:         "anon-" + uuid.NewString(),
		DisplayName: "Guest",
	}
	return p.createSession(ctx, user, "anonymous")
}

// SignInWithToken exchanges a custom token minted by a trusted backend for
// a session.
func (p *Provider) SignInWithToken(ctx context.Context, customToken string) (string, User, error) {
	claims, err := p.tokens.parse(customToken, useCustom)
	if err != nil {
		return "", User{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user := User{
		UID:         claims.Subject,
		DisplayName: claims.Name,
		Email:       claims.Email,
		PhotoURL:    claims.Picture,
	}
	return p.createSession(ctx, user, "custom_token")
}

// SignInInteractive validates a token obtained from the external identity
// provider and creates a session for the identity it asserts.
func (p *Provider) SignInInteractive(ctx context.Context, idpToken string) (string, User, error) {
	if p.external == nil {
		return "", User{}, fmt.Errorf("%w: no external identity provider configured", ErrUnauthorized)
	}

	user, err := p.external.Verify(ctx, idpToken)
	if err != nil {
		return "", User{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return p.createSession(ctx, user, "interactive")
}

func (p *Provider) createSession(ctx context.Context, user User, method string) (string, User, error) {
	now := time.Now()
	session := Session{
		ID:        uuid.NewString(),
		User:      user,
		Method:    method,
		CreatedAt: now,
		ExpiresAt: now.Add(p.tokens.ttl),
	}

	if _, err := p.store.Set(ctx, SessionCollection, session.ID, session); err != nil {
		return "", User{}, fmt.Errorf("failed to persist session: %w", err)
	}

	token, err := p.tokens.mint(session.ID, user, session.ExpiresAt)
	if err != nil {
		return "", User{}, err
	}

	logging.Info().Str("uid", user.UID).Str("method", method).Msg("user signed in")
	p.notify(user.UID, &user)
	return token, user, nil
}

// CurrentUser resolves a session token to its user. A token that is
// malformed, expired, or whose session has been revoked yields
// ErrUnauthorized.
func (p *Provider) CurrentUser(ctx context.Context, token string) (*User, error) {
	claims, err := p.tokens.parse(token, useSession)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	doc, err := p.store.GetOne(ctx, SessionCollection, claims.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session Session
	if err := store.Decode(doc, &session); err != nil {
		return nil, err
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, ErrUnauthorized
	}

	user := session.User
	return &user, nil
}

// SignOut revokes the session behind the token. Revoking an already
// revoked session is a no-op.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := p.tokens.parse(token, useSession)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	if err := p.store.Delete(ctx, SessionCollection, claims.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	logging.Info().Str("uid", claims.Subject).Msg("user signed out")
	p.notify(claims.Subject, nil)
	return nil
}

// OnUserChanged registers fn to run on every session transition: sign-in
// delivers the user, sign-out and expiry deliver nil. The returned func
// removes the observer.
func (p *Provider) OnUserChanged(fn func(uid string, user *User)) func() {
	p.mu.Lock()
	id := p.nextObs
	p.nextObs++
	p.observers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.observers, id)
		p.mu.Unlock()
	}
}

func (p *Provider) notify(uid string, user *User) {
	p.mu.Lock()
	fns := make([]func(uid string, user *User), 0, len(p.observers))
	for _, fn := range p.observers {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(uid, user)
	}
}

// SweepExpired deletes sessions past their expiry and fires the sign-out
// notification for each, so expiry and explicit sign-out look the same to
// observers.
func (p *Provider) SweepExpired(ctx context.Context) error {
	docs, err := p.store.GetAll(ctx, SessionCollection)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	now := time.Now()
	for _, doc := range docs {
		var session Session
		if err := store.Decode(doc, &session); err != nil {
			logging.Error().Err(err).Str("session", doc.ID).Msg("skipping undecodable session")
			continue
		}
		if now.Before(session.ExpiresAt) {
			continue
		}
		if err := p.store.Delete(ctx, SessionCollection, session.ID); err != nil {
			logging.Error().Err(err).Str("session", session.ID).Msg("failed to delete expired session")
			continue
		}
		logging.Info().Str("uid", session.User.UID).Msg("session expired")
		p.notify(session.User.UID, nil)
	}
	return nil
}

// StartSweeper runs SweepExpired once a minute until the returned stop
// function is called.
func (p *Provider) StartSweeper() (stop func()) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	_, err := c.AddFunc("@every 1m", func() {
		if err := p.SweepExpired(context.Background()); err != nil {
			logging.Error().Err(err).Msg("session sweep failed")
		}
	})
	if err != nil {
		logging.Error().Err(err).Msg("failed to schedule session sweeper")
		return func() {}
	}

	c.Start()
	return func() { <-c.Stop().Done() }
}
