package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/pkg/async"
	"github.com/dmitrymomot/accountkit/pkg/logger"
	"github.com/dmitrymomot/accountkit/pkg/sanitizer"
)

// HandshakeState is a step of the federated sign-in pipeline.
type HandshakeState int

const (
	StateRedirect HandshakeState = iota
	StateCallbackPending
	StateReconcile
	StateIssue
	StateSucceeded
	StateFailed
)

func (s HandshakeState) String() string {
	switch s {
	case StateRedirect:
		return "redirect"
	case StateCallbackPending:
		return "callback_pending"
	case StateReconcile:
		return "reconcile"
	case StateIssue:
		return "issue"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("HandshakeState(%d)", int(s))
	}
}

// LinkPolicy decides whether a provider identity may sign in to an existing
// account that has the same email.
type LinkPolicy int

const (
	// LinkPolicyStrict allows sign-in only to the federated account created by
	// the same provider identity.
	LinkPolicyStrict LinkPolicy = iota
	// LinkPolicyTrustEmail allows sign-in to any account with the same email,
	// provided the provider verified it.
	LinkPolicyTrustEmail
)

// StateStore keeps outstanding OAuth state values.
type StateStore interface {
	StoreState(ctx context.Context, state string, expiresAt time.Time) error
	// ConsumeState removes state atomically; returns ErrStateNotFound when
	// it is unknown, expired or already used.
	ConsumeState(ctx context.Context, state string) error
}

// HandshakeResult is the outcome of a successful callback.
type HandshakeResult struct {
	Account *Account
	Token   IssuedToken
	Created bool
	State   HandshakeState
}

// HandshakeError records the pipeline step at which a callback failed.
type HandshakeError struct {
	Step HandshakeState
	Err  error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("oauth handshake failed at %s: %v", e.Step, e.Err)
}

func (e *HandshakeError) Unwrap() error { return e.Err }

// FederationBridge runs the OAuth sign-in flow for one provider and
// reconciles the result with local accounts.
type FederationBridge struct {
	adapter  ProviderAdapter
	accounts AccountStorage
	states   StateStore
	tokens   TokenIssuer
	logger   *slog.Logger

	stateTTL        time.Duration
	exchangeTimeout time.Duration
	verifiedOnly    bool
	linkPolicy      LinkPolicy
	now             func() time.Time

	afterCreate func(ctx context.Context, account *Account) error
	hookTimeout time.Duration
	hooks       sync.WaitGroup
}

// FederationConfig holds settings shared by every provider bridge.
type FederationConfig struct {
	ExchangeTimeout time.Duration `env:"OAUTH_EXCHANGE_TIMEOUT" envDefault:"10s"`
	HookTimeout     time.Duration `env:"OAUTH_HOOK_TIMEOUT" envDefault:"30s"`
}

// FederationOption configures a FederationBridge.
type FederationOption func(*FederationBridge)

// WithFederationLogger sets the logger. Nil keeps the discard logger.
func WithFederationLogger(l *slog.Logger) FederationOption {
	return func(b *FederationBridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithStateTTL sets how long a redirect state stays valid.
func WithStateTTL(ttl time.Duration) FederationOption {
	return func(b *FederationBridge) {
		if ttl > 0 {
			b.stateTTL = ttl
		}
	}
}

// WithExchangeTimeout bounds the code exchange and profile fetch.
func WithExchangeTimeout(d time.Duration) FederationOption {
	return func(b *FederationBridge) {
		if d > 0 {
			b.exchangeTimeout = d
		}
	}
}

// WithVerifiedOnly rejects provider emails the provider has not verified.
func WithVerifiedOnly(verifiedOnly bool) FederationOption {
	return func(b *FederationBridge) { b.verifiedOnly = verifiedOnly }
}

// WithLinkPolicy decides whether a provider identity may sign in to an
// existing account with the same email.
func WithLinkPolicy(p LinkPolicy) FederationOption {
	return func(b *FederationBridge) { b.linkPolicy = p }
}

// WithFederationClock overrides the time source.
func WithFederationClock(now func() time.Time) FederationOption {
	return func(b *FederationBridge) {
		if now != nil {
			b.now = now
		}
	}
}

// WithAfterCreate runs fn in the background after a federated account is
// created. Failures are logged and do not fail the sign-in.
func WithAfterCreate(fn func(context.Context, *Account) error) FederationOption {
	return func(b *FederationBridge) { b.afterCreate = fn }
}

// WithFederationHookTimeout bounds the afterCreate hook. Zero removes the bound.
func WithFederationHookTimeout(d time.Duration) FederationOption {
	return func(b *FederationBridge) { b.hookTimeout = d }
}

// NewFederationBridge wires a provider adapter to account and state storage.
// Defaults: strict link policy, verified emails only, 10 minute state TTL,
// 10 second exchange timeout.
func NewFederationBridge(adapter ProviderAdapter, accounts AccountStorage, states StateStore, tokens TokenIssuer, opts ...FederationOption) *FederationBridge {
	b := &FederationBridge{
		adapter:         adapter,
		accounts:        accounts,
		states:          states,
		tokens:          tokens,
		logger:          logger.Discard(),
		stateTTL:        10 * time.Minute,
		exchangeTimeout: 10 * time.Second,
		verifiedOnly:    true,
		linkPolicy:      LinkPolicyStrict,
		now:             time.Now,
		hookTimeout:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Wait blocks until afterCreate hooks started so far have finished.
func (b *FederationBridge) Wait() {
	b.hooks.Wait()
}

// Provider returns the adapter's provider name.
func (b *FederationBridge) Provider() string { return b.adapter.Name() }

// Redirect creates a one-time state and returns the provider consent URL.
func (b *FederationBridge) Redirect(ctx context.Context) (string, error) {
	state, err := generateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	if err := b.states.StoreState(ctx, state, b.now().Add(b.stateTTL)); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}

	return b.adapter.AuthURL(state), nil
}

// Callback completes the handshake: it consumes state, exchanges code for the
// provider profile, finds or creates the matching account and issues a token.
// Failures are returned as *HandshakeError wrapping a sentinel from errors.go.
func (b *FederationBridge) Callback(ctx context.Context, code, state string) (*HandshakeResult, error) {
	step := StateCallbackPending
	fail := func(err error) (*HandshakeResult, error) {
		b.logger.WarnContext(ctx, "oauth handshake failed",
			logger.Provider(b.adapter.Name()),
			slog.String("step", step.String()),
			logger.Error(err),
			logger.Component("federation"),
		)
		return nil, &HandshakeError{Step: step, Err: err}
	}

	if state == "" {
		return fail(ErrInvalidState)
	}
	if err := b.states.ConsumeState(ctx, state); err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return fail(ErrInvalidState)
		}
		return fail(fmt.Errorf("failed to consume state: %w", err))
	}
	if code == "" {
		return fail(fmt.Errorf("%w: missing authorization code", ErrUpstreamFailure))
	}

	profile, err := b.exchange(ctx, code)
	if err != nil {
		return fail(err)
	}

	step = StateReconcile
	account, created, err := b.reconcile(ctx, profile)
	if err != nil {
		return fail(err)
	}

	step = StateIssue
	token, err := b.tokens.Issue(ctx, account.ID)
	if err != nil {
		return fail(fmt.Errorf("failed to issue token: %w", err))
	}

	b.logger.InfoContext(ctx, "oauth sign-in",
		logger.Provider(b.adapter.Name()),
		logger.AccountID(account.ID),
		slog.Bool("created", created),
		logger.Component("federation"),
	)

	return &HandshakeResult{
		Account: account,
		Token:   token,
		Created: created,
		State:   StateSucceeded,
	}, nil
}

func (b *FederationBridge) exchange(ctx context.Context, code string) (ProviderProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, b.exchangeTimeout)
	defer cancel()

	profile, err := b.adapter.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNoProviderEmail) {
			return ProviderProfile{}, err
		}
		return ProviderProfile{}, fmt.Errorf("%w: %w", ErrUpstreamFailure, err)
	}

	if profile.ExternalID == "" {
		return ProviderProfile{}, fmt.Errorf("%w: profile has no user id", ErrUpstreamFailure)
	}

	profile.Email = sanitizer.NormalizeEmail(profile.Email)
	if profile.Email == "" {
		return ProviderProfile{}, ErrNoProviderEmail
	}
	if b.verifiedOnly && !profile.EmailVerified {
		return ProviderProfile{}, ErrUnverifiedEmail
	}
	return profile, nil
}

// reconcile returns the account for profile, creating a federated one if the
// email is unknown. Losing a concurrent create falls back to the winner.
func (b *FederationBridge) reconcile(ctx context.Context, profile ProviderProfile) (*Account, bool, error) {
	existing, err := b.accounts.GetAccountByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		if err := b.checkLink(existing, profile); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	case !errors.Is(err, ErrAccountNotFound):
		return nil, false, fmt.Errorf("failed to look up account: %w", err)
	}

	now := b.now().UTC()
	account := &Account{
		ID:    uuid.New(),
		Email: profile.Email,
		Identity: Identity{
			Provider:   ProviderFederated,
			Issuer:     b.adapter.Name(),
			ExternalID: profile.ExternalID,
		},
		Profile: Profile{
			DisplayName: sanitizer.Name(profile.Name),
			AvatarURL:   profile.AvatarURL,
			Visibility:  VisibilityPublic,
		},
		Role:      RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := b.accounts.CreateAccount(ctx, account); err != nil {
		if !errors.Is(err, ErrEmailAlreadyExists) {
			return nil, false, fmt.Errorf("failed to create account: %w", err)
		}
		winner, err := b.accounts.GetAccountByEmail(ctx, profile.Email)
		if err != nil {
			return nil, false, fmt.Errorf("failed to re-read account: %w", err)
		}
		if err := b.checkLink(winner, profile); err != nil {
			return nil, false, err
		}
		return winner, false, nil
	}

	b.runAfterCreate(ctx, account)
	return account, true, nil
}

func (b *FederationBridge) runAfterCreate(ctx context.Context, account *Account) {
	if b.afterCreate == nil {
		return
	}

	created := *account
	b.hooks.Add(1)
	async.Detached(ctx, b.hookTimeout, func(ctx context.Context) error {
		defer b.hooks.Done()
		if err := b.afterCreate(ctx, &created); err != nil {
			b.logger.ErrorContext(ctx, "afterCreate hook failed",
				logger.AccountID(created.ID),
				logger.Provider(b.adapter.Name()),
				logger.Error(err),
				logger.Component("federation"),
			)
			return err
		}
		return nil
	})
}

func (b *FederationBridge) checkLink(account *Account, profile ProviderProfile) error {
	switch b.linkPolicy {
	case LinkPolicyTrustEmail:
		if !profile.EmailVerified {
			return ErrUnverifiedEmail
		}
		return nil
	default:
		if account.IsFederated() &&
			account.Identity.Issuer == b.adapter.Name() &&
			account.Identity.ExternalID == profile.ExternalID {
			return nil
		}
		return ErrProviderEmailInUse
	}
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
