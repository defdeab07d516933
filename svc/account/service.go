package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/pkg/async"
	"github.com/dmitrymomot/accountkit/pkg/auth"
	"github.com/dmitrymomot/accountkit/pkg/file"
	"github.com/dmitrymomot/accountkit/pkg/logger"
	"github.com/dmitrymomot/accountkit/pkg/sanitizer"
	"github.com/dmitrymomot/accountkit/pkg/validator"
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
}

// TokenManager issues and revokes access tokens.
type TokenManager interface {
	Issue(ctx context.Context, accountID uuid.UUID) (auth.IssuedToken, error)
	Revoke(ctx context.Context, token string) error
}

// Service implements the account lifecycle: registration, sign-in, logout and
// profile management.
type Service struct {
	accounts auth.AccountStorage
	hasher   PasswordHasher
	tokens   TokenManager
	files    file.Storage
	logger   *slog.Logger
	now      func() time.Time

	passwordPolicy validator.PasswordPolicy
	maxAvatarSize  int64

	afterRegister func(ctx context.Context, account auth.PublicAccount) error
	hookTimeout   time.Duration
	hooks         sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithFileStorage enables avatar uploads.
func WithFileStorage(fs file.Storage) Option {
	return func(s *Service) { s.files = fs }
}

// WithPasswordPolicy overrides the password strength rules used at registration.
func WithPasswordPolicy(p validator.PasswordPolicy) Option {
	return func(s *Service) { s.passwordPolicy = p }
}

// WithMaxAvatarSize caps uploaded avatar size in bytes.
func WithMaxAvatarSize(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAvatarSize = n
		}
	}
}

// WithAfterRegister sets a hook that runs in the background after a
// successful registration. Its error is logged only.
func WithAfterRegister(fn func(context.Context, auth.PublicAccount) error) Option {
	return func(s *Service) { s.afterRegister = fn }
}

// WithHookTimeout bounds background hooks. Default 10s.
func WithHookTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.hookTimeout = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates the account service.
func NewService(accounts auth.AccountStorage, hasher PasswordHasher, tokens TokenManager, opts ...Option) *Service {
	s := &Service{
		accounts:       accounts,
		hasher:         hasher,
		tokens:         tokens,
		logger:         logger.Discard(),
		now:            time.Now,
		passwordPolicy: validator.DefaultPasswordPolicy(),
		maxAvatarSize:  5 << 20,
		hookTimeout:    10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Wait blocks until background hooks started so far have finished.
func (s *Service) Wait() {
	s.hooks.Wait()
}

// Register creates a local account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (auth.PublicAccount, error) {
	in = in.sanitize()
	if err := in.validate(s.passwordPolicy); err != nil {
		return auth.PublicAccount{}, err
	}

	if _, err := s.accounts.GetAccountByEmail(ctx, in.Email); err == nil {
		return auth.PublicAccount{}, auth.ErrEmailAlreadyExists
	} else if !errors.Is(err, auth.ErrAccountNotFound) {
		return auth.PublicAccount{}, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return auth.PublicAccount{}, err
	}

	now := s.now().UTC()
	account := &auth.Account{
		ID:           uuid.New(),
		Email:        in.Email,
		PasswordHash: hash,
		Identity:     auth.Identity{Provider: auth.ProviderLocal},
		Profile: auth.Profile{
			DisplayName: in.DisplayName,
			AvatarURL:   in.AvatarURL,
			Bio:         in.Bio,
			Phone:       in.Phone,
			Visibility:  auth.VisibilityPublic,
		},
		Role:      auth.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, auth.ErrEmailAlreadyExists) {
			return auth.PublicAccount{}, err
		}
		return auth.PublicAccount{}, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.InfoContext(ctx, "account registered",
		logger.AccountID(account.ID),
		logger.Event("account.registered"),
		logger.Component("account"),
	)

	pub := account.Public()
	s.runAfterRegister(ctx, pub)
	return pub, nil
}

func (s *Service) runAfterRegister(ctx context.Context, account auth.PublicAccount) {
	if s.afterRegister == nil {
		return
	}

	s.hooks.Add(1)
	async.Detached(ctx, s.hookTimeout, func(ctx context.Context) error {
		defer s.hooks.Done()
		if err := s.afterRegister(ctx, account); err != nil {
			s.logger.ErrorContext(ctx, "afterRegister hook failed",
				logger.AccountID(account.ID),
				logger.Error(err),
				logger.Component("account"),
			)
			return err
		}
		return nil
	})
}

// SignInResult is returned by SignIn.
type SignInResult struct {
	Account auth.PublicAccount `json:"account"`
	auth.IssuedToken
}

// SignIn authenticates a local account by email and password.
func (s *Service) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	email = sanitizer.NormalizeEmail(email)
	if err := validator.Apply(
		validator.Required("email", email),
		validator.Required("password", password),
	); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if account.IsFederated() {
		return nil, auth.ErrWrongProvider
	}

	ok, err := s.hasher.Verify(ctx, password, account.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.WarnContext(ctx, "sign-in rejected",
			logger.AccountID(account.ID),
			logger.Event("account.sign_in_failed"),
			logger.Component("account"),
		)
		return nil, auth.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	return &SignInResult{Account: account.Public(), IssuedToken: token}, nil
}

// Logout revokes token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return auth.ErrMissingToken
	}
	return s.tokens.Revoke(ctx, token)
}

// GetProfile returns the account with the given id.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (auth.PublicAccount, error) {
	account, err := s.get(ctx, id)
	if err != nil {
		return auth.PublicAccount{}, err
	}
	return account.Public(), nil
}

// UpdateProfile applies the non-nil fields of patch.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (auth.PublicAccount, error) {
	patch = patch.sanitize()
	if err := patch.validate(s.passwordPolicy); err != nil {
		return auth.PublicAccount{}, err
	}

	account, err := s.get(ctx, id)
	if err != nil {
		return auth.PublicAccount{}, err
	}

	if patch.DisplayName != nil {
		account.Profile.DisplayName = *patch.DisplayName
	}
	if patch.Bio != nil {
		account.Profile.Bio = *patch.Bio
	}
	if patch.Phone != nil {
		account.Profile.Phone = *patch.Phone
	}
	if patch.AvatarURL != nil {
		account.Profile.AvatarURL = *patch.AvatarURL
	}

	if patch.Email != nil && *patch.Email != account.Email {
		if _, err := s.accounts.GetAccountByEmail(ctx, *patch.Email); err == nil {
			return auth.PublicAccount{}, auth.ErrEmailAlreadyExists
		} else if !errors.Is(err, auth.ErrAccountNotFound) {
			return auth.PublicAccount{}, fmt.Errorf("failed to check email: %w", err)
		}
		account.Email = *patch.Email
	}

	if patch.Password != nil {
		if account.IsFederated() {
			return auth.PublicAccount{}, auth.ErrWrongProvider
		}
		hash, err := s.hasher.Hash(ctx, *patch.Password)
		if err != nil {
			return auth.PublicAccount{}, err
		}
		account.PasswordHash = hash
	}

	return s.save(ctx, account)
}

// UpdateAvatar sets the profile photo from a URL or an uploaded image.
func (s *Service) UpdateAvatar(ctx context.Context, id uuid.UUID, in AvatarInput) (auth.PublicAccount, error) {
	if err := in.validate(s.files != nil, s.maxAvatarSize); err != nil {
		return auth.PublicAccount{}, err
	}

	account, err := s.get(ctx, id)
	if err != nil {
		return auth.PublicAccount{}, err
	}

	if in.Upload == nil {
		account.Profile.AvatarURL = in.URL
		return s.save(ctx, account)
	}

	ext, _ := file.ImageExtension(in.Upload.ContentType)
	key := fmt.Sprintf("avatars/%s/%s%s", account.ID, uuid.NewString(), ext)
	obj, err := s.files.Put(ctx, key, in.Upload.Content, in.Upload.Size, in.Upload.ContentType)
	if err != nil {
		return auth.PublicAccount{}, fmt.Errorf("failed to store avatar: %w", err)
	}

	account.Profile.AvatarURL = obj.URL
	return s.save(ctx, account)
}

// SetVisibility switches the profile between public and private.
func (s *Service) SetVisibility(ctx context.Context, id uuid.UUID, visibility auth.Visibility) (auth.PublicAccount, error) {
	if !visibility.Valid() {
		return auth.PublicAccount{}, auth.ErrInvalidVisibility
	}

	account, err := s.get(ctx, id)
	if err != nil {
		return auth.PublicAccount{}, err
	}
	account.Profile.Visibility = visibility
	return s.save(ctx, account)
}

// SetRole changes targetID's role. Only admins may do this.
func (s *Service) SetRole(ctx context.Context, requesterID, targetID uuid.UUID, role auth.Role) (auth.PublicAccount, error) {
	if err := s.requireAdmin(ctx, requesterID); err != nil {
		return auth.PublicAccount{}, err
	}
	if !role.Valid() {
		return auth.PublicAccount{}, auth.ErrInvalidRole
	}

	account, err := s.get(ctx, targetID)
	if err != nil {
		return auth.PublicAccount{}, err
	}
	account.Role = role

	pub, err := s.save(ctx, account)
	if err != nil {
		return auth.PublicAccount{}, err
	}

	s.logger.InfoContext(ctx, "account role changed",
		logger.AccountID(targetID),
		logger.Role(string(role)),
		slog.String("changed_by", requesterID.String()),
		logger.Event("account.role_changed"),
		logger.Component("account"),
	)
	return pub, nil
}

// ListAllProfiles returns every account. Only admins may call it.
func (s *Service) ListAllProfiles(ctx context.Context, requesterID uuid.UUID) ([]auth.PublicAccount, error) {
	if err := s.requireAdmin(ctx, requesterID); err != nil {
		return nil, err
	}
	return s.list(ctx, auth.AccountFilter{})
}

// ListPublicProfiles returns accounts whose visibility is public.
func (s *Service) ListPublicProfiles(ctx context.Context) ([]auth.PublicAccount, error) {
	return s.list(ctx, auth.AccountFilter{Visibility: auth.VisibilityPublic})
}

func (s *Service) list(ctx context.Context, filter auth.AccountFilter) ([]auth.PublicAccount, error) {
	accounts, err := s.accounts.ListAccounts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return auth.PublicAccounts(accounts), nil
}

func (s *Service) requireAdmin(ctx context.Context, id uuid.UUID) error {
	requester, err := s.get(ctx, id)
	if err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			// a deleted or unknown requester has no privileges
			return auth.ErrForbidden
		}
		return err
	}
	if !requester.IsAdmin() {
		return auth.ErrForbidden
	}
	return nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*auth.Account, error) {
	account, err := s.accounts.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return account, nil
}

func (s *Service) save(ctx context.Context, account *auth.Account) (auth.PublicAccount, error) {
	account.UpdatedAt = s.now().UTC()
	if err := s.accounts.UpdateAccount(ctx, account); err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) || errors.Is(err, auth.ErrEmailAlreadyExists) {
			return auth.PublicAccount{}, err
		}
		return auth.PublicAccount{}, fmt.Errorf("failed to update account: %w", err)
	}
	return account.Public(), nil
}
