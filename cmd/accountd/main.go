// Command accountd serves the account API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dmitrymomot/accountkit/modules/account"
	"github.com/dmitrymomot/accountkit/pkg/auth"
	"github.com/dmitrymomot/accountkit/pkg/clientip"
	"github.com/dmitrymomot/accountkit/pkg/config"
	"github.com/dmitrymomot/accountkit/pkg/email"
	"github.com/dmitrymomot/accountkit/pkg/environment"
	"github.com/dmitrymomot/accountkit/pkg/file"
	"github.com/dmitrymomot/accountkit/pkg/httpserver"
	"github.com/dmitrymomot/accountkit/pkg/logger"
	"github.com/dmitrymomot/accountkit/pkg/mongo"
	"github.com/dmitrymomot/accountkit/pkg/ratelimiter"
	"github.com/dmitrymomot/accountkit/pkg/redis"
	"github.com/dmitrymomot/accountkit/pkg/requestid"
	"github.com/dmitrymomot/accountkit/pkg/revocation"
	accountsvc "github.com/dmitrymomot/accountkit/svc/account"
	"github.com/dmitrymomot/accountkit/svc/storage"
)

type appConfig struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"accountd"`
	// Storage is "mongo" or "memory". Empty picks mongo when MONGODB_URL is set.
	Storage    string `env:"STORAGE_BACKEND"`
	LinkPolicy string `env:"OAUTH_LINK_POLICY" envDefault:"strict"` // strict | trust_email

	HTTP      httpserver.Config
	API       account.Config
	Token     auth.TokenConfig
	Hasher    auth.HasherConfig
	OAuth     auth.FederationConfig
	Redis     redis.Config
	Files     file.Config
	Email     email.Config
	Google    auth.GoogleOAuthConfig
	GitHub    auth.GitHubOAuthConfig
	Avatars   avatarConfig
	RateLimit ratelimiter.Config
}

type avatarConfig struct {
	MaxSize int64 `env:"AVATAR_MAX_SIZE" envDefault:"5242880"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load[appConfig]()
	if err != nil {
		return err
	}

	env := environment.Parse(cfg.Env)
	log := logger.New(
		logger.WithEnvironment(env.String(), cfg.ServiceName),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor(), environment.LoggerExtractor()),
	)
	slog.SetDefault(log)

	var (
		accounts auth.AccountStorage
		checks   []httpserver.HealthCheck
		cleanup  []func()
	)
	defer func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}()

	useMongo := cfg.Storage == "mongo" || (cfg.Storage == "" && os.Getenv("MONGODB_URL") != "")
	if useMongo {
		mcfg, err := config.Load[mongo.Config]()
		if err != nil {
			return err
		}
		client, err := mongo.Connect(ctx, mcfg)
		if err != nil {
			return err
		}
		cleanup = append(cleanup, func() { _ = client.Disconnect(context.Background()) })

		store, err := storage.NewMongoStore(ctx, client.Database(mcfg.Database))
		if err != nil {
			return err
		}
		accounts = store
		checks = append(checks, mongo.Healthcheck(client))
		log.InfoContext(ctx, "using mongo account storage", slog.String("database", mcfg.Database))
	} else {
		accounts = storage.NewMemoryStore()
		log.WarnContext(ctx, "using in-memory account storage; data is lost on restart")
	}

	var (
		revoked revocation.Store
		states  auth.StateStore
		buckets ratelimiter.Store
	)
	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		cleanup = append(cleanup, func() { _ = client.Close() })
		revoked = revocation.NewRedisStore(client)
		states = storage.NewRedisStateStore(client)
		buckets = ratelimiter.NewRedisStore(client)
		checks = append(checks, redis.Healthcheck(client))
	} else {
		mem := revocation.NewMemoryStore()
		cleanup = append(cleanup, func() { _ = mem.Close() })
		revoked = mem
		states = storage.NewMemoryStateStore()
		memBuckets := ratelimiter.NewMemoryStore()
		cleanup = append(cleanup, func() { _ = memBuckets.Close() })
		buckets = memBuckets
	}

	var limiter ratelimiter.Limiter
	if cfg.RateLimit.Enabled() {
		bucket, err := ratelimiter.NewBucket(buckets, cfg.RateLimit)
		if err != nil {
			return err
		}
		limiter = bucket
	}

	tokens, err := auth.NewTokenService(cfg.Token, revoked)
	if err != nil {
		return err
	}

	files, err := file.New(ctx, cfg.Files)
	if err != nil {
		return err
	}
	var filesHandler http.Handler
	if local, ok := files.(*file.LocalStorage); ok {
		filesHandler = local.Handler()
		cfg.API.FilesPrefix = cfg.Files.BaseURL
	}

	sender, err := email.NewSender(cfg.Email, log)
	if err != nil {
		return err
	}

	welcome := accountsvc.WelcomeEmailHook(sender, cfg.Email.ProductName)
	hasher := auth.NewPasswordHasher(
		auth.WithBcryptCost(cfg.Hasher.Cost),
		auth.WithHashTimeout(cfg.Hasher.Timeout),
	)
	svc := accountsvc.NewService(accounts, hasher, tokens,
		accountsvc.WithLogger(log),
		accountsvc.WithFileStorage(files),
		accountsvc.WithMaxAvatarSize(cfg.Avatars.MaxSize),
		accountsvc.WithAfterRegister(welcome),
	)
	defer svc.Wait()

	policy, err := parseLinkPolicy(cfg.LinkPolicy)
	if err != nil {
		return err
	}
	federationOpts := func(stateTTL time.Duration, verifiedOnly bool) []auth.FederationOption {
		return []auth.FederationOption{
			auth.WithFederationLogger(log),
			auth.WithStateTTL(stateTTL),
			auth.WithExchangeTimeout(cfg.OAuth.ExchangeTimeout),
			auth.WithFederationHookTimeout(cfg.OAuth.HookTimeout),
			auth.WithVerifiedOnly(verifiedOnly),
			auth.WithLinkPolicy(policy),
			auth.WithAfterCreate(func(ctx context.Context, a *auth.Account) error {
				return welcome(ctx, a.Public())
			}),
		}
	}

	var providers []account.Federation
	addProvider := func(adapter auth.ProviderAdapter, stateTTL time.Duration, verifiedOnly bool) {
		bridge := auth.NewFederationBridge(adapter, accounts, states, tokens,
			federationOpts(stateTTL, verifiedOnly)...)
		cleanup = append(cleanup, bridge.Wait)
		providers = append(providers, bridge)
	}
	if cfg.Google.Enabled() {
		addProvider(auth.NewGoogleAdapter(cfg.Google), cfg.Google.StateTTL, cfg.Google.VerifiedOnly)
	}
	if cfg.GitHub.Enabled() {
		addProvider(auth.NewGitHubAdapter(cfg.GitHub), cfg.GitHub.StateTTL, cfg.GitHub.VerifiedOnly)
	}
	for _, p := range providers {
		log.InfoContext(ctx, "oauth provider enabled", logger.Provider(p.Provider()))
	}

	router := account.Router(account.RouterOptions{
		Config:       cfg.API,
		Accounts:     svc,
		Tokens:       tokens,
		Providers:    providers,
		Logger:       log,
		HealthChecks: checks,
		Files:        filesHandler,
		RateLimiter:  limiter,
	})

	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, environment.Middleware(env)(router))
}

func parseLinkPolicy(s string) (auth.LinkPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return auth.LinkPolicyStrict, nil
	case "trust_email":
		return auth.LinkPolicyTrustEmail, nil
	default:
		return 0, errors.New("OAUTH_LINK_POLICY must be strict or trust_email")
	}
}
