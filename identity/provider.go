// Package identity authenticates callers of the RideMyWay API.
//
// It owns account signup, email verification and password login, and turns
// a bearer token back into a domain.Principal for every request. The ride
// services only ever see that Principal.
//
//	tokens := identity.NewTokenIssuer(cfg.JWTSecret, 24*time.Hour)
//	idp := identity.NewProvider(repo, identity.NewBcryptHasher(10), tokens,
//	    identity.WithClientURL(cfg.ClientURL),
//	)
//
//	principal, err := idp.Authenticate(ctx, token)
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ridemyway/ridemyway/domain"
	"github.com/ridemyway/ridemyway/logger"
	"github.com/ridemyway/ridemyway/telemetry"
	"go.uber.org/zap"
)

const (
	DefaultLoginLimit  = 5
	DefaultLoginWindow = 15 * time.Minute
	minPasswordLength  = 6
)

// Session is an issued identity token and the account it belongs to.
type Session struct {
	Token     string       `json:"-"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type SignupInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

type Provider struct {
	users       domain.UserStorage
	hasher      domain.Hasher
	tokens      *TokenIssuer
	mailer      Mailer
	limiter     RateLimiter
	metrics     telemetry.Recorder
	clientURL   string
	loginLimit  int
	loginWindow time.Duration
}

type Option func(*Provider)

func WithMailer(m Mailer) Option {
	return func(p *Provider) {
		p.mailer = m
	}
}

// WithRateLimiter guards Login with l, allowing limit attempts per email per window.
func WithRateLimiter(l RateLimiter, limit int, window time.Duration) Option {
	return func(p *Provider) {
		p.limiter = l
		p.loginLimit = limit
		p.loginWindow = window
	}
}

func WithRecorder(r telemetry.Recorder) Option {
	return func(p *Provider) {
		p.metrics = r
	}
}

// WithClientURL sets the frontend base URL used in verification links.
func WithClientURL(u string) Option {
	return func(p *Provider) {
		p.clientURL = strings.TrimRight(u, "/")
	}
}

func NewProvider(users domain.UserStorage, hasher domain.Hasher, tokens *TokenIssuer, opts ...Option) *Provider {
	p := &Provider{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		mailer:      LogMailer{},
		limiter:     NewMemoryRateLimiter(),
		metrics:     telemetry.Nop{},
		loginLimit:  DefaultLoginLimit,
		loginWindow: DefaultLoginWindow,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (in SignupInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	if !in.Role.Valid() {
		return fmt.Errorf("%w: role must be driver or passenger", domain.ErrInvalidInput)
	}
	return nil
}

// Signup registers an unverified account and sends its verification link.
func (p *Provider) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)

	if _, err := p.users.FindUserByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := p.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	token := uuid.NewString()
	u := &domain.User{
		Name:              strings.TrimSpace(in.Name),
		Email:             email,
		PasswordHash:      hash,
		Role:              in.Role,
		VerificationToken: &token,
	}
	if err := p.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/verify-email?token=%s&email=%s", p.clientURL, token, url.QueryEscape(email))
	if err := p.mailer.SendVerification(ctx, u.Name, email, link); err != nil {
		// The account exists; the user can ask for the link again.
		logger.Log.Error("failed to send verification email", zap.Uint("user_id", u.ID), zap.Error(err))
	}

	logger.Log.Info("user signed up", zap.Uint("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// VerifyEmail confirms the account and signs the user in.
func (p *Provider) VerifyEmail(ctx context.Context, email, token string) (*Session, error) {
	u, err := p.users.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidVerification
		}
		return nil, err
	}
	if token == "" || u.VerificationToken == nil || *u.VerificationToken != token {
		return nil, domain.ErrInvalidVerification
	}

	if err := p.users.MarkUserVerified(ctx, u.ID); err != nil {
		return nil, err
	}
	u.IsVerified = true
	u.VerificationToken = nil

	return p.issue(u)
}

// Login checks a password and issues a token for a verified account.
func (p *Provider) Login(ctx context.Context, email, password string) (sess *Session, err error) {
	email = normalizeEmail(email)
	defer func() {
		p.metrics.RecordLogin(ctx, err == nil)
	}()

	key := "login:" + email
	allowed, _, limitErr := p.limiter.Allow(ctx, key, p.loginLimit, p.loginWindow)
	if limitErr != nil {
		logger.Log.Warn("login rate limiter unavailable", zap.Error(limitErr))
	} else if !allowed {
		p.metrics.RecordRateLimit(ctx, "login")
		return nil, domain.ErrRateLimited
	}

	u, err := p.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !p.hasher.Compare(password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !u.IsVerified {
		return nil, domain.ErrNotVerified
	}

	if err := p.limiter.Reset(ctx, key); err != nil {
		logger.Log.Warn("failed to reset login limiter", zap.Error(err))
	}

	return p.issue(u)
}

func (p *Provider) issue(u *domain.User) (*Session, error) {
	token, expiresAt, err := p.tokens.Issue(domain.Principal{ID: u.ID, Role: u.Role})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// Authenticate resolves a token to the caller it was issued to.
func (p *Provider) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p.tokens.Validate(token)
}

// Me loads the account behind an authenticated principal.
func (p *Provider) Me(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	return p.users.GetUser(ctx, principal.ID)
}

// TokenTTL is the lifetime of tokens issued by this provider.
func (p *Provider) TokenTTL() time.Duration {
	return p.tokens.Expiry()
}
