package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/spearfished/internal/ids"
	"github.com/roach88/spearfished/internal/store"
	"github.com/roach88/spearfished/internal/watch"
)

const (
	// MinPasswordLength matches the managed platform's rule.
	MinPasswordLength = 6
	// DefaultTokenTTL is the lifetime of issued session tokens.
	DefaultTokenTTL = 7 * 24 * time.Hour

	issuer = "spearfished"
)

// Clock supplies wall-clock time for token issuance.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// LocalOption configures a Local provider.
type LocalOption func(*Local)

// WithTokenTTL sets the session token lifetime.
func WithTokenTTL(d time.Duration) LocalOption {
	return func(l *Local) { l.ttl = d }
}

// WithBcryptCost sets the bcrypt work factor. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) LocalOption {
	return func(l *Local) { l.cost = cost }
}

// WithClock sets the clock used for token timestamps.
func WithClock(c Clock) LocalOption {
	return func(l *Local) { l.clock = c }
}

// WithIDs sets the uid generator.
func WithIDs(g ids.Generator) LocalOption {
	return func(l *Local) { l.ids = g }
}

// Local is a Provider over the local store.
//
// The Sign* methods change the process-wide session (used by the CLI);
// Register, Authenticate and Verify are stateless (used by the gateway).
type Local struct {
	store  *store.Store
	secret []byte
	ids    ids.Generator
	ttl    time.Duration
	cost   int
	clock  Clock

	state *watch.Value[State]
}

// NewLocal creates a provider over s that signs tokens with secret.
func NewLocal(s *store.Store, secret []byte, opts ...LocalOption) (*Local, error) {
	if len(secret) == 0 {
		return nil, errors.New("identity: empty token secret")
	}
	l := &Local{
		store:  s,
		secret: secret,
		ids:    ids.UUIDv7Generator{},
		ttl:    DefaultTokenTTL,
		cost:   bcrypt.DefaultCost,
		clock:  systemClock{},
		state:  watch.New(State{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Register creates an account without touching the current session.
func (l *Local) Register(ctx context.Context, email, password string) (Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Identity{}, err
	}
	if len(password) < MinPasswordLength {
		return Identity{}, &AuthError{
			Code:    CodeWeakPassword,
			Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength),
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cost)
	if err != nil {
		return Identity{}, &AuthError{Code: CodeInternal, Message: "hash password", Err: err}
	}

	u, err := l.store.CreateUser(ctx, store.User{UID: l.ids.Generate(), Email: email, PasswordHash: hash})
	if errors.Is(err, store.ErrDuplicate) {
		return Identity{}, &AuthError{Code: CodeEmailInUse, Message: "email already registered"}
	}
	if err != nil {
		return Identity{}, &AuthError{Code: CodeInternal, Message: "create user", Err: err}
	}

	return Identity{UID: u.UID, Email: u.Email}, nil
}

// Authenticate checks credentials without touching the current session.
func (l *Local) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Identity{}, err
	}

	u, err := l.store.UserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return Identity{}, &AuthError{Code: CodeUserNotFound, Message: "no account for " + email}
	}
	if err != nil {
		return Identity{}, &AuthError{Code: CodeInternal, Message: "look up user", Err: err}
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return Identity{}, &AuthError{Code: CodeWrongPassword, Message: "wrong password"}
	}

	return Identity{UID: u.UID, Email: u.Email}, nil
}

// SignUp registers an account and makes it the current identity.
func (l *Local) SignUp(ctx context.Context, email, password string) (Identity, error) {
	id, err := l.Register(ctx, email, password)
	if err != nil {
		return Identity{}, err
	}
	l.state.Set(State{Identity: id, SignedIn: true})
	return id, nil
}

// SignIn authenticates and makes the account the current identity.
func (l *Local) SignIn(ctx context.Context, email, password string) (Identity, error) {
	id, err := l.Authenticate(ctx, email, password)
	if err != nil {
		return Identity{}, err
	}
	l.state.Set(State{Identity: id, SignedIn: true})
	return id, nil
}

// SignOut clears the current identity.
func (l *Local) SignOut(context.Context) error {
	l.state.Set(State{})
	return nil
}

// Current returns the signed-in identity.
func (l *Local) Current() (Identity, bool) {
	s := l.state.Get()
	return s.Identity, s.SignedIn
}

// Watch streams the signed-in state.
func (l *Local) Watch(ctx context.Context) <-chan State {
	return l.state.Subscribe(ctx)
}

// Resume verifies a session token and makes its identity current.
func (l *Local) Resume(ctx context.Context, token string) (Identity, error) {
	id, err := l.Verify(token)
	if err != nil {
		return Identity{}, err
	}
	if _, err := l.store.UserByUID(ctx, id.UID); err != nil {
		return Identity{}, &AuthError{Code: CodeUserNotFound, Message: "account no longer exists", Err: err}
	}
	l.state.Set(State{Identity: id, SignedIn: true})
	return id, nil
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issue mints a session token for id.
func (l *Local) Issue(id Identity) (string, error) {
	now := l.clock.Now()
	claims := sessionClaims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(l.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.secret)
	if err != nil {
		return "", &AuthError{Code: CodeInternal, Message: "sign token", Err: err}
	}
	return token, nil
}

// Verify checks a session token and returns its identity.
func (l *Local) Verify(token string) (Identity, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return l.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return Identity{}, &AuthError{Code: CodeInvalidToken, Message: "invalid session token", Err: err}
	}

	// Time claims are checked against the same clock Issue uses.
	now := l.clock.Now()
	if !claims.VerifyExpiresAt(now, true) || !claims.VerifyNotBefore(now, false) {
		return Identity{}, &AuthError{Code: CodeInvalidToken, Message: "session token expired"}
	}
	if claims.Issuer != issuer || claims.Subject == "" {
		return Identity{}, &AuthError{Code: CodeInvalidToken, Message: "token not issued by this service"}
	}
	return Identity{UID: claims.Subject, Email: claims.Email}, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", &AuthError{Code: CodeInvalidEmail, Message: fmt.Sprintf("invalid email %q", email)}
	}
	return strings.ToLower(email), nil
}
