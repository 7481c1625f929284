package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
	"github.com/zatekoja/agencysite/backend/internal/domain/repositories"
	"github.com/zatekoja/agencysite/backend/pkg/config"
	apperrors "github.com/zatekoja/agencysite/backend/pkg/errors"
	"github.com/zatekoja/agencysite/backend/pkg/validation"
)

const denylistKeyPrefix = "auth:denylist:"

var errInvalidCredentials = apperrors.NewUnauthorizedError("invalid credentials")

// dummyHash is compared against when the email is unknown so both failure
// paths cost one bcrypt comparison
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("agencysite-placeholder"), bcrypt.DefaultCost)

// Claims are the JWT claims issued on sign-in
type Claims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"admin"`
	jwt.RegisteredClaims
}

// AuthResult is returned by sign-up and sign-in
type AuthResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *entities.User `json:"user"`
}

type signUpInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"min=8,max=72"`
	Name     string `json:"name" validate:"max=120"`
}

// AuthService handles email and password identity and token issuing
type AuthService struct {
	users repositories.UserRepository
	cache providers.CacheProvider
	cfg   config.AuthConfig
	now   func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users repositories.UserRepository, cache providers.CacheProvider, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		users: users,
		cache: cache,
		cfg:   cfg,
		now:   time.Now,
	}
}

// SetClock replaces the time source. Used by tests.
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

// SignUp registers a new user and signs them in
func (s *AuthService) SignUp(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if err := validation.Struct(signUpInput{Email: email, Password: password, Name: name}); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	now := s.now().UTC()
	user := &entities.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		IsAdmin:      s.cfg.IsAdminEmail(email),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.ID).Msg("user signed up")
	return s.issue(user)
}

// SignIn checks the credentials and issues a token. Unknown emails and wrong
// passwords fail with the same error.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *entities.User) (*AuthResult, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.TokenTTL)
	claims := &Claims{
		Email:   user.Email,
		IsAdmin: user.IsAdmin || s.cfg.IsAdminEmail(user.Email),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to sign token", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt.UTC(), User: user}, nil
}

func (s *AuthService) parse(tokenString string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Authenticate validates a bearer token and returns the caller it names
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (entities.AppContext, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return entities.AppContext{}, apperrors.NewUnauthorizedError("token expired")
		}
		return entities.AppContext{}, apperrors.NewUnauthorizedError("invalid token")
	}

	revoked, err := s.cache.Exists(ctx, denylistKeyPrefix+claims.ID)
	if err != nil {
		return entities.AppContext{}, apperrors.NewInternalError("failed to check token denylist", err)
	}
	if revoked {
		return entities.AppContext{}, apperrors.NewUnauthorizedError("token revoked")
	}

	return entities.AppContext{
		UserID:  claims.Subject,
		Email:   claims.Email,
		IsAdmin: claims.IsAdmin,
		TokenID: claims.ID,
	}, nil
}

// SignOut revokes a token until it would have expired anyway
func (s *AuthService) SignOut(ctx context.Context, tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil
		}
		return apperrors.NewUnauthorizedError("invalid token")
	}

	ttl := int(claims.ExpiresAt.Sub(s.now()).Seconds()) + 1
	if err := s.cache.Set(ctx, denylistKeyPrefix+claims.ID, []byte(claims.Subject), ttl); err != nil {
		return apperrors.NewInternalError("failed to revoke token", err)
	}
	log.Info().Str("user_id", claims.Subject).Msg("user signed out")
	return nil
}

// CurrentUser loads the signed-in user named by ctx
func (s *AuthService) CurrentUser(ctx context.Context) (*entities.User, error) {
	app := entities.AppContextFrom(ctx)
	if !app.Authenticated() {
		return nil, apperrors.NewUnauthorizedError("not signed in")
	}
	user, err := s.users.GetByID(ctx, app.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorizedError("account no longer exists")
		}
		return nil, err
	}
	user.IsAdmin = user.IsAdmin || app.IsAdmin
	return user, nil
}
