package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/bazaarchi/storefront/internal/cache"
	"github.com/bazaarchi/storefront/internal/config"
	"github.com/bazaarchi/storefront/internal/models"
	"github.com/bazaarchi/storefront/internal/repository"
	"github.com/bazaarchi/storefront/internal/sms"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPhone    = errors.New("invalid phone number")
	ErrOTPThrottled    = errors.New("otp requested too recently")
	ErrOTPInvalid      = errors.New("otp invalid or expired")
	ErrTooManyAttempts = errors.New("too many otp attempts")
)

// Claims is the JWT payload minted after OTP verification
type Claims struct {
	Phone string      `json:"phone"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// otpChallenge lives in the TTL cache keyed by phone; only the bcrypt hash of
// the code is kept. The mutex serializes attempt accounting across concurrent
// verifications of the same phone.
type otpChallenge struct {
	mu       sync.Mutex
	codeHash []byte
	attempts int
}

// bump advances the attempt counter and returns the new count
func (c *otpChallenge) bump() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.attempts++
	return c.attempts
}

// AuthService implements OTP-based phone sign-in
type AuthService struct {
	users   repository.UserRepository
	store   *cache.TTLCache
	gateway sms.Gateway
	auth    config.AuthConfig
	otp     config.OTPConfig
}

// NewAuthService creates a new auth service
func NewAuthService(users repository.UserRepository, store *cache.TTLCache, gateway sms.Gateway, auth config.AuthConfig, otp config.OTPConfig) *AuthService {
	return &AuthService{
		users:   users,
		store:   store,
		gateway: gateway,
		auth:    auth,
		otp:     otp,
	}
}

// RequestOTP generates a 6-digit code for the phone and dispatches it through
// the SMS gateway. A resend window keyed per phone throttles repeats.
func (s *AuthService) RequestOTP(ctx context.Context, rawPhone string) error {
	phone := models.NormalizePhone(rawPhone)
	if phone == "" {
		return ErrInvalidPhone
	}

	if _, held := s.store.Get(resendKey(phone)); held {
		return ErrOTPThrottled
	}

	code, err := generateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash otp: %w", err)
	}

	s.store.Set(challengeKey(phone), &otpChallenge{codeHash: hash}, s.otp.CodeTTL)
	s.store.Set(resendKey(phone), struct{}{}, s.otp.ResendTimeout)

	return s.gateway.SendOTP(ctx, phone, code)
}

// VerifyOTP checks the code, creates the account on first sign-in and mints a
// session token. Attempts are bounded; exceeding them burns the challenge.
func (s *AuthService) VerifyOTP(ctx context.Context, rawPhone, code string) (string, *models.User, error) {
	phone := models.NormalizePhone(rawPhone)
	if phone == "" {
		return "", nil, ErrInvalidPhone
	}

	value, ok := s.store.Get(challengeKey(phone))
	if !ok {
		return "", nil, ErrOTPInvalid
	}
	challenge := value.(*otpChallenge)

	if challenge.bump() > s.otp.MaxAttempts {
		s.store.Delete(challengeKey(phone))
		return "", nil, ErrTooManyAttempts
	}

	if bcrypt.CompareHashAndPassword(challenge.codeHash, []byte(code)) != nil {
		return "", nil, ErrOTPInvalid
	}

	s.store.Delete(challengeKey(phone))
	s.store.Delete(resendKey(phone))

	user, err := s.users.UpsertByPhone(ctx, phone)
	if err != nil {
		return "", nil, err
	}

	token, err := s.mintToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ParseToken validates a session token and returns its claims
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.auth.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (s *AuthService) mintToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Phone: user.Phone,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.auth.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.auth.JWTSecret))
}

// generateOTPCode returns a uniformly random 6-digit code
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func challengeKey(phone string) string {
	return "otp:code:" + phone
}

func resendKey(phone string) string {
	return "otp:resend:" + phone
}
