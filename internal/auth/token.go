package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/freefinder/apiserver/config"
)

const tokenIssuer = "freefinder"

var (
	// ErrTokenExpired means the token was well-formed and correctly
	// signed but its expiry has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenMalformed means the token could not be parsed at all or
	// carried claims of the wrong shape.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrTokenSignature means the signature did not verify.
	ErrTokenSignature = errors.New("token signature invalid")
)

// Identity is the authenticated principal carried by a session token.
type Identity struct {
	Email  string
	UserID int
}

// PendingSignup is a signup that has not been persisted yet. It exists
// only inside a signed verification token: no user row is written until
// the token comes back verified, so abandoned signups need no cleanup.
type PendingSignup struct {
	Email        string
	Name         string
	PasswordHash string
	Phone        string
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email  string `json:"email"`
	UserID int    `json:"user_id"`
}

type verificationClaims struct {
	jwt.RegisteredClaims
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"password"`
	Phone        string `json:"phone,omitempty"`
}

// TokenService issues and validates the two token kinds used by the
// system: short-lived email-verification tokens and longer-lived session
// tokens. Each kind is HMAC-signed with its own secret.
type TokenService struct {
	sessionSecret []byte
	emailSecret   []byte
	sessionTTL    time.Duration
	verifyTTL     time.Duration
}

func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{
		sessionSecret: []byte(cfg.SessionSecret),
		emailSecret:   []byte(cfg.EmailSecret),
		sessionTTL:    cfg.SessionTTL,
		verifyTTL:     cfg.VerifyTTL,
	}
}

// IssueSession mints a session token for the given user.
func (s *TokenService) IssueSession(email string, userID int) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
		Email:  email,
		UserID: userID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.sessionSecret)
}

// VerifySession validates the signature and expiry of a session token
// and returns the identity it carries.
func (s *TokenService) VerifySession(tokenString string) (Identity, error) {
	claims := sessionClaims{}
	if err := s.parse(tokenString, &claims, s.sessionSecret); err != nil {
		return Identity{}, err
	}
	if claims.Email == "" {
		return Identity{}, ErrTokenMalformed
	}
	return Identity{Email: claims.Email, UserID: claims.UserID}, nil
}

// DecodeSession extracts the identity from a session token without
// checking the signature. It is only safe behind middleware that already
// verified the token; it must never be used as an authentication check
// on its own.
func (s *TokenService) DecodeSession(tokenString string) (Identity, error) {
	claims := sessionClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, &claims); err != nil {
		return Identity{}, ErrTokenMalformed
	}
	if claims.Email == "" {
		return Identity{}, ErrTokenMalformed
	}
	return Identity{Email: claims.Email, UserID: claims.UserID}, nil
}

// IssueVerification mints an email-verification token embedding the
// whole pending signup, signed with the email secret.
func (s *TokenService) IssueVerification(pending PendingSignup) (string, error) {
	now := time.Now()
	claims := verificationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.verifyTTL)),
		},
		Email:        pending.Email,
		Name:         pending.Name,
		PasswordHash: pending.PasswordHash,
		Phone:        pending.Phone,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.emailSecret)
}

// VerifyVerification validates an email-verification token and returns
// the pending signup it carries.
func (s *TokenService) VerifyVerification(tokenString string) (PendingSignup, error) {
	claims := verificationClaims{}
	if err := s.parse(tokenString, &claims, s.emailSecret); err != nil {
		return PendingSignup{}, err
	}
	if claims.Email == "" || claims.Name == "" || claims.PasswordHash == "" {
		return PendingSignup{}, ErrTokenMalformed
	}
	return PendingSignup{
		Email:        claims.Email,
		Name:         claims.Name,
		PasswordHash: claims.PasswordHash,
		Phone:        claims.Phone,
	}, nil
}

func (s *TokenService) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignature
		}
		return secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return ErrTokenSignature
		default:
			return ErrTokenMalformed
		}
	}
	if !token.Valid {
		return ErrTokenSignature
	}
	return nil
}
