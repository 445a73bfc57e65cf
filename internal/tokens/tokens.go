package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid covers bad signature, bad format and expiry alike.
var ErrTokenInvalid = errors.New("token invalid")

const (
	RoleClaimAdmin = "ROLE_ADMIN"
	RoleClaimUser  = "ROLE_USER"
)

type AccessClaims struct {
	Roles string `json:"roles"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	jwt.RegisteredClaims
}

// Service signs and validates both token shapes with one symmetric
// secret. Access tokens carry subject and a roles string claim,
// refresh tokens carry only the subject.
type Service struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewService(secret []byte, accessTTL, refreshTTL time.Duration) *Service {
	if accessTTL == 0 {
		accessTTL = time.Hour
	}
	if refreshTTL == 0 {
		refreshTTL = 14 * 24 * time.Hour
	}
	return &Service{Secret: secret, AccessTTL: accessTTL, RefreshTTL: refreshTTL}
}

func (s *Service) GenerateToken(username, roles string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.AccessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

func (s *Service) GenerateRefreshToken(username string) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.RefreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// ParseAccess verifies signature and expiry and returns the claims.
// A token without a subject is rejected.
func (s *Service) ParseAccess(tokenStr string) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, s.keyFunc)
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	if claims.Roles == "" {
		claims.Roles = RoleClaimUser
	}
	return &claims, nil
}

func (s *Service) ParseRefresh(tokenStr string) (*RefreshClaims, error) {
	var claims RefreshClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, s.keyFunc)
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return &claims, nil
}

// ExtractUsername returns the subject of a valid access token.
func (s *Service) ExtractUsername(tokenStr string) (string, error) {
	claims, err := s.ParseAccess(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ValidateToken reports whether the access token verifies.
func (s *Service) ValidateToken(tokenStr string) bool {
	_, err := s.ParseAccess(tokenStr)
	return err == nil
}

func (s *Service) keyFunc(t *jwt.Token) (any, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, errors.New("unexpected sign method")
	}
	return s.Secret, nil
}

// RoleClaim maps a stored user role to the token roles claim.
func RoleClaim(role string) string {
	if role == "ADMIN" {
		return RoleClaimAdmin
	}
	return RoleClaimUser
}
