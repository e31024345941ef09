package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils"
	"github.com/golang-jwt/jwt/v4"
)

const (
	purposeSession       = "session"
	purposePasswordReset = "password_reset"

	sessionTTL = 7 * 24 * time.Hour
)

type (
	JWTService interface {
		GenerateTokenUser(userID string, role string) (string, error)
		GetUserIDByToken(token string) (string, string, error)
		GenerateTokenPasswordReset(userID string, passwordHash string, duration time.Duration) (string, error)
		ValidateTokenPasswordReset(token string) (*PasswordResetClaims, error)
	}

	jwtUserClaim struct {
		UserID  string `json:"user_id"`
		Role    string `json:"role"`
		Purpose string `json:"purpose"`
		jwt.RegisteredClaims
	}

	// PasswordResetClaims carries a fingerprint of the password hash so a
	// reset link stops working once the password changed.
	PasswordResetClaims struct {
		UserID      string `json:"user_id"`
		Purpose     string `json:"purpose"`
		Fingerprint string `json:"fp"`
		jwt.RegisteredClaims
	}

	jwtService struct {
		secretKey string
		issuer    string
	}
)

func NewJWTService() JWTService {
	utils.LoadConfig()
	return NewJWTServiceWithSecret(utils.GetConfig("JWT_SECRET"))
}

func NewJWTServiceWithSecret(secret string) JWTService {
	return &jwtService{
		secretKey: secret,
		issuer:    "CULTIVO_DO_BEM",
	}
}

func (j *jwtService) GenerateTokenUser(userID string, role string) (string, error) {
	claims := jwtUserClaim{
		UserID:  userID,
		Role:    role,
		Purpose: purposeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

func (j *jwtService) parseToken(t_ *jwt.Token) (any, error) {
	if _, ok := t_.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t_.Header["alg"])
	}
	return []byte(j.secretKey), nil
}

func (j *jwtService) GetUserIDByToken(token string) (string, string, error) {
	claims := &jwtUserClaim{}
	t_Token, err := jwt.ParseWithClaims(token, claims, j.parseToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", domain.ErrTokenExpired
		}
		return "", "", domain.ErrTokenInvalid
	}
	if !t_Token.Valid || claims.Purpose != purposeSession {
		return "", "", domain.ErrTokenInvalid
	}

	return claims.UserID, claims.Role, nil
}

func (j *jwtService) GenerateTokenPasswordReset(userID string, passwordHash string, duration time.Duration) (string, error) {
	claims := PasswordResetClaims{
		UserID:      userID,
		Purpose:     purposePasswordReset,
		Fingerprint: fingerprint(passwordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

func (j *jwtService) ValidateTokenPasswordReset(token string) (*PasswordResetClaims, error) {
	claims := &PasswordResetClaims{}
	t_Token, err := jwt.ParseWithClaims(token, claims, j.parseToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !t_Token.Valid || claims.Purpose != purposePasswordReset {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// MatchesPassword reports whether the claims were issued for passwordHash.
func (c *PasswordResetClaims) MatchesPassword(passwordHash string) bool {
	return c.Fingerprint == fingerprint(passwordHash)
}

func fingerprint(passwordHash string) string {
	if len(passwordHash) < 16 {
		return passwordHash
	}
	return passwordHash[len(passwordHash)-16:]
}
