package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// JWTClaims is the payload carried by every session token.
type JWTClaims struct {
	UserID    string `json:"userID"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	CompanyID string `json:"companyID,omitempty"`
	jwt.RegisteredClaims
}

var (
	jwtSecret     []byte
	jwtExpiration = 24 * time.Hour
)

// Init sets the signing secret and token lifetime. Must be called once
// from main before any token is issued or parsed.
func Init(secret string, expiration time.Duration) {
	jwtSecret = []byte(secret)
	if expiration > 0 {
		jwtExpiration = expiration
	}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateJWT issues a signed session token for the user.
func GenerateJWT(userID, email string, role Role, companyID string) (string, error) {
	claims := &JWTClaims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		CompanyID: companyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken validates a token string and returns its claims.
func ParseToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if _, ok := ParseRole(string(claims.Role)); !ok {
		return nil, errors.New("unknown role in token")
	}
	return claims, nil
}
