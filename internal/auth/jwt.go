package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the session state carried by a signed token: which account
// logged in and whether it holds the admin privilege at login time.
type Claims struct {
	AccountNumber string
	IsAdmin       bool
}

type tokenClaims struct {
	jwt.RegisteredClaims
	AccountNumber string `json:"account_number"`
	IsAdmin       bool   `json:"is_admin"`
}

func GenerateToken(accountNumber string, isAdmin bool, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		AccountNumber: accountNumber,
		IsAdmin:       isAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("GenerateToken: %w", err)
	}
	return signed, nil
}

func ValidateToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: %w", err)
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("ValidateToken: invalid token claims")
	}
	if tc.AccountNumber == "" {
		return nil, fmt.Errorf("ValidateToken: missing account number in token")
	}

	return &Claims{
		AccountNumber: tc.AccountNumber,
		IsAdmin:       tc.IsAdmin,
	}, nil
}
