package utils

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// shareTokenType tags share tokens so auth tokens can never open a shared
// invoice and vice versa.
const shareTokenType = "invoice_share"

const defaultShareTTLHours = 168 // 7 days

var (
	shareSecretOnce sync.Once
	shareSecret     []byte
	shareSecretErr  error
)

// ErrShareTokenExpired distinguishes an expired link from a forged one.
var ErrShareTokenExpired = errors.New("share token expired")

// ShareClaims is the payload of an invoice share-link token.
type ShareClaims struct {
	InvoiceID uint   `json:"invoiceId"`
	Type      string `json:"type"`
	jwt.RegisteredClaims
}

func loadShareSecret() error {
	shareSecretOnce.Do(func() {
		// Prefer SHARE_TOKEN_SECRET, fallback to the auth JWT secret.
		sec := os.Getenv("SHARE_TOKEN_SECRET")
		if strings.TrimSpace(sec) == "" {
			sec = os.Getenv("JWT_SECRET_KEY")
		}
		if strings.TrimSpace(sec) == "" {
			sec = os.Getenv("JWT_SECRET")
		}
		if strings.TrimSpace(sec) == "" {
			shareSecretErr = errors.New("share tokens not configured (set SHARE_TOKEN_SECRET or JWT_SECRET)")
			return
		}
		shareSecret = []byte(sec)
	})
	return shareSecretErr
}

func shareTTL() time.Duration {
	if v := strings.TrimSpace(os.Getenv("SHARE_TOKEN_TTL_HOURS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Hour
		}
	}
	return defaultShareTTLHours * time.Hour
}

// GenerateShareToken signs a read-only share-link token for an invoice.
func GenerateShareToken(invoiceID uint) (string, error) {
	if err := loadShareSecret(); err != nil {
		return "", err
	}
	now := time.Now()
	claims := &ShareClaims{
		InvoiceID: invoiceID,
		Type:      shareTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(shareTTL())),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(shareSecret)
}

// ParseShareToken validates a share-link token and returns the invoice ID
// it grants access to.
func ParseShareToken(raw string) (uint, error) {
	if err := loadShareSecret(); err != nil {
		return 0, err
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	var claims ShareClaims
	token, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return shareSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrShareTokenExpired
		}
		return 0, err
	}
	if !token.Valid || claims.Type != shareTokenType || claims.InvoiceID == 0 {
		return 0, errors.New("invalid share token")
	}
	return claims.InvoiceID, nil
}
