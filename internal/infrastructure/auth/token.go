package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenInspector reads claims without verifying the signature. The auth
// service owns the signing key and verifies tokens on every request it serves.
type TokenInspector struct {
	parser *jwt.Parser
}

func NewTokenInspector() *TokenInspector {
	return &TokenInspector{parser: jwt.NewParser(jwt.WithoutClaimsValidation())}
}

func (i *TokenInspector) Inspect(token string) (int64, time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return 0, time.Time{}, fmt.Errorf("parse token: %w", err)
	}

	var expiresAt time.Time
	if exp, ok := claims["exp"]; ok {
		seconds, err := numericClaim(exp)
		if err != nil {
			return 0, time.Time{}, fmt.Errorf("exp claim: %w", err)
		}
		expiresAt = time.Unix(seconds, 0).UTC()
	}

	userID, err := userIDClaim(claims)
	if err != nil {
		return 0, time.Time{}, err
	}
	return userID, expiresAt, nil
}

func userIDClaim(claims jwt.MapClaims) (int64, error) {
	for _, key := range []string{"id", "userId", "user_id", "sub"} {
		raw, ok := claims[key]
		if !ok {
			continue
		}
		id, err := numericClaim(raw)
		if err != nil {
			continue
		}
		return id, nil
	}
	return 0, nil
}

func numericClaim(raw any) (int64, error) {
	switch v := raw.(type) {
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("not numeric: %q", v)
		}
		return n, nil
	default:
		return 0, errors.New("unsupported claim type")
	}
}
