package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	kindAccess   = "access"
	kindRefresh  = "refresh"
	kindRegister = "register"
)

type Claims struct {
	UserID     uint64 `json:"uid,omitempty"`
	ProviderID string `json:"pid,omitempty"`
	Kind       string `json:"typ"`
	jwt.RegisteredClaims
}

func sign(claims Claims, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parse(tokenStr, secret, kind string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Kind != kind {
		return nil, errors.New("unexpected token type " + strconv.Quote(claims.Kind))
	}
	return claims, nil
}

func SignAccessToken(userID uint64, secret string, ttl time.Duration) (string, error) {
	return sign(Claims{
		UserID:           userID,
		Kind:             kindAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: strconv.FormatUint(userID, 10)},
	}, secret, ttl)
}

// ParseAccessToken returns the user id carried by a valid access token.
func ParseAccessToken(tokenStr, secret string) (uint64, error) {
	claims, err := parse(tokenStr, secret, kindAccess)
	if err != nil {
		return 0, err
	}
	if claims.UserID == 0 {
		return 0, errors.New("access token without uid")
	}
	return claims.UserID, nil
}

// signRefreshToken gives every refresh token a random id so two tokens issued
// within the same second never collide.
func signRefreshToken(userID uint64, secret string, ttl time.Duration) (string, error) {
	return sign(Claims{
		UserID: userID,
		Kind:   kindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:      uuid.NewString(),
			Subject: strconv.FormatUint(userID, 10),
		},
	}, secret, ttl)
}

func signRegisterToken(providerID, secret string, ttl time.Duration) (string, error) {
	return sign(Claims{ProviderID: providerID, Kind: kindRegister}, secret, ttl)
}
