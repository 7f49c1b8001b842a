package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ClaimSessionID carries the console session identifier.
const ClaimSessionID = "sid"

// NewToken signs a session cookie value that points at session sid.
func NewToken(sid string, duration time.Duration, secret string) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims[ClaimSessionID] = sid
	claims["iat"] = time.Now().Unix()
	claims["exp"] = time.Now().Add(duration).Unix()

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Expired reports whether token is a JWT whose exp lies before now. The
// signature is not checked: the backend owns the key. Tokens that are not
// JWTs or carry no exp never expire here.
func Expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return !exp.After(now)
}
