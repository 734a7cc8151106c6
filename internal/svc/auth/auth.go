package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	"github.com/devpulse/api/internal/utils"
)

// Authorizer signs and verifies the bearer tokens that identify users on the
// coordination endpoints. Token issuance (OAuth flows) happens elsewhere;
// this service only deals with the HS256 JWT itself.
type Authorizer interface {
	SignUserToken(userID string) (string, error)
	VerifyUserToken(token string) (string, error)
}

type Options struct {
	JWTSecret string
}

func New(opt Options) Authorizer {
	return &authorizer{secret: opt.JWTSecret}
}

type authorizer struct {
	secret string
}

type userClaims struct {
	UserID string `json:"u"`

	jwt.RegisteredClaims
}

func (a *authorizer) SignUserToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, userClaims{UserID: userID})

	return token.SignedString(utils.S2B(a.secret))
}

func (a *authorizer) VerifyUserToken(token string) (string, error) {
	claims := userClaims{}

	result, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("bad jwt signing method, expected HMAC but got %v", t.Header["alg"])
		}

		return utils.S2B(a.secret), nil
	})
	if err != nil {
		return "", err
	}

	if !result.Valid || claims.UserID == "" {
		return "", fmt.Errorf("invalid token")
	}

	return claims.UserID, nil
}
