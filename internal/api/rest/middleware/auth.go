package middleware

import (
	"strings"

	"github.com/devpulse/api/internal/api/rest/rest"
	"github.com/devpulse/api/internal/errors"
	"github.com/devpulse/api/internal/global"
)

// Auth resolves the bearer token into an actor id. With required set, a
// missing or invalid token fails the request; otherwise the request proceeds
// without an actor.
func Auth(gctx global.Context, required bool) rest.Middleware {
	return func(ctx *rest.Ctx) rest.APIError {
		h := ctx.Header("Authorization")
		s := strings.Split(h, "Bearer ")

		if len(s) != 2 {
			if !required {
				return nil
			}

			return errors.ErrUnauthorized().SetFields(errors.Fields{"message": "Bad Authorization Header"})
		}

		userID, err := gctx.Inst().Auth.VerifyUserToken(s[1])
		if err != nil {
			if !required {
				return nil
			}

			return errors.ErrUnauthorized().SetFields(errors.Fields{"message": err.Error()})
		}

		ctx.SetActor(userID)

		return nil
	}
}
