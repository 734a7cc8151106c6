package rest

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/devpulse/api/internal/errors"
	"github.com/devpulse/api/internal/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Ctx struct {
	*fasthttp.RequestCtx
}

const (
	actorKey     = "devpulse.actor"
	requestIDKey = "devpulse.request_id"
)

func (c *Ctx) JSON(status HttpStatusCode, v interface{}) APIError {
	b, err := json.Marshal(v)
	if err != nil {
		c.SetStatusCode(InternalServerError)

		return errors.ErrInternalServerError().
			SetDetail("JSON Parsing Failed").
			SetFields(errors.Fields{"JSON_ERROR": err.Error()})
	}

	c.SetStatusCode(status)
	c.SetContentType("application/json")
	c.SetBody(b)

	return nil
}

func (c *Ctx) SetStatusCode(code HttpStatusCode) {
	c.RequestCtx.SetStatusCode(int(code))
}

func (c *Ctx) StatusCode() HttpStatusCode {
	return HttpStatusCode(c.RequestCtx.Response.StatusCode())
}

// Param returns a path parameter captured by the router.
func (c *Ctx) Param(name string) string {
	v, _ := c.UserValue(name).(string)

	return v
}

// Header returns a request header value as a string.
func (c *Ctx) Header(name string) string {
	return utils.B2S(c.Request.Header.Peek(name))
}

// SetActor stores the authenticated user's id on the request.
func (c *Ctx) SetActor(userID string) {
	c.SetUserValue(actorKey, userID)
}

// GetActor returns the authenticated user's id, if any.
func (c *Ctx) GetActor() (string, bool) {
	v, ok := c.UserValue(actorKey).(string)

	return v, ok && v != ""
}

func (c *Ctx) SetRequestID(id string) {
	c.SetUserValue(requestIDKey, id)
}

func (c *Ctx) RequestID() string {
	v, _ := c.UserValue(requestIDKey).(string)

	return v
}

func (c *Ctx) Log() *zap.SugaredLogger {
	z := zap.S().Named("api/rest").With(
		"request_id", c.RequestID(),
		"route", utils.B2S(c.Path()),
	)

	if actor, ok := c.GetActor(); ok {
		z = z.With("actor_id", actor)
	}

	return z
}
