// Package identity carries the authenticated caller from the JWT middleware
// into handlers and services.
package identity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const localsKey = "identity"

// Identity is the signed-in user. The zero value means nobody is signed in.
type Identity struct {
	UserID string
	Email  string
}

// Anonymous reports whether no user is signed in.
func (i Identity) Anonymous() bool { return i.UserID == "" }

// FromToken extracts the identity from verified JWT claims.
func FromToken(token *jwt.Token) (Identity, error) {
	if token == nil {
		return Identity{}, errors.New("invalid token in context")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return Identity{}, errors.New("missing sub claim")
	}
	if _, err := uuid.Parse(sub); err != nil {
		return Identity{}, err
	}

	email, _ := claims["email"].(string)
	return Identity{UserID: sub, Email: email}, nil
}

// Set stores id on the request.
func Set(c *fiber.Ctx, id Identity) {
	c.Locals(localsKey, id)
}

// From returns the identity stored on the request, or the zero Identity.
func From(c *fiber.Ctx) Identity {
	if id, ok := c.Locals(localsKey).(Identity); ok {
		return id
	}
	return Identity{}
}

// UserUUID parses the user id.
func (i Identity) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(i.UserID)
}
