// Package domain contains core concepts of the chat room.
// This file defines user identity rules. No runtime, network, or UI logic
// should be added here.
package domain

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"chat-room/errors"
)

var validate = validator.New()

// User is one chat participant as seen by the server.
type User struct {
	Name string
	Addr string
}

func NewUser(name, addr string) User {
	return User{Name: name, Addr: addr}
}

type identityClaim struct {
	Name string `validate:"required,min=1,max=32,printascii"`
}

// ValidateName checks a claimed identity. Names are printable ASCII without
// spaces, must not collide with the server author name and must not start
// with the command prefix.
func ValidateName(name string) error {
	if err := validate.Struct(identityClaim{Name: name}); err != nil {
		return errors.ErrInvalidIdentity
	}
	if name == ServerName {
		return errors.ErrInvalidIdentity
	}
	if strings.HasPrefix(name, "/") || strings.ContainsAny(name, " @") {
		return errors.ErrInvalidIdentity
	}
	return nil
}

// GuestName derives an identity for clients that do not claim one.
func GuestName() string {
	return "guest-" + uuid.NewString()[:8]
}
