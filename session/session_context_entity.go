package session

import (
	"time"

	"annoflow/authority"

	"github.com/fundwit/go-commons/types"
)

// Context is the caller identity supplied by the session surface. The
// lifecycle engine trusts it without re-verifying credentials.
type Context struct {
	Token    string         `json:"token"`
	Identity Identity       `json:"identity"`
	Role     authority.Role `json:"role"`
	Banned   bool           `json:"banned"`

	SigningTime time.Time `json:"-"`
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

func (c *Context) HasCapability(cap authority.Capability) bool {
	if c == nil {
		return false
	}
	return c.Role.HasCapability(cap)
}

func (c *Context) Clone() Context {
	return Context{Token: c.Token, Identity: c.Identity, Role: c.Role, Banned: c.Banned, SigningTime: c.SigningTime}
}
