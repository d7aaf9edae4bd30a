package account

import (
	"annoflow/authority"

	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID       types.ID       `json:"id" gorm:"primary_key"`
	Name     string         `json:"name" gorm:"unique_index:name_unique"`
	Secret   string         `json:"-"`
	Nickname string         `json:"nickname"`
	Role     authority.Role `json:"role"`

	Banned bool `json:"banned"`
	Points int  `json:"points"`
}

func (u *User) TableName() string {
	return "users"
}

func (u *User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}

type UserInfo struct {
	ID       types.ID       `json:"id"`
	Name     string         `json:"name"`
	Nickname string         `json:"nickname"`
	Role     authority.Role `json:"role"`
	Banned   bool           `json:"banned"`
	Points   int            `json:"points"`
}

type UserCreation struct {
	Name     string         `json:"name" binding:"required"`
	Nickname string         `json:"nickname"`
	Secret   string         `json:"secret" binding:"required"`
	Role     authority.Role `json:"role" binding:"required"`
}

type PointsCrediting struct {
	Points int `json:"points" binding:"required,gt=0"`
}
