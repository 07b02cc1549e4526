package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdminUsername is the reserved account seeded on first run. It can never be deleted.
const AdminUsername = "admin"

// User is an account holder. Balance is the uninvested cash available for buys.
type User struct {
	Username     string          `json:"username"`
	PasswordHash string          `json:"password_hash"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Balance      decimal.Decimal `json:"balance"`
	IsAdmin      bool            `json:"is_admin"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Clone returns a copy that shares no mutable state with u.
func (u *User) Clone() *User {
	c := *u
	return &c
}

// FullName joins first and last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
