package user

import "errors"

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// DefaultRole is assigned at registration. Nothing enforces authorization on
// it yet; it is stored and returned as plain profile data.
const DefaultRole = "employee"

type User struct {
	Email          string `bson:"email" json:"email"`
	HashedPassword string `bson:"hashed_password" json:"-"` // never expose the digest in JSON
	FullName       string `bson:"full_name" json:"full_name"`
	Role           string `bson:"role" json:"role"`
}

// Profile is the client-facing view of a user. It deliberately has no field
// for the password digest or the store's internal document ID.
type Profile struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (u User) Profile() Profile {
	return Profile{
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
	}
}

// Changes is a partial-update set. Nil pointers mean "leave the field alone".
type Changes struct {
	FullName       *string
	HashedPassword *string
}

func (c Changes) IsEmpty() bool {
	return c.FullName == nil && c.HashedPassword == nil
}
