package models

import "strings"

type User struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

// UserPatch carries the fields of a partial user update. Nil or blank values are ignored.
type UserPatch struct {
	Name  *string
	Email *string
}

func (p UserPatch) Apply(u *User) {
	if present(p.Name) {
		u.Name = *p.Name
	}
	if present(p.Email) {
		u.Email = *p.Email
	}
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
