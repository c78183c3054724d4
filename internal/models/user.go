package models

import "time"

// User is the public view of an account. It never carries the credential hash.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserRecord is a stored account: the public user plus its one-way password hash
type UserRecord struct {
	User
	PasswordHash string `json:"passwordHash"`
}

// Public strips the credential hash
func (r UserRecord) Public() User {
	return r.User
}
