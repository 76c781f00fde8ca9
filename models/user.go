package models

// User models the authenticated profile. Its presence in persisted storage
// under the `user` key is the single source of truth for "logged in".
type User struct {
	ID     int    `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Bio    string `json:"bio,omitempty"`
}
