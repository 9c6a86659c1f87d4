package models

type User struct {
	Base
	Name           string `json:"name"`
	Surname        string `json:"surname"`
	Username       string `json:"username"`
	Email          string `json:"email,omitempty"`
	HashedPassword string `json:"hashed_password"`
}

// Identity returns the raw username; the store normalizes it into the key.
func (u *User) Identity() string {
	return u.Username
}

// DisplayName is what the home page greets the user with.
func (u *User) DisplayName() string {
	if u.Name == "" && u.Surname == "" {
		return u.Username
	}
	if u.Surname == "" {
		return u.Name
	}
	return u.Name + " " + u.Surname
}
