package model

// Profile is the account profile as returned by GET /profile
type Profile struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Picture     string `json:"picture"`
}

// ProfileUpdate carries the mutable subset of a profile. Empty fields are
// omitted from the request so partial updates do not blank other fields.
// The same JSON shape is used when an update is staged locally for a
// later login.
type ProfileUpdate struct {
	Name        string `json:"name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Picture     string `json:"picture,omitempty"`
}

// IsZero reports whether the update carries no changes
func (u ProfileUpdate) IsZero() bool {
	return u.Name == "" && u.PhoneNumber == "" && u.Picture == ""
}
