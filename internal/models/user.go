package models

// User represents an account that owns listings and sends adoption requests.
type User struct {
	Base         `bson:",inline"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string    `bson:"password" json:"-"` // Store hash, not plaintext
	Location     *Location `bson:"location,omitempty" json:"location,omitempty"`
}

// Summary projects the user onto the view joined onto listings and requests.
func (u *User) Summary(withLocation bool) *OwnerSummary {
	s := &OwnerSummary{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
	}
	if withLocation {
		s.Location = u.Location
	}
	return s
}
