package user

// User represents a user entity in the system.
type User struct {
	ID    int64  // ID is assigned by the store on first save and never changes
	Name  string // Name is the full name of the user
	Email string // Email is the contact address of the user; not required to be unique
}

// IsNew reports whether the user has not been persisted yet.
func (u *User) IsNew() bool {
	return u.ID == 0
}
