// internal/domain/models/user.go
package models

// User is a general member of the app, stored in the "Users" collection.
type User struct {
	Identity `bson:",inline"`

	UserID        int64  `bson:"UserID" json:"user_id"`
	Address       string `bson:"address" json:"address"`
	ContactNumber int64  `bson:"contactnb" json:"contact_number"`
	DateOfBirth   string `bson:"dateofbirth" json:"date_of_birth"` // YYYY-MM-DD
	Country       string `bson:"country" json:"country"`
}

func (u *User) Base() *Identity     { return &u.Identity }
func (u *User) AccountRole() Role   { return RoleUser }
func (u *User) Sequence() int64     { return u.UserID }
func (u *User) SetSequence(n int64) { u.UserID = n }

// MissingFields reports nothing: a User has no required fields beyond the
// identity ones.
func (u *User) MissingFields() []string { return nil }

func (u *User) EditableFields() FieldSet {
	fs := u.Identity.editable()
	fs["address"] = u.Address
	fs["contactnb"] = u.ContactNumber
	fs["dateofbirth"] = u.DateOfBirth
	fs["country"] = u.Country
	return fs
}

func (u *User) Summary() Summary {
	return UserSummary{
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
		DateOfBirth:    u.DateOfBirth,
		Country:        u.Country,
	}
}
