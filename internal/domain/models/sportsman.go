// internal/domain/models/sportsman.go
package models

// Sportsman is an athlete profile, stored in the "Sportsman" collection.
type Sportsman struct {
	Identity `bson:",inline"`

	SportsmanID   int64  `bson:"sportsmanID" json:"sportsman_id"`
	ContactNumber int64  `bson:"contactnumber" json:"contact_number"`
	Address       string `bson:"address" json:"address"`
	Sport         string `bson:"intsport" json:"sport"`
	Team          string `bson:"Team,omitempty" json:"team,omitempty"`
	DateOfBirth   string `bson:"dateofbirth" json:"date_of_birth"`
	Country       string `bson:"country" json:"country"`
}

func (s *Sportsman) Base() *Identity     { return &s.Identity }
func (s *Sportsman) AccountRole() Role   { return RoleSportsman }
func (s *Sportsman) Sequence() int64     { return s.SportsmanID }
func (s *Sportsman) SetSequence(n int64) { s.SportsmanID = n }

func (s *Sportsman) MissingFields() []string {
	return missing("sport", s.Sport)
}

func (s *Sportsman) EditableFields() FieldSet {
	fs := s.Identity.editable()
	fs["contactnumber"] = s.ContactNumber
	fs["address"] = s.Address
	fs["intsport"] = s.Sport
	fs["Team"] = s.Team
	fs["dateofbirth"] = s.DateOfBirth
	fs["country"] = s.Country
	return fs
}

func (s *Sportsman) Summary() Summary {
	return SportsmanSummary{Sport: s.Sport, Team: s.Team}
}
