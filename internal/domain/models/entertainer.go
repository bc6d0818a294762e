// internal/domain/models/entertainer.go
package models

// Entertainer is a performer profile, stored in the "Entertainer" collection.
type Entertainer struct {
	Identity `bson:",inline"`

	EntertainerID int64  `bson:"EntertainerId" json:"entertainer_id"`
	ContactNumber int64  `bson:"contactnumber" json:"contact_number"`
	Address       string `bson:"address" json:"address"`
	StageName     string `bson:"stagename" json:"stage_name"`
	Talent        string `bson:"talent" json:"talent"`
	DateOfBirth   string `bson:"dateofbirth" json:"date_of_birth"`
	Country       string `bson:"country" json:"country"`
}

func (e *Entertainer) Base() *Identity     { return &e.Identity }
func (e *Entertainer) AccountRole() Role   { return RoleEntertainer }
func (e *Entertainer) Sequence() int64     { return e.EntertainerID }
func (e *Entertainer) SetSequence(n int64) { e.EntertainerID = n }

func (e *Entertainer) MissingFields() []string {
	return missing("stage_name", e.StageName, "talent", e.Talent)
}

func (e *Entertainer) EditableFields() FieldSet {
	fs := e.Identity.editable()
	fs["contactnumber"] = e.ContactNumber
	fs["address"] = e.Address
	fs["stagename"] = e.StageName
	fs["talent"] = e.Talent
	fs["dateofbirth"] = e.DateOfBirth
	fs["country"] = e.Country
	return fs
}

func (e *Entertainer) Summary() Summary {
	return EntertainerSummary{ArtForm: e.Talent, StageName: e.StageName}
}
