// internal/domain/models/businessowner.go
package models

// BusinessOwner is a company or sponsor profile, stored in the
// "BusinessOwner" collection.
type BusinessOwner struct {
	Identity `bson:",inline"`

	BusinessOwnerID     int64  `bson:"BusinessOwnerID" json:"business_owner_id"`
	ContactNumber       int64  `bson:"contactnumber" json:"contact_number"`
	Address             string `bson:"address" json:"address"`
	CompanyName         string `bson:"companyname" json:"company_name"`
	HeadCountry         string `bson:"headcountry" json:"head_country"`
	Website             string `bson:"website" json:"website"`
	SponsorshipInterest string `bson:"sponsorshipInterest" json:"sponsorship_interest"`
}

func (b *BusinessOwner) Base() *Identity     { return &b.Identity }
func (b *BusinessOwner) AccountRole() Role   { return RoleBusinessOwner }
func (b *BusinessOwner) Sequence() int64     { return b.BusinessOwnerID }
func (b *BusinessOwner) SetSequence(n int64) { b.BusinessOwnerID = n }

func (b *BusinessOwner) MissingFields() []string {
	return missing("company_name", b.CompanyName)
}

func (b *BusinessOwner) EditableFields() FieldSet {
	fs := b.Identity.editable()
	fs["contactnumber"] = b.ContactNumber
	fs["address"] = b.Address
	fs["companyname"] = b.CompanyName
	fs["headcountry"] = b.HeadCountry
	fs["website"] = b.Website
	fs["sponsorshipInterest"] = b.SponsorshipInterest
	return fs
}

func (b *BusinessOwner) Summary() Summary {
	return BusinessOwnerSummary{
		CompanyName:         b.CompanyName,
		SponsorshipInterest: b.SponsorshipInterest,
	}
}
