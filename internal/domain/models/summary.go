// internal/domain/models/summary.go
package models

import (
	"encoding/json"
	"fmt"
)

// Summary is the public, role-specific part of a profile. The concrete type
// tells which partition the profile came from; the set of implementations is
// closed to this package.
type Summary interface {
	SummaryRole() Role
	sealed()
}

type UserSummary struct {
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	DateOfBirth    string `json:"date_of_birth"`
	Country        string `json:"country"`
}

type SportsmanSummary struct {
	Sport string `json:"sport"`
	Team  string `json:"team,omitempty"`
}

type EntertainerSummary struct {
	ArtForm   string `json:"art_form"`
	StageName string `json:"stage_name"`
}

type BusinessOwnerSummary struct {
	CompanyName         string `json:"company_name"`
	SponsorshipInterest string `json:"sponsorship_interest"`
}

func (UserSummary) SummaryRole() Role          { return RoleUser }
func (SportsmanSummary) SummaryRole() Role     { return RoleSportsman }
func (EntertainerSummary) SummaryRole() Role   { return RoleEntertainer }
func (BusinessOwnerSummary) SummaryRole() Role { return RoleBusinessOwner }

func (UserSummary) sealed()          {}
func (SportsmanSummary) sealed()     {}
func (EntertainerSummary) sealed()   {}
func (BusinessOwnerSummary) sealed() {}

// ProfileView is the unified view of one identity returned by profile
// resolution.
type ProfileView struct {
	Role     Role      `json:"role"`
	UqID     string    `json:"uqid"`
	Username string    `json:"username"`
	Summary  Summary   `json:"summary"`
	Contents []Content `json:"contents"`
	Events   []Event   `json:"events"`
}

// SearchHit is one username match, tagged with the partition it came from.
// Record is the full stored account; its password hash never serializes.
type SearchHit struct {
	Role     Role    `json:"role"`
	UqID     string  `json:"uqid"`
	Username string  `json:"username"`
	Record   Account `json:"record"`
}

// UnmarshalJSON decodes Record into the account type Role names.
func (h *SearchHit) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role     Role            `json:"role"`
		UqID     string          `json:"uqid"`
		Username string          `json:"username"`
		Record   json.RawMessage `json:"record"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*h = SearchHit{Role: raw.Role, UqID: raw.UqID, Username: raw.Username}
	if len(raw.Record) == 0 || string(raw.Record) == "null" {
		return nil
	}
	acct := NewAccount(raw.Role)
	if acct == nil {
		return fmt.Errorf("search hit has unknown role %q", raw.Role)
	}
	if err := json.Unmarshal(raw.Record, acct); err != nil {
		return err
	}
	h.Record = acct
	return nil
}
