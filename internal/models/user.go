package models

import (
	"fmt"
	"strings"
)

// Role represents portal access levels
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

// Membership represents the user's subscription tier
type Membership string

const (
	MembershipFree    Membership = "free"
	MembershipBasic   Membership = "basic"
	MembershipPremium Membership = "premium"
)

// ParseRole normalizes a role string into the closed Role enum.
// Legacy aliases from older portal backends are accepted:
// "student" maps to candidate, "employer" maps to recruiter.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "candidate", "student":
		return RoleCandidate, nil
	case "recruiter", "employer":
		return RoleRecruiter, nil
	case "admin":
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User represents a portal user as returned by the remote auth APIs
type User struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name,omitempty"`
	Role       Role       `json:"role"`
	Membership Membership `json:"membership"`
}

// Normalize maps role aliases onto the closed enum and fills the
// default membership tier when the server omitted it
func (u *User) Normalize() error {
	role, err := ParseRole(string(u.Role))
	if err != nil {
		return err
	}
	u.Role = role
	if u.Membership == "" {
		u.Membership = MembershipFree
	}
	return nil
}

// UserPatch represents a partial profile update. Nil fields are left untouched.
type UserPatch struct {
	Email      *string     `json:"email,omitempty"`
	Name       *string     `json:"name,omitempty"`
	Membership *Membership `json:"membership,omitempty"`
}

// Apply shallow-merges the patch into the user
func (p UserPatch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Membership != nil {
		u.Membership = *p.Membership
	}
}
