package models

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"candidate", RoleCandidate, false},
		{"student", RoleCandidate, false},
		{"recruiter", RoleRecruiter, false},
		{"employer", RoleRecruiter, false},
		{"admin", RoleAdmin, false},
		{"ADMIN", RoleAdmin, false},
		{"  Employer ", RoleRecruiter, false},
		{"superuser", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		got, err := ParseRole(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseRole(%q) = %q, want error", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRole(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeMapsAliasAndDefaultsMembership(t *testing.T) {
	u := &User{ID: "1", Email: "a@x.com", Role: "student"}
	if err := u.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if u.Role != RoleCandidate {
		t.Errorf("role = %q, want candidate", u.Role)
	}
	if u.Membership != MembershipFree {
		t.Errorf("membership = %q, want free", u.Membership)
	}
}

func TestNormalizeKeepsExplicitMembership(t *testing.T) {
	u := &User{ID: "1", Email: "a@x.com", Role: "recruiter", Membership: MembershipPremium}
	if err := u.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if u.Membership != MembershipPremium {
		t.Errorf("membership = %q, want premium", u.Membership)
	}
}

func TestNormalizeRejectsUnknownRole(t *testing.T) {
	u := &User{ID: "1", Role: "root"}
	if err := u.Normalize(); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestUserPatchApply(t *testing.T) {
	name := "New Name"
	tier := MembershipBasic
	u := User{ID: "1", Email: "a@x.com", Name: "Old", Role: RoleCandidate, Membership: MembershipFree}

	UserPatch{Name: &name, Membership: &tier}.Apply(&u)

	if u.Name != "New Name" {
		t.Errorf("name = %q", u.Name)
	}
	if u.Membership != MembershipBasic {
		t.Errorf("membership = %q", u.Membership)
	}
	// Nil fields leave the original values alone
	if u.Email != "a@x.com" {
		t.Errorf("email = %q, want untouched", u.Email)
	}
	if u.ID != "1" || u.Role != RoleCandidate {
		t.Errorf("identity changed: %+v", u)
	}
}

func TestValidTheme(t *testing.T) {
	for _, valid := range []string{"light", "dark"} {
		if !ValidTheme(valid) {
			t.Errorf("ValidTheme(%q) = false", valid)
		}
	}
	for _, invalid := range []string{"", "LIGHT", "solarized"} {
		if ValidTheme(invalid) {
			t.Errorf("ValidTheme(%q) = true", invalid)
		}
	}
}
