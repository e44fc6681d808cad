package model

import "testing"

func TestHasRoleExactMatch(t *testing.T) {
	user := &User{Roles: []Role{RoleUser, RoleModerator}}

	if !user.HasRole(RoleUser) || !user.HasRole(RoleModerator) {
		t.Fatalf("expected assigned roles to match")
	}
	if user.HasRole(RoleAdmin) {
		t.Fatalf("expected missing role to not match")
	}
	// role names are case-sensitive
	if user.HasRole(Role("usuario")) || user.HasRole(Role("Moderador")) {
		t.Fatalf("expected case-sensitive matching")
	}
}

func TestIsModerator(t *testing.T) {
	cases := []struct {
		roles []Role
		want  bool
	}{
		{nil, false},
		{[]Role{RoleUser}, false},
		{[]Role{RoleModerator}, true},
		{[]Role{RoleAdmin}, true},
		{[]Role{RoleUser, RoleModerator}, true},
		{[]Role{RoleUser, RoleAdmin}, true},
	}
	for _, tc := range cases {
		user := &User{Roles: tc.roles}
		if got := user.IsModerator(); got != tc.want {
			t.Fatalf("roles %v: expected moderator=%v, got %v", tc.roles, tc.want, got)
		}
	}
}

func TestIsAdmin(t *testing.T) {
	if (&User{Roles: []Role{RoleModerator}}).IsAdmin() {
		t.Fatalf("moderator is not admin")
	}
	if !(&User{Roles: []Role{RoleAdmin}}).IsAdmin() {
		t.Fatalf("expected admin")
	}
}

func TestParseTopicStatus(t *testing.T) {
	if status, ok := ParseTopicStatus("OPEN"); !ok || status != StatusOpen {
		t.Fatalf("expected OPEN to parse")
	}
	if status, ok := ParseTopicStatus("CLOSED"); !ok || status != StatusClosed {
		t.Fatalf("expected CLOSED to parse")
	}
	if _, ok := ParseTopicStatus("open"); ok {
		t.Fatalf("expected lowercase to be rejected")
	}
	if _, ok := ParseTopicStatus("ARCHIVED"); ok {
		t.Fatalf("expected unknown status to be rejected")
	}
}

func TestTopicStatusTransitions(t *testing.T) {
	topic := &Topic{Status: StatusOpen}
	topic.Close()
	if topic.Status != StatusClosed {
		t.Fatalf("expected closed")
	}
	topic.Open()
	if topic.Status != StatusOpen {
		t.Fatalf("expected open")
	}
}
