package rbac

import "testing"

func TestCan(t *testing.T) {
	cases := []struct {
		name   string
		role   Role
		action Action
		allow  bool
	}{
		{name: "anon session", role: RoleAnon, action: ActionReadSession, allow: true},
		{name: "anon create", role: RoleAnon, action: ActionCreateNote, allow: false},
		{name: "anon read", role: RoleAnon, action: ActionReadNote, allow: false},
		{name: "anon logout", role: RoleAnon, action: ActionEndSession, allow: false},
		{name: "authenticated update", role: RoleAuthenticated, action: ActionUpdateNote, allow: true},
		{name: "authenticated delete", role: RoleAuthenticated, action: ActionDeleteNote, allow: true},
		{name: "authenticated parse", role: RoleAuthenticated, action: ActionParseContent, allow: true},
		{name: "unknown role", role: Role("service_role"), action: ActionReadSession, allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Can(tc.role, tc.action); got != tc.allow {
				t.Fatalf("Can(%q, %q) = %v, want %v", tc.role, tc.action, got, tc.allow)
			}
		})
	}
}
