package util

import "testing"

func TestCanonicalUUID(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "6F9619FF-8B86-D011-B42D-00C04FC964FF", want: "6f9619ff-8b86-d011-b42d-00c04fc964ff", ok: true},
		{in: " 6f9619ff-8b86-d011-b42d-00c04fc964ff ", want: "6f9619ff-8b86-d011-b42d-00c04fc964ff", ok: true},
		{in: "not-a-uuid", ok: false},
		{in: "", ok: false},
	}
	for _, tc := range cases {
		got, ok := CanonicalUUID(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("CanonicalUUID(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
