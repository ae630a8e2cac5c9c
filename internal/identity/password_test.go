package identity

import "testing"

func TestCheckPassword(t *testing.T) {
	t.Parallel()
	cases := []struct {
		password string
		want     PasswordRequirements
	}{
		{"Abcdef1!", PasswordRequirements{Length: true, Uppercase: true, Lowercase: true, Number: true, Special: true}},
		{"abcdefg1!", PasswordRequirements{Length: true, Lowercase: true, Number: true, Special: true}},
		{"Ab1!", PasswordRequirements{Uppercase: true, Lowercase: true, Number: true, Special: true}},
		{"ABCDEFGH", PasswordRequirements{Length: true, Uppercase: true}},
		{"Abcdefgh1_", PasswordRequirements{Length: true, Uppercase: true, Lowercase: true, Number: true}},
		{`Passw0rd"`, PasswordRequirements{Length: true, Uppercase: true, Lowercase: true, Number: true, Special: true}},
	}
	for _, tc := range cases {
		got := CheckPassword(tc.password)
		if got != tc.want {
			t.Fatalf("CheckPassword(%q) = %+v, want %+v", tc.password, got, tc.want)
		}
		if got.OK() != (tc.want == PasswordRequirements{Length: true, Uppercase: true, Lowercase: true, Number: true, Special: true}) {
			t.Fatalf("OK mismatch for %q", tc.password)
		}
	}
}
