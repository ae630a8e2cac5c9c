package identity

import "strings"

const specialChars = `!@#$%^&*(),.?":{}|<>`

// PasswordRequirements reports which sign-up rules a password meets.
type PasswordRequirements struct {
	Length    bool `json:"length"`
	Uppercase bool `json:"uppercase"`
	Lowercase bool `json:"lowercase"`
	Number    bool `json:"number"`
	Special   bool `json:"special"`
}

// OK reports whether every rule is met.
func (r PasswordRequirements) OK() bool {
	return r.Length && r.Uppercase && r.Lowercase && r.Number && r.Special
}

// CheckPassword evaluates password against the sign-up rules.
func CheckPassword(password string) PasswordRequirements {
	var r PasswordRequirements
	r.Length = len([]rune(password)) >= 8
	for _, ch := range password {
		switch {
		case ch >= 'A' && ch <= 'Z':
			r.Uppercase = true
		case ch >= 'a' && ch <= 'z':
			r.Lowercase = true
		case ch >= '0' && ch <= '9':
			r.Number = true
		case strings.ContainsRune(specialChars, ch):
			r.Special = true
		}
	}
	return r
}
