package identity

// Flow names a screen whose errors have their own wording.
type Flow string

const (
	FlowLogin    Flow = "login"
	FlowForgot   Flow = "forgot"
	FlowRegister Flow = "register"
)

const (
	// UnverifiedLoginMessage is shown when the password is right but the email is unverified.
	UnverifiedLoginMessage = "Please verify your email before logging in. Check your inbox for verification link."
	// PasswordRequirementsMessage is returned when a sign-up password fails the local checks.
	PasswordRequirementsMessage = "Password does not meet all requirements"
	VerificationSentMessage     = "Verification email sent successfully! Please check your inbox."
	VerificationFailedMessage   = "Failed to send verification email. Please try again."
	ResetSentMessage            = "Password reset email sent"
)

const defaultKey = "default"

var flowMessages = map[Flow]map[string]string{
	FlowLogin: {
		CodeUserNotFound:      "No account found with this email address.",
		CodeWrongPassword:     "Incorrect password. Please try again.",
		CodeInvalidEmail:      "Please enter a valid email address.",
		CodeUserDisabled:      "This account has been disabled.",
		CodeTooManyRequests:   "Too many failed attempts. Please try again later.",
		CodeInvalidCredential: "Invalid email or password. Please check your credentials.",
		defaultKey:            "Login failed. Please try again.",
	},
	FlowForgot: {
		CodeUserNotFound:    "No account found with this email address.",
		CodeInvalidEmail:    "Please enter a valid email address.",
		CodeTooManyRequests: "Too many requests. Please try again later.",
		defaultKey:          "Failed to send reset email. Please try again.",
	},
	FlowRegister: {
		CodeEmailInUse:   "This email is already registered. Please use a different email or try logging in.",
		CodeWeakPassword: "Password is too weak. Please choose a stronger password.",
		CodeInvalidEmail: "Please enter a valid email address.",
		defaultKey:       "Registration failed. Please try again.",
	},
}

// Message returns the text for code in flow. Unknown codes fall back to
// providerText on the register screen and to the flow default elsewhere.
func Message(flow Flow, code, providerText string) string {
	table, ok := flowMessages[flow]
	if !ok {
		return providerText
	}
	if msg, ok := table[code]; ok && code != defaultKey {
		return msg
	}
	if flow == FlowRegister && providerText != "" {
		return providerText
	}
	return table[defaultKey]
}

// Messages returns a copy of the code to message table for flow.
func Messages(flow Flow) (map[string]string, bool) {
	table, ok := flowMessages[flow]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out, true
}
