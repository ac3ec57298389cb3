package domain

// Profile is the identity-provider profile of a new account. Login and Email
// carry the same address for imported users.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Login     string `json:"login"`
}

// Credentials holds the initial password and recovery question of a new account.
type Credentials struct {
	Password         string `json:"-"`
	RecoveryQuestion string `json:"recovery_question"`
	RecoveryAnswer   string `json:"-"`
}

// PendingUser is the record built for one email before it is sent to the
// identity provider. It lives for a single provisioning attempt.
type PendingUser struct {
	Profile           Profile     `json:"profile"`
	Credentials       Credentials `json:"credentials"`
	AlreadyRegistered bool        `json:"already_registered"`
	SkipRegister      bool        `json:"skip_register"`
}

// ProvisioningDefaults are the administrator supplied fallbacks for fields
// left empty on import.
type ProvisioningDefaults struct {
	FirstName string
	LastName  string
	Password  string
	Question  string
	Answer    string
	AppID     string
}

// EmailBatch is the ordered list of addresses of one import.
type EmailBatch []string

// IdentityUser is an account as reported by the identity provider.
type IdentityUser struct {
	ID      string  `json:"id"`
	Status  string  `json:"status"`
	Profile Profile `json:"profile"`
}

// SubmittedUser is what post-submit observers receive: the record that was
// sent and what came back.
type SubmittedUser struct {
	Pending     PendingUser   `json:"pending"`
	User        *IdentityUser `json:"user,omitempty"`
	Created     bool          `json:"created"`
	Error       string        `json:"error,omitempty"`
	AppAssigned bool          `json:"app_assigned"`
}

// Email returns the address the submission was made for.
func (s SubmittedUser) Email() string {
	return s.Pending.Profile.Email
}
