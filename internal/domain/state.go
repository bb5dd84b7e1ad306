package domain

// SessionTokens stores the signed-in moderator's credentials.
type SessionTokens struct {
	Email        string `json:"email,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// HasCredentials reports whether a usable access token is stored.
func (t SessionTokens) HasCredentials() bool {
	return t.AccessToken != ""
}

// State is the locally persisted app state: where the user left off and
// who they are signed in as. It mirrors what the directory remembers
// between visits.
type State struct {
	ActiveView View          `json:"active_view,omitempty"`
	City       string        `json:"city,omitempty"`
	Session    SessionTokens `json:"session,omitzero"`
}
