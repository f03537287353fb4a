package session

// Profile is the buyer identity the storefront keeps for the signed-in user.
// It replaces the browser-local session blob the old storefront kept: the
// data lives behind a repository with explicit get/put/clear operations.
type Profile struct {
	UserID     int    `json:"userId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// Complete reports whether the profile carries everything checkout needs.
// An incomplete profile aborts checkout before any network call.
func (p Profile) Complete() bool {
	return p.UserID > 0 &&
		p.Name != "" &&
		p.Email != "" &&
		p.Phone != "" &&
		p.Address != "" &&
		p.City != "" &&
		p.PostalCode != ""
}
