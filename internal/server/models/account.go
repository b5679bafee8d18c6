package models

// DefaultTitle is stored when an account is created without a title.
const DefaultTitle = "regular user"

// Account is one row of the user_data table.
//
// Password holds the stored credential (an argon2id encoding) when the value
// comes from the store, and the plaintext only when it is passed into the
// account services. Accounts returned by the services have it cleared.
type Account struct {
	ID       int64
	Name     string
	Sex      string
	Title    string
	Tel      string
	Email    string
	Username string
	Password string
}
