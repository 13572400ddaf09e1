package identity

import "fmt"

// Role is one of the two fixed user identities.
type Role string

const (
	User1 Role = "user1"
	User2 Role = "user2"
)

// Roles lists the closed set of identities.
var Roles = [2]Role{User1, User2}

// Valid reports whether r is one of the two fixed identities.
func (r Role) Valid() bool { return r == User1 || r == User2 }

// Peer returns the other identity. It panics on an invalid role; callers
// check Valid first.
func (r Role) Peer() Role {
	switch r {
	case User1:
		return User2
	case User2:
		return User1
	}
	panic(fmt.Sprintf("identity: no peer for invalid role %q", string(r)))
}

func (r Role) String() string { return string(r) }

// ParseRole validates a raw string.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("identity: unknown role %q", s)
	}
	return r, nil
}

// Account is one of the two configured login credentials.
type Account struct {
	Role     Role
	Username string
	Password string
	Name     string
}

// Directory holds exactly two accounts, one per role.
type Directory struct {
	accounts [2]Account
}

// NewDirectory builds the account directory. a must carry User1 and b User2.
func NewDirectory(a, b Account) (*Directory, error) {
	if a.Role != User1 || b.Role != User2 {
		return nil, fmt.Errorf("identity: directory needs %s and %s, got %q and %q", User1, User2, a.Role, b.Role)
	}
	if a.Username == "" || b.Username == "" {
		return nil, fmt.Errorf("identity: usernames must not be empty")
	}
	if a.Username == b.Username && a.Password == b.Password {
		return nil, fmt.Errorf("identity: both accounts share the same credentials")
	}
	return &Directory{accounts: [2]Account{a, b}}, nil
}

// Authenticate does an exact match of the pair against both accounts.
func (d *Directory) Authenticate(username, password string) (Account, bool) {
	for _, a := range d.accounts {
		if a.Username == username && a.Password == password {
			return a, true
		}
	}
	return Account{}, false
}

// Account returns the account for a role.
func (d *Directory) Account(r Role) (Account, bool) {
	for _, a := range d.accounts {
		if a.Role == r {
			return a, true
		}
	}
	return Account{}, false
}

// DisplayName returns the configured name for a role, or the role itself.
func (d *Directory) DisplayName(r Role) string {
	if a, ok := d.Account(r); ok && a.Name != "" {
		return a.Name
	}
	return string(r)
}
