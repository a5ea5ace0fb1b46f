package auth

// Scope is the role tag embedded in tokens and user records.
type Scope string

const (
	ScopeBuyer  Scope = "buyer"
	ScopeSeller Scope = "seller"
)

// Valid reports whether s is one of the known scopes.
func (s Scope) Valid() bool {
	return s == ScopeBuyer || s == ScopeSeller
}

func (s Scope) String() string { return string(s) }
