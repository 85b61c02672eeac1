// Package session resolves who (if anyone) is signed in on this client.
package session

// State is the resolution state of the session.
type State int

const (
	StateUnresolved State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unresolved"
	}
}

// User is the owner identity carried by an authenticated session.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Status is the result of resolving a session. User is set only when
// State is StateAuthenticated.
type Status struct {
	State State
	User  User
}

func Unresolved() Status      { return Status{State: StateUnresolved} }
func Unauthenticated() Status { return Status{State: StateUnauthenticated} }

func Authenticated(u User) Status {
	return Status{State: StateAuthenticated, User: u}
}

func (s Status) Resolved() bool        { return s.State != StateUnresolved }
func (s Status) IsAuthenticated() bool { return s.State == StateAuthenticated }
