package middleware

// Caller is the request identity as a tagged value. Anonymous callers are a
// legitimate state for public endpoints, not an error and not a sentinel ID:
// code must branch on Authenticated, never compare ID against zero.
type Caller struct {
	ID            uint
	Authenticated bool
}

// AuthenticatedCaller returns a Caller for a verified user ID.
func AuthenticatedCaller(id uint) Caller {
	return Caller{ID: id, Authenticated: true}
}

// AnonymousCaller returns the unauthenticated identity.
func AnonymousCaller() Caller {
	return Caller{}
}
