package common

// Owned is implemented by entities that belong to exactly one user.
// A nil entity reports owner 0.
type Owned interface {
	OwnerID() uint64
}

// AssertOwner returns denied unless e belongs to userID. Owner 0 never matches.
func AssertOwner(e Owned, userID uint64, denied *Error) error {
	if e == nil {
		return denied
	}
	if owner := e.OwnerID(); owner == 0 || owner != userID {
		return denied
	}
	return nil
}
