package domain

// Identity is an opaque, globally unique token identifying a caller or party.
// It serves as registry key, donor reference, verifier-set member, and owner
// singleton. Equality is byte-exact.
type Identity string

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool {
	return i == ""
}

func (i Identity) String() string {
	return string(i)
}
