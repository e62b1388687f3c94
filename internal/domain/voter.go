// Package domain – voter identity.
//
// A voter is identified by email when the client supplies one, otherwise by
// source IP. The two are mutually exclusive: exactly one discriminant keys
// the uniqueness lookup for a vote. VoterIdentity models that as a closed
// variant type so "exactly one present" holds by construction instead of
// being re-checked in every handler.
package domain

import "strings"

// VoterKind discriminates the identity variant of a VoterIdentity.
type VoterKind int

// Identity variants. VoterNone is the zero value of an unresolvable identity.
const (
	VoterNone VoterKind = iota
	VoterEmail
	VoterIP
)

// VoterIdentity is the uniqueness key for one vote per feedback item.
// Construct values with VoterByEmail, VoterByIP, or ResolveVoter; the zero
// value is not a usable identity (IsZero reports true).
type VoterIdentity struct {
	kind  VoterKind
	value string
}

// VoterByEmail returns an email-keyed identity. The address is trimmed and
// lower-cased so repeat votes with different casing collapse to one voter.
func VoterByEmail(email string) VoterIdentity {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return VoterIdentity{}
	}
	return VoterIdentity{kind: VoterEmail, value: email}
}

// VoterByIP returns an IP-keyed identity.
func VoterByIP(ip string) VoterIdentity {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return VoterIdentity{}
	}
	return VoterIdentity{kind: VoterIP, value: ip}
}

// ResolveVoter picks the identity for a request: the supplied email wins,
// the caller's source IP is the fallback. Exactly one of the two becomes the
// lookup key, never both.
func ResolveVoter(email, ip string) VoterIdentity {
	if v := VoterByEmail(email); !v.IsZero() {
		return v
	}
	return VoterByIP(ip)
}

// Kind returns the identity variant.
func (v VoterIdentity) Kind() VoterKind { return v.kind }

// Value returns the normalized email or IP string.
func (v VoterIdentity) Value() string { return v.value }

// IsZero reports whether no identity could be resolved.
func (v VoterIdentity) IsZero() bool { return v.kind == VoterNone }

// Matches reports whether a stored vote row belongs to this voter.
func (v VoterIdentity) Matches(voterEmail, voterIP *string) bool {
	switch v.kind {
	case VoterEmail:
		return voterEmail != nil && *voterEmail == v.value
	case VoterIP:
		return voterIP != nil && *voterIP == v.value
	}
	return false
}
