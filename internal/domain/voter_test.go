package domain

import "testing"

func TestVoterByEmail_Normalizes(t *testing.T) {
	v := VoterByEmail("  Alice@Example.COM ")
	if v.IsZero() || v.Kind() != VoterEmail {
		t.Fatalf("unexpected identity: %+v", v)
	}
	if v.Value() != "alice@example.com" {
		t.Fatalf("value = %q; want lower-cased trimmed email", v.Value())
	}

	if !VoterByEmail("   ").IsZero() {
		t.Fatalf("blank email must yield the zero identity")
	}
}

func TestVoterByIP(t *testing.T) {
	v := VoterByIP(" 10.0.0.1 ")
	if v.Kind() != VoterIP || v.Value() != "10.0.0.1" {
		t.Fatalf("unexpected identity: %+v", v)
	}
	if !VoterByIP("").IsZero() {
		t.Fatalf("blank IP must yield the zero identity")
	}
}

func TestResolveVoter_EmailWins(t *testing.T) {
	v := ResolveVoter("a@example.com", "10.0.0.1")
	if v.Kind() != VoterEmail || v.Value() != "a@example.com" {
		t.Fatalf("email must win: %+v", v)
	}

	v = ResolveVoter("", "10.0.0.1")
	if v.Kind() != VoterIP || v.Value() != "10.0.0.1" {
		t.Fatalf("IP fallback: %+v", v)
	}

	if !ResolveVoter("", "").IsZero() {
		t.Fatalf("no identity resolvable must be zero")
	}
}

func TestVoterIdentity_Matches(t *testing.T) {
	email := "a@example.com"
	ip := "10.0.0.1"

	byEmail := VoterByEmail(email)
	if !byEmail.Matches(&email, nil) {
		t.Fatalf("email identity must match its row")
	}
	if byEmail.Matches(nil, &ip) {
		t.Fatalf("email identity must not match an IP row")
	}

	byIP := VoterByIP(ip)
	if !byIP.Matches(nil, &ip) {
		t.Fatalf("IP identity must match its row")
	}
	if byIP.Matches(&email, nil) {
		t.Fatalf("IP identity must not match an email row")
	}

	if (VoterIdentity{}).Matches(&email, &ip) {
		t.Fatalf("zero identity matches nothing")
	}
}
