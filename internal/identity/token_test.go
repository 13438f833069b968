package identity

import (
	"testing"
	"time"
)

func newTestSigner(t *testing.T) *TokenSigner {
	t.Helper()
	signer, err := NewTokenSigner("test-secret", 15*time.Minute)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	return signer
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	signer := newTestSigner(t)

	token, expires, err := signer.Issue(Identity{ID: "u1", Role: RoleMember, HouseNumber: "12"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expires.After(time.Now()) {
		t.Fatalf("expiry not in the future: %v", expires)
	}

	claims, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "u1" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.Role != "member" {
		t.Fatalf("unexpected role %q", claims.Role)
	}
	if claims.HouseNumber != "12" {
		t.Fatalf("unexpected house number %q", claims.HouseNumber)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	signer := newTestSigner(t)
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := signer.Verify(token); err == nil {
			t.Fatalf("expected error for %q", token)
		}
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	signer := newTestSigner(t)
	other, err := NewTokenSigner("different-secret", 15*time.Minute)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	token, _, err := other.Issue(Identity{ID: "u1", Role: RoleMember})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := signer.Verify(token); err == nil {
		t.Fatal("expected verification failure")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	signer := newTestSigner(t).WithClock(func() time.Time { return past })

	token, _, err := signer.Issue(Identity{ID: "u1", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	signer.WithClock(time.Now)
	if _, err := signer.Verify(token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestIssueRequiresSubject(t *testing.T) {
	signer := newTestSigner(t)
	if _, _, err := signer.Issue(Identity{Role: RoleMember}); err == nil {
		t.Fatal("expected error for empty id")
	}
}
