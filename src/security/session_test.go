// backend/src/security/session_test.go
package security

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-key-0123456789abcdefghij"

func TestIssueAndValidateToken(t *testing.T) {
	svc := NewSessionService(testSecret, time.Hour)

	token, err := svc.IssueToken("session-abc")
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("IssueToken() returned empty token")
	}

	sessionID, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if sessionID != "session-abc" {
		t.Errorf("ValidateToken() session = %q, want session-abc", sessionID)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := NewSessionService(testSecret, time.Hour).IssueToken("session-abc")
	if err != nil {
		t.Fatal(err)
	}
	other := NewSessionService("another-secret-key-0123456789abcdef", time.Hour)
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed with a different secret should be rejected")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewSessionService(testSecret, -time.Minute)
	token, err := svc.IssueToken("session-abc")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("expired token should be rejected")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := NewSessionService(testSecret, time.Hour)
	for _, in := range []string{"", "not-a-token", strings.Repeat("x", 200)} {
		if _, err := svc.ValidateToken(in); err == nil {
			t.Errorf("ValidateToken(%q) should fail", in)
		}
	}
}
