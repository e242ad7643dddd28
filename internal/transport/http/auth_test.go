package http

import (
	"testing"
	"time"

	"quiz-sitting-service/internal/domain"
)

func TestAuthenticatorRoundTrip(t *testing.T) {
	auth := NewAuthenticator("secret")
	in := domain.Principal{UserID: "u1", Username: "alice", Permissions: []string{domain.PermViewSittings}}

	token, err := auth.Issue(in, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	out, err := auth.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out.UserID != "u1" || out.Username != "alice" || !out.HasPermission(domain.PermViewSittings) {
		t.Fatalf("unexpected principal %+v", out)
	}

	if _, err := NewAuthenticator("other").Parse(token); err == nil {
		t.Fatalf("expected signature mismatch")
	}
	expired, _ := auth.Issue(in, -time.Minute)
	if _, err := auth.Parse(expired); err == nil {
		t.Fatalf("expected expired token to fail")
	}
	if _, err := NewAuthenticator("").Issue(in, time.Minute); err == nil {
		t.Fatalf("expected missing secret to fail")
	}
}
