package auth

import (
	"strings"
	"testing"

	"github.com/devpulse/api/internal/testutil"
)

func TestSignVerifyRoundtrip(t *testing.T) {
	t.Parallel()

	a := New(Options{JWTSecret: "test-secret"})

	token, err := a.SignUserToken("alice")
	testutil.IsNil(t, err, "sign succeeds")

	userID, err := a.VerifyUserToken(token)
	testutil.IsNil(t, err, "verify succeeds")
	testutil.Assert(t, "alice", userID, "user id recovered")
}

func TestVerifyRejectsTampering(t *testing.T) {
	t.Parallel()

	a := New(Options{JWTSecret: "test-secret"})

	token, err := a.SignUserToken("alice")
	testutil.IsNil(t, err, "sign succeeds")

	// Flip the payload segment
	parts := strings.Split(token, ".")
	parts[1] = "eyJ1IjoibWFsbG9yeSJ9"
	tampered := strings.Join(parts, ".")

	_, err = a.VerifyUserToken(tampered)
	testutil.IsNotNil(t, err, "tampered token rejected")
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	a := New(Options{JWTSecret: "test-secret"})
	b := New(Options{JWTSecret: "other-secret"})

	token, err := a.SignUserToken("alice")
	testutil.IsNil(t, err, "sign succeeds")

	_, err = b.VerifyUserToken(token)
	testutil.IsNotNil(t, err, "cross-secret token rejected")
}

func TestVerifyRejectsEmptySubject(t *testing.T) {
	t.Parallel()

	a := New(Options{JWTSecret: "test-secret"})

	token, err := a.SignUserToken("")
	testutil.IsNil(t, err, "sign succeeds")

	_, err = a.VerifyUserToken(token)
	testutil.IsNotNil(t, err, "token without a user id rejected")
}
