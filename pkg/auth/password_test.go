package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_VerifyRoundtrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash prefix = %q, want $argon2id$", hash[:10])
	}
	if !VerifyPassword("correct horse battery staple", hash) {
		t.Error("VerifyPassword rejected the correct password")
	}
	if VerifyPassword("wrong password", hash) {
		t.Error("VerifyPassword accepted a wrong password")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	a, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	b, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password should differ (random salt)")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=1,p=4$onlysalt",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
	}
	for _, encoded := range cases {
		if VerifyPassword("anything", encoded) {
			t.Errorf("VerifyPassword(%q) = true, want false", encoded)
		}
	}
}

func TestArgon2Verifier(t *testing.T) {
	hash, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	var v PasswordVerifier = Argon2Verifier{}
	if !v.Verify("pw", hash) {
		t.Error("Argon2Verifier rejected the correct password")
	}
}
