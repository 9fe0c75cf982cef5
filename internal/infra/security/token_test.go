package security

import "testing"

func TestGenerateSecureTokenLengthAndUniqueness(t *testing.T) {
	first, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken returned error: %v", err)
	}
	second, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken returned error: %v", err)
	}

	if first == second {
		t.Fatal("expected distinct tokens")
	}
	if len(first) < 32 {
		t.Fatalf("token too short: %d", len(first))
	}

	if _, err := GenerateSecureToken(0); err == nil {
		t.Fatal("expected error for non-positive length")
	}
}

func TestGenerateRandomStringAlphabet(t *testing.T) {
	value, err := GenerateRandomString(64)
	if err != nil {
		t.Fatalf("GenerateRandomString returned error: %v", err)
	}
	if len(value) != 64 {
		t.Fatalf("expected 64 characters, got %d", len(value))
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			t.Fatalf("unexpected character %q", r)
		}
	}
}

func TestHashTokenDeterministic(t *testing.T) {
	if HashToken("value") != HashToken("value") {
		t.Fatal("expected deterministic hashing")
	}
	if HashToken("value") == HashToken("other") {
		t.Fatal("expected distinct hashes for distinct values")
	}
	if len(HashToken("value")) != 64 {
		t.Fatal("expected hex-encoded sha256")
	}
}
