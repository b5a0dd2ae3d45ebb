package security

import "testing"

func TestHasher_HashAndCompare(t *testing.T) {
	h := NewHasher(4) // min cost keeps the test fast
	hash, err := h.Hash([]byte("secret123"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash equals plaintext")
	}
	if err := h.Compare(hash, []byte("secret123")); err != nil {
		t.Errorf("Compare with correct password: %v", err)
	}
	if err := h.Compare(hash, []byte("wrong")); err == nil {
		t.Error("Compare with wrong password should fail")
	}
}

func TestNewHasher_CostClamping(t *testing.T) {
	if c := NewHasher(0).Cost; c < 4 {
		t.Errorf("cost for 0 = %d, want a valid bcrypt cost", c)
	}
	if c := NewHasher(99).Cost; c > 31 {
		t.Errorf("cost for 99 = %d, want clamped to max", c)
	}
}

func TestCodeHashEqual(t *testing.T) {
	stored := HashCode("482913")
	if !CodeHashEqual("482913", stored) {
		t.Error("matching code should compare equal")
	}
	if CodeHashEqual("482914", stored) {
		t.Error("non-matching code should not compare equal")
	}
}
