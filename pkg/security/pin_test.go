package security_test

import (
	"testing"

	"github.com/sahelretail/pos-backend/pkg/config"
	"github.com/sahelretail/pos-backend/pkg/security"
)

func TestHashAndVerifyPIN(t *testing.T) {
	cfg := config.PINConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}

	hash, err := security.HashPIN("482913", cfg)
	if err != nil {
		t.Fatalf("HashPIN returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPIN returned empty string")
	}

	ok, err := security.VerifyPIN("482913", hash)
	if err != nil {
		t.Fatalf("VerifyPIN returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPIN failed for the correct pin")
	}

	ok, err = security.VerifyPIN("000000", hash)
	if err != nil {
		t.Fatalf("VerifyPIN returned error for wrong pin: %v", err)
	}
	if ok {
		t.Fatal("VerifyPIN returned true for incorrect pin")
	}
}

func TestVerifyPINBadHash(t *testing.T) {
	if _, err := security.VerifyPIN("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestGenerateTempPIN(t *testing.T) {
	pin, err := security.GenerateTempPIN(6)
	if err != nil {
		t.Fatalf("GenerateTempPIN: %v", err)
	}
	if len(pin) != 6 {
		t.Fatalf("expected 6 digits, got %q", pin)
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			t.Fatalf("non-digit character in pin: %q", pin)
		}
	}
}
