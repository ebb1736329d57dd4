package crypto

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func testService(t *testing.T) *Service {
	t.Helper()
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x42}, 32))
	svc, err := New(key)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	svc := testService(t)

	encrypted, err := svc.EncryptString("JBSWY3DPEHPK3PXP")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}
	if string(encrypted) == "JBSWY3DPEHPK3PXP" {
		t.Fatal("ciphertext equals plaintext")
	}

	decrypted, err := svc.DecryptString(encrypted)
	if err != nil {
		t.Fatalf("DecryptString: %v", err)
	}
	if decrypted != "JBSWY3DPEHPK3PXP" {
		t.Fatalf("round trip = %q", decrypted)
	}
}

func TestUnconfiguredPassthrough(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if svc.Configured() {
		t.Fatal("empty key should leave the service unconfigured")
	}
	out, err := svc.Encrypt([]byte("plain"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if string(out) != "plain" {
		t.Fatalf("unconfigured Encrypt changed data: %q", out)
	}
}

func TestNewRejectsShortKey(t *testing.T) {
	if _, err := New(base64.StdEncoding.EncodeToString([]byte("short"))); err == nil {
		t.Fatal("short key accepted")
	}
}
