package secretbox

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"
)

func testKey(seed byte) []byte {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = seed + byte(i)
	}
	return raw
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	t.Parallel()
	box, err := New(base64.StdEncoding.EncodeToString(testKey(1)))
	if err != nil {
		t.Fatalf("New err: %v", err)
	}

	msg := "EAAB access token ✓"
	ct, err := box.Encrypt(msg)
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}
	if strings.Contains(ct, msg) {
		t.Fatalf("ciphertext leaks plaintext")
	}
	pt, err := box.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt err: %v", err)
	}
	if pt != msg {
		t.Fatalf("plaintext mismatch: got %q want %q", pt, msg)
	}
}

func TestNew_AcceptsHexKey(t *testing.T) {
	t.Parallel()
	k := testKey(7)
	b64, err := New(base64.StdEncoding.EncodeToString(k))
	if err != nil {
		t.Fatal(err)
	}
	hx, err := New(hex.EncodeToString(k))
	if err != nil {
		t.Fatal(err)
	}
	ct, _ := b64.Encrypt("x")
	if pt, err := hx.Decrypt(ct); err != nil || pt != "x" {
		t.Fatalf("hex and base64 keys should match: %v", err)
	}
}

func TestDecrypt_DetectsTamper(t *testing.T) {
	t.Parallel()
	box, err := New(base64.StdEncoding.EncodeToString(testKey(200)))
	if err != nil {
		t.Fatal(err)
	}

	ct, err := box.Encrypt("top secret")
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}
	parts := strings.Split(ct, "|")
	bs, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatal(err)
	}
	bs[0] ^= 0x01
	corrupted := parts[0] + "|" + base64.StdEncoding.EncodeToString(bs)

	if _, err := box.Decrypt(corrupted); err == nil {
		t.Fatalf("expected auth error, got nil")
	}
	if _, err := box.Decrypt("not-a-box"); err != ErrFormat {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestNew_RejectsShortKey(t *testing.T) {
	t.Parallel()
	if _, err := New("too-short"); err == nil {
		t.Fatalf("expected error for short key")
	}
	if _, err := New(""); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
