package user

import (
	"encoding/hex"
	"testing"
)

func TestMakeResetToken(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		tok, err := makeResetToken()
		if err != nil {
			t.Fatalf("makeResetToken() failed: %v", err)
		}
		if len(tok) != 64 { // 32 random bytes, hex encoded
			t.Fatalf("makeResetToken() len = %d, want 64", len(tok))
		}
		if _, err := hex.DecodeString(tok); err != nil {
			t.Fatalf("makeResetToken() produced non-hex token %q", tok)
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("makeResetToken() produced a duplicate token")
		}
		seen[tok] = struct{}{}
	}
}
