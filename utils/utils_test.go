package utils

import (
	"testing"

	"portfolio/config"
)

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"alice@example.com", "a***@example.com"},
		{"a@b.co", "a***@b.co"},
		{"李雷@example.cn", "李***@example.cn"},
		{"not-an-email", "***"},
		{"@example.com", "***"},
		{"", "***"},
	}

	for _, tt := range tests {
		if got := MaskEmail(tt.in); got != tt.want {
			t.Errorf("MaskEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHashIP(t *testing.T) {
	old := config.Cfg.IPHashSalt
	t.Cleanup(func() { config.Cfg.IPHashSalt = old })

	config.Cfg.IPHashSalt = "pepper"
	a := HashIP("203.0.113.7")
	if len(a) != 64 {
		t.Fatalf("hash length = %d", len(a))
	}
	if a != HashIP("203.0.113.7") {
		t.Error("hash must be stable")
	}
	if a == HashIP("203.0.113.8") {
		t.Error("different ips must hash differently")
	}

	config.Cfg.IPHashSalt = "salt"
	if a == HashIP("203.0.113.7") {
		t.Error("salt must change the hash")
	}
}
