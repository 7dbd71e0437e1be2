package originhash

import "testing"

func TestHashDeterministic(t *testing.T) {
	a := Hash("203.0.113.7")
	b := Hash("203.0.113.7")
	if a != b {
		t.Fatalf("hash not deterministic: %s != %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}

func TestHashDistinguishesAddresses(t *testing.T) {
	if Hash("203.0.113.7") == Hash("203.0.113.8") {
		t.Fatal("different addresses must hash differently")
	}
}

func TestHashNeverContainsRawAddress(t *testing.T) {
	const addr = "198.51.100.23"
	hashed := Hash(addr)
	for i := 0; i+len(addr) <= len(hashed); i++ {
		if hashed[i:i+len(addr)] == addr {
			t.Fatal("raw address leaked into hash")
		}
	}
}
