package adaptive

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"testing"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, KeySize)
}

func TestSealOpen(t *testing.T) {
	for _, alg := range []Algorithm{AESGCM, ChaCha20} {
		t.Run(alg.String(), func(t *testing.T) {
			s, err := NewWithAlgorithm(testKey(), alg)
			if err != nil {
				t.Fatalf("NewWithAlgorithm: %v", err)
			}

			plaintext := []byte("\x89PNG heatmap bytes")
			ad := []byte("export/ths-1/home")

			sealed, err := s.Seal(plaintext, ad)
			if err != nil {
				t.Fatalf("Seal: %v", err)
			}
			if !IsSealed(sealed) {
				t.Fatal("IsSealed = false for sealed data")
			}
			if Algorithm(sealed[3]) != alg {
				t.Errorf("header algorithm = %v, want %v", Algorithm(sealed[3]), alg)
			}

			got, err := s.Open(sealed, ad)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Errorf("Open = %q, want %q", got, plaintext)
			}
		})
	}
}

func TestOpen_CrossAlgorithm(t *testing.T) {
	a, _ := NewWithAlgorithm(testKey(), AESGCM)
	c, _ := NewWithAlgorithm(testKey(), ChaCha20)

	sealed, err := a.Seal([]byte("data"), nil)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	got, err := c.Open(sealed, nil)
	if err != nil || string(got) != "data" {
		t.Fatalf("cross-algorithm Open = %q, %v", got, err)
	}
}

func TestOpen_Failures(t *testing.T) {
	s, _ := New(testKey())
	sealed, _ := s.Seal([]byte("data"), []byte("ad"))

	other, _ := New(bytes.Repeat([]byte{1}, KeySize))

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xff

	badVersion := append([]byte(nil), sealed...)
	badVersion[2] = 9

	tests := []struct {
		name   string
		sealer *Sealer
		data   []byte
		ad     []byte
		want   error
	}{
		{"plain data", s, []byte("\x89PNG"), nil, ErrNotSealed},
		{"wrong ad", s, sealed, []byte("other"), ErrAuth},
		{"wrong key", other, sealed, []byte("ad"), ErrAuth},
		{"tampered", s, tampered, []byte("ad"), ErrAuth},
		{"truncated", s, sealed[:headerSize+2], []byte("ad"), ErrTruncated},
		{"bad version", s, badVersion, []byte("ad"), ErrUnknownVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.sealer.Open(tt.data, tt.ad)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSeal_NonceUnique(t *testing.T) {
	s, _ := New(testKey())
	a, _ := s.Seal([]byte("same"), nil)
	b, _ := s.Seal([]byte("same"), nil)
	if bytes.Equal(a, b) {
		t.Error("two seals of the same plaintext are identical")
	}
}

func TestNew_InvalidKey(t *testing.T) {
	if _, err := New([]byte("short")); err == nil {
		t.Error("expected error for short key")
	}
	if _, err := NewWithAlgorithm(testKey(), Algorithm(7)); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}

func TestParseKey(t *testing.T) {
	key := testKey()

	for _, in := range []string{hex.EncodeToString(key), base64.StdEncoding.EncodeToString(key), " " + hex.EncodeToString(key) + "\n"} {
		got, err := ParseKey(in)
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", in, err)
		}
		if !bytes.Equal(got, key) {
			t.Errorf("ParseKey(%q) = %x", in, got)
		}
	}

	if _, err := ParseKey("abcd"); err == nil {
		t.Error("expected error for short key")
	}
}
