package lexer

import "testing"

func TestNormalizeStripsBOM(t *testing.T) {
	src := append([]byte{0xEF, 0xBB, 0xBF}, []byte("let x = 5")...)
	got := Normalize(src)
	if string(got) != "let x = 5" {
		t.Fatalf("Normalize did not strip BOM: %q", got)
	}
}

func TestNormalizeNFC(t *testing.T) {
	// "e" + combining acute accent (NFD) should normalize to the single
	// precomposed "é" (NFC).
	nfd := []byte("caf" + "é")
	got := Normalize(nfd)
	want := "café"
	if string(got) != want {
		t.Fatalf("Normalize(%q) = %q, want %q", nfd, got, want)
	}
}
