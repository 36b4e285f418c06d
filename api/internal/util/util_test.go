package util

import (
	"encoding/base64"
	"testing"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}

func TestSniffMime(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		http string
		ocr  string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF}, "image/jpeg", "JPEG"},
		{"png", pngHeader, "image/png", "PNG"},
		{"pdf", []byte("%PDF-1.7"), "application/pdf", "PDF"},
		{"other", []byte("hello"), "application/octet-stream", ""},
	}
	for _, tt := range tests {
		if got := SniffMimeHTTP(tt.in); got != tt.http {
			t.Errorf("%s: SniffMimeHTTP = %q, want %q", tt.name, got, tt.http)
		}
		if got := SniffMimeForOCR(tt.in); got != tt.ocr {
			t.Errorf("%s: SniffMimeForOCR = %q, want %q", tt.name, got, tt.ocr)
		}
	}
}

func TestDecodeBase64MaybeDataURL(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString(pngHeader)

	b, mime, err := DecodeBase64MaybeDataURL("data:image/png;base64," + b64)
	if err != nil || mime != "image/png" || string(b) != string(pngHeader) {
		t.Fatalf("data url: %v %q %v", b, mime, err)
	}

	b, mime, err = DecodeBase64MaybeDataURL(b64)
	if err != nil || mime != "" || len(b) != len(pngHeader) {
		t.Fatalf("plain: %v %q %v", b, mime, err)
	}

	if _, _, err := DecodeBase64MaybeDataURL("%%%"); err == nil {
		t.Fatal("expected error for garbage")
	}
}

func TestPickMIME(t *testing.T) {
	if got := PickMIME("image/webp", "image/png", pngHeader); got != "image/webp" {
		t.Errorf("explicit: %q", got)
	}
	if got := PickMIME("", "image/gif", pngHeader); got != "image/gif" {
		t.Errorf("hint: %q", got)
	}
	if got := PickMIME("", "", pngHeader); got != "image/png" {
		t.Errorf("sniffed: %q", got)
	}
	if got := PickMIME("", "", nil); got != "image/jpeg" {
		t.Errorf("empty: %q", got)
	}
}

func TestStripCodeFences(t *testing.T) {
	if got := StripCodeFences("```\nhello\n```"); got != "hello" {
		t.Errorf("got %q", got)
	}
	if got := StripCodeFences("  plain "); got != "plain" {
		t.Errorf("got %q", got)
	}
	if got := StripCodeFences("```markdown\n# Cells\nline two\n```"); got != "# Cells\nline two" {
		t.Errorf("got %q", got)
	}
	if got := StripCodeFences("```inline```"); got != "inline" {
		t.Errorf("got %q", got)
	}
}

func TestSHA256Hex(t *testing.T) {
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := SHA256Hex(""); got != empty {
		t.Errorf("got %s", got)
	}
}
