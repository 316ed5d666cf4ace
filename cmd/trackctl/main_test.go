package main

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// 1x1 transparent PNG
const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func TestImageDataURL(t *testing.T) {
	dir := t.TempDir()

	png, _ := base64.StdEncoding.DecodeString(pixelPNG)
	pngPath := filepath.Join(dir, "pixel.png")
	os.WriteFile(pngPath, png, 0o600)

	got, err := imageDataURL(pngPath)
	if err != nil {
		t.Fatalf("imageDataURL: %v", err)
	}
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("prefix = %q", got[:30])
	}

	txtPath := filepath.Join(dir, "notes.txt")
	os.WriteFile(txtPath, []byte("hello"), 0o600)
	if _, err := imageDataURL(txtPath); err == nil {
		t.Error("expected error for non-image file")
	}

	if _, err := imageDataURL(filepath.Join(dir, "missing.jpg")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestImageList(t *testing.T) {
	var l imageList
	l.Set("a.jpg")
	l.Set("b.png")
	if l.String() != "a.jpg,b.png" {
		t.Errorf("String() = %q", l.String())
	}
}
