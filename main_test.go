package main

import (
	"bytes"
	"image/png"
	"testing"
)

func TestAppIconEmbedded(t *testing.T) {
	icon := appIcon()
	if len(icon) == 0 {
		t.Fatalf("%s is not embedded", iconPath)
	}
	img, err := png.Decode(bytes.NewReader(icon))
	if err != nil {
		t.Fatalf("decode icon: %v", err)
	}
	if b := img.Bounds(); b.Dx() != b.Dy() {
		t.Errorf("icon is %dx%d, want square", b.Dx(), b.Dy())
	}
}
