package utils

import "testing"

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, "jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "webp"},
		{"short", []byte{0xFF, 0xD8}, "unknown"},
		{"garbage", []byte("not an image at all"), "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectFormat(tc.data); got != tc.want {
				t.Fatalf("DetectFormat = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestScaleDimensions(t *testing.T) {
	cases := []struct {
		name             string
		srcW, srcH       int
		targetW, targetH int
		wantW, wantH     int
	}{
		{"no target", 800, 600, 0, 0, 800, 600},
		{"width only", 800, 600, 400, 0, 400, 300},
		{"height only", 800, 600, 0, 300, 400, 300},
		{"both given", 800, 600, 100, 100, 100, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h := ScaleDimensions(tc.srcW, tc.srcH, tc.targetW, tc.targetH)
			if w != tc.wantW || h != tc.wantH {
				t.Fatalf("ScaleDimensions = %dx%d, want %dx%d", w, h, tc.wantW, tc.wantH)
			}
		})
	}
}

func TestCloneBytes(t *testing.T) {
	src := []byte{1, 2, 3}
	cp := CloneBytes(src)
	src[0] = 9
	if cp[0] != 1 {
		t.Fatal("clone must not alias the source")
	}
}
