package shopdesk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func encodeTestImage(t *testing.T, w, h int, asPNG bool) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	var err error
	if asPNG {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, nil)
	}
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestProcessImagePNGResized(t *testing.T) {
	out, err := processImage(bytes.NewReader(encodeTestImage(t, 200, 100, true)), 50, 0)
	if err != nil {
		t.Fatalf("processImage failed: %v", err)
	}
	if out.Ext != ".png" || out.MimeType != "image/png" {
		t.Errorf("format = %s %s, want png", out.Ext, out.MimeType)
	}
	if out.Width != 50 || out.Height != 25 {
		t.Errorf("size = %dx%d, want 50x25", out.Width, out.Height)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Data))
	if err != nil || format != "png" || cfg.Width != 50 {
		t.Errorf("re-encoded image = %v %s %v", cfg, format, err)
	}
}

func TestProcessImageJPEGKeepsSmallWidth(t *testing.T) {
	out, err := processImage(bytes.NewReader(encodeTestImage(t, 40, 30, false)), 1600, 10_000)
	if err != nil {
		t.Fatalf("processImage failed: %v", err)
	}
	if out.Ext != ".jpg" || out.Width != 40 || out.Height != 30 {
		t.Errorf("got %s %dx%d", out.Ext, out.Width, out.Height)
	}
}

func TestProcessImageRejectsGarbage(t *testing.T) {
	_, err := processImage(strings.NewReader("not an image"), 100, 0)
	if !errors.Is(err, errBadImage) {
		t.Errorf("error = %v, want errBadImage", err)
	}
}

func TestProcessImageRejectsTooManyPixels(t *testing.T) {
	_, err := processImage(bytes.NewReader(encodeTestImage(t, 200, 100, true)), 50, 200*100-1)
	if !errors.Is(err, errBadImage) {
		t.Fatalf("error = %v, want errBadImage", err)
	}
	if !strings.Contains(err.Error(), "200x100") {
		t.Errorf("error = %q, want dimensions", err)
	}

	// A tiny file may declare huge dimensions; only the header is read.
	huge := hugePNGHeader(t, 30000, 30000)
	if _, err := processImage(bytes.NewReader(huge), 1600, 40_000_000); !errors.Is(err, errBadImage) {
		t.Errorf("error = %v, want errBadImage", err)
	}
}

// hugePNGHeader returns a PNG signature and IHDR chunk declaring w x h
// pixels with no image data.
func hugePNGHeader(t *testing.T, w, h uint32) []byte {
	t.Helper()
	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8], ihdr[9] = 8, 6 // 8-bit RGBA
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	crc := crc32.NewIEEE()
	crc.Write([]byte("IHDR"))
	crc.Write(ihdr[:])
	buf.WriteString("IHDR")
	buf.Write(ihdr[:])
	binary.Write(&buf, binary.BigEndian, crc.Sum32())
	return buf.Bytes()
}

func TestSlugifyFilename(t *testing.T) {
	tests := map[string]string{
		"Ảnh Sản Phẩm.JPG": "anh-san-pham",
		"photo.png":        "photo",
		"!!!.png":          "image",
	}
	for in, want := range tests {
		if got := slugifyFilename(in); got != want {
			t.Errorf("slugifyFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
