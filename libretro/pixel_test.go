package libretro

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConvertXRGB8888(t *testing.T) {
	// Little-endian XRGB8888: B=0x40, G=0x80, R=0xFF, X=0x00
	src := []byte{0x40, 0x80, 0xFF, 0x00}
	dst := make([]byte, 4)

	convertXRGB8888(dst, src, 1)

	want := []byte{0xFF, 0x80, 0x40, 0xFF}
	if diff := cmp.Diff(want, dst); diff != "" {
		t.Errorf("pixel mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertXRGB8888_Alpha(t *testing.T) {
	testCases := []struct {
		name string
		x    byte
	}{
		{"zero", 0x00},
		{"half", 0x80},
		{"full", 0xFF},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := []byte{0x12, 0x34, 0x56, tc.x}
			dst := make([]byte, 4)

			convertXRGB8888(dst, src, 1)

			if dst[3] != 0xFF {
				t.Errorf("alpha = %#02x, want 0xFF (input X was %#02x)", dst[3], tc.x)
			}
		})
	}
}

func TestConvert16Bit(t *testing.T) {
	testCases := []struct {
		name    string
		convert func(dst, src []byte, pixels int)
		pixel   uint16
		want    []byte
	}{
		{"565 white", convertRGB565, 0xFFFF, []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"565 black", convertRGB565, 0x0000, []byte{0x00, 0x00, 0x00, 0xFF}},
		{"565 red", convertRGB565, 0xF800, []byte{0xFF, 0x00, 0x00, 0xFF}},
		{"565 green", convertRGB565, 0x07E0, []byte{0x00, 0xFF, 0x00, 0xFF}},
		{"565 blue", convertRGB565, 0x001F, []byte{0x00, 0x00, 0xFF, 0xFF}},
		{"1555 white", convert0RGB1555, 0x7FFF, []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"1555 red", convert0RGB1555, 0x7C00, []byte{0xFF, 0x00, 0x00, 0xFF}},
		{"1555 green", convert0RGB1555, 0x03E0, []byte{0x00, 0xFF, 0x00, 0xFF}},
		{"1555 blue", convert0RGB1555, 0x001F, []byte{0x00, 0x00, 0xFF, 0xFF}},
		{"1555 ignores top bit", convert0RGB1555, 0x8000, []byte{0x00, 0x00, 0x00, 0xFF}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := []byte{byte(tc.pixel), byte(tc.pixel >> 8)}
			dst := make([]byte, 4)

			tc.convert(dst, src, 1)

			if diff := cmp.Diff(tc.want, dst); diff != "" {
				t.Errorf("pixel mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConvertFrame_Pitch(t *testing.T) {
	// 2x2 XRGB8888 frame with 4 bytes of row padding
	const width, height, pitch = 2, 2, 12
	src := []byte{
		0x01, 0x02, 0x03, 0, 0x04, 0x05, 0x06, 0, 0xEE, 0xEE, 0xEE, 0xEE,
		0x07, 0x08, 0x09, 0, 0x0A, 0x0B, 0x0C, 0, 0xEE, 0xEE, 0xEE, 0xEE,
	}
	dst := make([]byte, width*height*4)

	convertFrame(dst, src, width, height, pitch, pixelFormatXRGB8888)

	want := []byte{
		0x03, 0x02, 0x01, 0xFF, 0x06, 0x05, 0x04, 0xFF,
		0x09, 0x08, 0x07, 0xFF, 0x0C, 0x0B, 0x0A, 0xFF,
	}
	if diff := cmp.Diff(want, dst); diff != "" {
		t.Errorf("frame mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertFrame_Empty(t *testing.T) {
	// Should not panic
	convertFrame(nil, nil, 0, 0, 0, pixelFormatRGB565)
}

func TestBytesPerPixel(t *testing.T) {
	testCases := []struct {
		format uint32
		want   int
	}{
		{pixelFormat0RGB1555, 2},
		{pixelFormatXRGB8888, 4},
		{pixelFormatRGB565, 2},
	}
	for _, tc := range testCases {
		if got := bytesPerPixel(tc.format); got != tc.want {
			t.Errorf("bytesPerPixel(%d) = %d, want %d", tc.format, got, tc.want)
		}
	}
}
