package libretro

import "encoding/binary"

// Pixel formats negotiated through envSetPixelFormat.
const (
	pixelFormat0RGB1555 = 0
	pixelFormatXRGB8888 = 1
	pixelFormatRGB565   = 2
)

// convertFrame converts a core frame of the given pixel format into RGBA.
// dst must hold width*height*4 bytes and src height rows of pitch bytes.
func convertFrame(dst, src []byte, width, height, pitch int, format uint32) {
	for y := 0; y < height; y++ {
		row := src[y*pitch:]
		out := dst[y*width*4 : (y+1)*width*4]
		switch format {
		case pixelFormatXRGB8888:
			convertXRGB8888(out, row, width)
		case pixelFormatRGB565:
			convertRGB565(out, row, width)
		default:
			convert0RGB1555(out, row, width)
		}
	}
}

// convertXRGB8888 converts little-endian XRGB8888 pixels to RGBA.
func convertXRGB8888(dst, src []byte, pixels int) {
	for i := 0; i < pixels; i++ {
		dst[i*4+0] = src[i*4+2] // R
		dst[i*4+1] = src[i*4+1] // G
		dst[i*4+2] = src[i*4+0] // B
		dst[i*4+3] = 0xFF
	}
}

// convertRGB565 converts little-endian RGB565 pixels to RGBA.
func convertRGB565(dst, src []byte, pixels int) {
	for i := 0; i < pixels; i++ {
		v := binary.LittleEndian.Uint16(src[i*2:])
		r := byte(v>>11) & 0x1F
		g := byte(v>>5) & 0x3F
		b := byte(v) & 0x1F
		dst[i*4+0] = r<<3 | r>>2
		dst[i*4+1] = g<<2 | g>>4
		dst[i*4+2] = b<<3 | b>>2
		dst[i*4+3] = 0xFF
	}
}

// convert0RGB1555 converts little-endian 0RGB1555 pixels to RGBA.
func convert0RGB1555(dst, src []byte, pixels int) {
	for i := 0; i < pixels; i++ {
		v := binary.LittleEndian.Uint16(src[i*2:])
		r := byte(v>>10) & 0x1F
		g := byte(v>>5) & 0x1F
		b := byte(v) & 0x1F
		dst[i*4+0] = r<<3 | r>>2
		dst[i*4+1] = g<<3 | g>>2
		dst[i*4+2] = b<<3 | b>>2
		dst[i*4+3] = 0xFF
	}
}

func bytesPerPixel(format uint32) int {
	if format == pixelFormatXRGB8888 {
		return 4
	}
	return 2
}
