package png

import (
	"encoding/binary"
	"fmt"
)

// Header holds the fields of the IHDR chunk.
type Header struct {
	Width       uint32
	Height      uint32
	BitDepth    byte
	ColorType   byte
	Compression byte
	Filter      byte
	Interlace   byte
}

// Bytes per pixel for each supported color type at bit depth 8:
// grayscale, truecolor, palette index, grayscale+alpha, truecolor+alpha.
var colorTypeBPP = map[byte]int{0: 1, 2: 3, 3: 1, 4: 2, 6: 4}

// BytesPerPixel returns the pixel width in bytes for the header's color type.
func (h Header) BytesPerPixel() int { return colorTypeBPP[h.ColorType] }

// Stride returns the byte length of one unfiltered scanline, excluding the
// leading filter-type byte.
func (h Header) Stride() int { return int(h.Width) * h.BytesPerPixel() }

// parseHeader decodes the 13-byte IHDR payload. Color types outside the five
// standard ones are rejected outright; structurally valid variants this
// decoder cannot reconstruct (non-8-bit depth, interlacing, unknown
// compression method) fail before any decompression is attempted.
func parseHeader(data []byte) (Header, error) {
	if len(data) != 13 {
		return Header{}, fmt.Errorf("%w: payload is %d bytes, want 13", ErrMalformedHeader, len(data))
	}
	h := Header{
		Width:       binary.BigEndian.Uint32(data[0:4]),
		Height:      binary.BigEndian.Uint32(data[4:8]),
		BitDepth:    data[8],
		ColorType:   data[9],
		Compression: data[10],
		Filter:      data[11],
		Interlace:   data[12],
	}
	if h.Width == 0 || h.Height == 0 {
		return Header{}, fmt.Errorf("%w: zero dimension %dx%d", ErrMalformedHeader, h.Width, h.Height)
	}
	if _, ok := colorTypeBPP[h.ColorType]; !ok {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedColorType, h.ColorType)
	}
	if h.BitDepth != 8 || h.Compression != 0 || h.Interlace != 0 {
		return Header{}, fmt.Errorf("%w: bit depth %d, compression %d, interlace %d",
			ErrUnsupportedVariant, h.BitDepth, h.Compression, h.Interlace)
	}
	return h, nil
}
