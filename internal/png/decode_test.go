package png

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	stdpng "image/png"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunk frames a payload as a wire-format chunk with a correct CRC.
func chunk(typ string, data []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(len(data)))
	buf.WriteString(typ)
	buf.Write(data)
	h := crc32.NewIEEE()
	h.Write([]byte(typ))
	h.Write(data)
	binary.Write(&buf, binary.BigEndian, h.Sum32())
	return buf.Bytes()
}

func ihdrPayload(w, h uint32, bitDepth, colorType byte) []byte {
	d := make([]byte, 13)
	binary.BigEndian.PutUint32(d[0:4], w)
	binary.BigEndian.PutUint32(d[4:8], h)
	d[8] = bitDepth
	d[9] = colorType
	return d
}

func deflate(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func pngFile(chunks ...[]byte) []byte {
	out := []byte(signature)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

func TestDecode(t *testing.T) {
	iend := chunk("IEND", nil)

	t.Run("1x1 rgb red", func(t *testing.T) {
		file := pngFile(
			chunk("IHDR", ihdrPayload(1, 1, 8, 2)),
			chunk("IDAT", deflate(t, []byte{ftNone, 0xFF, 0x00, 0x00})),
			iend,
		)
		img, err := Decode(file)
		require.NoError(t, err)
		assert.Equal(t, Header{Width: 1, Height: 1, BitDepth: 8, ColorType: 2}, img.Header)
		assert.Equal(t, []byte{255, 0, 0}, img.Pix)
		assert.True(t, img.Complete())
	})

	t.Run("idat split across chunks", func(t *testing.T) {
		// Two IDAT chunks jointly carrying one zlib stream.
		stream := deflate(t, []byte{ftNone, 0x01, 0x02, 0x03, ftNone, 0x04, 0x05, 0x06})
		file := pngFile(
			chunk("IHDR", ihdrPayload(1, 2, 8, 2)),
			chunk("IDAT", stream[:3]),
			chunk("IDAT", stream[3:]),
			iend,
		)
		img, err := Decode(file)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, img.Pix)
	})

	t.Run("corrupt idat crc", func(t *testing.T) {
		idat := chunk("IDAT", deflate(t, []byte{ftNone, 0xFF, 0x00, 0x00}))
		idat[len(idat)-1] ^= 0xFF
		file := pngFile(chunk("IHDR", ihdrPayload(1, 1, 8, 2)), idat, iend)
		_, err := Decode(file)
		assert.ErrorIs(t, err, ErrChunkCRC)
	})

	t.Run("short file", func(t *testing.T) {
		_, err := Decode([]byte{0x89, 0x50, 0x4E})
		assert.ErrorIs(t, err, ErrNotPNG)
	})

	t.Run("wrong signature", func(t *testing.T) {
		file := pngFile(chunk("IHDR", ihdrPayload(1, 1, 8, 2)), iend)
		file[0] = 0x88
		_, err := Decode(file)
		assert.ErrorIs(t, err, ErrNotPNG)
	})

	t.Run("truncated after signature", func(t *testing.T) {
		file := append([]byte(signature), 0x00, 0x00)
		_, err := Decode(file)
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("chunk length past end of buffer", func(t *testing.T) {
		file := pngFile(chunk("IHDR", ihdrPayload(1, 1, 8, 2)))
		// Declares 32 payload bytes, supplies none.
		file = append(file, 0x00, 0x00, 0x00, 0x20, 'I', 'D', 'A', 'T')
		_, err := Decode(file)
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("missing iend", func(t *testing.T) {
		file := pngFile(chunk("IHDR", ihdrPayload(1, 1, 8, 2)))
		_, err := Decode(file)
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("color type 5", func(t *testing.T) {
		file := pngFile(chunk("IHDR", ihdrPayload(1, 1, 8, 5)), iend)
		_, err := Decode(file)
		assert.ErrorIs(t, err, ErrUnsupportedColorType)
	})

	t.Run("bit depth 16", func(t *testing.T) {
		file := pngFile(chunk("IHDR", ihdrPayload(1, 1, 16, 2)), iend)
		_, err := Decode(file)
		assert.ErrorIs(t, err, ErrUnsupportedVariant)
	})

	t.Run("interlaced", func(t *testing.T) {
		payload := ihdrPayload(1, 1, 8, 2)
		payload[12] = 1
		file := pngFile(chunk("IHDR", payload), iend)
		_, err := Decode(file)
		assert.ErrorIs(t, err, ErrUnsupportedVariant)
	})

	t.Run("short ihdr payload", func(t *testing.T) {
		file := pngFile(chunk("IHDR", make([]byte, 12)), iend)
		_, err := Decode(file)
		assert.ErrorIs(t, err, ErrMalformedHeader)
	})

	t.Run("first chunk not ihdr", func(t *testing.T) {
		file := pngFile(chunk("sRGB", []byte{0}), chunk("IHDR", ihdrPayload(1, 1, 8, 2)), iend)
		_, err := Decode(file)
		assert.ErrorIs(t, err, ErrMalformedHeader)
	})

	t.Run("missing idat", func(t *testing.T) {
		file := pngFile(chunk("IHDR", ihdrPayload(2, 2, 8, 0)), iend)
		img, err := Decode(file)
		assert.ErrorIs(t, err, ErrMissingImageData)
		require.NotNil(t, img)
		assert.Equal(t, uint32(2), img.Header.Width)
		assert.Empty(t, img.Pix)
	})

	t.Run("ancillary chunks passed over", func(t *testing.T) {
		file := pngFile(
			chunk("IHDR", ihdrPayload(1, 1, 8, 0)),
			chunk("tEXt", []byte("Comment\x00hello")),
			chunk("IDAT", deflate(t, []byte{ftNone, 0x7F})),
			chunk("gAMA", []byte{0, 0, 0xB1, 0x8F}),
			iend,
		)
		img, err := Decode(file)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x7F}, img.Pix)
	})

	t.Run("garbage idat stream", func(t *testing.T) {
		file := pngFile(chunk("IHDR", ihdrPayload(1, 1, 8, 2)), chunk("IDAT", []byte{1, 2, 3}), iend)
		_, err := Decode(file)
		assert.ErrorIs(t, err, ErrDecompress)
	})

	t.Run("oversized idat output", func(t *testing.T) {
		// 1x1 grayscale allows 2 bytes of scanline data; stream carries 10.
		file := pngFile(
			chunk("IHDR", ihdrPayload(1, 1, 8, 0)),
			chunk("IDAT", deflate(t, make([]byte, 10))),
			iend,
		)
		_, err := Decode(file)
		assert.ErrorIs(t, err, ErrDecompress)
	})

	t.Run("truncated scanlines", func(t *testing.T) {
		// 2x2 grayscale wants 6 bytes; the stream stops one byte into row 1.
		file := pngFile(
			chunk("IHDR", ihdrPayload(2, 2, 8, 0)),
			chunk("IDAT", deflate(t, []byte{ftNone, 10, 20, ftUp, 5})),
			iend,
		)
		img, err := Decode(file)
		require.NoError(t, err)
		assert.Equal(t, []byte{10, 20, 15}, img.Pix)
		assert.False(t, img.Complete())
	})

	t.Run("unknown filter byte", func(t *testing.T) {
		file := pngFile(
			chunk("IHDR", ihdrPayload(1, 1, 8, 0)),
			chunk("IDAT", deflate(t, []byte{9, 0x7F})),
			iend,
		)
		_, err := Decode(file)
		assert.ErrorIs(t, err, ErrUnknownFilter)
	})
}

// TestDecodeAgainstStdlib encodes a small image with image/png and checks
// that this decoder reproduces the exact pixel bytes.
func TestDecodeAgainstStdlib(t *testing.T) {
	const w, h = 8, 5
	src := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range src.Pix {
		// Deterministic pattern with non-opaque alpha so the stdlib encoder
		// keeps the alpha channel (color type 6).
		src.Pix[i] = byte(i*7 + 13)
	}

	var buf bytes.Buffer
	require.NoError(t, stdpng.Encode(&buf, src))

	img, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint32(w), img.Header.Width)
	assert.Equal(t, uint32(h), img.Header.Height)
	assert.Equal(t, byte(6), img.Header.ColorType)
	assert.Equal(t, src.Pix, img.Pix)
}

// CRC-32 detects every single-bit error deterministically; flipping any bit
// of the type or payload must fail verification.
func TestVerifyCRCBitFlips(t *testing.T) {
	typ := [4]byte{'I', 'D', 'A', 'T'}
	data := []byte{0x78, 0x9C, 0x63, 0x00}
	h := crc32.NewIEEE()
	h.Write(typ[:])
	h.Write(data)
	sum := h.Sum32()

	require.True(t, verifyCRC(typ, data, sum))

	for i := 0; i < 4*8; i++ {
		flipped := typ
		flipped[i/8] ^= 1 << (i % 8)
		assert.False(t, verifyCRC(flipped, data, sum), "type bit %d", i)
	}
	for i := 0; i < len(data)*8; i++ {
		flipped := append([]byte(nil), data...)
		flipped[i/8] ^= 1 << (i % 8)
		assert.False(t, verifyCRC(typ, flipped, sum), "data bit %d", i)
	}
}
