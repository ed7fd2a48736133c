// Package png decodes non-interlaced, 8-bit-per-channel PNG images into flat
// pixel buffers. It covers chunk framing with CRC-32 integrity checks, IDAT
// aggregation, bounded zlib inflation and inverse scanline filtering; palette
// expansion and ancillary chunk semantics are out of scope.
package png

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

const signature = "\x89PNG\r\n\x1a\n"

// Chunk is one length-prefixed, type-tagged, checksummed record from the
// file. Data aliases the input buffer; chunks are not retained past a decode.
type Chunk struct {
	Type   [4]byte
	Data   []byte
	CRC    uint32
	Offset int // position of the chunk's length field in the file
}

func (c *Chunk) typeString() string { return string(c.Type[:]) }

// Image is the decoded result. Pix is row-major and channel-interleaved in
// the channel order implied by the color type. A well-formed file yields
// Stride()*Height bytes; a short IDAT stream yields fewer (see Complete).
type Image struct {
	Header Header
	Pix    []byte
}

// Complete reports whether Pix holds every pixel the header promises.
// Encoders occasionally pad inexactly, so Decode tolerates short streams and
// leaves the length check to the caller.
func (img *Image) Complete() bool {
	return len(img.Pix) == img.Header.Stride()*int(img.Header.Height)
}

// chunkReader walks the buffer one chunk at a time, advancing by exactly
// 12+length bytes per chunk.
type chunkReader struct {
	data []byte
	pos  int
}

func (r *chunkReader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrTruncated, n, r.pos, len(r.data)-r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *chunkReader) next() (*Chunk, error) {
	offset := r.pos
	lengthBytes, err := r.take(4)
	if err != nil {
		return nil, err
	}
	typeBytes, err := r.take(4)
	if err != nil {
		return nil, err
	}
	data, err := r.take(int(binary.BigEndian.Uint32(lengthBytes)))
	if err != nil {
		return nil, err
	}
	crcBytes, err := r.take(4)
	if err != nil {
		return nil, err
	}
	c := &Chunk{Data: data, CRC: binary.BigEndian.Uint32(crcBytes), Offset: offset}
	copy(c.Type[:], typeBytes)
	if !verifyCRC(c.Type, c.Data, c.CRC) {
		return nil, fmt.Errorf("%w: %s chunk at offset %d", ErrChunkCRC, c.typeString(), offset)
	}
	return c, nil
}

// verifyCRC checks the standard CRC-32 (IEEE, reflected 0xEDB88320) computed
// over the chunk type followed by its payload.
func verifyCRC(typ [4]byte, data []byte, want uint32) bool {
	h := crc32.NewIEEE()
	h.Write(typ[:])
	h.Write(data)
	return h.Sum32() == want
}

// readChunks yields every chunk up to and including IEND. A corrupt chunk
// aborts the walk: its length field cannot be trusted, so all later offsets
// are tainted. Trailing bytes after IEND are ignored.
func readChunks(data []byte) ([]*Chunk, error) {
	r := &chunkReader{data: data, pos: len(signature)}
	var chunks []*Chunk
	for {
		c, err := r.next()
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
		if c.typeString() == "IEND" {
			return chunks, nil
		}
	}
}

// aggregateIDAT concatenates the payload of every IDAT chunk in file order
// into the single zlib stream they jointly carry.
func aggregateIDAT(chunks []*Chunk) []byte {
	var out []byte
	for _, c := range chunks {
		if c.typeString() == "IDAT" {
			out = append(out, c.Data...)
		}
	}
	return out
}

// Decode runs the whole pipeline over an in-memory PNG file: signature check,
// chunk walk with CRC verification, IHDR interpretation, IDAT aggregation,
// bounded inflation and scanline reconstruction.
//
// A file with no IDAT chunks returns the parsed header together with
// ErrMissingImageData; the caller decides whether an empty image is fatal.
// All other errors return a nil Image.
func Decode(data []byte) (*Image, error) {
	if len(data) < len(signature) || string(data[:len(signature)]) != signature {
		return nil, ErrNotPNG
	}
	chunks, err := readChunks(data)
	if err != nil {
		return nil, err
	}
	if chunks[0].typeString() != "IHDR" {
		return nil, fmt.Errorf("%w: first chunk is %s, want IHDR", ErrMalformedHeader, chunks[0].typeString())
	}
	header, err := parseHeader(chunks[0].Data)
	if err != nil {
		return nil, err
	}
	compressed := aggregateIDAT(chunks)
	if len(compressed) == 0 {
		return &Image{Header: header}, ErrMissingImageData
	}
	raw, err := inflate(compressed, int(header.Height)*(header.Stride()+1))
	if err != nil {
		return nil, err
	}
	pix, err := unfilter(raw, header)
	if err != nil {
		return nil, err
	}
	return &Image{Header: header, Pix: pix}, nil
}
