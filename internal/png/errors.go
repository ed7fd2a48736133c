package png

import "errors"

// Decode failures are classified into one of these sentinel errors so that
// batch callers can keep going past a single bad file. Returned errors wrap
// the sentinel with chunk type/offset context; match with errors.Is.
var (
	ErrNotPNG               = errors.New("png: missing png signature")
	ErrTruncated            = errors.New("png: truncated input")
	ErrChunkCRC             = errors.New("png: chunk crc mismatch")
	ErrMalformedHeader      = errors.New("png: malformed IHDR")
	ErrUnsupportedColorType = errors.New("png: unsupported color type")
	ErrUnsupportedVariant   = errors.New("png: unsupported image variant")
	ErrMissingImageData     = errors.New("png: no IDAT chunks")
	ErrDecompress           = errors.New("png: bad image data stream")
	ErrUnknownFilter        = errors.New("png: unknown filter type")
)
