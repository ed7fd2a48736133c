package png

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// inflate decompresses the aggregated IDAT stream. maxOut is the largest
// output the image geometry allows: one filter-type byte plus one stride of
// pixel data per row. A stream producing more than that is corrupt. Producing
// less is tolerated; the reconstructor handles short streams.
func inflate(compressed []byte, maxOut int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompress, err)
	}
	defer zr.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(zr, int64(maxOut)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompress, err)
	}
	if n > int64(maxOut) {
		return nil, fmt.Errorf("%w: output exceeds %d bytes", ErrDecompress, maxOut)
	}
	return buf.Bytes(), nil
}
