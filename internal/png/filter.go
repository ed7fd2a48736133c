package png

import "fmt"

// Filter types, as per the PNG spec.
const (
	ftNone    = 0
	ftSub     = 1
	ftUp      = 2
	ftAverage = 3
	ftPaeth   = 4
)

// unfilter reverses the per-row predictive filtering of the decompressed
// scanline data, producing the flat pixel buffer. Rows are processed in file
// order: row r reads reconstructed bytes of row r-1, so order is load-bearing.
// Missing neighbors (first row, first column) contribute zero.
//
// If raw runs out mid-row or mid-image the bytes reconstructed so far are
// returned as-is; callers check Image.Complete. An out-of-range filter-type
// byte aborts the whole decode, since reconstruction state for every later
// row would be undefined.
func unfilter(raw []byte, h Header) ([]byte, error) {
	bpp := h.BytesPerPixel()
	stride := h.Stride()
	out := make([]byte, 0, stride*int(h.Height))

	pos := 0
	for row := 0; row < int(h.Height); row++ {
		if pos >= len(raw) {
			break
		}
		ft := raw[pos]
		pos++
		if ft > ftPaeth {
			return nil, fmt.Errorf("%w: %d in row %d", ErrUnknownFilter, ft, row)
		}
		rowStart := row * stride
		for c := 0; c < stride; c++ {
			if pos >= len(raw) {
				return out, nil
			}
			x := raw[pos]
			pos++

			var left, up, upLeft byte
			if c >= bpp {
				left = out[rowStart+c-bpp]
			}
			if row > 0 {
				up = out[rowStart-stride+c]
				if c >= bpp {
					upLeft = out[rowStart-stride+c-bpp]
				}
			}

			var recon byte
			switch ft {
			case ftNone:
				recon = x
			case ftSub:
				recon = x + left
			case ftUp:
				recon = x + up
			case ftAverage:
				// Floored average of the unwrapped sum, per the PNG spec;
				// rounding to nearest silently diverges.
				recon = x + byte((int(left)+int(up))/2)
			case ftPaeth:
				recon = x + paeth(left, up, upLeft)
			}
			out = append(out, recon)
		}
	}
	return out, nil
}

// paeth picks whichever neighbor is closest to the linear prediction a+b-c.
// Ties resolve left, then up, then upper-left; the order matters for
// bit-exact output.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
