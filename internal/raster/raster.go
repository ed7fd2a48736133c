// Package raster turns decoded pixel buffers into files on disk. It is the
// rendering collaborator of the decode core: it consumes the flat buffer plus
// the (width, height, bytes-per-pixel) descriptor and never reaches back into
// the decoder.
package raster

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"

	"golang.org/x/image/bmp"

	"github.com/pixelfmt/pngraw/internal/png"
)

// Formats accepted by Save.
const (
	FormatPPM = "ppm"
	FormatBMP = "bmp"
)

// ToImage wraps the decoded buffer as an image.Image according to its color
// type. Grayscale and palette-index buffers map to image.Gray (indices are
// not expanded; they render as gray levels). Truecolor and grayscale+alpha
// expand to NRGBA; truecolor+alpha maps onto NRGBA directly. Short buffers
// are zero-padded to full size.
func ToImage(img *png.Image) (image.Image, error) {
	w, h := int(img.Header.Width), int(img.Header.Height)
	rect := image.Rect(0, 0, w, h)
	pix := make([]byte, w*h*img.Header.BytesPerPixel())
	copy(pix, img.Pix)

	switch img.Header.ColorType {
	case 0, 3:
		return &image.Gray{Pix: pix, Stride: w, Rect: rect}, nil
	case 2:
		out := image.NewNRGBA(rect)
		for i := 0; i < w*h; i++ {
			out.Pix[4*i+0] = pix[3*i+0]
			out.Pix[4*i+1] = pix[3*i+1]
			out.Pix[4*i+2] = pix[3*i+2]
			out.Pix[4*i+3] = 0xFF
		}
		return out, nil
	case 4:
		out := image.NewNRGBA(rect)
		for i := 0; i < w*h; i++ {
			gray := pix[2*i]
			out.Pix[4*i+0] = gray
			out.Pix[4*i+1] = gray
			out.Pix[4*i+2] = gray
			out.Pix[4*i+3] = pix[2*i+1]
		}
		return out, nil
	case 6:
		return &image.NRGBA{Pix: pix, Stride: 4 * w, Rect: rect}, nil
	}
	return nil, fmt.Errorf("no image mapping for color type %d", img.Header.ColorType)
}

// WritePPM writes the buffer as a binary P6 PPM. Alpha is dropped and
// grayscale levels are replicated across the three channels.
func WritePPM(w io.Writer, img *png.Image) error {
	m, err := ToImage(img)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", img.Header.Width, img.Header.Height); err != nil {
		return err
	}
	switch m := m.(type) {
	case *image.Gray:
		for _, g := range m.Pix {
			bw.Write([]byte{g, g, g})
		}
	case *image.NRGBA:
		for i := 0; i < len(m.Pix); i += 4 {
			bw.Write(m.Pix[i : i+3])
		}
	}
	return bw.Flush()
}

// Save writes the decoded image to path in the given format.
func Save(img *png.Image, path, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch format {
	case FormatPPM:
		return WritePPM(f, img)
	case FormatBMP:
		m, err := ToImage(img)
		if err != nil {
			return err
		}
		return bmp.Encode(f, m)
	}
	return fmt.Errorf("unknown output format %q", format)
}
