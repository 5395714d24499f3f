// ABOUTME: Video frame scaler
// ABOUTME: Converts packed RGB frames to RGBA images at display size
package video

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/Resonate-Protocol/reel/pkg/media"
)

// Scaler resizes decoded frames to a fixed output size
type Scaler struct {
	width  int
	height int
	interp draw.Interpolator
	src    *image.RGBA
}

// NewScaler creates a scaler producing width x height images
func NewScaler(width, height int) *Scaler {
	return &Scaler{
		width:  width,
		height: height,
		interp: draw.ApproxBiLinear,
	}
}

// Size returns the output dimensions
func (s *Scaler) Size() (int, int) {
	return s.width, s.height
}

// Scale converts one frame. Every call returns a fresh image.
func (s *Scaler) Scale(frame *media.VideoFrame) (*image.RGBA, error) {
	if frame == nil {
		return nil, fmt.Errorf("nil frame")
	}
	if frame.Width <= 0 || frame.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", frame.Width, frame.Height)
	}
	bpp := frame.Format.BytesPerPixel()
	stride := frame.Stride
	if stride == 0 {
		stride = frame.Width * bpp
	}
	if len(frame.Pix) < stride*(frame.Height-1)+frame.Width*bpp {
		return nil, fmt.Errorf("frame buffer of %d bytes too small for %dx%d %v",
			len(frame.Pix), frame.Width, frame.Height, frame.Format)
	}

	src := s.source(frame.Width, frame.Height)
	for y := 0; y < frame.Height; y++ {
		row := frame.Pix[y*stride:]
		out := src.Pix[y*src.Stride:]
		switch frame.Format {
		case media.PixelRGBA:
			copy(out[:frame.Width*4], row[:frame.Width*4])
		default:
			for x := 0; x < frame.Width; x++ {
				out[x*4] = row[x*3]
				out[x*4+1] = row[x*3+1]
				out[x*4+2] = row[x*3+2]
				out[x*4+3] = 0xFF
			}
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	if frame.Width == s.width && frame.Height == s.height {
		copy(dst.Pix, src.Pix)
		return dst, nil
	}
	s.interp.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// source returns the reusable intermediate image for a frame size
func (s *Scaler) source(width, height int) *image.RGBA {
	if s.src == nil || s.src.Rect.Dx() != width || s.src.Rect.Dy() != height {
		s.src = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	return s.src
}

// Fit returns the largest size with the source aspect ratio that fits in
// maxWidth x maxHeight. Both results are at least 1.
func Fit(srcWidth, srcHeight, maxWidth, maxHeight int) (int, int) {
	if srcWidth <= 0 || srcHeight <= 0 {
		return max(maxWidth, 1), max(maxHeight, 1)
	}
	width := maxWidth
	height := srcHeight * maxWidth / srcWidth
	if maxHeight > 0 && height > maxHeight {
		height = maxHeight
		width = srcWidth * maxHeight / srcHeight
	}
	return max(width, 1), max(height, 1)
}
