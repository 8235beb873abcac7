package raster

import (
	"fmt"
	"math"

	"github.com/geotool-cli/geotool/internal/geo"
)

// PixelType identifies the storage type of raster samples.
type PixelType int

const (
	Byte PixelType = iota
	Int8
	UInt16
	Int16
	UInt32
	Int32
	Float32
	Float64
)

// Name returns the conventional raster type name.
func (p PixelType) Name() string {
	switch p {
	case Byte:
		return "Byte"
	case Int8:
		return "Int8"
	case UInt16:
		return "UInt16"
	case Int16:
		return "Int16"
	case UInt32:
		return "UInt32"
	case Int32:
		return "Int32"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	default:
		return "Unknown"
	}
}

// Size returns the storage size in bytes per sample.
func (p PixelType) Size() int {
	switch p {
	case Byte, Int8:
		return 1
	case UInt16, Int16:
		return 2
	case UInt32, Int32, Float32:
		return 4
	case Float64:
		return 8
	default:
		return 1
	}
}

// Description returns a human-readable description of the type.
func (p PixelType) Description() string {
	switch p {
	case Byte:
		return "8-bit unsigned integer"
	case Int8:
		return "8-bit signed integer"
	case UInt16:
		return "16-bit unsigned integer"
	case Int16:
		return "16-bit signed integer"
	case UInt32:
		return "32-bit unsigned integer"
	case Int32:
		return "32-bit signed integer"
	case Float32:
		return "32-bit floating point"
	case Float64:
		return "64-bit floating point"
	default:
		return "unknown type"
	}
}

// ValueRange returns the representable value range as text.
func (p PixelType) ValueRange() string {
	switch p {
	case Byte:
		return "0 to 255"
	case Int8:
		return "-128 to 127"
	case UInt16:
		return "0 to 65,535"
	case Int16:
		return "-32,768 to 32,767"
	case UInt32:
		return "0 to 4,294,967,295"
	case Int32:
		return "-2,147,483,648 to 2,147,483,647"
	case Float32:
		return "IEEE 754 single precision"
	case Float64:
		return "IEEE 754 double precision"
	default:
		return "unknown"
	}
}

// Metadata describes an opened raster: dimensions, band layout, sample type
// and georeferencing. It is read-only for the lifetime of an operation;
// cropping produces a new Metadata rather than mutating the source.
type Metadata struct {
	Width     int
	Height    int
	BandCount int
	PixelType PixelType
	Transform geo.Affine
	SRS       *geo.SpatialReference
	NoData    *float64
}

// TotalPixels returns width*height.
func (m Metadata) TotalPixels() int64 {
	return int64(m.Width) * int64(m.Height)
}

// UncompressedSize returns the in-memory size of the full raster in bytes.
func (m Metadata) UncompressedSize() int64 {
	return m.TotalPixels() * int64(m.BandCount) * int64(m.PixelType.Size())
}

// AspectRatio returns width/height, or 0 for a degenerate raster.
func (m Metadata) AspectRatio() float64 {
	if m.Height == 0 {
		return 0
	}
	return float64(m.Width) / float64(m.Height)
}

// Window is a rectangular pixel region [XOff, XOff+Width) × [YOff, YOff+Height).
type Window struct {
	XOff   int
	YOff   int
	Width  int
	Height int
}

func (w Window) String() string {
	return fmt.Sprintf("window(xoff=%d, yoff=%d, width=%d, height=%d)", w.XOff, w.YOff, w.Width, w.Height)
}

// Within reports whether the window lies entirely inside a raster of the
// given dimensions.
func (w Window) Within(width, height int) bool {
	return w.XOff >= 0 && w.YOff >= 0 &&
		w.Width > 0 && w.Height > 0 &&
		w.XOff+w.Width <= width && w.YOff+w.Height <= height
}

// Buffer holds decoded raster samples for one or more bands, row-major,
// widened to float64. Derived buffers are always produced fresh; a Buffer is
// never mutated after it is filled.
type Buffer struct {
	Width  int
	Height int
	Bands  [][]float64
}

// NewBuffer allocates a zeroed buffer for the given shape.
func NewBuffer(width, height, bands int) *Buffer {
	b := &Buffer{Width: width, Height: height, Bands: make([][]float64, bands)}
	for i := range b.Bands {
		b.Bands[i] = make([]float64, width*height)
	}
	return b
}

// Band returns the samples of the 1-based band index.
func (b *Buffer) Band(band int) ([]float64, error) {
	if band < 1 || band > len(b.Bands) {
		return nil, fmt.Errorf("band %d out of range (raster has %d)", band, len(b.Bands))
	}
	return b.Bands[band-1], nil
}

// Read extracts the window from every band identically. Reading outside the
// buffer extent fails; callers that permit out-of-range windows surface this
// as an unreadable-window error.
func (b *Buffer) Read(win Window) (*Buffer, error) {
	if !win.Within(b.Width, b.Height) {
		return nil, fmt.Errorf("%v exceeds raster extent %dx%d", win, b.Width, b.Height)
	}

	out := NewBuffer(win.Width, win.Height, len(b.Bands))
	for bi, src := range b.Bands {
		dst := out.Bands[bi]
		for row := 0; row < win.Height; row++ {
			srcOff := (win.YOff+row)*b.Width + win.XOff
			copy(dst[row*win.Width:(row+1)*win.Width], src[srcOff:srcOff+win.Width])
		}
	}
	return out, nil
}

// MaskValid filters samples down to finite values that are not the nodata
// sentinel. The raster reader applies this before statistics are computed.
func MaskValid(samples []float64, nodata *float64) []float64 {
	out := make([]float64, 0, len(samples))
	for _, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if nodata != nil && v == *nodata {
			continue
		}
		out = append(out, v)
	}
	return out
}
