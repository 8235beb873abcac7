package geotiff

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/geotool-cli/geotool/internal/geo"
	"github.com/geotool-cli/geotool/internal/raster"
)

// Dataset is an opened GeoTIFF. The file is read into memory once; decoding
// into sample buffers happens on demand.
type Dataset struct {
	path string
	data []byte
	bo   binary.ByteOrder
	dir  ifd
	md   raster.Metadata
}

// Open reads and parses a GeoTIFF (classic or BigTIFF, strip or tile
// organized). Georeferencing falls back to a world file sidecar when the TIFF
// itself carries none, and to the default identity-like transform after that.
func Open(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	ifds, bo, err := parseTIFF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(ifds) == 0 {
		return nil, fmt.Errorf("%s: no image directories", path)
	}

	// The full-resolution image is the first IFD; overviews are ignored.
	ds := &Dataset{path: path, data: data, bo: bo, dir: ifds[0]}
	if err := ds.buildMetadata(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Metadata returns the parsed raster description.
func (ds *Dataset) Metadata() raster.Metadata {
	return ds.md
}

// Path returns the file path the dataset was opened from.
func (ds *Dataset) Path() string {
	return ds.path
}

// FileSize returns the on-disk size in bytes.
func (ds *Dataset) FileSize() int64 {
	return int64(len(ds.data))
}

// Close releases the in-memory file contents.
func (ds *Dataset) Close() error {
	ds.data = nil
	return nil
}

func (ds *Dataset) buildMetadata() error {
	d := &ds.dir
	if d.Width == 0 || d.Height == 0 {
		return fmt.Errorf("invalid dimensions %dx%d", d.Width, d.Height)
	}

	bands := int(d.SamplesPerPixel)
	if bands == 0 {
		bands = 1
	}

	pt, err := pixelTypeOf(d)
	if err != nil {
		return err
	}

	ds.md = raster.Metadata{
		Width:     int(d.Width),
		Height:    int(d.Height),
		BandCount: bands,
		PixelType: pt,
		Transform: ds.geoTransform(),
		SRS:       parseSpatialReference(d),
		NoData:    parseNoData(d.NoDataASCII),
	}
	return nil
}

// geoTransform derives the affine georeference in priority order:
// ModelTransformation, then PixelScale+Tiepoint, then a world file sidecar,
// then the ungeoreferenced default.
func (ds *Dataset) geoTransform() geo.Affine {
	d := &ds.dir

	if len(d.ModelTransformation) >= 16 {
		m := d.ModelTransformation
		return geo.Affine{
			OriginX:     m[3],
			PixelWidth:  m[0],
			RowSkew:     m[1],
			OriginY:     m[7],
			ColSkew:     m[4],
			PixelHeight: m[5],
		}
	}

	if len(d.ModelPixelScale) >= 2 && len(d.ModelTiepoint) >= 6 {
		sx := d.ModelPixelScale[0]
		sy := d.ModelPixelScale[1]
		tp := d.ModelTiepoint
		return geo.Affine{
			OriginX:     tp[3] - tp[0]*sx,
			PixelWidth:  sx,
			OriginY:     tp[4] + tp[1]*sy,
			PixelHeight: -sy,
		}
	}

	if sidecar := findTFW(ds.path); sidecar != "" {
		if tr, err := parseTFW(sidecar); err == nil {
			return tr
		}
	}

	return geo.DefaultAffine
}

// parseNoData interprets the GDAL nodata tag, which stores the value as text.
func parseNoData(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.EqualFold(s, "nan") {
		v := math.NaN()
		return &v
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func pixelTypeOf(d *ifd) (raster.PixelType, error) {
	bits := uint16(8)
	if len(d.BitsPerSample) > 0 {
		bits = d.BitsPerSample[0]
	}
	format := uint16(sampleFormatUint)
	if len(d.SampleFormat) > 0 {
		format = d.SampleFormat[0]
	}

	switch {
	case bits == 8 && format == sampleFormatInt:
		return raster.Int8, nil
	case bits == 8:
		return raster.Byte, nil
	case bits == 16 && format == sampleFormatInt:
		return raster.Int16, nil
	case bits == 16:
		return raster.UInt16, nil
	case bits == 32 && format == sampleFormatFloat:
		return raster.Float32, nil
	case bits == 32 && format == sampleFormatInt:
		return raster.Int32, nil
	case bits == 32:
		return raster.UInt32, nil
	case bits == 64 && format == sampleFormatFloat:
		return raster.Float64, nil
	default:
		return 0, fmt.Errorf("unsupported sample layout: %d bits, format %d", bits, format)
	}
}

// Read decodes the full raster into a float64 buffer, one slice per band.
func (ds *Dataset) Read() (*raster.Buffer, error) {
	if ds.data == nil {
		return nil, fmt.Errorf("%s: dataset is closed", ds.path)
	}

	buf := raster.NewBuffer(ds.md.Width, ds.md.Height, ds.md.BandCount)
	var err error
	if ds.dir.Tiled() {
		err = ds.decodeTiles(buf)
	} else {
		err = ds.decodeStrips(buf)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", ds.path, err)
	}
	return buf, nil
}

func (ds *Dataset) decodeStrips(buf *raster.Buffer) error {
	d := &ds.dir
	rps := int(d.RowsPerStrip)
	if rps == 0 || rps > ds.md.Height {
		rps = ds.md.Height
	}
	stripsPerPlane := (ds.md.Height + rps - 1) / rps

	for i := range d.StripOffsets {
		plane := 0
		stripInPlane := i
		if d.PlanarConfig == 2 {
			plane = i / stripsPerPlane
			stripInPlane = i % stripsPerPlane
		}

		rowStart := stripInPlane * rps
		rows := rps
		if rowStart+rows > ds.md.Height {
			rows = ds.md.Height - rowStart
		}
		if rows <= 0 {
			continue
		}

		raw, err := ds.chunk(d.StripOffsets[i], d.StripByteCounts, i)
		if err != nil {
			return fmt.Errorf("strip %d: %w", i, err)
		}
		if err := ds.scatter(buf, raw, rowStart, 0, ds.md.Width, rows, plane); err != nil {
			return fmt.Errorf("strip %d: %w", i, err)
		}
	}
	return nil
}

func (ds *Dataset) decodeTiles(buf *raster.Buffer) error {
	d := &ds.dir
	tw := int(d.TileWidth)
	th := int(d.TileHeight)
	across := (ds.md.Width + tw - 1) / tw
	down := (ds.md.Height + th - 1) / th
	tilesPerPlane := across * down

	for i := range d.TileOffsets {
		plane := 0
		tileInPlane := i
		if d.PlanarConfig == 2 {
			plane = i / tilesPerPlane
			tileInPlane = i % tilesPerPlane
		}

		col := (tileInPlane % across) * tw
		row := (tileInPlane / across) * th
		if row >= ds.md.Height {
			continue
		}

		raw, err := ds.chunk(d.TileOffsets[i], d.TileByteCounts, i)
		if err != nil {
			return fmt.Errorf("tile %d: %w", i, err)
		}

		// Tiles are always full-sized in the file; edge tiles are
		// clipped when scattered.
		if err := ds.scatterTile(buf, raw, col, row, tw, th, plane); err != nil {
			return fmt.Errorf("tile %d: %w", i, err)
		}
	}
	return nil
}

// chunk fetches, decompresses and unpredicts one strip or tile.
func (ds *Dataset) chunk(offset uint64, counts []uint64, i int) ([]byte, error) {
	if i >= len(counts) {
		return nil, fmt.Errorf("missing byte count")
	}
	end := offset + counts[i]
	if end > uint64(len(ds.data)) || offset > end {
		return nil, fmt.Errorf("chunk extends past end of file")
	}
	raw := ds.data[offset:end]

	switch ds.dir.Compression {
	case compressionNone:
		return raw, nil
	case compressionLZW:
		return decodeLZW(raw)
	case compressionDeflate, compressionDeflateOld:
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported compression scheme %d", ds.dir.Compression)
	}
}

// scatter distributes a decoded strip into the destination buffer.
// plane < 0 is not used; for chunky data plane is 0 and all bands interleave.
func (ds *Dataset) scatter(buf *raster.Buffer, raw []byte, rowStart, colStart, width, rows, plane int) error {
	d := &ds.dir
	sampleSize := ds.md.PixelType.Size()
	channels := 1
	if d.PlanarConfig != 2 {
		channels = ds.md.BandCount
	}

	rowBytes := width * channels * sampleSize
	if len(raw) < rowBytes*rows {
		return fmt.Errorf("short chunk: have %d bytes, need %d", len(raw), rowBytes*rows)
	}

	if d.Predictor == 2 {
		if err := undoHorizontalPredictor(raw, width*channels, rows, sampleSize, ds.bo); err != nil {
			return err
		}
	}

	for r := 0; r < rows; r++ {
		rowOff := r * rowBytes
		for c := 0; c < width; c++ {
			for ch := 0; ch < channels; ch++ {
				band := ch
				if d.PlanarConfig == 2 {
					band = plane
				}
				off := rowOff + (c*channels+ch)*sampleSize
				v := ds.sampleAt(raw, off)
				buf.Bands[band][(rowStart+r)*buf.Width+colStart+c] = v
			}
		}
	}
	return nil
}

// scatterTile is scatter with clipping for edge tiles.
func (ds *Dataset) scatterTile(buf *raster.Buffer, raw []byte, colStart, rowStart, tw, th, plane int) error {
	d := &ds.dir
	sampleSize := ds.md.PixelType.Size()
	channels := 1
	if d.PlanarConfig != 2 {
		channels = ds.md.BandCount
	}

	rowBytes := tw * channels * sampleSize
	if len(raw) < rowBytes*th {
		return fmt.Errorf("short tile: have %d bytes, need %d", len(raw), rowBytes*th)
	}

	if d.Predictor == 2 {
		if err := undoHorizontalPredictor(raw, tw*channels, th, sampleSize, ds.bo); err != nil {
			return err
		}
	}

	rows := th
	if rowStart+rows > buf.Height {
		rows = buf.Height - rowStart
	}
	cols := tw
	if colStart+cols > buf.Width {
		cols = buf.Width - colStart
	}

	for r := 0; r < rows; r++ {
		rowOff := r * rowBytes
		for c := 0; c < cols; c++ {
			for ch := 0; ch < channels; ch++ {
				band := ch
				if d.PlanarConfig == 2 {
					band = plane
				}
				off := rowOff + (c*channels+ch)*sampleSize
				v := ds.sampleAt(raw, off)
				buf.Bands[band][(rowStart+r)*buf.Width+colStart+c] = v
			}
		}
	}
	return nil
}

// sampleAt decodes one sample at the byte offset, widened to float64.
func (ds *Dataset) sampleAt(raw []byte, off int) float64 {
	bo := ds.bo
	switch ds.md.PixelType {
	case raster.Byte:
		return float64(raw[off])
	case raster.Int8:
		return float64(int8(raw[off]))
	case raster.UInt16:
		return float64(bo.Uint16(raw[off : off+2]))
	case raster.Int16:
		return float64(int16(bo.Uint16(raw[off : off+2])))
	case raster.UInt32:
		return float64(bo.Uint32(raw[off : off+4]))
	case raster.Int32:
		return float64(int32(bo.Uint32(raw[off : off+4])))
	case raster.Float32:
		return float64(math.Float32frombits(bo.Uint32(raw[off : off+4])))
	case raster.Float64:
		return math.Float64frombits(bo.Uint64(raw[off : off+8]))
	default:
		return 0
	}
}

// undoHorizontalPredictor reverses TIFF predictor 2 (horizontal differencing)
// in place. Differencing operates per sample component within each row.
func undoHorizontalPredictor(raw []byte, samplesPerRow, rows, sampleSize int, bo binary.ByteOrder) error {
	switch sampleSize {
	case 1:
		for r := 0; r < rows; r++ {
			row := raw[r*samplesPerRow : (r+1)*samplesPerRow]
			for i := 1; i < len(row); i++ {
				row[i] += row[i-1]
			}
		}
		return nil
	case 2:
		rowBytes := samplesPerRow * 2
		for r := 0; r < rows; r++ {
			row := raw[r*rowBytes : (r+1)*rowBytes]
			for i := 1; i < samplesPerRow; i++ {
				prev := bo.Uint16(row[(i-1)*2:])
				cur := bo.Uint16(row[i*2:])
				bo.PutUint16(row[i*2:], cur+prev)
			}
		}
		return nil
	default:
		return fmt.Errorf("horizontal predictor unsupported for %d-byte samples", sampleSize)
	}
}
