package geotiff

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// TIFF tag IDs used by this reader/writer.
const (
	tagImageWidth         = 256
	tagImageLength        = 257
	tagBitsPerSample      = 258
	tagCompression        = 259
	tagPhotometric        = 262
	tagStripOffsets       = 273
	tagSamplesPerPixel    = 277
	tagRowsPerStrip       = 278
	tagStripByteCounts    = 279
	tagPlanarConfig       = 284
	tagPredictor          = 317
	tagTileWidth          = 322
	tagTileLength         = 323
	tagTileOffsets        = 324
	tagTileByteCounts     = 325
	tagSampleFormat       = 339
	tagModelPixelScale    = 33550
	tagModelTiepoint      = 33922
	tagModelTransformation = 34264
	tagGeoKeyDirectory    = 34735
	tagGeoDoubleParams    = 34736
	tagGeoAsciiParams     = 34737
	tagGDALNoData         = 42113
)

// TIFF field data types.
const (
	dtByte     = 1
	dtASCII    = 2
	dtShort    = 3
	dtLong     = 4
	dtRational = 5
	dtSByte    = 6
	dtUndef    = 7
	dtSShort   = 8
	dtSLong    = 9
	dtFloat    = 11
	dtDouble   = 12
	dtLong8    = 16
)

// TIFF compression schemes.
const (
	compressionNone       = 1
	compressionLZW        = 5
	compressionDeflate    = 8
	compressionDeflateOld = 32946
)

// Sample format values (tag 339).
const (
	sampleFormatUint  = 1
	sampleFormatInt   = 2
	sampleFormatFloat = 3
)

// ifd is a parsed TIFF Image File Directory. Both strip and tile layouts are
// represented; exactly one of the two offset sets is populated for a valid
// file.
type ifd struct {
	Width           uint32
	Height          uint32
	BitsPerSample   []uint16
	SampleFormat    []uint16
	SamplesPerPixel uint16
	Compression     uint16
	Photometric     uint16
	PlanarConfig    uint16
	Predictor       uint16

	RowsPerStrip    uint32
	StripOffsets    []uint64
	StripByteCounts []uint64

	TileWidth      uint32
	TileHeight     uint32
	TileOffsets    []uint64
	TileByteCounts []uint64

	ModelTiepoint       []float64
	ModelPixelScale     []float64
	ModelTransformation []float64
	GeoKeys             []uint16
	GeoDoubleParams     []float64
	GeoAsciiParams      string
	NoDataASCII         string
}

// Tiled reports whether the IFD uses tile organization.
func (d *ifd) Tiled() bool {
	return d.TileWidth > 0 && d.TileHeight > 0
}

// rawEntry is an undecoded TIFF directory entry.
type rawEntry struct {
	Tag      uint16
	DataType uint16
	Count    uint64
	Value    []byte // inline bytes or resolved external data
}

// parseTIFF reads the header and all IFDs from a classic TIFF or BigTIFF.
func parseTIFF(r io.ReadSeeker) ([]ifd, binary.ByteOrder, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, nil, fmt.Errorf("reading TIFF header: %w", err)
	}

	var bo binary.ByteOrder
	switch string(header[0:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return nil, nil, fmt.Errorf("invalid TIFF byte order mark: %x", header[0:2])
	}

	magic := bo.Uint16(header[2:4])
	if magic != 42 && magic != 43 {
		return nil, nil, fmt.Errorf("invalid TIFF magic: %d", magic)
	}
	bigTIFF := magic == 43

	var firstOffset uint64
	if bigTIFF {
		var rest [8]byte
		if _, err := io.ReadFull(r, rest[:]); err != nil {
			return nil, nil, fmt.Errorf("reading BigTIFF header: %w", err)
		}
		firstOffset = bo.Uint64(rest[:])
	} else {
		firstOffset = uint64(bo.Uint32(header[4:8]))
	}

	var ifds []ifd
	for offset := firstOffset; offset != 0; {
		d, next, err := parseIFD(r, bo, offset, bigTIFF)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing IFD at offset %d: %w", offset, err)
		}
		ifds = append(ifds, d)
		offset = next
	}
	return ifds, bo, nil
}

func parseIFD(r io.ReadSeeker, bo binary.ByteOrder, offset uint64, bigTIFF bool) (ifd, uint64, error) {
	if _, err := r.Seek(int64(offset), io.SeekStart); err != nil {
		return ifd{}, 0, err
	}

	var count uint64
	if bigTIFF {
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return ifd{}, 0, err
		}
		count = bo.Uint64(buf[:])
	} else {
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return ifd{}, 0, err
		}
		count = uint64(bo.Uint16(buf[:]))
	}

	entrySize := 12
	if bigTIFF {
		entrySize = 20
	}

	entries := make([]rawEntry, count)
	for i := range entries {
		buf := make([]byte, entrySize)
		if _, err := io.ReadFull(r, buf); err != nil {
			return ifd{}, 0, err
		}
		entries[i] = decodeEntry(buf, bo, bigTIFF)
	}

	var next uint64
	if bigTIFF {
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return ifd{}, 0, err
		}
		next = bo.Uint64(buf[:])
	} else {
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return ifd{}, 0, err
		}
		next = uint64(bo.Uint32(buf[:]))
	}

	for i := range entries {
		if err := resolveEntry(r, bo, &entries[i], bigTIFF); err != nil {
			return ifd{}, 0, fmt.Errorf("resolving tag %d: %w", entries[i].Tag, err)
		}
	}

	return assembleIFD(entries, bo), next, nil
}

func decodeEntry(buf []byte, bo binary.ByteOrder, bigTIFF bool) rawEntry {
	e := rawEntry{
		Tag:      bo.Uint16(buf[0:2]),
		DataType: bo.Uint16(buf[2:4]),
	}
	if bigTIFF {
		e.Count = bo.Uint64(buf[4:12])
		e.Value = append([]byte(nil), buf[12:20]...)
	} else {
		e.Count = uint64(bo.Uint32(buf[4:8]))
		e.Value = append([]byte(nil), buf[8:12]...)
	}
	return e
}

func fieldTypeSize(dt uint16) int {
	switch dt {
	case dtByte, dtASCII, dtSByte, dtUndef:
		return 1
	case dtShort, dtSShort:
		return 2
	case dtLong, dtSLong, dtFloat:
		return 4
	case dtRational, dtDouble, dtLong8:
		return 8
	default:
		return 1
	}
}

// resolveEntry replaces the inline offset with the external data it points to
// when the value does not fit inline.
func resolveEntry(r io.ReadSeeker, bo binary.ByteOrder, e *rawEntry, bigTIFF bool) error {
	total := int(e.Count) * fieldTypeSize(e.DataType)
	inline := 4
	if bigTIFF {
		inline = 8
	}
	if total <= inline {
		return nil
	}

	var offset uint64
	if bigTIFF {
		offset = bo.Uint64(e.Value)
	} else {
		offset = uint64(bo.Uint32(e.Value))
	}

	if _, err := r.Seek(int64(offset), io.SeekStart); err != nil {
		return err
	}
	data := make([]byte, total)
	if _, err := io.ReadFull(r, data); err != nil {
		return err
	}
	e.Value = data
	return nil
}

func assembleIFD(entries []rawEntry, bo binary.ByteOrder) ifd {
	d := ifd{
		SamplesPerPixel: 1,
		PlanarConfig:    1,
		Compression:     compressionNone,
		Predictor:       1,
	}

	for _, e := range entries {
		switch e.Tag {
		case tagImageWidth:
			d.Width = entryUint32(e, bo)
		case tagImageLength:
			d.Height = entryUint32(e, bo)
		case tagBitsPerSample:
			d.BitsPerSample = entryUint16s(e, bo)
		case tagSampleFormat:
			d.SampleFormat = entryUint16s(e, bo)
		case tagSamplesPerPixel:
			d.SamplesPerPixel = entryUint16(e, bo)
		case tagCompression:
			d.Compression = entryUint16(e, bo)
		case tagPhotometric:
			d.Photometric = entryUint16(e, bo)
		case tagPlanarConfig:
			d.PlanarConfig = entryUint16(e, bo)
		case tagPredictor:
			d.Predictor = entryUint16(e, bo)
		case tagRowsPerStrip:
			d.RowsPerStrip = entryUint32(e, bo)
		case tagStripOffsets:
			d.StripOffsets = entryUint64s(e, bo)
		case tagStripByteCounts:
			d.StripByteCounts = entryUint64s(e, bo)
		case tagTileWidth:
			d.TileWidth = entryUint32(e, bo)
		case tagTileLength:
			d.TileHeight = entryUint32(e, bo)
		case tagTileOffsets:
			d.TileOffsets = entryUint64s(e, bo)
		case tagTileByteCounts:
			d.TileByteCounts = entryUint64s(e, bo)
		case tagModelTiepoint:
			d.ModelTiepoint = entryFloat64s(e, bo)
		case tagModelPixelScale:
			d.ModelPixelScale = entryFloat64s(e, bo)
		case tagModelTransformation:
			d.ModelTransformation = entryFloat64s(e, bo)
		case tagGeoKeyDirectory:
			d.GeoKeys = entryUint16s(e, bo)
		case tagGeoDoubleParams:
			d.GeoDoubleParams = entryFloat64s(e, bo)
		case tagGeoAsciiParams:
			d.GeoAsciiParams = entryASCII(e)
		case tagGDALNoData:
			d.NoDataASCII = entryASCII(e)
		}
	}
	return d
}

func entryASCII(e rawEntry) string {
	n := int(e.Count)
	if n > len(e.Value) {
		n = len(e.Value)
	}
	// Strip the trailing NUL.
	for n > 0 && e.Value[n-1] == 0 {
		n--
	}
	return string(e.Value[:n])
}

func entryUint16(e rawEntry, bo binary.ByteOrder) uint16 {
	switch e.DataType {
	case dtShort:
		return bo.Uint16(e.Value)
	case dtLong:
		return uint16(bo.Uint32(e.Value))
	default:
		return uint16(e.Value[0])
	}
}

func entryUint32(e rawEntry, bo binary.ByteOrder) uint32 {
	switch e.DataType {
	case dtShort:
		return uint32(bo.Uint16(e.Value))
	case dtLong:
		return bo.Uint32(e.Value)
	case dtLong8:
		return uint32(bo.Uint64(e.Value))
	default:
		return uint32(e.Value[0])
	}
}

func entryUint16s(e rawEntry, bo binary.ByteOrder) []uint16 {
	n := int(e.Count)
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = bo.Uint16(e.Value[i*2 : i*2+2])
	}
	return out
}

func entryUint64s(e rawEntry, bo binary.ByteOrder) []uint64 {
	n := int(e.Count)
	out := make([]uint64, n)
	switch e.DataType {
	case dtShort:
		for i := 0; i < n; i++ {
			out[i] = uint64(bo.Uint16(e.Value[i*2 : i*2+2]))
		}
	case dtLong:
		for i := 0; i < n; i++ {
			out[i] = uint64(bo.Uint32(e.Value[i*4 : i*4+4]))
		}
	case dtLong8:
		for i := 0; i < n; i++ {
			out[i] = bo.Uint64(e.Value[i*8 : i*8+8])
		}
	}
	return out
}

func entryFloat64s(e rawEntry, bo binary.ByteOrder) []float64 {
	n := int(e.Count)
	out := make([]float64, n)
	size := fieldTypeSize(e.DataType)
	for i := 0; i < n; i++ {
		off := i * size
		switch e.DataType {
		case dtDouble:
			out[i] = math.Float64frombits(bo.Uint64(e.Value[off : off+8]))
		case dtFloat:
			out[i] = float64(math.Float32frombits(bo.Uint32(e.Value[off : off+4])))
		}
	}
	return out
}
