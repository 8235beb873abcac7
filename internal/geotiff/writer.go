package geotiff

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/geotool-cli/geotool/internal/geo"
	"github.com/geotool-cli/geotool/internal/raster"
)

// Write encodes the buffer as an uncompressed little-endian GeoTIFF with the
// given metadata: strip organized, chunky sample interleave, georeferencing
// and CRS carried as GeoTIFF tags, nodata as the GDAL text tag.
func Write(path string, md raster.Metadata, buf *raster.Buffer) error {
	if buf.Width != md.Width || buf.Height != md.Height {
		return fmt.Errorf("buffer shape %dx%d does not match metadata %dx%d",
			buf.Width, buf.Height, md.Width, md.Height)
	}
	if len(buf.Bands) != md.BandCount {
		return fmt.Errorf("buffer has %d bands, metadata says %d", len(buf.Bands), md.BandCount)
	}

	w := &tiffWriter{md: md, buf: buf}
	encoded, err := w.encode()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if _, err := bw.Write(encoded); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

type tagValue struct {
	tag      uint16
	dataType uint16
	count    uint32
	data     []byte // encoded value bytes, little-endian
}

type tiffWriter struct {
	md  raster.Metadata
	buf *raster.Buffer
}

var le = binary.LittleEndian

func (w *tiffWriter) encode() ([]byte, error) {
	md := w.md
	sampleSize := md.PixelType.Size()
	bytesPerRow := md.Width * md.BandCount * sampleSize

	rowsPerStrip := 1
	if bytesPerRow > 0 {
		rowsPerStrip = 8192 / bytesPerRow
	}
	if rowsPerStrip < 1 {
		rowsPerStrip = 1
	}
	if rowsPerStrip > md.Height {
		rowsPerStrip = md.Height
	}
	numStrips := (md.Height + rowsPerStrip - 1) / rowsPerStrip

	tags := []tagValue{
		longTag(tagImageWidth, uint32(md.Width)),
		longTag(tagImageLength, uint32(md.Height)),
		shortsTag(tagBitsPerSample, repeatShort(uint16(sampleSize*8), md.BandCount)),
		shortTag(tagCompression, compressionNone),
		shortTag(tagPhotometric, 1), // BlackIsZero
		longsTag(tagStripOffsets, make([]uint32, numStrips)),
		shortTag(tagSamplesPerPixel, uint16(md.BandCount)),
		longTag(tagRowsPerStrip, uint32(rowsPerStrip)),
		longsTag(tagStripByteCounts, stripByteCounts(md, rowsPerStrip, numStrips, bytesPerRow)),
		shortTag(tagPlanarConfig, 1),
		shortsTag(tagSampleFormat, repeatShort(sampleFormatFor(md.PixelType), md.BandCount)),
	}
	tags = append(tags, w.geoTags()...)
	if md.NoData != nil {
		tags = append(tags, asciiTag(tagGDALNoData, formatNoData(*md.NoData)))
	}

	sort.Slice(tags, func(i, j int) bool { return tags[i].tag < tags[j].tag })

	// Layout: header (8), IFD, external tag data, strip data.
	ifdSize := 2 + 12*len(tags) + 4
	extOffset := 8 + ifdSize
	extSize := 0
	for _, t := range tags {
		if len(t.data) > 4 {
			extSize += pad2(len(t.data))
		}
	}
	stripDataOffset := extOffset + extSize

	// Fill in strip offsets now that the layout is fixed.
	stripOffsets := make([]uint32, numStrips)
	off := uint32(stripDataOffset)
	counts := stripByteCounts(md, rowsPerStrip, numStrips, bytesPerRow)
	for i := range stripOffsets {
		stripOffsets[i] = off
		off += counts[i]
	}
	for i := range tags {
		if tags[i].tag == tagStripOffsets {
			tags[i] = longsTag(tagStripOffsets, stripOffsets)
		}
	}

	out := make([]byte, 0, int(off))
	out = append(out, 'I', 'I', 42, 0, 8, 0, 0, 0)

	// IFD entries, then the external data they point into.
	var entryCount [2]byte
	le.PutUint16(entryCount[:], uint16(len(tags)))
	out = append(out, entryCount[:]...)

	ext := make([]byte, 0, extSize)
	extCursor := extOffset
	for _, t := range tags {
		var entry [12]byte
		le.PutUint16(entry[0:2], t.tag)
		le.PutUint16(entry[2:4], t.dataType)
		le.PutUint32(entry[4:8], t.count)
		if len(t.data) <= 4 {
			copy(entry[8:12], t.data)
		} else {
			le.PutUint32(entry[8:12], uint32(extCursor))
			padded := make([]byte, pad2(len(t.data)))
			copy(padded, t.data)
			ext = append(ext, padded...)
			extCursor += len(padded)
		}
		out = append(out, entry[:]...)
	}
	out = append(out, 0, 0, 0, 0) // no next IFD
	out = append(out, ext...)

	// Strip data: chunky interleave, rows top to bottom.
	pixels, err := w.encodeSamples()
	if err != nil {
		return nil, err
	}
	out = append(out, pixels...)
	return out, nil
}

// encodeSamples packs the float64 buffer back into the metadata's pixel type,
// band-interleaved by pixel. Integer types round to nearest.
func (w *tiffWriter) encodeSamples() ([]byte, error) {
	md := w.md
	sampleSize := md.PixelType.Size()
	out := make([]byte, md.Width*md.Height*md.BandCount*sampleSize)

	pos := 0
	for i := 0; i < md.Width*md.Height; i++ {
		for _, band := range w.buf.Bands {
			v := band[i]
			switch md.PixelType {
			case raster.Byte:
				out[pos] = uint8(clampRound(v, 0, math.MaxUint8))
			case raster.Int8:
				out[pos] = byte(int8(clampRound(v, math.MinInt8, math.MaxInt8)))
			case raster.UInt16:
				le.PutUint16(out[pos:], uint16(clampRound(v, 0, math.MaxUint16)))
			case raster.Int16:
				le.PutUint16(out[pos:], uint16(int16(clampRound(v, math.MinInt16, math.MaxInt16))))
			case raster.UInt32:
				le.PutUint32(out[pos:], uint32(clampRound(v, 0, math.MaxUint32)))
			case raster.Int32:
				le.PutUint32(out[pos:], uint32(int32(clampRound(v, math.MinInt32, math.MaxInt32))))
			case raster.Float32:
				le.PutUint32(out[pos:], math.Float32bits(float32(v)))
			case raster.Float64:
				le.PutUint64(out[pos:], math.Float64bits(v))
			default:
				return nil, fmt.Errorf("unsupported pixel type %s", md.PixelType.Name())
			}
			pos += sampleSize
		}
	}
	return out, nil
}

func clampRound(v, lo, hi float64) int64 {
	if math.IsNaN(v) {
		return int64(lo)
	}
	r := math.Round(v)
	if r < lo {
		r = lo
	} else if r > hi {
		r = hi
	}
	return int64(r)
}

// geoTags emits the georeferencing and CRS tags. An axis-aligned transform is
// written as PixelScale+Tiepoint; a rotated one needs the full transformation
// matrix.
func (w *tiffWriter) geoTags() []tagValue {
	var tags []tagValue
	tr := w.md.Transform

	if !tr.IsDefault() {
		if tr.RowSkew == 0 && tr.ColSkew == 0 {
			tags = append(tags,
				doublesTag(tagModelPixelScale, []float64{tr.PixelWidth, -tr.PixelHeight, 0}),
				doublesTag(tagModelTiepoint, []float64{0, 0, 0, tr.OriginX, tr.OriginY, 0}),
			)
		} else {
			tags = append(tags, doublesTag(tagModelTransformation, []float64{
				tr.PixelWidth, tr.RowSkew, 0, tr.OriginX,
				tr.ColSkew, tr.PixelHeight, 0, tr.OriginY,
				0, 0, 0, 0,
				0, 0, 0, 1,
			}))
		}
	}

	if srs := w.md.SRS; srs != nil {
		var keys []uint16
		addKey := func(id, location, count, value uint16) {
			keys = append(keys, id, location, count, value)
		}

		switch srs.Model {
		case geo.ModelProjected:
			addKey(gkModelType, 0, 1, modelTypeProjected)
		case geo.ModelGeographic:
			addKey(gkModelType, 0, 1, modelTypeGeographic)
		}
		addKey(gkRasterType, 0, 1, 1) // PixelIsArea

		if srs.EPSG != 0 {
			if srs.Model == geo.ModelGeographic {
				addKey(gkGeographicType, 0, 1, uint16(srs.EPSG))
			} else {
				addKey(gkProjectedCSType, 0, 1, uint16(srs.EPSG))
			}
		}
		if srs.LinearUnitCode != 0 {
			addKey(gkProjLinearUnits, 0, 1, srs.LinearUnitCode)
		}

		var doubles []float64
		if srs.LinearUnitSize != 0 {
			addKey(gkProjLinearUnitSz, tagGeoDoubleParams, 1, uint16(len(doubles)))
			doubles = append(doubles, srs.LinearUnitSize)
		}

		if len(keys) > 0 {
			header := []uint16{1, 1, 0, uint16(len(keys) / 4)}
			tags = append(tags, shortsTag(tagGeoKeyDirectory, append(header, keys...)))
			if len(doubles) > 0 {
				tags = append(tags, doublesTag(tagGeoDoubleParams, doubles))
			}
		}
	}
	return tags
}

func formatNoData(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func sampleFormatFor(pt raster.PixelType) uint16 {
	switch pt {
	case raster.Int8, raster.Int16, raster.Int32:
		return sampleFormatInt
	case raster.Float32, raster.Float64:
		return sampleFormatFloat
	default:
		return sampleFormatUint
	}
}

func stripByteCounts(md raster.Metadata, rowsPerStrip, numStrips, bytesPerRow int) []uint32 {
	counts := make([]uint32, numStrips)
	for i := range counts {
		rows := rowsPerStrip
		if (i+1)*rowsPerStrip > md.Height {
			rows = md.Height - i*rowsPerStrip
		}
		counts[i] = uint32(rows * bytesPerRow)
	}
	return counts
}

func pad2(n int) int {
	return (n + 1) &^ 1
}

func repeatShort(v uint16, n int) []uint16 {
	out := make([]uint16, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func shortTag(tag uint16, v uint16) tagValue {
	return shortsTag(tag, []uint16{v})
}

func shortsTag(tag uint16, vals []uint16) tagValue {
	data := make([]byte, 2*len(vals))
	for i, v := range vals {
		le.PutUint16(data[i*2:], v)
	}
	return tagValue{tag: tag, dataType: dtShort, count: uint32(len(vals)), data: data}
}

func longTag(tag uint16, v uint32) tagValue {
	return longsTag(tag, []uint32{v})
}

func longsTag(tag uint16, vals []uint32) tagValue {
	data := make([]byte, 4*len(vals))
	for i, v := range vals {
		le.PutUint32(data[i*4:], v)
	}
	return tagValue{tag: tag, dataType: dtLong, count: uint32(len(vals)), data: data}
}

func doublesTag(tag uint16, vals []float64) tagValue {
	data := make([]byte, 8*len(vals))
	for i, v := range vals {
		le.PutUint64(data[i*8:], math.Float64bits(v))
	}
	return tagValue{tag: tag, dataType: dtDouble, count: uint32(len(vals)), data: data}
}

func asciiTag(tag uint16, s string) tagValue {
	data := append([]byte(s), 0)
	return tagValue{tag: tag, dataType: dtASCII, count: uint32(len(data)), data: data}
}
