package raster

// Crop extracts a rectangular window from every band of the source buffer and
// derives the metadata of the cropped raster: the georeference origin is
// shifted by the window offset while pixel size and skew are preserved, and
// band count, pixel type, CRS and nodata carry over unchanged.
//
// The window is deliberately not validated against the source extent here —
// callers pre-validate and report a bounds violation as a warning rather than
// aborting, and a failing buffer read then surfaces as the returned error.
func Crop(md Metadata, buf *Buffer, win Window) (Metadata, *Buffer, error) {
	out, err := buf.Read(win)
	if err != nil {
		return Metadata{}, nil, err
	}

	cropped := Metadata{
		Width:     win.Width,
		Height:    win.Height,
		BandCount: md.BandCount,
		PixelType: md.PixelType,
		Transform: md.Transform.ShiftOrigin(float64(win.XOff), float64(win.YOff)),
		SRS:       md.SRS,
		NoData:    md.NoData,
	}
	return cropped, out, nil
}
