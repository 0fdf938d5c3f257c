package exports

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// ExportKMZ renders features as a zip archive containing doc.kml.
func ExportKMZ(features []*geojson.Feature, docName string) ([]byte, error) {
	kml, err := ExportKML(features, docName)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("doc.kml")
	if err != nil {
		return nil, fmt.Errorf("creating kmz entry: %w", err)
	}
	if _, err := w.Write([]byte(kml)); err != nil {
		return nil, fmt.Errorf("writing kmz entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing kmz archive: %w", err)
	}

	return buf.Bytes(), nil
}
