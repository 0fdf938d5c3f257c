// Package exports renders feature collections into GIS interchange
// formats.
package exports

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"cadastral-export/internal/geo"
)

// ExportKML renders features as a KML document with one Placemark per
// feature. Styling is left to the consumer.
func ExportKML(features []*geojson.Feature, docName string) (string, error) {
	if len(features) == 0 {
		return "", fmt.Errorf("no features to export")
	}
	if docName == "" {
		docName = "Cadastral Parcels"
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<kml xmlns="http://www.opengis.net/kml/2.2">` + "\n")
	b.WriteString("  <Document>\n")
	fmt.Fprintf(&b, "    <name>%s</name>\n", xmlEscape(docName))

	for _, f := range features {
		if f.Geometry == nil {
			continue
		}
		name, _ := f.Properties["id"].(string)
		desc, _ := f.Properties["name"].(string)

		b.WriteString("    <Placemark>\n")
		fmt.Fprintf(&b, "      <name>%s</name>\n", xmlEscape(name))
		if desc != "" && desc != name {
			fmt.Fprintf(&b, "      <description>%s</description>\n", xmlEscape(desc))
		}
		writePlacemarkGeometry(&b, f.Geometry, "      ")
		b.WriteString("    </Placemark>\n")
	}

	b.WriteString("  </Document>\n")
	b.WriteString("</kml>\n")
	return b.String(), nil
}

// writePlacemarkGeometry writes a feature's geometry, pairing
// polygonal geometry with a centroid anchor point so viewers render
// the placemark name over the parcel.
func writePlacemarkGeometry(b *strings.Builder, g orb.Geometry, indent string) {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
	default:
		writeKMLGeometry(b, g, indent)
		return
	}
	anchor, ok := geo.Centroid(g)
	if !ok {
		writeKMLGeometry(b, g, indent)
		return
	}

	fmt.Fprintf(b, "%s<MultiGeometry>\n", indent)
	fmt.Fprintf(b, "%s  <Point><coordinates>%s</coordinates></Point>\n", indent, kmlCoord(anchor))
	switch geom := g.(type) {
	case orb.Polygon:
		writeKMLPolygon(b, geom, indent+"  ")
	case orb.MultiPolygon:
		for _, poly := range geom {
			writeKMLPolygon(b, poly, indent+"  ")
		}
	}
	fmt.Fprintf(b, "%s</MultiGeometry>\n", indent)
}

func writeKMLGeometry(b *strings.Builder, g orb.Geometry, indent string) {
	switch geom := g.(type) {
	case orb.Point:
		fmt.Fprintf(b, "%s<Point><coordinates>%s</coordinates></Point>\n", indent, kmlCoord(geom))
	case orb.LineString:
		fmt.Fprintf(b, "%s<LineString><coordinates>%s</coordinates></LineString>\n", indent, kmlCoords(geom))
	case orb.Polygon:
		writeKMLPolygon(b, geom, indent)
	case orb.MultiPolygon:
		fmt.Fprintf(b, "%s<MultiGeometry>\n", indent)
		for _, poly := range geom {
			writeKMLPolygon(b, poly, indent+"  ")
		}
		fmt.Fprintf(b, "%s</MultiGeometry>\n", indent)
	}
}

func writeKMLPolygon(b *strings.Builder, poly orb.Polygon, indent string) {
	if len(poly) == 0 {
		return
	}
	fmt.Fprintf(b, "%s<Polygon>\n", indent)
	fmt.Fprintf(b, "%s  <outerBoundaryIs><LinearRing><coordinates>%s</coordinates></LinearRing></outerBoundaryIs>\n",
		indent, kmlCoords(orb.LineString(poly[0])))
	for _, hole := range poly[1:] {
		fmt.Fprintf(b, "%s  <innerBoundaryIs><LinearRing><coordinates>%s</coordinates></LinearRing></innerBoundaryIs>\n",
			indent, kmlCoords(orb.LineString(hole)))
	}
	fmt.Fprintf(b, "%s</Polygon>\n", indent)
}

func kmlCoord(pt orb.Point) string {
	return fmt.Sprintf("%g,%g,0", pt[0], pt[1])
}

func kmlCoords(line orb.LineString) string {
	parts := make([]string, len(line))
	for i, pt := range line {
		parts[i] = kmlCoord(pt)
	}
	return strings.Join(parts, " ")
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}
