package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/bytedance/sonic"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// MapFormat is the encoding of a map file
type MapFormat string

const (
	FormatJSON    MapFormat = "json"
	FormatGeoJSON MapFormat = "geojson"
	FormatXML     MapFormat = "xml"
)

var errEmptyMap = errors.New("map contains no nodes")

// mapDocument is the layout of map.json
type mapDocument struct {
	Nodes []MapNode `json:"nodes"`
}

// DetectMapFormat infers the map format from the file extension
func DetectMapFormat(path string) MapFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson":
		return FormatGeoJSON
	case ".xml", ".osm":
		return FormatXML
	default:
		return FormatJSON
	}
}

// LoadMapFile reads and parses a map file. An empty format is inferred from
// the extension.
func LoadMapFile(path string, format MapFormat) ([]MapNode, error) {
	if format == "" {
		format = DetectMapFormat(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}

	var records []MapNode
	switch format {
	case FormatJSON:
		records, err = ParseMapJSON(data)
	case FormatGeoJSON:
		records, err = ParseMapGeoJSON(data)
	case FormatXML:
		records, err = ParseMapXML(data)
	default:
		return nil, fmt.Errorf("unsupported map format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	Logger.Info().
		Str("file", path).
		Str("format", string(format)).
		Int("nodes", len(records)).
		Msg("map loaded")
	return records, nil
}

// ParseMapJSON parses the {"nodes": [{id, position, connections}]} layout
func ParseMapJSON(data []byte) ([]MapNode, error) {
	var doc mapDocument
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal map: %w", err)
	}
	if len(doc.Nodes) == 0 {
		return nil, errEmptyMap
	}
	return doc.Nodes, nil
}

// ParseMapGeoJSON parses a FeatureCollection of Point features. Each feature
// carries its node ID in the "id" property (or the feature id) and its
// neighbors in the "connections" property. Other geometries are skipped.
func ParseMapGeoJSON(data []byte) ([]MapNode, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal feature collection: %w", err)
	}

	records := make([]MapNode, 0, len(fc.Features))
	for i, feature := range fc.Features {
		point, ok := feature.Geometry.(orb.Point)
		if !ok {
			continue
		}

		id := feature.Properties.MustString("id", "")
		if id == "" && feature.ID != nil {
			id = fmt.Sprint(feature.ID)
		}
		if id == "" {
			return nil, fmt.Errorf("feature %d has no id", i)
		}

		var connections []string
		if raw, ok := feature.Properties["connections"].([]interface{}); ok {
			for _, c := range raw {
				connections = append(connections, fmt.Sprint(c))
			}
		}

		records = append(records, MapNode{
			ID:          id,
			Position:    Point{X: point.X(), Y: point.Y()},
			Connections: connections,
		})
	}

	if len(records) == 0 {
		return nil, errEmptyMap
	}
	return records, nil
}

// ParseMapXML parses an OSM-like document:
//
//	<map>
//	  <node id="A" x="0" y="10"><nd ref="B"/></node>
//	</map>
func ParseMapXML(data []byte) ([]MapNode, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to read xml: %w", err)
	}

	root := doc.SelectElement("map")
	if root == nil {
		return nil, errors.New("missing <map> element")
	}

	var records []MapNode
	for _, el := range root.SelectElements("node") {
		record, err := ingestXMLNode(el)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, errEmptyMap
	}
	return records, nil
}

func ingestXMLNode(el *etree.Element) (MapNode, error) {
	id := el.SelectAttrValue("id", "")
	if id == "" {
		return MapNode{}, errors.New("node without id")
	}
	x, err := attrFloat64(el, "x")
	if err != nil {
		return MapNode{}, fmt.Errorf("node %q: %w", id, err)
	}
	y, err := attrFloat64(el, "y")
	if err != nil {
		return MapNode{}, fmt.Errorf("node %q: %w", id, err)
	}

	var connections []string
	for _, child := range el.SelectElements("nd") {
		if ref := child.SelectAttrValue("ref", ""); ref != "" {
			connections = append(connections, ref)
		}
	}

	return MapNode{
		ID:          id,
		Position:    Point{X: x, Y: y},
		Connections: connections,
	}, nil
}

func attrFloat64(el *etree.Element, key string) (float64, error) {
	attr := el.SelectAttr(key)
	if attr == nil {
		return 0, fmt.Errorf("missing attribute %q", key)
	}
	val, err := strconv.ParseFloat(attr.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("attribute %q: %w", key, err)
	}
	return val, nil
}

// SaveMapFile serializes the graph to a JSON map file
func SaveMapFile(graph *Graph, filename string) error {
	data, err := sonic.ConfigStd.MarshalIndent(mapDocument{Nodes: graph.Records()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal map: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	Logger.Info().Str("file", filename).Int("bytes", len(data)).Msg("map saved")
	return nil
}

// GraphToGeoJSON exports nodes as Point features and edges as LineString features
func GraphToGeoJSON(graph *Graph) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, record := range graph.Records() {
		feature := geojson.NewFeature(orb.Point{record.Position.X, record.Position.Y})
		feature.Properties["id"] = record.ID
		feature.Properties["connections"] = record.Connections
		fc.Append(feature)
	}

	for _, line := range graph.EdgeLines() {
		feature := geojson.NewFeature(orb.LineString{
			{line[0].X, line[0].Y},
			{line[1].X, line[1].Y},
		})
		feature.Properties["kind"] = "edge"
		fc.Append(feature)
	}

	return fc
}
