package geo

import "context"

type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type Feature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id,omitempty"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Map struct {
	Center       Point             `json:"center"`
	Zoom         int               `json:"zoom"`
	Bounds       *Bounds           `json:"bounds,omitempty"`
	UserPosition *Point            `json:"user_position,omitempty"`
	Markers      FeatureCollection `json:"markers"`
}

// GeoJSONRenderer строит FeatureCollection; без точек карта центрируется на Default
type GeoJSONRenderer struct {
	Default Point
	Zoom    int
}

func NewGeoJSONRenderer(center Point, zoom int) *GeoJSONRenderer {
	return &GeoJSONRenderer{Default: center, Zoom: zoom}
}

func (g *GeoJSONRenderer) RenderMarkers(ctx context.Context, points []Point) (*Map, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := &Map{
		Center:  g.Default,
		Zoom:    g.Zoom,
		Markers: FeatureCollection{Type: "FeatureCollection", Features: []Feature{}},
	}

	var b *Bounds
	for _, p := range points {
		if !p.Valid() {
			continue
		}
		// GeoJSON хранит координаты в порядке lng, lat
		m.Markers.Features = append(m.Markers.Features, Feature{
			Type: "Feature",
			ID:   p.ID,
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{p.Lng, p.Lat},
			},
			Properties: map[string]any{"label": p.Label},
		})

		if b == nil {
			b = &Bounds{South: p.Lat, North: p.Lat, West: p.Lng, East: p.Lng}
			continue
		}
		b.South = min(b.South, p.Lat)
		b.North = max(b.North, p.Lat)
		b.West = min(b.West, p.Lng)
		b.East = max(b.East, p.Lng)
	}

	if b != nil {
		m.Bounds = b
		m.Center = Point{Lat: (b.South + b.North) / 2, Lng: (b.West + b.East) / 2}
	}
	return m, nil
}
