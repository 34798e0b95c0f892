// Package geo hides the map provider behind two small capabilities: rendering
// task markers and reporting the caller's current position.
package geo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrPositionUnavailable = errors.New("geo: position unavailable")

type Point struct {
	ID    string  `json:"id,omitempty"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label,omitempty"`
}

func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

type MapRenderer interface {
	RenderMarkers(ctx context.Context, points []Point) (*Map, error)
}

type Locator interface {
	CurrentPosition(ctx context.Context) (Point, error)
}

// ParsePosition разбирает строку вида "lat,lng"
func ParsePosition(raw string) (Point, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("ожидается lat,lng: %q", raw)
	}
	return ParseLatLng(parts[0], parts[1])
}

func ParseLatLng(rawLat, rawLng string) (Point, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(rawLat), 64)
	if err != nil {
		return Point{}, fmt.Errorf("lat: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(rawLng), 64)
	if err != nil {
		return Point{}, fmt.Errorf("lng: %w", err)
	}
	p := Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		return Point{}, fmt.Errorf("координаты вне диапазона: %v,%v", lat, lng)
	}
	return p, nil
}

type positionKey struct{}

func WithPosition(ctx context.Context, p Point) context.Context {
	return context.WithValue(ctx, positionKey{}, p)
}

// ContextLocator отдаёт позицию, которую клиент прислал вместе с запросом
type ContextLocator struct{}

func (ContextLocator) CurrentPosition(ctx context.Context) (Point, error) {
	if err := ctx.Err(); err != nil {
		return Point{}, err
	}
	if p, ok := ctx.Value(positionKey{}).(Point); ok {
		return p, nil
	}
	return Point{}, ErrPositionUnavailable
}
