// Package location picks the best available coordinate for an uploaded photo:
// an embedded EXIF geotag, then the ambient device coordinate, then nothing.
package location

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/custodylog/custodylog-server/internal/domain"
)

// ErrNoGeotag is returned by Geotag when the file carries no usable GPS tags.
var ErrNoGeotag = errors.New("no geotag")

// Geotag reads the GPS coordinate embedded in JPEG or TIFF bytes. The TIFF
// directories are bounds-checked before decoding; goexif allocates whatever
// a tag's count asks for. Non-critical EXIF errors (a broken thumbnail IFD,
// say) do not hide a valid GPS block.
func Geotag(content []byte) (domain.Coordinate, error) {
	if len(content) == 0 {
		return domain.Coordinate{}, ErrNoGeotag
	}

	data, err := exifTIFF(content)
	if err != nil {
		return domain.Coordinate{}, err
	}
	if err := checkIFDs(data); err != nil {
		return domain.Coordinate{}, err
	}

	x, err := exif.Decode(bytes.NewReader(data))
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return domain.Coordinate{}, fmt.Errorf("decode exif: %w", err)
	}

	lat, lng, err := x.LatLong()
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("%w: %v", ErrNoGeotag, err)
	}

	c := domain.Coordinate{Lat: lat, Lng: lng}
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) || !c.Valid() {
		return domain.Coordinate{}, fmt.Errorf("%w: coordinate out of range (%v, %v)", ErrNoGeotag, lat, lng)
	}
	return c, nil
}

// Resolver applies the resolution tiers. It never returns an error: a file
// whose metadata cannot be read simply has no EXIF location.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver creates a resolver. A nil logger discards diagnostics.
func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve returns the photo's location or nil when neither tier applies.
func (r *Resolver) Resolve(content []byte, ambient *domain.Coordinate) *domain.Location {
	c, err := Geotag(content)
	if err == nil {
		return &domain.Location{Lat: c.Lat, Lng: c.Lng, Source: domain.LocationEXIF}
	}
	if r != nil && r.logger != nil {
		r.logger.Debug("no exif location", "error", err)
	}

	if ambient != nil && ambient.Valid() {
		return &domain.Location{Lat: ambient.Lat, Lng: ambient.Lng, Source: domain.LocationGPS}
	}
	return nil
}

// Resolve is Resolver.Resolve without diagnostics.
func Resolve(content []byte, ambient *domain.Coordinate) *domain.Location {
	return (*Resolver)(nil).Resolve(content, ambient)
}
