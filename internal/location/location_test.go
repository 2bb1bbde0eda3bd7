package location

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodylog/custodylog-server/internal/domain"
	"github.com/custodylog/custodylog-server/internal/location/locationtest"
)

func TestGeotag_ReadsEmbeddedCoordinate(t *testing.T) {
	img := locationtest.GeotaggedJPEG("N", locationtest.DMS{40, 30, 0}, "W", locationtest.DMS{74, 15, 0})

	c, err := Geotag(img)
	require.NoError(t, err)
	assert.Equal(t, 40.5, c.Lat)
	assert.Equal(t, -74.25, c.Lng)
}

func TestGeotag_SouthernHemisphere(t *testing.T) {
	img := locationtest.GeotaggedJPEG("S", locationtest.DMS{33, 52, 12}, "E", locationtest.DMS{151, 12, 36})

	c, err := Geotag(img)
	require.NoError(t, err)
	assert.InDelta(t, -33.87, c.Lat, 1e-9)
	assert.InDelta(t, 151.21, c.Lng, 1e-9)
}

func TestGeotag_Failures(t *testing.T) {
	tests := map[string][]byte{
		"empty":        nil,
		"not an image": []byte("definitely not a jpeg"),
		"no app1":      locationtest.PlainJPEG(),
		"truncated":    locationtest.GeotaggedJPEG("N", locationtest.DMS{1, 0, 0}, "E", locationtest.DMS{1, 0, 0})[:30],
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Geotag(content)
			assert.Error(t, err)
		})
	}
}

func TestGeotag_RejectsOutOfRangeValues(t *testing.T) {
	img := locationtest.GeotaggedJPEG("N", locationtest.DMS{40, 30, 0}, "W", locationtest.DMS{74, 15, 0})

	tests := map[string][]byte{
		// count * 8 wraps to 24 in 32 bits.
		"wrapped count":    locationtest.SetTagCount(img, locationtest.TagGPSLongitude, 0x40000003),
		"huge count":       locationtest.SetTagCount(img, locationtest.TagGPSLatitude, 0x7FFFFFFF),
		"offset past end":  locationtest.SetTagOffset(img, locationtest.TagGPSLatitude, 0xFFFFFFF0),
		"directory loop":   locationtest.SetNextIFD(img, 8),
		"directory beyond": locationtest.SetNextIFD(img, 1<<20),
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Geotag(content)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errMalformedEXIF), err.Error())
		})
	}
}

func TestResolve_MalformedExifFallsBackToAmbient(t *testing.T) {
	img := locationtest.GeotaggedJPEG("N", locationtest.DMS{40, 30, 0}, "W", locationtest.DMS{74, 15, 0})
	broken := locationtest.SetTagCount(img, locationtest.TagGPSLongitude, 0x40000003)

	loc := Resolve(broken, &domain.Coordinate{Lat: 1, Lng: 2})
	require.NotNil(t, loc)
	assert.Equal(t, domain.LocationGPS, loc.Source)
	assert.Equal(t, 1.0, loc.Lat)
	assert.Equal(t, 2.0, loc.Lng)

	assert.Nil(t, Resolve(broken, nil))
}

func TestExifTIFF_AcceptsRawTIFF(t *testing.T) {
	img := locationtest.GeotaggedJPEG("N", locationtest.DMS{10, 0, 0}, "E", locationtest.DMS{20, 0, 0})
	tiffData, err := exifTIFF(img)
	require.NoError(t, err)
	require.NoError(t, checkIFDs(tiffData))

	c, err := Geotag(tiffData)
	require.NoError(t, err)
	assert.Equal(t, 10.0, c.Lat)
	assert.Equal(t, 20.0, c.Lng)
}

func TestResolve_Tiers(t *testing.T) {
	tagged := locationtest.GeotaggedJPEG("N", locationtest.DMS{40, 30, 0}, "W", locationtest.DMS{74, 15, 0})
	ambient := &domain.Coordinate{Lat: 51.5, Lng: -0.125}

	tests := []struct {
		name    string
		content []byte
		ambient *domain.Coordinate
		want    *domain.Location
	}{
		{
			name:    "exif wins over ambient",
			content: tagged,
			ambient: ambient,
			want:    &domain.Location{Lat: 40.5, Lng: -74.25, Source: domain.LocationEXIF},
		},
		{
			name:    "exif without ambient",
			content: tagged,
			want:    &domain.Location{Lat: 40.5, Lng: -74.25, Source: domain.LocationEXIF},
		},
		{
			name:    "ambient fallback",
			content: locationtest.PlainJPEG(),
			ambient: ambient,
			want:    &domain.Location{Lat: 51.5, Lng: -0.125, Source: domain.LocationGPS},
		},
		{
			name:    "corrupt file falls through to ambient",
			content: []byte{0xFF, 0xD8, 0xFF, 0xE1, 0x00},
			ambient: ambient,
			want:    &domain.Location{Lat: 51.5, Lng: -0.125, Source: domain.LocationGPS},
		},
		{
			name:    "neither",
			content: locationtest.PlainJPEG(),
		},
		{
			name:    "invalid ambient ignored",
			content: locationtest.PlainJPEG(),
			ambient: &domain.Coordinate{Lat: 200, Lng: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewResolver(nil).Resolve(tt.content, tt.ambient)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_NeverProducesManual(t *testing.T) {
	got := Resolve(locationtest.PlainJPEG(), &domain.Coordinate{Lat: 1, Lng: 2})
	require.NotNil(t, got)
	assert.NotEqual(t, domain.LocationManual, got.Source)
}
