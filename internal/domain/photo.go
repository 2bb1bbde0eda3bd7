package domain

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// LocationSource says where a photo's coordinate came from.
type LocationSource string

// Location sources, strongest first. The automatic resolver never produces manual.
const (
	LocationEXIF   LocationSource = "exif"
	LocationGPS    LocationSource = "gps"
	LocationManual LocationSource = "manual"
)

// Valid reports whether s is a known source.
func (s LocationSource) Valid() bool {
	switch s {
	case LocationEXIF, LocationGPS, LocationManual:
		return true
	default:
		return false
	}
}

// Coordinate is a bare latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate lies on the globe.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Location is a coordinate tagged with its source.
type Location struct {
	Lat    float64        `json:"lat"`
	Lng    float64        `json:"lng"`
	Source LocationSource `json:"source"`
}

// Photo is a stored image attached to exactly one entry.
type Photo struct {
	ID        string    `json:"id"`
	EntryID   string    `json:"entry_id"`
	FilePath  string    `json:"file_path"`
	Location  *Location `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

// PhotoFile is an uploaded image awaiting storage.
type PhotoFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// PhotoKey derives the blob key "<user>/<entry>/<unix-millis>_<name>".
// The name is reduced to its base so a client cannot escape the entry prefix.
func PhotoKey(userID, entryID string, at time.Time, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == ".." || name == "/" || name == "" {
		name = "photo"
	}
	return fmt.Sprintf("%s/%s/%d_%s", userID, entryID, at.UnixMilli(), name)
}

// OwnsPhotoKey reports whether key lives under userID's prefix.
func OwnsPhotoKey(userID, key string) bool {
	if userID == "" || !strings.HasPrefix(key, userID+"/") {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." || seg == "." {
			return false
		}
	}
	return true
}
