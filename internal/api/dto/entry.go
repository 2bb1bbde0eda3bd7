package dto

import (
	"net/url"
	"strings"
	"time"

	"github.com/custodylog/custodylog-server/internal/domain"
)

// PhotoURLPrefix is where stored photos are served from.
const PhotoURLPrefix = "/api/v1/photos/"

// LocationResponse is where a photo was taken and how that was determined.
type LocationResponse struct {
	Lat    float64 `json:"lat" doc:"Latitude in decimal degrees"`
	Lng    float64 `json:"lng" doc:"Longitude in decimal degrees"`
	Source string  `json:"source" enum:"exif,gps" doc:"exif when read from the image, gps when taken from the device"`
}

// PhotoResponse is a stored photo.
type PhotoResponse struct {
	ID        string            `json:"id" doc:"Photo ID"`
	EntryID   string            `json:"entry_id" doc:"Owning entry"`
	FilePath  string            `json:"file_path" doc:"Storage key"`
	URL       string            `json:"url" doc:"Download path for the image"`
	Location  *LocationResponse `json:"location,omitempty" doc:"Where the photo was taken, when known"`
	CreatedAt time.Time         `json:"created_at" doc:"When the photo was stored"`
}

// EntryResponse is a saved daily entry with its photos.
type EntryResponse struct {
	ID               string          `json:"id" doc:"Entry ID"`
	Date             string          `json:"date" doc:"Calendar date documented (YYYY-MM-DD)"`
	Activities       []string        `json:"activities" doc:"Standard activities"`
	CustomActivities []string        `json:"custom_activities" doc:"Free-text activities"`
	SpecialEvents    []string        `json:"special_events" doc:"Notable events"`
	Meals            int             `json:"meals" doc:"Meals provided"`
	Notes            string          `json:"notes" doc:"Free-form notes"`
	CreatedAt        time.Time       `json:"created_at" doc:"When the entry was saved"`
	Photos           []PhotoResponse `json:"photos" doc:"Photos attached to the entry"`
}

// PhotoURL is the download path for a storage key. Each segment is escaped
// so file names with spaces or '#' survive the round trip.
func PhotoURL(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return PhotoURLPrefix + strings.Join(segments, "/")
}

// NewPhotoResponse converts a domain photo.
func NewPhotoResponse(p *domain.Photo) PhotoResponse {
	resp := PhotoResponse{
		ID:        p.ID,
		EntryID:   p.EntryID,
		FilePath:  p.FilePath,
		URL:       PhotoURL(p.FilePath),
		CreatedAt: p.CreatedAt,
	}
	if p.Location != nil {
		resp.Location = &LocationResponse{
			Lat:    p.Location.Lat,
			Lng:    p.Location.Lng,
			Source: string(p.Location.Source),
		}
	}
	return resp
}

// NewEntryResponse converts a domain entry.
func NewEntryResponse(e *domain.DailyEntry) EntryResponse {
	photos := make([]PhotoResponse, 0, len(e.Photos))
	for i := range e.Photos {
		photos = append(photos, NewPhotoResponse(&e.Photos[i]))
	}
	return EntryResponse{
		ID:               e.ID,
		Date:             e.Date.String(),
		Activities:       nonNil(e.Activities),
		CustomActivities: nonNil(e.CustomActivities),
		SpecialEvents:    nonNil(e.SpecialEvents),
		Meals:            e.Meals,
		Notes:            e.Notes,
		CreatedAt:        e.CreatedAt,
		Photos:           photos,
	}
}

// NewEntryResponses converts a list, never returning nil.
func NewEntryResponses(entries []*domain.DailyEntry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewEntryResponse(e))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
