package api

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/custodylog/custodylog-server/internal/api/dto"
	"github.com/custodylog/custodylog-server/internal/domain"
	domainerrors "github.com/custodylog/custodylog-server/internal/errors"
	"github.com/custodylog/custodylog-server/internal/export"
	"github.com/custodylog/custodylog-server/internal/http/response"
	"github.com/custodylog/custodylog-server/internal/service"
)

// Multipart form fields accepted by POST /api/v1/entries.
const (
	fieldDate             = "date"
	fieldActivities       = "activities"
	fieldCustomActivities = "custom_activities"
	fieldSpecialEvents    = "special_events"
	fieldMeals            = "meals"
	fieldNotes            = "notes"
	fieldAmbientLat       = "ambient_lat"
	fieldAmbientLng       = "ambient_lng"
	fieldPhotos           = "photos"
)

func (s *Server) registerEntryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listEntries",
		Method:      http.MethodGet,
		Path:        "/api/v1/entries",
		Summary:     "List entries",
		Description: "Returns the caller's entries in a date range, newest first, with photos and totals",
		Tags:        []string{"Entries"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListEntries)

	huma.Register(s.api, huma.Operation{
		OperationID: "recentCustomActivities",
		Method:      http.MethodGet,
		Path:        "/api/v1/entries/recent-custom-activities",
		Summary:     "Recent custom activities",
		Description: "Returns custom activities from the caller's most recent entries, for quick re-entry",
		Tags:        []string{"Entries"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRecentCustomActivities)
}

// === DTOs ===

// ListEntriesInput contains parameters for listing entries.
type ListEntriesInput struct {
	dto.DateRangeParams
}

// ListEntriesResponse is a range of entries with totals.
type ListEntriesResponse struct {
	Range      dto.RangeResponse   `json:"range" doc:"Resolved date range"`
	Entries    []dto.EntryResponse `json:"entries" doc:"Entries, newest date first"`
	Aggregates export.Aggregates   `json:"aggregates" doc:"Totals over the range"`
}

// ListEntriesOutput wraps the list response for Huma.
type ListEntriesOutput struct {
	Body ListEntriesResponse
}

// RecentCustomActivitiesResponse lists custom activities, most recent first.
type RecentCustomActivitiesResponse struct {
	Activities []string `json:"activities" doc:"Distinct custom activities, most recent first"`
}

// RecentCustomActivitiesOutput wraps the response for Huma.
type RecentCustomActivitiesOutput struct {
	Body RecentCustomActivitiesResponse
}

// PhotoResultResponse reports what happened to one submitted file.
type PhotoResultResponse struct {
	FileName string             `json:"file_name"`
	Status   string             `json:"status" enum:"stored,skipped"`
	Reason   string             `json:"reason,omitempty"`
	Photo    *dto.PhotoResponse `json:"photo,omitempty"`
}

// SubmitEntryResponse is returned after an entry is saved.
type SubmitEntryResponse struct {
	Entry         dto.EntryResponse     `json:"entry"`
	Photos        []PhotoResultResponse `json:"photos"`
	PhotosStored  int                   `json:"photos_stored"`
	PhotosSkipped int                   `json:"photos_skipped"`
}

// === Handlers ===

func (s *Server) handleListEntries(ctx context.Context, input *ListEntriesInput) (*ListEntriesOutput, error) {
	r, err := input.Range()
	if err != nil {
		return nil, err
	}

	doc, err := s.services.Exports.Fetch(ctx, r)
	if err != nil {
		return nil, err
	}

	return &ListEntriesOutput{
		Body: ListEntriesResponse{
			Range:      dto.NewRangeResponse(doc.Range),
			Entries:    dto.NewEntryResponses(doc.Entries),
			Aggregates: doc.Aggregates,
		},
	}, nil
}

func (s *Server) handleRecentCustomActivities(ctx context.Context, _ *struct{}) (*RecentCustomActivitiesOutput, error) {
	activities, err := s.services.Entries.RecentCustomActivities(ctx)
	if err != nil {
		return nil, err
	}
	return &RecentCustomActivitiesOutput{
		Body: RecentCustomActivitiesResponse{Activities: activities},
	}, nil
}

// handleSubmitEntry saves one day's entry from a multipart form.
// POST /api/v1/entries
func (s *Server) handleSubmitEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Refuse before reading a potentially large body.
	if GetUserID(ctx) == "" {
		response.Unauthorized(w, "sign in to continue", s.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, domainerrors.CodeValidation, "submission too large", s.logger)
			return
		}
		response.BadRequest(w, "expected a multipart/form-data body", s.logger)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	sub, err := parseSubmission(r.MultipartForm)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	result, err := s.services.Entries.Submit(ctx, sub)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, newSubmitEntryResponse(result), s.logger)
}

// parseSubmission maps form values onto a submission. Only malformed scalars
// are rejected here; content rules are enforced by the entry service.
func parseSubmission(form *multipart.Form) (service.Submission, error) {
	var sub service.Submission
	details := map[string]string{}

	if raw := formValue(form, fieldDate); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			details[fieldDate] = "must be a date in YYYY-MM-DD format"
		}
		sub.Draft.Date = d
	}

	sub.Draft.Activities = formValues(form, fieldActivities)
	sub.Draft.CustomActivities = formValues(form, fieldCustomActivities)
	sub.Draft.SpecialEvents = formValues(form, fieldSpecialEvents)
	sub.Draft.Notes = formValue(form, fieldNotes)

	if raw := strings.TrimSpace(formValue(form, fieldMeals)); raw != "" {
		meals, err := strconv.Atoi(raw)
		if err != nil {
			details[fieldMeals] = "must be a whole number"
		}
		sub.Draft.Meals = meals
	}

	latRaw := strings.TrimSpace(formValue(form, fieldAmbientLat))
	lngRaw := strings.TrimSpace(formValue(form, fieldAmbientLng))
	if latRaw != "" || lngRaw != "" {
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lng, lngErr := strconv.ParseFloat(lngRaw, 64)
		c := domain.Coordinate{Lat: lat, Lng: lng}
		switch {
		case latErr != nil || lngErr != nil:
			details["ambient"] = "ambient_lat and ambient_lng must both be numbers"
		case !c.Valid():
			details["ambient"] = "coordinate is out of range"
		default:
			sub.Ambient = &c
		}
	}

	if len(details) > 0 {
		return service.Submission{}, domainerrors.ValidationWithDetails("validation failed", details)
	}

	for _, fh := range form.File[fieldPhotos] {
		data, err := readFormFile(fh)
		if err != nil {
			// Unreadable parts become empty files, which the service skips.
			data = nil
		}
		sub.Photos = append(sub.Photos, domain.PhotoFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	return sub, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// formValues accepts both repeated fields and the "key[]" spelling.
func formValues(form *multipart.Form, key string) []string {
	out := append([]string{}, form.Value[key]...)
	return append(out, form.Value[key+"[]"]...)
}

func newSubmitEntryResponse(result *service.SubmitResult) SubmitEntryResponse {
	entry := *result.Entry
	entry.Photos = make([]domain.Photo, 0, result.Stored())

	photos := make([]PhotoResultResponse, 0, len(result.Photos))
	for _, pr := range result.Photos {
		item := PhotoResultResponse{
			FileName: pr.FileName,
			Status:   pr.Status,
			Reason:   pr.Reason,
		}
		if pr.OK() {
			p := dto.NewPhotoResponse(pr.Photo)
			item.Photo = &p
			entry.Photos = append(entry.Photos, *pr.Photo)
		}
		photos = append(photos, item)
	}

	return SubmitEntryResponse{
		Entry:         dto.NewEntryResponse(&entry),
		Photos:        photos,
		PhotosStored:  result.Stored(),
		PhotosSkipped: result.Skipped(),
	}
}
