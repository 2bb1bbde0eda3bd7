package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/custodylog/custodylog-server/internal/blob"
	"github.com/custodylog/custodylog-server/internal/domain"
	domainerrors "github.com/custodylog/custodylog-server/internal/errors"
	"github.com/custodylog/custodylog-server/internal/events"
	"github.com/custodylog/custodylog-server/internal/id"
	"github.com/custodylog/custodylog-server/internal/location"
	"github.com/custodylog/custodylog-server/internal/normalize"
	"github.com/custodylog/custodylog-server/internal/observability"
	"github.com/custodylog/custodylog-server/internal/session"
	"github.com/custodylog/custodylog-server/internal/store"
	"github.com/custodylog/custodylog-server/internal/validation"
)

// Photo outcomes reported per submitted file.
const (
	PhotoStored  = "stored"
	PhotoSkipped = "skipped"
)

// Skip reasons.
const (
	ReasonEmptyFile   = "empty file"
	ReasonBlobWrite   = "photo could not be stored"
	ReasonRecordWrite = "photo record could not be saved"
)

// Submission is one day's documentation as entered by the user.
type Submission struct {
	Draft  domain.EntryDraft
	Photos []domain.PhotoFile
	// Ambient is the device location captured once for the whole submission.
	Ambient *domain.Coordinate
}

// PhotoResult is the outcome for one submitted file: stored with its row, or
// skipped with a reason.
type PhotoResult struct {
	FileName string
	Status   string
	Photo    *domain.Photo
	Reason   string
	Err      error
}

// OK reports whether the photo was stored.
func (r PhotoResult) OK() bool { return r.Status == PhotoStored }

// SubmitResult is a saved entry plus one result per submitted file, in order.
type SubmitResult struct {
	Entry  *domain.DailyEntry
	Photos []PhotoResult
}

// Stored counts stored photos.
func (r *SubmitResult) Stored() int {
	n := 0
	for _, p := range r.Photos {
		if p.OK() {
			n++
		}
	}
	return n
}

// Skipped counts skipped photos.
func (r *SubmitResult) Skipped() int {
	return len(r.Photos) - r.Stored()
}

// EntryService saves daily entries and their photos.
type EntryService struct {
	session   session.Provider
	store     store.Store
	blobs     blob.Store
	resolver  *location.Resolver
	validator *validation.Validator
	publisher events.Publisher
	logger    *slog.Logger

	now        func() time.Time
	newEntryID func() (string, error)
	newPhotoID func() string
}

// NewEntryService creates a new entry service. A nil publisher disables events.
func NewEntryService(
	sessions session.Provider,
	st store.Store,
	blobs blob.Store,
	resolver *location.Resolver,
	validator *validation.Validator,
	publisher events.Publisher,
	logger *slog.Logger,
) *EntryService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &EntryService{
		session:    sessions,
		store:      st,
		blobs:      blobs,
		resolver:   resolver,
		validator:  validator,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
		newEntryID: id.NewEntryID,
		newPhotoID: id.NewPhotoID,
	}
}

// Submit validates and saves an entry, then stores each photo in order.
//
// The entry is saved once its row is written; photo failures are reported in
// the result and never fail the call. If the entry row cannot be written no
// photo is touched and an UNAVAILABLE error is returned.
func (s *EntryService) Submit(ctx context.Context, sub Submission) (*SubmitResult, error) {
	started := s.now()

	userID, err := currentUser(ctx, s.session)
	if err != nil {
		return nil, err
	}

	draft := cleanDraft(sub.Draft, domain.DateOf(started))
	if err := s.validator.Validate(draft); err != nil {
		return nil, err
	}

	entryID, err := s.newEntryID()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate entry id")
	}

	entry := domain.NewEntry(entryID, userID, draft, started)
	if err := s.store.CreateEntry(ctx, entry); err != nil {
		s.logger.Error("failed to save entry",
			"user_id", userID,
			"date", entry.Date.String(),
			"error", err,
		)
		return nil, domainerrors.Unavailable(err, "could not save entry, please try again")
	}

	result := &SubmitResult{
		Entry:  entry,
		Photos: make([]PhotoResult, 0, len(sub.Photos)),
	}

	usedKeys := make(map[string]struct{}, len(sub.Photos))
	for _, file := range sub.Photos {
		result.Photos = append(result.Photos, s.storePhoto(ctx, entry, file, sub.Ambient, usedKeys))
	}

	observability.RecordEntryCreated(s.now().Sub(started))
	observability.RecordPhotos(result.Stored(), result.Skipped())

	s.logger.Info("entry saved",
		"entry_id", entry.ID,
		"user_id", userID,
		"date", entry.Date.String(),
		"photos_stored", result.Stored(),
		"photos_skipped", result.Skipped(),
	)

	s.publishCreated(ctx, result)

	return result, nil
}

// storePhoto runs resolve, blob put and row create for one file. Any failure
// becomes a skipped result.
func (s *EntryService) storePhoto(ctx context.Context, entry *domain.DailyEntry, file domain.PhotoFile, ambient *domain.Coordinate, usedKeys map[string]struct{}) PhotoResult {
	res := PhotoResult{FileName: file.Name, Status: PhotoSkipped}

	if len(file.Data) == 0 {
		res.Reason = ReasonEmptyFile
		s.logger.Warn("skipping photo", "entry_id", entry.ID, "file_name", file.Name, "reason", res.Reason)
		return res
	}

	loc := s.resolver.Resolve(file.Data, ambient)

	at := s.now()
	key := domain.PhotoKey(entry.UserID, entry.ID, at, file.Name)
	for {
		if _, taken := usedKeys[key]; !taken {
			break
		}
		at = at.Add(time.Millisecond)
		key = domain.PhotoKey(entry.UserID, entry.ID, at, file.Name)
	}
	usedKeys[key] = struct{}{}

	if err := s.blobs.Put(ctx, key, file.Data, file.ContentType); err != nil {
		res.Reason, res.Err = ReasonBlobWrite, err
		s.logger.Warn("skipping photo", "entry_id", entry.ID, "file_name", file.Name, "key", key, "error", err)
		return res
	}

	photo := &domain.Photo{
		ID:        s.newPhotoID(),
		EntryID:   entry.ID,
		FilePath:  key,
		Location:  loc,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreatePhoto(ctx, photo); err != nil {
		res.Reason, res.Err = ReasonRecordWrite, err
		s.logger.Warn("photo stored without record", "entry_id", entry.ID, "file_name", file.Name, "key", key, "error", err)
		return res
	}

	res.Status = PhotoStored
	res.Photo = photo
	return res
}

func (s *EntryService) publishCreated(ctx context.Context, result *SubmitResult) {
	evt := events.EntryCreated{
		EntryID:       result.Entry.ID,
		UserID:        result.Entry.UserID,
		Date:          result.Entry.Date.String(),
		PhotosStored:  result.Stored(),
		PhotosSkipped: result.Skipped(),
		OccurredAt:    result.Entry.CreatedAt,
	}
	if err := s.publisher.PublishEntryCreated(ctx, evt); err != nil {
		s.logger.Warn("failed to publish entry event", "entry_id", evt.EntryID, "error", err)
	}
}

// RecentCustomActivities returns the caller's recently used custom activities,
// newest entry first, without blanks or repeats.
func (s *EntryService) RecentCustomActivities(ctx context.Context) ([]string, error) {
	userID, err := currentUser(ctx, s.session)
	if err != nil {
		return nil, err
	}

	lists, err := s.store.RecentCustomActivities(ctx, userID, store.RecentCustomActivityEntries)
	if err != nil {
		return nil, domainerrors.Unavailable(err, "could not load recent activities")
	}

	var flat []string
	for _, l := range lists {
		flat = append(flat, l...)
	}
	return normalize.Labels(flat), nil
}

// cleanDraft normalises free text and fills in the default date.
func cleanDraft(d domain.EntryDraft, today domain.Date) domain.EntryDraft {
	if d.Date.IsZero() {
		d.Date = today
	}
	d.Activities = normalize.Labels(d.Activities)
	d.CustomActivities = normalize.Labels(d.CustomActivities)
	d.SpecialEvents = normalize.Labels(d.SpecialEvents)
	return d
}

// currentUser asks the session provider and guarantees an UNAUTHENTICATED
// error when there is no user.
func currentUser(ctx context.Context, p session.Provider) (string, error) {
	userID, err := p.CurrentUser(ctx)
	if err == nil && userID != "" {
		return userID, nil
	}
	if err != nil && errors.Is(err, domainerrors.ErrUnauthenticated) {
		return "", err
	}
	return "", domainerrors.Unauthenticated("sign in to continue").WithCause(errOrNoUser(err))
}

func errOrNoUser(err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("session returned no user")
}
