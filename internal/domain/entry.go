package domain

import "time"

// Entry field limits.
const (
	MaxMeals         = 10
	MaxSpecialEvents = 5
)

// DailyEntry is one submitted day of custody documentation.
// Several entries may exist for the same user and date.
type DailyEntry struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Date             Date      `json:"date"`
	Activities       []string  `json:"activities"`
	CustomActivities []string  `json:"custom_activities"`
	SpecialEvents    []string  `json:"special_events"`
	Meals            int       `json:"meals"`
	Notes            string    `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`

	// Photos is populated by range reads; creation never sets it.
	Photos []Photo `json:"photos"`
}

// PhotoCount returns the number of photos joined onto the entry.
func (e *DailyEntry) PhotoCount() int {
	return len(e.Photos)
}

// EntryDraft is a submission before it is assigned an id and owner.
type EntryDraft struct {
	Date             Date     `json:"date"`
	Activities       []string `json:"activities" validate:"min=1,dive,activity"`
	CustomActivities []string `json:"custom_activities" validate:"dive,required,max=100"`
	SpecialEvents    []string `json:"special_events" validate:"max=5,dive,special_event"`
	Meals            int      `json:"meals" validate:"gte=0,lte=10"`
	Notes            string   `json:"notes" validate:"max=10000"`
}

// NewEntry turns a validated draft into an entry owned by userID.
// Nil slices become empty so stored and exported arrays are never null.
func NewEntry(entryID, userID string, draft EntryDraft, createdAt time.Time) *DailyEntry {
	return &DailyEntry{
		ID:               entryID,
		UserID:           userID,
		Date:             draft.Date,
		Activities:       nonNil(draft.Activities),
		CustomActivities: nonNil(draft.CustomActivities),
		SpecialEvents:    nonNil(draft.SpecialEvents),
		Meals:            draft.Meals,
		Notes:            draft.Notes,
		CreatedAt:        createdAt.UTC(),
		Photos:           []Photo{},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
