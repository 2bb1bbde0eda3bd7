package domain

import "slices"

// StandardActivities is the fixed activity vocabulary offered for every entry.
var StandardActivities = []string{
	"Park visit",
	"Hiking",
	"Indoor play",
	"Movie/TV",
	"Reading",
	"Arts & crafts",
	"Outdoor sports",
	"Shopping",
	"Restaurant",
	"Home activities",
}

// SpecialEventTypes is the fixed vocabulary for notable events.
var SpecialEventTypes = []string{
	"Illness",
	"Conflict",
	"School issue",
	"Medical appointment",
	"Behavioral concern",
	"Positive milestone",
	"Family visit",
	"Special occasion",
}

// IsStandardActivity reports whether s is in StandardActivities.
func IsStandardActivity(s string) bool {
	return slices.Contains(StandardActivities, s)
}

// IsSpecialEvent reports whether s is in SpecialEventTypes.
func IsSpecialEvent(s string) bool {
	return slices.Contains(SpecialEventTypes, s)
}
