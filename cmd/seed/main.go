// Package main seeds a database with sample daily entries and prints an
// access token for the seeded user.
//
// Storage is configured the same way as the server (environment and .env);
// the flags below only shape the sample data.
//
// Usage:
//
//	DATA_PATH=~/custodylog go run ./cmd/seed --user usr-demo --days 21
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/samber/do/v2"

	"github.com/custodylog/custodylog-server/internal/auth"
	"github.com/custodylog/custodylog-server/internal/config"
	"github.com/custodylog/custodylog-server/internal/di"
	"github.com/custodylog/custodylog-server/internal/domain"
	"github.com/custodylog/custodylog-server/internal/service"
	"github.com/custodylog/custodylog-server/internal/session"
)

var (
	userID = flag.String("user", "usr-demo", "User id to seed entries for")
	days   = flag.Int("days", 14, "Number of days, ending today, to create entries for")
	skip   = flag.Float64("skip", 0.2, "Fraction of days left without an entry")
)

var customActivities = []string{
	"Built a blanket fort",
	"Baked cookies",
	"Fed the ducks",
	"Practiced piano",
	"Visited grandma",
}

var notes = []string{
	"Calm day, bedtime on schedule.",
	"Picked up from school on time. Homework done before dinner.",
	"Tired after practice but in good spirits.",
	"",
}

func main() {
	flag.Parse()

	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	injector := di.NewContainerWithConfig(cfg)
	defer func() { _ = injector.Shutdown() }()

	entries, err := do.Invoke[*service.EntryService](injector)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	tokens, err := do.Invoke[*auth.TokenService](injector)
	if err != nil {
		log.Fatalf("Failed to load token service: %v", err)
	}

	ctx := session.WithUser(context.Background(), *userID)
	today := domain.Today()
	created := 0

	for d := range *days {
		if rand.Float64() < *skip {
			continue
		}
		draft := sampleDraft(today.AddDays(-d))
		if _, err := entries.Submit(ctx, service.Submission{Draft: draft}); err != nil {
			log.Printf("Failed to seed %s: %v", draft.Date, err)
			continue
		}
		created++
	}

	token, expires, err := tokens.GenerateAccessToken(*userID)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}

	fmt.Printf("Seeded %d entries for %s into %s\n", created, *userID, cfg.Storage.DataPath)
	fmt.Printf("Access token (expires %s):\n%s\n", expires.Format("2006-01-02 15:04"), token)
}

func sampleDraft(date domain.Date) domain.EntryDraft {
	picked := rand.Perm(len(domain.StandardActivities))[:1+rand.IntN(3)]
	activities := make([]string, 0, len(picked))
	for _, i := range picked {
		activities = append(activities, domain.StandardActivities[i])
	}

	draft := domain.EntryDraft{
		Date:       date,
		Activities: activities,
		Meals:      2 + rand.IntN(3),
		Notes:      notes[rand.IntN(len(notes))],
	}
	if rand.IntN(3) == 0 {
		draft.CustomActivities = []string{customActivities[rand.IntN(len(customActivities))]}
	}
	if rand.IntN(5) == 0 {
		draft.SpecialEvents = []string{domain.SpecialEventTypes[rand.IntN(len(domain.SpecialEventTypes))]}
	}
	return draft
}
