// Package main renders a user's entries to a file without going through the
// HTTP server.
//
// Storage is configured the same way as the server (environment and .env).
//
// Usage:
//
//	DATA_PATH=~/custodylog go run ./cmd/export --user usr-demo --format csv
//	go run ./cmd/export --user usr-demo --format pdf --start 2025-01-01 --end 2025-01-31 --out ./exports
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/custodylog/custodylog-server/internal/config"
	"github.com/custodylog/custodylog-server/internal/di"
	"github.com/custodylog/custodylog-server/internal/domain"
	"github.com/custodylog/custodylog-server/internal/export"
	"github.com/custodylog/custodylog-server/internal/service"
	"github.com/custodylog/custodylog-server/internal/session"
)

var (
	userID = flag.String("user", "", "User id whose entries are exported (required)")
	format = flag.String("format", "html", "Export format: json, csv, html (pdf), md")
	start  = flag.String("start", "", "First date, YYYY-MM-DD (default: one month before end)")
	end    = flag.String("end", "", "Last date, YYYY-MM-DD (default: today)")
	outDir = flag.String("out", ".", "Directory the file is written to")
)

func main() {
	flag.Parse()

	if *userID == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := export.ParseFormat(*format)
	if err != nil {
		log.Fatal(err)
	}

	var r domain.DateRange
	if r.Start, err = parseOptionalDate(*start); err != nil {
		log.Fatalf("Invalid --start: %v", err)
	}
	if r.End, err = parseOptionalDate(*end); err != nil {
		log.Fatalf("Invalid --end: %v", err)
	}

	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	injector := di.NewContainerWithConfig(cfg)
	defer func() { _ = injector.Shutdown() }()

	exports, err := do.Invoke[*service.ExportService](injector)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}

	ctx := session.WithUser(context.Background(), *userID)
	file, err := exports.Export(ctx, f, r)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	path := filepath.Join(*outDir, file.FileName)
	if err := os.WriteFile(path, file.Data, 0o600); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}

	fmt.Printf("Wrote %s: %d entries, %d meals, %d photos\n",
		path,
		file.Aggregates.TotalEntries,
		file.Aggregates.TotalMeals,
		file.Aggregates.TotalPhotos,
	)
}

func parseOptionalDate(s string) (domain.Date, error) {
	if s == "" {
		return domain.Date{}, nil
	}
	return domain.ParseDate(s)
}
