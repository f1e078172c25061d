package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"versions/relay/internal/config"
	"versions/relay/internal/constants"
	"versions/relay/internal/db"
	"versions/relay/internal/db/repositories"
)

// activity_report prints write-path outcomes from the relay's activity
// store. It reads the same ACTIVITY_DB_* settings as the server.
func main() {
	kind := flag.String("kind", "", "only show entries of this kind")
	subject := flag.String("subject", "", "only show entries for this subject")
	limit := flag.Int("limit", 20, "number of entries to print")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	gdb, err := db.Open(cfg.Activity.Driver, cfg.Activity.DSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	repo := repositories.NewActivityRepository(gdb)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	kinds := []constants.ActivityKind{
		constants.ActivityCast,
		constants.ActivityPayment,
		constants.ActivityWithdraw,
		constants.ActivityUpload,
	}
	for _, k := range kinds {
		if *kind != "" && string(k) != *kind {
			continue
		}
		counts, err := repo.CountByStatus(ctx, string(k))
		if err != nil {
			log.Fatalf("count %s: %v", k, err)
		}
		fmt.Printf("%-16s ok=%d failed=%d\n", k,
			counts[constants.ActivityStatusOK], counts[constants.ActivityStatusFailed])
	}

	entries, err := repo.List(ctx, repositories.ActivityFilter{Kind: *kind, Subject: *subject, Limit: *limit})
	if err != nil {
		log.Fatalf("list activity: %v", err)
	}
	fmt.Println()
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-16s %-6s %s", e.CreatedAt.Format(time.RFC3339), e.Kind, e.Status, e.Subject)
		if e.Error != "" {
			line += "  error=" + e.Error
		} else if e.Detail != "" {
			line += "  " + e.Detail
		}
		fmt.Println(line)
	}
}
