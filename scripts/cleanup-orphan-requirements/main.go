// cleanup-orphan-requirements removes planning requirements that never got
// any planning results, typically left behind when a planning run failed
// after the requirement was stored.
//
// Usage: go run ./scripts/cleanup-orphan-requirements [-older-than=24h] [-dry-run=false]
//
// Database connection: config.yaml and the standard PG* environment variables,
// the same as the server.
//
// Flags:
//
//	-older-than  Only consider requirements created before now minus this duration (default: 24h)
//	-dry-run     Show what would be deleted without actually deleting (default: true)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/config"
	"github.com/ekaya-inc/manpower-engine/pkg/database"
	"github.com/ekaya-inc/manpower-engine/pkg/logging"
	"github.com/ekaya-inc/manpower-engine/pkg/repositories"
	"github.com/ekaya-inc/manpower-engine/pkg/services"
)

func main() {
	olderThan := flag.Duration("older-than", 24*time.Hour, "Only consider requirements older than this")
	dryRun := flag.Bool("dry-run", true, "Show what would be deleted without actually deleting")
	flag.Parse()

	if *olderThan < 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-older-than=24h] [-dry-run=false]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  -older-than must not be negative\n")
		os.Exit(1)
	}

	cfg, err := config.Load("cleanup")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: 2,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %s\n", logging.SanitizeError(err))
		os.Exit(1)
	}
	defer db.Close()

	svc := services.NewRequirementService(db, db, repositories.NewRequirementRepository(), zap.NewNop())

	cutoff := time.Now().UTC().Add(-*olderThan)
	if *dryRun {
		fmt.Println("DRY RUN - no changes will be made")
		fmt.Println("Run with -dry-run=false to actually delete requirements")
		fmt.Println()
	}

	report, err := svc.CleanupOrphans(ctx, cutoff, *dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cleanup failed: %v\n", err)
		os.Exit(1)
	}

	if len(report.Orphans) == 0 {
		fmt.Printf("No orphan requirements created before %s\n", cutoff.Format(time.RFC3339))
		return
	}
	for _, req := range report.Orphans {
		fmt.Printf("  requirement %d - warehouse %d, %s..%s (created %s)\n",
			req.ID, req.WarehouseID, req.PlanFromDate, req.PlanToDate, req.CreatedAt.Format(time.RFC3339))
	}

	if *dryRun {
		fmt.Printf("\nTotal requirements that would be deleted: %d\n", len(report.Orphans))
	} else {
		fmt.Printf("\nTotal requirements deleted: %d\n", report.Deleted)
	}
}
