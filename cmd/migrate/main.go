package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"gundetect/internal/config"
	"gundetect/internal/logger"
	"gundetect/internal/repository/sqlite"
	"gundetect/internal/service/storage"
)

// Rebuilds the alert index from the alert folders. Files already indexed are left alone.
func main() {
	cfg := config.Load()

	alertsDir := flag.String("alerts", cfg.AlertsDirectory, "Directory containing alert images")
	dbPath := flag.String("db", cfg.DatabasePath, "Database path")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("Database path is empty; set DB_PATH or pass -db")
	}
	cfg.AlertsDirectory = *alertsDir

	fmt.Printf("Indexing alerts from %s into %s\n", cfg.AlertsDirectory, *dbPath)

	store, err := storage.NewAlertStore(cfg, logger.NewLogger(cfg))
	if err != nil {
		log.Fatalf("Failed to open alert folders: %v", err)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	alerts, skipped, err := store.Scan(time.Local)
	if err != nil {
		log.Fatalf("Failed to scan alert folders: %v", err)
	}
	for _, name := range skipped {
		log.Printf("Skipping %s: not an alert file", name)
	}

	repo := sqlite.NewAlertRepository(db)
	inserted, existing := 0, 0
	for i := range alerts {
		exists, err := repo.Exists(alerts[i].Filename)
		if err != nil {
			log.Fatalf("Failed to check %s: %v", alerts[i].Filename, err)
		}
		if exists {
			existing++
			continue
		}

		if _, err := repo.Insert(&alerts[i]); err != nil {
			log.Printf("Failed to index %s: %v", alerts[i].Filename, err)
			continue
		}
		inserted++
	}

	fmt.Printf("Indexed %d new alert(s), %d already present, %d skipped\n",
		inserted, existing, len(skipped))

	stats, err := repo.GetStats()
	if err == nil {
		fmt.Printf("\nAlert index statistics:\n")
		fmt.Printf("   Total alerts: %d\n", stats.TotalAlerts)
		fmt.Printf("   Total size: %d bytes\n", stats.TotalSizeBytes)
		for source, count := range stats.PerSource {
			fmt.Printf("      - %s: %d alerts\n", source, count)
		}
	}
}
