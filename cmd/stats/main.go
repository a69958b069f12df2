package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/alexivanou/cityphoto-api/internal/config"
	"github.com/alexivanou/cityphoto-api/internal/database"
	"github.com/alexivanou/cityphoto-api/internal/logging"
	"github.com/alexivanou/cityphoto-api/internal/stats"
	"go.uber.org/zap"
)

func main() {
	format := flag.String("format", "json", "Output format: json or text")
	timeout := flag.Duration("timeout", 30*time.Second, "Collection timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.Log.Development = true
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.DB.IsMemory() {
		logger.Warn("Reading a fresh in-memory database; point DB_TYPE at postgres for real numbers")
		if err := database.Migrate(db, cfg.DB, "file://migrations"); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	report, err := stats.NewCollector(db, cfg.DB).Collect(ctx)
	if err != nil {
		logger.Fatal("Failed to collect statistics", zap.Error(err))
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(report)
	case "text":
		err = writeReport(os.Stdout, report)
	default:
		logger.Fatal("Unknown output format", zap.String("format", *format))
	}
	if err != nil {
		logger.Fatal("Failed to write statistics", zap.Error(err))
	}
}

func writeReport(out io.Writer, s *stats.Stats) error {
	coverage := 0.0
	if s.Content.Cities > 0 {
		coverage = 100 * float64(s.Content.CitiesWithCover) / float64(s.Content.Cities)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "collected\t%s\n", s.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(w, "database\t%s\t%d rows\n", s.Database.Type, s.Database.TotalRecords)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "cities\t%d\t%.1f%% with cover\n", s.Content.Cities, coverage)
	fmt.Fprintf(w, "photos\t%d\n", s.Content.Photos)
	fmt.Fprintf(w, "users\t%d\t%d linked\n", s.Content.Users, s.Content.LinkedUsers)
	fmt.Fprintf(w, "languages\t%d\n", s.Content.Languages)
	fmt.Fprintln(w)
	for _, ts := range s.Database.TableStats {
		fmt.Fprintf(w, "  %s\t%d\n", ts.Name, ts.RowCount)
	}
	fmt.Fprintf(w, "heap\t%d KiB\n", s.Memory.HeapAlloc/1024)
	fmt.Fprintf(w, "goroutines\t%d\n", s.Runtime.NumGoroutines)
	return w.Flush()
}
