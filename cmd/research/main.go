// Package main is the entry point for the ancestry research engine.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/cacack/ancestry-research/internal/config"
	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/engine"
	"github.com/cacack/ancestry-research/internal/httpstub"
	"github.com/cacack/ancestry-research/internal/repository"
	"github.com/cacack/ancestry-research/internal/repository/memory"
	pgstore "github.com/cacack/ancestry-research/internal/repository/postgres"
	"github.com/cacack/ancestry-research/internal/repository/sqlite"
	"github.com/cacack/ancestry-research/internal/scheduler"
	"github.com/cacack/ancestry-research/internal/sources"
	"github.com/cacack/ancestry-research/internal/sources/civilindex"
	"github.com/cacack/ancestry-research/internal/sources/queue"
	"github.com/cacack/ancestry-research/internal/sources/treeapi"
)

// Build-time variables injected by goreleaser.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "research":
		runResearch(os.Args[2:])
	case "serve-stub":
		runServeStub()
	case "version":
		fmt.Printf("research %s (commit: %s, built: %s)\n", version, commit, date)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Ancestry Research Engine

Usage:
  research <command>

Commands:
  research    Run a single research job synchronously and print the result
  serve-stub  Start the progress-polling HTTP stub and /metrics surface
  version     Show version information
  help        Show this help message

Environment Variables:
  DATABASE_URL         PostgreSQL connection string (optional, uses in-memory by default)
  SQLITE_PATH          SQLite database path (default: ./research.db)
  SOURCES_FILE         Path to the YAML source-registry file (default: ./sources.yaml)
  PORT                 HTTP server port (default: 8080)
  LOG_LEVEL            Log level: debug, info, warn, error (default: info)
  LOG_FORMAT           Log format: text, json (default: text)
  KAFKA_BROKERS        Comma-separated broker list enabling the finalized-ancestor event fan-out
  KAFKA_TOPIC          Topic for research.ancestor.finalized events (default: research.ancestor.finalized)
  SWEEP_CRON           Cron expression enabling the stale-Flagged re-research sweep`)
}

// runResearch builds the repository, the source registry, and the engine
// from configuration, pre-populates the job's anchors (Phase 0), and runs
// it to completion, printing the resulting ancestor set.
func runResearch(args []string) {
	fs := flag.NewFlagSet("research", flag.ExitOnError)
	given := fs.String("given", "", "subject given name (required)")
	surname := fs.String("surname", "", "subject surname (required)")
	birthDate := fs.String("birth-date", "", "subject birth date")
	birthPlace := fs.String("birth-place", "", "subject birth place")
	fatherName := fs.String("father", "", "subject's father's name")
	motherName := fs.String("mother", "", "subject's mother's name")
	notes := fs.String("notes", "", "free-text notes (parsed for ancestor anchors)")
	generations := fs.Int("generations", 3, "generations to research, 1-7")
	_ = fs.Parse(args)

	if *given == "" || *surname == "" {
		fmt.Fprintln(os.Stderr, "research: -given and -surname are required")
		os.Exit(1)
	}

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo := buildRepository(cfg)
	defer closeRepo()

	registry := buildRegistry(ctx, cfg, repo)
	e := engine.New(repo, registry, nil)
	if notifier := buildNotifier(cfg); notifier != nil {
		e.Notifier = notifier
		defer notifier.Close()
	}

	job := domain.NewResearchJob(uuid.New().String(), domain.SubjectInput{
		GivenName:  *given,
		Surname:    *surname,
		BirthDate:  *birthDate,
		BirthPlace: *birthPlace,
		FatherName: *fatherName,
		MotherName: *motherName,
		Notes:      *notes,
	}, *generations)

	if err := e.CreateJob(ctx, job); err != nil {
		log.Fatalf("research: create job: %v", err)
	}

	log.Printf("research: starting job %s for %s %s (%d generations)", job.ID, *given, *surname, *generations)
	if err := e.Run(ctx, job.ID); err != nil {
		log.Fatalf("research: run job %s: %v", job.ID, err)
	}

	finished, err := repo.GetResearchJob(ctx, job.ID)
	if err != nil {
		log.Fatalf("research: reload job %s: %v", job.ID, err)
	}
	fmt.Printf("job %s: %s\n", finished.ID, finished.Status)

	ancestors, err := repo.GetAncestors(ctx, job.ID)
	if err != nil {
		log.Fatalf("research: list ancestors: %v", err)
	}
	for _, a := range ancestors {
		fmt.Printf("  A=%d gen=%d %-24s %-24s level=%-14s score=%d\n",
			a.AscendancyNumber, a.Generation, a.GivenName, a.Surname, a.ConfidenceLevel, a.ConfidenceScore)
	}
}

// runServeStub starts the progress-polling surface and, if configured, the
// cron-driven re-research sweep wrapping the synchronous engine.
func runServeStub() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo := buildRepository(cfg)
	defer closeRepo()

	registry := buildRegistry(ctx, cfg, repo)
	e := engine.New(repo, registry, nil)
	if notifier := buildNotifier(cfg); notifier != nil {
		e.Notifier = notifier
		defer notifier.Close()
	}

	if cfg.UseSweepScheduler() {
		sweep := scheduler.New(e, repo, nil)
		if err := sweep.Start(cfg.SweepCron); err != nil {
			log.Fatalf("research: start sweep scheduler: %v", err)
		}
		defer sweep.Stop()
	}

	if cfg.DemoMode {
		seedDemoJob(ctx, e)
	}

	srv := httpstub.NewServer(repo, cfg.Port)
	go func() {
		<-ctx.Done()
		log.Println("research: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("research: shutdown error: %v", err)
		}
	}()

	log.Printf("research: serving progress-polling stub on port %d", cfg.Port)
	if err := srv.Start(); err != nil {
		log.Printf("research: server stopped: %v", err)
	}
}

// seedDemoJob runs one sample research job so the progress surface has
// something to serve out of the box. Failures only log; demo data is never
// load-bearing.
func seedDemoJob(ctx context.Context, e *engine.Engine) {
	job := domain.NewResearchJob(uuid.New().String(), domain.SubjectInput{
		GivenName:  "Jane",
		Surname:    "Smith",
		BirthDate:  "1950",
		BirthPlace: "Derby, Derbyshire, England",
		FatherName: "John Smith",
		MotherName: "Mary Jones",
	}, 2)
	if err := e.CreateJob(ctx, job); err != nil {
		log.Printf("research: seed demo job: %v", err)
		return
	}
	if err := e.Run(ctx, job.ID); err != nil {
		log.Printf("research: run demo job: %v", err)
		return
	}
	log.Printf("research: demo job %s seeded (poll /jobs/%s/progress)", job.ID, job.ID)
}

func buildRepository(cfg *config.Config) (repository.Repository, func()) {
	if cfg.UsePostgreSQL() {
		if err := pgstore.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("research: migrate postgres: %v", err)
		}
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("research: open postgres: %v", err)
		}
		return pgstore.New(db), func() { _ = db.Close() }
	}
	if cfg.SQLitePath != "" && cfg.SQLitePath != ":memory:" {
		db, err := sql.Open("sqlite3", cfg.SQLitePath)
		if err != nil {
			log.Fatalf("research: open sqlite: %v", err)
		}
		store, err := sqlite.New(db)
		if err != nil {
			log.Fatalf("research: bootstrap sqlite: %v", err)
		}
		return store, func() { _ = db.Close() }
	}
	return memory.New(), func() {}
}

// buildRegistry loads sources.yaml and
// constructs one adapter client per declared entry, caching its credential
// fingerprint through the repository's settings contract so a rotated key
// is detectable on the next load.
func buildRegistry(ctx context.Context, cfg *config.Config, repo repository.Repository) *sources.Registry {
	sourcesCfg, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		log.Fatalf("research: load sources: %v", err)
	}

	var adapters []sources.Adapter
	for _, entry := range sourcesCfg.Sources {
		apiKey := os.Getenv(entry.CredentialKey)
		if changed, err := config.FingerprintChanged(ctx, repo, entry.CredentialKey, apiKey); err == nil && changed {
			_ = config.CacheFingerprint(ctx, repo, entry.CredentialKey, apiKey)
		}

		switch entry.Kind {
		case "civilindex":
			adapters = append(adapters, civilindex.New(civilindex.Config{
				Name:          entry.Name,
				BaseURL:       entry.BaseURL,
				APIKey:        apiKey,
				RatePerSecond: entry.RatePerSecond,
				Burst:         entry.Burst,
			}))
		case "treeapi":
			adapters = append(adapters, treeapi.New(treeapi.Config{
				Name:          entry.Name,
				BaseURL:       entry.BaseURL,
				APIKey:        apiKey,
				RatePerSecond: entry.RatePerSecond,
				Burst:         entry.Burst,
			}))
		default:
			log.Printf("research: sources.yaml: unknown source kind %q for %q, skipping", entry.Kind, entry.Name)
		}
	}

	if len(adapters) == 0 {
		log.Printf("research: no sources registered (%s); the engine will fall back to its degraded modes", cfg.SourcesFile)
	}
	return sources.NewRegistry(adapters...)
}

// buildNotifier returns the optional Kafka finalized-ancestor publisher
// when KAFKA_BROKERS is set, or nil otherwise. It is not wired to any
// engine read path; publication failures never affect a job's outcome.
func buildNotifier(cfg *config.Config) *queue.Notifier {
	if !cfg.UseKafka() {
		return nil
	}
	return queue.NewNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
}

const shutdownGrace = 10 * time.Second
