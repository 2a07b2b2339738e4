package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/auth"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/colors"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/config"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/google"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/identity"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/importer"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/model"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/server"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/store"
	enginesync "github.com/aimanagement-dev/archipielago-production-sub001/pkg/sync"
)

func main() {
	calendarName := flag.String("calendar", "", "Google Calendar name to sync with (overrides config)")
	setCalendar := flag.String("set-calendar", "", "Set the default Google Calendar name")
	doAuth := flag.Bool("auth", false, "Authenticate with Google Calendar")
	syncOut := flag.Bool("sync-out", false, "Push schedulable tasks to the calendar")
	syncIn := flag.Bool("sync-in", false, "Pull calendar changes back into the task store")
	from := flag.String("from", "", "Inbound window start, RFC3339 (default: 7 days ago)")
	to := flag.String("to", "", "Inbound window end, RFC3339 (default: 30 days ahead)")
	importFile := flag.String("import", "", "Import task candidates from a CSV export")
	serve := flag.Bool("serve", false, "Expose the sync operations over HTTP")
	addr := flag.String("addr", ":8080", "Listen address for --serve")
	flag.Parse()

	if *setCalendar != "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		cfg.Calendar = *setCalendar
		if err := config.Save(cfg); err != nil {
			log.Fatalf("Error saving config: %v", err)
		}
		fmt.Printf("Default calendar set to: %s\n", *setCalendar)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *calendarName != "" {
		cfg.Calendar = *calendarName
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *doAuth {
		configDir, err := auth.GetXdgHome()
		if err != nil {
			log.Fatalf("could not find path to configuration directory: %v", err)
		}

		tokenFile := filepath.Join(configDir, auth.TokenFile)
		if _, err := os.Stat(tokenFile); err == nil {
			log.Printf("Removing existing token file at '%s'", tokenFile)
			if err := os.Remove(tokenFile); err != nil {
				log.Fatalf("could not delete token file '%s': %v. Please delete it manually", tokenFile, err)
			}
		}

		if _, err := auth.GetCalendarService(ctx); err != nil {
			log.Fatalf("Authentication failed: %v", err)
		}
		log.Printf("Authentication successful! Token saved to %s", auth.TokenFile)
		return
	}

	configDir, err := auth.GetXdgHome()
	if err != nil {
		log.Fatalf("could not find configuration directory: %v", err)
	}

	taskStore, err := store.NewFileStore(configDir)
	if err != nil {
		log.Fatalf("Error opening task store: %v", err)
	}
	reconciler := importer.NewReconciler(taskStore, importer.Defaults{
		Area: cfg.DefaultArea,
		Week: cfg.DefaultWeek,
	})

	if *importFile != "" {
		f, err := os.Open(*importFile)
		if err != nil {
			log.Fatalf("Error opening import file: %v", err)
		}
		defer f.Close()

		candidates, err := importer.ParseCSV(f)
		if err != nil {
			log.Fatalf("Error parsing import file: %v", err)
		}
		result, err := reconciler.ImportBatch(ctx, candidates)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		fmt.Printf("Imported %d tasks, skipped %d duplicates\n", len(result.Created), result.Skipped)
		for _, msg := range result.Errors {
			log.Printf("Import error: %s", msg)
		}
		if !*syncOut && !*syncIn && !*serve {
			return
		}
	}

	if !*syncOut && !*syncIn && !*serve {
		flag.Usage()
		return
	}

	gClient, err := google.NewClient(ctx, cfg.Calendar)
	if err != nil {
		log.Fatalf("Error creating Google Calendar client: %v", err)
	}

	idMap, err := identity.NewIDMap(configDir)
	if err != nil {
		log.Printf("Warning: failed to initialize event id map: %v", err)
	}
	colorCache, err := colors.NewColorCache(configDir)
	if err != nil {
		log.Printf("Warning: failed to initialize area color cache: %v", err)
	}

	engine := enginesync.New(taskStore, gClient, enginesync.Options{
		EventDuration:   time.Duration(cfg.EventDurationMinutes) * time.Minute,
		Workers:         cfg.Workers,
		CreateUnmatched: cfg.InboundCreateUnmatched,
		DefaultArea:     cfg.DefaultArea,
		IDs:             idMap,
		Colors:          colorCache,
	})

	if *syncOut {
		runOutbound(ctx, engine, taskStore)
	}

	if *syncIn {
		timeMin := time.Now().AddDate(0, 0, -7)
		timeMax := time.Now().AddDate(0, 0, 30)
		if *from != "" {
			if timeMin, err = time.Parse(time.RFC3339, *from); err != nil {
				log.Fatalf("Invalid --from value: %v", err)
			}
		}
		if *to != "" {
			if timeMax, err = time.Parse(time.RFC3339, *to); err != nil {
				log.Fatalf("Invalid --to value: %v", err)
			}
		}

		result := engine.SyncFromCalendar(ctx, timeMin, timeMax)
		fmt.Printf("Inbound sync: %d matched, %d updated, %d created\n",
			result.TasksFound, result.Updated, result.Created)
		for _, e := range result.Errors {
			log.Printf("Inbound error on %s: %s", e.ID, e.Message)
		}
	}

	if *serve {
		srv := server.New(engine, reconciler, taskStore)
		log.Printf("Listening on %s", *addr)
		if err := srv.Router().Run(*addr); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}
}

// runOutbound pushes every schedulable task and clears events left
// behind by tasks that are no longer schedulable.
func runOutbound(ctx context.Context, engine *enginesync.Engine, taskStore store.TaskStore) {
	all, err := taskStore.List(ctx)
	if err != nil {
		log.Fatalf("Error listing tasks: %v", err)
	}

	var schedulable, unscheduled []model.Task
	for _, t := range all {
		if t.Schedulable() {
			schedulable = append(schedulable, t)
		} else {
			unscheduled = append(unscheduled, t)
		}
	}

	result := engine.SyncToCalendar(ctx, schedulable)
	for _, t := range unscheduled {
		deleted, err := engine.DeleteIfExists(ctx, t.ID)
		if err != nil {
			result.Errors = append(result.Errors, model.ItemError{ID: t.ID, Message: err.Error()})
			continue
		}
		if deleted {
			result.Deleted++
		}
	}

	fmt.Printf("Outbound sync: %d created, %d updated, %d deleted, %d skipped\n",
		result.Created, result.Updated, result.Deleted, result.Skipped)
	for _, e := range result.Errors {
		log.Printf("Outbound error on %s: %s", e.ID, e.Message)
	}
}
