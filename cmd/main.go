package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"taskstate/internal/result"
	"taskstate/internal/server"
	"taskstate/internal/state"
	"taskstate/internal/store"
	"taskstate/internal/task"
	"taskstate/pkg/mq"
)

func main() {
	mode := flag.String("mode", "help", "help|server|demo|export")
	httpAddr := flag.String("http-addr", ":8080", "http listen address (server mode)")
	dsn := flag.String("dsn", "", "MySQL DSN for the completed-task archive (optional; STORE_DSN env also works)")
	retention := flag.Int("retention", task.DefaultRetention, "completed tasks kept in memory")
	format := flag.String("format", "json", "export format: json|table|csv|pdf")
	out := flag.String("out", "user_tasks.json", "export output path")
	limit := flag.Int("limit", 100, "archived tasks to export")
	logEvents := flag.Bool("log-events", false, "log task lifecycle events instead of dropping them")
	flag.Parse()

	// .env is optional; flags and real env win over it.
	_ = godotenv.Load()

	ctx := context.Background()

	switch *mode {
	case "server":
		mgr := task.NewManager(*retention)
		if *logEvents {
			mgr.SetPublisher(mq.LogPublisher{})
		}
		if st := openStore(*dsn); st != nil {
			defer st.Close()
			mgr.SetArchive(st)
		}
		srv := server.New(mgr)
		log.Printf("listening on %s", *httpAddr)
		if err := srv.ListenAndServe(ctx, *httpAddr); err != nil {
			log.Fatalf("server: %v", err)
		}

	case "demo":
		mgr := task.NewManager(*retention)
		if *logEvents {
			mgr.SetPublisher(mq.LogPublisher{})
		}
		mgr.Start("/rebalance?dryrun=false", "10.0.0.1")
		second := mgr.Start("/remove_broker?broker_id=2", "10.0.0.2")
		mgr.Start("/kafka_cluster_state", "10.0.0.3")
		if err := mgr.Complete(ctx, second.ID); err != nil {
			log.Fatalf("complete: %v", err)
		}

		active, completed := mgr.Snapshot()
		st := state.New(active, completed)
		doc, err := st.JSONString(1, nil)
		if err != nil {
			log.Fatalf("render json: %v", err)
		}
		fmt.Println(doc)
		st.WriteTable(os.Stdout, nil)
		fmt.Println()

	case "export":
		st := openStore(*dsn)
		if st == nil {
			log.Fatalf("export needs an archive; set --dsn or STORE_DSN")
		}
		defer st.Close()
		archived, err := st.RecentCompleted(ctx, *limit)
		if err != nil {
			log.Fatalf("read archive: %v", err)
		}
		completed := make([]task.Info, 0, len(archived))
		for _, a := range archived {
			completed = append(completed, a.Info)
		}
		snap := state.New(nil, completed)
		b, err := result.NewExporter().Export(snap, 1, *format, nil)
		if err != nil {
			log.Fatalf("export: %v", err)
		}
		if err := os.WriteFile(*out, b, 0644); err != nil {
			log.Fatalf("write: %v", err)
		}
		fmt.Printf("Exported %d tasks -> %s\n", len(completed), *out)

	default:
		fmt.Println("Usage examples:")
		fmt.Println("  go run ./cmd --mode server --http-addr :8080")
		fmt.Println("  go run ./cmd --mode demo --log-events")
		fmt.Println("  go run ./cmd --mode export --format csv --out ./user_tasks.csv")
	}
}

// openStore opens the archive when a DSN is configured, otherwise returns nil
// and the process runs memory-only.
func openStore(dsn string) *store.Store {
	var (
		st  *store.Store
		err error
	)
	switch {
	case dsn != "":
		st, err = store.New(dsn)
	case os.Getenv("STORE_DSN") != "":
		st, err = store.NewDefaultStore()
	default:
		return nil
	}
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	return st
}
