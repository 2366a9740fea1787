// Command marginal-report serves the benefit analysis API: marginal-child
// sweeps, benefit-cliff sweeps, and single-point breakdowns evaluated against
// a policy calculation engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/benefits-data/marginal.report/internal/api"
	"github.com/benefits-data/marginal.report/internal/config"
	"github.com/benefits-data/marginal.report/internal/engine"
	"github.com/benefits-data/marginal.report/internal/engine/local"
	"github.com/benefits-data/marginal.report/internal/engine/policyapi"
	"github.com/benefits-data/marginal.report/internal/httputil"
	"github.com/benefits-data/marginal.report/internal/monitoring"
	"github.com/benefits-data/marginal.report/internal/sweep"
	"github.com/benefits-data/marginal.report/internal/version"
)

var (
	listen     = flag.String("listen", ":8080", "Listen address")
	engineURL  = flag.String("engine", "", "Calculation engine base URL (overrides config)")
	configPath = flag.String("config", "", "Path to a JSON config file")
	devMode    = flag.Bool("dev", false, "Use the built-in local engine instead of the hosted one")
	quiet      = flag.Bool("quiet", false, "Silence pipeline diagnostics")
)

func homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")

	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head><title>Marginal Benefit Report</title></head>
<body>
	<h1>Marginal Benefit Report</h1>
	<p>Version %s</p>
	<ul>
		<li><a href="/api/health">Health check</a></li>
		<li><a href="/api/states">Supported states</a></li>
		<li><a href="/api/chart/marginal-child">Marginal child benefit chart</a></li>
		<li><a href="/api/chart/cliff">Benefit cliff chart</a></li>
	</ul>
</body>
</html>`, version.Version)
}

// Main
func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	log.Printf("marginal.report %s", version.String())

	if *quiet {
		monitoring.SetLogger(nil)
	}

	cfg := config.EmptyAppConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	var eng engine.Engine
	if *devMode {
		log.Printf("using built-in local engine")
		eng = local.New()
	} else {
		base := cfg.GetEngineURL()
		if *engineURL != "" {
			base = *engineURL
		}
		log.Printf("using calculation engine at %s", base)
		client := httputil.NewStandardClient(&http.Client{Timeout: cfg.GetEngineTimeout()})
		eng = policyapi.New(base, client)
	}

	pipeline := sweep.New(eng, sweep.Options{
		AgePolicy: cfg.GetAgePolicy(),
		ChildCap:  cfg.GetMaxChildrenCap(),
		Timeout:   cfg.GetRequestTimeout(),
		Year:      cfg.GetSimulationYear(),
	})

	// Create a wait group for the HTTP server routine
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// mount the API handlers under /api/
		apiMux := api.NewServer(pipeline, version.Version).ServeMux()
		mux.Handle("/api/", http.StripPrefix("/api", apiMux))
		mux.HandleFunc("/", homeHandler)

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("listening on %s", *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		// Create a shutdown context with a timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
