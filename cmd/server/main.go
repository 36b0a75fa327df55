package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourusername/revlimiter/api"
	"github.com/yourusername/revlimiter/metrics"
	"github.com/yourusername/revlimiter/pkg/revlimiter"
)

func main() {
	confPath := "config.yaml"
	if len(os.Args) > 1 {
		confPath = os.Args[1]
	}

	config, err := revlimiter.LoadConfigFromFile(confPath)
	if err != nil {
		log.Fatal(err)
	}

	// Already validated as part of config loading.
	reclaimInterval, _ := config.ParseReclaimInterval()

	mux := http.NewServeMux()
	recorder := metrics.Recorder{}

	// Background tasks to tear down on shutdown.
	var stops []func()

	for route, rc := range config.Routes {
		settings := rc.ToSettings()
		throttler, err := revlimiter.New(settings,
			revlimiter.WithReclaimInterval(reclaimInterval),
			revlimiter.WithSweepObserver(metrics.SweepObserver(route)),
		)
		if err != nil {
			log.Fatalf("route %s: %v", route, err)
		}

		log.Printf("creating throttler for %s (fill_rate=%g, max=%g, start=%g)",
			route, settings.FillRate, settings.BucketMax, settings.BucketStart)

		mux.Handle(route, api.NewHandler(route, throttler, recorder))
		stops = append(stops, throttler.Start())
	}

	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", healthHandler)

	stops = append(stops, metrics.StartMemoryReporter(metrics.DefaultMemoryReportInterval, log.Default()))

	listener, err := listen(config.Socket)
	if err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{Handler: mux}

	shutdownDone := make(chan struct{})
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		log.Println("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
		close(shutdownDone)
	}()

	log.Printf("revlimiter listening on %s", listener.Addr())
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}

	<-shutdownDone
	for _, stop := range stops {
		stop()
	}
}

// listen binds the configured socket: a TCP port or a local unix socket.
func listen(sock revlimiter.SocketConfig) (net.Listener, error) {
	switch sock.Mode {
	case revlimiter.SocketModeUnix:
		// A previous run may have left the socket file behind.
		if err := os.Remove(sock.Path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing stale socket %s: %w", sock.Path, err)
		}
		return net.Listen("unix", sock.Path)
	case revlimiter.SocketModeNet:
		return net.Listen("tcp", fmt.Sprintf(":%d", sock.Port))
	default:
		return nil, fmt.Errorf("unsupported socket mode %q", sock.Mode)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintln(w, `{"status":"healthy","service":"revlimiter"}`)
}
