// Command cooksim runs the multi-phase grain-cooking simulation and serves
// its observables over HTTP, forwarding decision events to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/cooksim/internal/declog"
	"github.com/sweeney/cooksim/internal/grain"
	"github.com/sweeney/cooksim/internal/mqtt"
	"github.com/sweeney/cooksim/internal/run"
	"github.com/sweeney/cooksim/internal/status"
	"github.com/sweeney/cooksim/internal/web"
)

func main() {
	grainID := flag.String("grain", "basmati_rice", "Grain id to cook")
	weight := flag.Float64("weight", 150, "Grain weight in grams")
	speed := flag.Float64("speed", 10, "Simulated seconds per wall-clock second")
	tick := flag.Duration("tick", 100*time.Millisecond, "Tick interval")
	broker := flag.String("broker", "", "MQTT broker address (empty to disable)")
	heartbeat := flag.Duration("heartbeat", time.Minute, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")
	profiles := flag.String("profiles", "", "Optional YAML file with extra grain profiles")
	listGrains := flag.Bool("list-grains", false, "Print registered grains and exit")

	flag.Parse()

	if err := runMain(*grainID, *weight, *speed, *tick, *broker, *heartbeat, *httpAddr, *profiles, *listGrains); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func runMain(grainID string, weight, speed float64, tick time.Duration, broker string, heartbeat time.Duration, httpAddr, profiles string, listGrains bool) error {
	registry := grain.Default()
	if profiles != "" {
		if err := registry.LoadOverrides(profiles); err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}
	}

	if listGrains {
		printGrains(os.Stdout, registry)
		return nil
	}

	startTime := time.Now()
	tracker := status.NewTracker(startTime, status.Config{
		TickMs:      tick.Milliseconds(),
		Speed:       speed,
		HeartbeatMs: heartbeat.Milliseconds(),
		Broker:      broker,
		HTTPAddr:    httpAddr,
	})

	// MQTT is optional: without a broker, events only reach the local log.
	var publisher mqtt.Publisher
	var mqttConn mqtt.ConnectionStatus
	if broker != "" {
		real, err := mqtt.NewRealPublisher(broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		buffered := mqtt.NewBufferedPublisher(real, 256)
		publisher = buffered
		mqttConn = buffered
		defer buffered.Close()
	}

	decisionLog := declog.New()
	hub := web.NewHub()

	runner, err := run.NewRunner(run.Config{
		Registry:    registry,
		Log:         decisionLog,
		Tracker:     tracker,
		Publisher:   publisher,
		MQTT:        mqttConn,
		Stream:      hub,
		GrainID:     grainID,
		WeightGrams: weight,
		Period:      tick,
		Speed:       speed,
		Heartbeat:   heartbeat,
	})
	if err != nil {
		return fmt.Errorf("init runner: %w", err)
	}

	// Publish startup event with full status snapshot
	if publisher != nil {
		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker, runner, decisionLog, hub)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	water := runner.WaterRequired()
	log.Printf("started: grain=%s weight=%.0fg water=%.0f speed=%.1fx tick=%v broker=%s heartbeat=%v",
		grainID, weight, water, speed, tick, broker, heartbeat)

	runner.Start()
	defer runner.Pause()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigCh
	log.Printf("received %v, shutting down", s)

	if publisher != nil {
		signalName := "UNKNOWN"
		if s == syscall.SIGINT {
			signalName = "SIGINT"
		} else if s == syscall.SIGTERM {
			signalName = "SIGTERM"
		}
		event := mqtt.SystemEvent{
			Timestamp:  time.Now(),
			Event:      "SHUTDOWN",
			Reason:     signalName,
			Retained:   true,
			RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName),
		}
		if err := publisher.PublishSystem(event); err != nil {
			log.Printf("failed to publish shutdown event: %v", err)
		} else {
			log.Printf("published shutdown event")
		}
	}

	return nil
}

// printGrains writes the registered grains with their cook times and water
// ratios, one per line.
func printGrains(w io.Writer, registry *grain.Registry) {
	for _, id := range registry.IDs() {
		p, err := registry.Lookup(id)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%-16s %-16s cook %4.0f min  water ratio %.1f\n",
			id, p.Name, p.CookMinutes, registry.WaterRatio(id))
	}
}
