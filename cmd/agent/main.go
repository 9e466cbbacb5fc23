// Package main is the scanner agent's composition root. It constructs one
// check-in service instance and feeds it scans read from stdin, one raw QR
// payload per line.
//
// Usage:
//
//	clockin-agent -employee e1                 # check-in mode
//	clockin-agent -user u1 -validate           # validate-only mode
//	clockin-agent -employee e1 -lat 13.75 -lng 100.50 -accuracy 10
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"clockin/internal/config"
	"clockin/internal/gateway"
	"clockin/internal/models"
	"clockin/internal/netmon"
	"clockin/internal/queue"
	"clockin/internal/ratelimit"
	"clockin/internal/services/checkin"
	"clockin/internal/services/geofence"
	"clockin/internal/storage"
)

func main() {
	var (
		employeeID   = flag.String("employee", "", "employee id for check-in mode")
		userID       = flag.String("user", "", "user id for validate mode")
		validateOnly = flag.Bool("validate", false, "validate tokens without checking in")
		lat          = flag.Float64("lat", 0, "device latitude")
		lng          = flag.Float64("lng", 0, "device longitude")
		accuracy     = flag.Float64("accuracy", 0, "location accuracy in meters")
	)
	flag.Parse()

	config.LoadEnv()
	cfg, err := config.LoadEngine()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	store, err := storage.NewSQLiteStore(cfg.StoragePath)
	if err != nil {
		log.Fatalf("failed to open local storage: %v", err)
	}
	defer store.Close()

	q, err := queue.New(store, cfg.QueueMaxRetries, cfg.QueueMaxAge)
	if err != nil {
		log.Fatalf("failed to load offline queue: %v", err)
	}

	client := gateway.NewClient(cfg.BackendURL, cfg.APIToken)
	monitor := netmon.New(client, cfg.ProbeInterval)

	svc := checkin.NewService(
		ratelimit.New(store, cfg.RateLimitWindow, cfg.RateLimitMax),
		geofence.NewValidator(client),
		q,
		monitor,
		client,
		checkin.Config{
			RetryAttempts:  cfg.RetryAttempts,
			RetryBaseDelay: cfg.RetryBaseDelay,
			AttemptTimeout: cfg.AttemptTimeout,
			MetricsMaxAge:  cfg.MetricsMaxAge,
			DeviceInfo:     cfg.DeviceInfo,
		},
	)
	defer svc.Close()

	ctx := context.Background()
	monitor.Start(ctx)
	defer monitor.Close()

	var loc *models.LocationSample
	if *lat != 0 || *lng != 0 {
		loc = &models.LocationSample{Latitude: *lat, Longitude: *lng, Accuracy: *accuracy}
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		raw := scanner.Text()
		if raw == "" {
			continue
		}

		payload, err := checkin.ParsePayloadWithin(raw, cfg.TokenFreshness)
		if err != nil {
			switch {
			case errors.Is(err, checkin.ErrPayloadExpired):
				fmt.Println("QR expired, please rescan a fresh code")
			default:
				fmt.Println("unreadable QR code")
			}
			continue
		}

		if *validateOnly {
			outcome, err := svc.ValidateToken(ctx, payload, *userID)
			report(outcome, err)
			continue
		}

		result, err := svc.ProcessCheckIn(ctx, payload, *employeeID, loc)
		report(result, err)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("stdin read failed: %v", err)
	}
}

func report(v any, err error) {
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	out, _ := json.Marshal(v)
	fmt.Println(string(out))
}
