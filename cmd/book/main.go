// cmd/book/main.go
package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"gymbooker/pkg/booking"
	"gymbooker/pkg/calendar"
	"gymbooker/pkg/config"
	"gymbooker/pkg/log"
	"gymbooker/pkg/runner"
	"gymbooker/pkg/scraper"
)

const (
	flagActivitiesName  = "activities"
	flagActivitiesUsage = "comma-separated activity names to run (default: every configured activity)"
	flagEnvName         = "env"
	flagEnvUsage        = "path to the .env file"
	flagProdName        = "prod"
	flagProdUsage       = "use production logging"
	defaultEnvFilePath  = ".env"
)

func main() {
	os.Exit(run())
}

// run keeps every exit path behind the deferred browser and logger
// teardown; main exits with its return code.
func run() int {
	activitiesFlag := flag.String(flagActivitiesName, "", flagActivitiesUsage)
	envFilePathFlag := flag.String(flagEnvName, defaultEnvFilePath, flagEnvUsage)
	prodFlag := flag.Bool(flagProdName, false, flagProdUsage)
	flag.Parse()

	if logError := log.Init(*prodFlag); logError != nil {
		return 1
	}
	defer log.Sync()

	cfg, configError := config.Load(*envFilePathFlag)
	if configError != nil {
		log.L().Error("config_load_failed", zap.Error(configError))
		return 1
	}
	if *activitiesFlag != "" {
		cfg.RunFilter = config.ParseRunFilter(*activitiesFlag)
	}

	rootContext := context.Background()
	session, sessionError := scraper.NewSession(rootContext, cfg.BaseURL)
	if sessionError != nil {
		log.L().Error("browser_start_failed", zap.Error(sessionError))
		return 1
	}
	defer session.Close()

	reservationClient, clientError := booking.NewClient(cfg.BaseURL, session)
	if clientError != nil {
		log.L().Error("booking_client_failed", zap.Error(clientError))
		return 1
	}

	var recorder runner.BookingRecorder
	if cfg.CalendarFile != "" {
		recorder = calendar.NewWriter(cfg.CalendarFile)
	}

	// Individual activity failures are logged by the runner; only setup
	// problems fail the process.
	runner.New(session, reservationClient, recorder).Run(rootContext, cfg)
	return 0
}
