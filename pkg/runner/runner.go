// pkg/runner/runner.go
package runner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"gymbooker/pkg/booking"
	"gymbooker/pkg/config"
	"gymbooker/pkg/log"
	"gymbooker/pkg/schedule"
)

// SessionDriver is the browser-facing surface the runner needs.
type SessionDriver interface {
	Login(username, password string) error
	OpenWeek(date time.Time) (string, error)
}

// Reserver submits one reservation attempt.
type Reserver interface {
	Reserve(ctx context.Context, classID int, label string) (booking.Outcome, error)
}

// BookingRecorder persists a successful booking outside the remote system;
// nil disables recording.
type BookingRecorder interface {
	AddBooking(classID int, name string, startTime time.Time) error
}

// Summary counts per-activity outcomes for the whole batch.
type Summary struct {
	Booked     int
	Waitlisted int
	Rejected   int
	Skipped    int
	Failed     int
}

// Runner walks the configured activities one at a time: login, open the
// next allowed week, pick a class, reserve it. Activities never block each
// other; every failure is contained to its own attempt.
type Runner struct {
	session  SessionDriver
	reserver Reserver
	recorder BookingRecorder
	now      func() time.Time
}

func New(session SessionDriver, reserver Reserver, recorder BookingRecorder) *Runner {
	return &Runner{session: session, reserver: reserver, recorder: recorder, now: time.Now}
}

// Run processes the selected activities in configuration order and reports
// the batch summary. It never returns an error: per-activity problems are
// logged and counted, not propagated.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) Summary {
	var summary Summary

	selectedNames, unknownNames := cfg.SelectedActivities()
	for _, unknownName := range unknownNames {
		log.L().Warn("activity_not_configured", zap.String("activity", unknownName))
		summary.Skipped++
	}

	for _, activityName := range selectedNames {
		rule := cfg.Rules[activityName]
		if !rule.IsEnabled() {
			log.L().Info("activity_disabled", zap.String("activity", activityName))
			summary.Skipped++
			continue
		}
		r.runActivity(ctx, cfg, activityName, rule, &summary)
	}

	log.L().Info("run_done",
		zap.Int("booked", summary.Booked),
		zap.Int("waitlisted", summary.Waitlisted),
		zap.Int("rejected", summary.Rejected),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary
}

func (r *Runner) runActivity(ctx context.Context, cfg *config.Config, activityName string, rule config.ActivityRule, summary *Summary) {
	log.L().Info("activity_start", zap.String("activity", activityName), zap.Int("activityId", rule.ActivityID))

	if loginError := r.session.Login(cfg.Username, cfg.Password); loginError != nil {
		log.L().Warn("activity_login_failed", zap.String("activity", activityName), zap.Error(loginError))
		summary.Failed++
		return
	}

	targetDate := schedule.NextAllowedDate(r.now(), rule.AllowedDays)
	pageHTML, openError := r.session.OpenWeek(targetDate)
	if openError != nil {
		log.L().Warn("activity_navigation_failed", zap.String("activity", activityName), zap.Error(openError))
		summary.Failed++
		return
	}

	classes, parseError := schedule.ParseClasses(pageHTML)
	if parseError != nil {
		log.L().Warn("activity_page_unparseable", zap.String("activity", activityName), zap.Error(parseError))
		summary.Failed++
		return
	}

	candidate, found := schedule.FindClass(r.now(), classes, rule)
	if !found {
		log.L().Info("no_candidate",
			zap.String("activity", activityName),
			zap.Time("targetDate", targetDate),
			zap.Int("classesSeen", len(classes)),
		)
		summary.Skipped++
		return
	}

	outcome, reserveError := r.reserver.Reserve(ctx, candidate.ID, candidate.Name)
	if reserveError != nil {
		log.L().Warn("reservation_request_failed", zap.String("activity", activityName), zap.Error(reserveError))
		summary.Failed++
		return
	}

	switch outcome {
	case booking.OutcomeBooked:
		summary.Booked++
		if r.recorder != nil {
			if recordError := r.recorder.AddBooking(candidate.ID, candidate.Name, candidate.StartTime); recordError != nil {
				log.L().Warn("calendar_record_failed", zap.String("activity", activityName), zap.Error(recordError))
			}
		}
	case booking.OutcomeWaitlisted:
		summary.Waitlisted++
	default:
		summary.Rejected++
	}
	log.L().Info("activity_done",
		zap.String("activity", activityName),
		zap.String("class", candidate.Name),
		zap.Time("startTime", candidate.StartTime),
		zap.String("outcome", outcome.String()),
	)
}
