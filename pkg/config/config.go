// pkg/config/config.go
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	usernameEnvironmentKey       = "GYM_USERNAME"
	passwordEnvironmentKey       = "GYM_PASSWORD"
	activitiesEnvironmentKey     = "GYM_ACTIVITIES"
	activitiesFileEnvironmentKey = "GYM_ACTIVITIES_FILE"
	runFilterEnvironmentKey      = "RUN_ACTIVITIES"
	baseURLEnvironmentKey        = "GYM_BASE_URL"
	calendarFileEnvironmentKey   = "GYM_CALENDAR_FILE"

	defaultBaseURL = "https://members.fitclub-online.com"
)

var (
	ErrMissingCredentials = errors.New("both " + usernameEnvironmentKey + " and " + passwordEnvironmentKey + " must be set")
	ErrMissingActivities  = errors.New("no activity configuration: set " + activitiesEnvironmentKey + " or " + activitiesFileEnvironmentKey)
)

// ActivityRule describes which remote activity to book, on which weekdays,
// after which time of day, and whether the booking window must be open.
// Weekdays are 0=Sunday..6=Saturday.
type ActivityRule struct {
	ActivityID        int   `json:"activityId" validate:"required,gt=0"`
	AllowedDays       []int `json:"allowedDays" validate:"required,min=1,dive,gte=0,lte=6"`
	MinHour           int   `json:"minHour" validate:"gte=0,lte=23"`
	MinMinutes        int   `json:"minMinutes" validate:"gte=0,lte=59"`
	RequireOpenWindow *bool `json:"requireOpenWindow"`
	Enabled           *bool `json:"enabled"`
}

// OpenWindowRequired defaults to true when the field is absent from the JSON.
func (rule ActivityRule) OpenWindowRequired() bool {
	return rule.RequireOpenWindow == nil || *rule.RequireOpenWindow
}

// IsEnabled defaults to true when the field is absent from the JSON.
func (rule ActivityRule) IsEnabled() bool {
	return rule.Enabled == nil || *rule.Enabled
}

// Config is assembled once at process start and passed down; the core
// packages never read the environment themselves.
type Config struct {
	Username      string `validate:"required"`
	Password      string `validate:"required"`
	BaseURL       string `validate:"required,url"`
	CalendarFile  string
	ActivityNames []string                `validate:"required,min=1"`
	Rules         map[string]ActivityRule `validate:"required"`
	RunFilter     []string
}

// Load reads the optional .env file, then assembles and validates the
// configuration from the environment. Credential or activity-map problems
// are fatal here, before any network activity.
func Load(envFilePath string) (*Config, error) {
	if _, statError := os.Stat(envFilePath); statError == nil {
		if loadError := godotenv.Load(envFilePath); loadError != nil {
			return nil, fmt.Errorf("loading %s: %w", envFilePath, loadError)
		}
	}

	username := strings.TrimSpace(os.Getenv(usernameEnvironmentKey))
	password := strings.TrimSpace(os.Getenv(passwordEnvironmentKey))
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	activitiesJSON := []byte(os.Getenv(activitiesEnvironmentKey))
	if len(bytes.TrimSpace(activitiesJSON)) == 0 {
		activitiesFilePath := os.Getenv(activitiesFileEnvironmentKey)
		if activitiesFilePath == "" {
			return nil, ErrMissingActivities
		}
		fileBytes, readError := os.ReadFile(activitiesFilePath)
		if readError != nil {
			return nil, fmt.Errorf("reading %s: %w", activitiesFilePath, readError)
		}
		activitiesJSON = fileBytes
	}

	activityNames, rulesByName, parseError := parseActivityRules(activitiesJSON)
	if parseError != nil {
		return nil, fmt.Errorf("parsing activity configuration: %w", parseError)
	}

	baseURL := os.Getenv(baseURLEnvironmentKey)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	cfg := &Config{
		Username:      username,
		Password:      password,
		BaseURL:       strings.TrimRight(baseURL, "/"),
		CalendarFile:  os.Getenv(calendarFileEnvironmentKey),
		ActivityNames: activityNames,
		Rules:         rulesByName,
		RunFilter:     ParseRunFilter(os.Getenv(runFilterEnvironmentKey)),
	}

	structValidator := validator.New()
	if validationError := structValidator.Struct(cfg); validationError != nil {
		return nil, fmt.Errorf("config validation failed: %w", validationError)
	}
	for activityName, rule := range rulesByName {
		if validationError := structValidator.Struct(rule); validationError != nil {
			return nil, fmt.Errorf("activity %q: %w", activityName, validationError)
		}
	}
	return cfg, nil
}

// ParseRunFilter splits the comma-separated allow-list; an empty input
// means "run everything configured".
func ParseRunFilter(raw string) []string {
	var filter []string
	for _, piece := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(piece); trimmed != "" {
			filter = append(filter, trimmed)
		}
	}
	return filter
}

// SelectedActivities resolves the run filter against the configured
// activity names, case-insensitively, preserving configuration order.
// Filter entries with no matching configuration come back in unknown.
func (c *Config) SelectedActivities() (selected []string, unknown []string) {
	if len(c.RunFilter) == 0 {
		return append([]string(nil), c.ActivityNames...), nil
	}
	configuredByLower := map[string]string{}
	for _, activityName := range c.ActivityNames {
		configuredByLower[strings.ToLower(activityName)] = activityName
	}
	wantedLowerSet := map[string]struct{}{}
	for _, rawEntry := range c.RunFilter {
		lowered := strings.ToLower(rawEntry)
		if _, configured := configuredByLower[lowered]; !configured {
			unknown = append(unknown, rawEntry)
			continue
		}
		wantedLowerSet[lowered] = struct{}{}
	}
	for _, activityName := range c.ActivityNames {
		if _, wanted := wantedLowerSet[strings.ToLower(activityName)]; wanted {
			selected = append(selected, activityName)
		}
	}
	return selected, unknown
}

// parseActivityRules decodes the name→rule object token by token so the
// configuration order of the keys survives the round trip.
func parseActivityRules(jsonBytes []byte) ([]string, map[string]ActivityRule, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonBytes))
	openingToken, tokenError := decoder.Token()
	if tokenError != nil {
		return nil, nil, tokenError
	}
	if delim, isDelim := openingToken.(json.Delim); !isDelim || delim != '{' {
		return nil, nil, errors.New("activity configuration must be a JSON object")
	}
	var activityNames []string
	rulesByName := map[string]ActivityRule{}
	for decoder.More() {
		keyToken, keyError := decoder.Token()
		if keyError != nil {
			return nil, nil, keyError
		}
		activityName, isString := keyToken.(string)
		if !isString {
			return nil, nil, fmt.Errorf("unexpected key token %v", keyToken)
		}
		var rule ActivityRule
		if decodeError := decoder.Decode(&rule); decodeError != nil {
			return nil, nil, fmt.Errorf("activity %q: %w", activityName, decodeError)
		}
		activityNames = append(activityNames, activityName)
		rulesByName[activityName] = rule
	}
	return activityNames, rulesByName, nil
}
