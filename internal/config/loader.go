package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the talent pass
// service.
type Config struct {
	HTTPPort              int
	StorageDriver         string
	SQLiteDSN             string
	SchedulerTick         time.Duration
	SchedulerInitialDelay time.Duration
	SeedDefaultSlots      bool
	SeedLinkID            string
	SeedManagerCode       string
}

// Load parses configuration values from the current process environment.
//
// The loader applies defaults for every field and accumulates invalid entries
// so a misconfigured deployment reports all problems at once.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:              8080,
		StorageDriver:         "sqlite",
		SQLiteDSN:             "file:talentpass.db?_foreign_keys=on",
		SchedulerTick:         60 * time.Second,
		SchedulerInitialDelay: 5 * time.Second,
		SeedDefaultSlots:      false,
		SeedLinkID:            "link-default",
		SeedManagerCode:       "MGR-0001",
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("TALENTPASS_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "TALENTPASS_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if driver := strings.TrimSpace(os.Getenv("TALENTPASS_STORAGE_DRIVER")); driver != "" {
		switch driver {
		case "sqlite", "memory":
			cfg.StorageDriver = driver
		default:
			invalid = append(invalid, "TALENTPASS_STORAGE_DRIVER")
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("TALENTPASS_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if tickValue := strings.TrimSpace(os.Getenv("TALENTPASS_SCHEDULER_TICK")); tickValue != "" {
		tick, err := time.ParseDuration(tickValue)
		if err != nil || tick <= 0 {
			invalid = append(invalid, "TALENTPASS_SCHEDULER_TICK")
		} else {
			cfg.SchedulerTick = tick
		}
	}

	if delayValue := strings.TrimSpace(os.Getenv("TALENTPASS_SCHEDULER_INITIAL_DELAY")); delayValue != "" {
		delay, err := time.ParseDuration(delayValue)
		if err != nil || delay < 0 {
			invalid = append(invalid, "TALENTPASS_SCHEDULER_INITIAL_DELAY")
		} else {
			cfg.SchedulerInitialDelay = delay
		}
	}

	if seedValue := strings.TrimSpace(os.Getenv("TALENTPASS_SEED_DEFAULT_SLOTS")); seedValue != "" {
		seed, err := strconv.ParseBool(seedValue)
		if err != nil {
			invalid = append(invalid, "TALENTPASS_SEED_DEFAULT_SLOTS")
		} else {
			cfg.SeedDefaultSlots = seed
		}
	}

	if linkID := strings.TrimSpace(os.Getenv("TALENTPASS_SEED_LINK_ID")); linkID != "" {
		cfg.SeedLinkID = linkID
	}

	if managerCode := strings.TrimSpace(os.Getenv("TALENTPASS_SEED_MANAGER_CODE")); managerCode != "" {
		cfg.SeedManagerCode = managerCode
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
