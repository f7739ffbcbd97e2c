package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/heryandp/antrian/internal/models"
)

type Config struct {
	Port               string
	DatabaseURL        string
	CatalogPath        string
	RateLimitPerMinute int
	RateLimitBurst     int
	ReconnectInterval  time.Duration
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	catalogPath := os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		catalogPath = "queue_config.json"
	}

	return Config{
		Port:               port,
		DatabaseURL:        os.Getenv("DB_DSN"),
		CatalogPath:        catalogPath,
		RateLimitPerMinute: readInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:     readInt("RATE_LIMIT_BURST", 30),
		ReconnectInterval:  readDurationSeconds("RECONNECT_INTERVAL_SECONDS", 5),
	}
}

// Catalog is the office layout file: which services exist and how many
// counters serve each one. Counters are named "Loket <code><n>" in
// catalog order.
type Catalog struct {
	OfficeName string           `json:"office_name"`
	Counters   map[string]int   `json:"counters"`
	Services   []models.Service `json:"services"`
}

func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if len(catalog.Services) == 0 {
		return Catalog{}, fmt.Errorf("catalog %s declares no services", path)
	}
	for _, service := range catalog.Services {
		if len(service.Code) != 1 || service.Code[0] < 'A' || service.Code[0] > 'Z' {
			return Catalog{}, fmt.Errorf("catalog service code %q is not a single uppercase letter", service.Code)
		}
	}
	return catalog, nil
}

// ExpandCounters turns the per-service counter counts into concrete
// counter rows. Service codes are walked in sorted order so the
// generated names are stable across restarts.
func (c Catalog) ExpandCounters() []models.Counter {
	codes := make([]string, 0, len(c.Counters))
	for code := range c.Counters {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var counters []models.Counter
	for _, code := range codes {
		for i := 1; i <= c.Counters[code]; i++ {
			counters = append(counters, models.Counter{
				Name:        fmt.Sprintf("Loket %s%d", code, i),
				ServiceCode: code,
				Active:      true,
			})
		}
	}
	return counters
}

func readDurationSeconds(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
