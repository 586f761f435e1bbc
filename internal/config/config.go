package config

import (
	"errors"
	"fmt"
	"itinerary-planner-service/internal/services"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Get returns the trimmed environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(Get(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func GetDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(Get(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// Config is the server's runtime configuration, read from the environment.
type Config struct {
	Port            string
	DatabaseURL     string
	DBPath          string
	SeedPath        string
	TravelModelPath string
	RedisURL        string
	SuggestionTTL   time.Duration
	GeminiAPIKey    string
	GeminiModel     string
	OfflineAdvisor  bool
	Region          string
	APIToken        string
	AllowedOrigins  []string
	RateLimit       int
	SeedDefaultDay  bool
}

func Load() Config {
	return Config{
		Port:            Get("PORT", "8080"),
		DatabaseURL:     Get("DATABASE_URL", ""),
		DBPath:          Get("DB_PATH", "data/app.db"),
		SeedPath:        Get("SEED_PATH", "data/seeds/locations.json"),
		TravelModelPath: Get("TRAVEL_MODEL_PATH", "travel_model.yaml"),
		RedisURL:        Get("REDIS_URL", ""),
		SuggestionTTL:   GetDuration("SUGGESTION_TTL", 24*time.Hour),
		GeminiAPIKey:    Get("GEMINI_API_KEY", ""),
		GeminiModel:     Get("GEMINI_MODEL", ""),
		OfflineAdvisor:  GetBool("OFFLINE_ADVISOR", false),
		Region:          Get("REGION", "Osaka"),
		APIToken:        Get("API_TOKEN", ""),
		AllowedOrigins:  splitList(Get("ALLOWED_ORIGINS", "*")),
		RateLimit:       getInt("RATE_LIMIT_PER_MINUTE", 120),
		SeedDefaultDay:  GetBool("SEED_DEFAULT_DAY", true),
	}
}

// AdvisorEnabled reports whether suggestion endpoints have a backend.
func (c Config) AdvisorEnabled() bool {
	return c.GeminiAPIKey != "" || c.OfflineAdvisor
}

// LoadTravelModel overlays the YAML file at path on the default travel model.
// A missing file is not an error; keys absent from the file keep their defaults.
func LoadTravelModel(path string) (services.TravelModel, error) {
	model := services.DefaultTravelModel()
	if path == "" {
		return model, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model, nil
		}
		return model, fmt.Errorf("load travel model: read %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &model); err != nil {
		return services.DefaultTravelModel(), fmt.Errorf("load travel model: parse %q: %w", path, err)
	}

	if model.BaseMinutes < 0 || model.MinutesPerUnit < 0 || model.FallbackMinutes < 0 || model.DefaultVisitMinutes <= 0 {
		return services.DefaultTravelModel(), fmt.Errorf("load travel model: %q: values must be non-negative and default_visit_minutes positive", path)
	}

	return model, nil
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(Get(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	out := make([]string, 0, 4)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
