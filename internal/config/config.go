package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Uploads
	MaxFileMB   int
	AllowedExts map[string]bool

	// Template archive safety (zip-bomb defense)
	MaxZipEntries  int
	MaxZipMemberMB int
	MaxZipTotalMB  int
	MaxZipRatio    int

	// Template image extraction
	MaxTemplateImages  int
	MaxTemplateImageMB int

	// LLM routing
	DefaultModel  string
	OpenAIBaseURL string

	// LLM network behavior
	LLMTimeoutSecs float64
	LLMMaxRetries  int

	// Text & outline constraints
	MaxTextChars       int
	MaxBulletsPerSlide int
	MaxTitleChars      int
	MaxBulletChars     int
	MaxNotesChars      int
	MaxTotalSlides     int

	// CORS
	CORSAllowOrigins []string

	// Rate limiting (generate endpoint, per IP per minute)
	GenerateRatePerMin int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port: getEnvOrDefault("PORT", "8080"),
		Env:  getEnvOrDefault("ENV", "development"),

		MaxFileMB:   getEnvAsIntOrDefault("MAX_FILE_MB", 20),
		AllowedExts: getEnvAsSetOrDefault("ALLOWED_EXTS", []string{".pptx", ".potx"}),

		MaxZipEntries:  getEnvAsIntOrDefault("MAX_ZIP_ENTRIES", 2000),
		MaxZipMemberMB: getEnvAsIntOrDefault("MAX_ZIP_MEMBER_MB", 50),
		MaxZipTotalMB:  getEnvAsIntOrDefault("MAX_ZIP_TOTAL_MB", 200),
		MaxZipRatio:    getEnvAsIntOrDefault("MAX_ZIP_RATIO", 1000),

		MaxTemplateImages:  getEnvAsIntOrDefault("MAX_TEMPLATE_IMAGES", 20),
		MaxTemplateImageMB: getEnvAsIntOrDefault("MAX_TEMPLATE_IMAGE_MB", 5),

		DefaultModel:  getEnvOrDefault("OPENAI_MODEL", "gpt-4.1-mini"),
		OpenAIBaseURL: getEnvOrDefault("OPENAI_BASE_URL", "https://aipipe.org/openai/v1"),

		LLMTimeoutSecs: getEnvAsFloatOrDefault("LLM_TIMEOUT_SECS", 60),
		LLMMaxRetries:  getEnvAsIntOrDefault("LLM_MAX_RETRIES", 3),

		MaxTextChars:       getEnvAsIntOrDefault("MAX_TEXT_CHARS", 40000),
		MaxBulletsPerSlide: getEnvAsIntOrDefault("MAX_BULLETS_PER_SLIDE", 7),
		MaxTitleChars:      getEnvAsIntOrDefault("MAX_TITLE_CHARS", 200),
		MaxBulletChars:     getEnvAsIntOrDefault("MAX_BULLET_CHARS", 200),
		MaxNotesChars:      getEnvAsIntOrDefault("MAX_NOTES_CHARS", 600),
		MaxTotalSlides:     getEnvAsIntOrDefault("MAX_TOTAL_SLIDES", 60),

		CORSAllowOrigins: getEnvAsListOrDefault("CORS_ALLOW_ORIGINS", []string{"*"}),

		GenerateRatePerMin: getEnvAsIntOrDefault("GENERATE_RATE_PER_MIN", 10),
	}

	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func getEnvAsSetOrDefault(key string, defaultVal []string) map[string]bool {
	items := getEnvAsListOrDefault(key, defaultVal)
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[strings.ToLower(it)] = true
	}
	return set
}
