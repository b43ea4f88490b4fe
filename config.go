package pdfquiz

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime settings for the CLI and the web server
type Config struct {
	AIProvider    string // gemini|openai
	GeminiAPIKey  string
	OpenAIAPIKey  string
	AIModel       string
	OpenAIBaseURL string

	StoreDriver   string // sqlite|postgres|redis|memory
	StoreDSN      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	HTTPAddr      string
	SessionSecret string
	SessionDir    string
	AdminPassHash string // bcrypt
	CORSOrigins   []string

	LogDir           string
	Verbose          bool
	MaxSourceChars   int
	DefaultQuestions int
}

// ConfigFromEnv reads configuration from the environment with defaults
func ConfigFromEnv() Config {
	return Config{
		AIProvider:    envOr("AI_PROVIDER", "gemini"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		AIModel:       os.Getenv("AI_MODEL"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),

		StoreDriver:   envOr("STORE_DRIVER", "sqlite"),
		StoreDSN:      envOr("STORE_DSN", "./quiz.db"),
		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		HTTPAddr:      envOr("HTTP_ADDR", ":8180"),
		SessionSecret: envOr("SESSION_SECRET", "change-me-session-secret-32bytes"),
		SessionDir:    os.Getenv("SESSION_DIR"),
		AdminPassHash: os.Getenv("ADMIN_PASS_HASH"),
		CORSOrigins:   csvOr("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000"),

		LogDir:           envOr("LOG_DIR", "log"),
		Verbose:          envBool("VERBOSE", false),
		MaxSourceChars:   envInt("MAX_SOURCE_CHARS", DefaultMaxSourceChars),
		DefaultQuestions: envInt("DEFAULT_QUESTIONS", DefaultNumQuestions),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func csvOr(k, def string) []string {
	parts := strings.Split(envOr(k, def), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
