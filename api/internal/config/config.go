package config

import (
	"net"
	"net/url"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port       string
	WebhookURL string

	TelegramBotToken string

	DefaultEngine string
	GeminiAPIKey  string
	GeminiModel   string
	GenAIAPIKey   string
	GenAIModel    string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	OCREngine    string
	OCRLangs     []string
	YCOAuthToken string
	YCFolderID   string

	// "last_completed" | "latest_submitted"
	CommitPolicy    string
	GenerateTimeout time.Duration
	CacheMaxAge     time.Duration

	DatabaseURL string

	LogLevel  string
	LogFormat string
}

func MustEnv(k string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		Logger.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// getDuration понимает "90s", "2m" и т.п.; мусор -> дефолт.
func getDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		Logger.Warnf("config: bad %s=%q, using %v", k, v, def)
		return def
	}
	return d
}

func getList(k string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func Load() *Config {
	return &Config{
		Port:       getEnv("PORT", "8080"),
		WebhookURL: getEnv("WEBHOOK_URL", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),

		DefaultEngine: strings.ToLower(getEnv("DEFAULT_ENGINE", "gemini")),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GenAIAPIKey:   getEnv("GENAI_API_KEY", getEnv("GEMINI_API_KEY", "")),
		GenAIModel:    getEnv("GENAI_MODEL", "gemini-2.0-flash"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		OCREngine:    strings.ToLower(getEnv("OCR_ENGINE", "gemini")),
		OCRLangs:     getList("OCR_LANGS", []string{"en"}),
		YCOAuthToken: getEnv("YC_OAUTH_TOKEN", ""),
		YCFolderID:   getEnv("YC_FOLDER_ID", ""),

		CommitPolicy:    strings.ToLower(getEnv("COMMIT_POLICY", "last_completed")),
		GenerateTimeout: getDuration("GENERATE_TIMEOUT", 0),
		CacheMaxAge:     getDuration("CACHE_MAX_AGE", 24*time.Hour),

		DatabaseURL: resolveDSN(),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// resolveDSN: DATABASE_URL, иначе собираем из POSTGRES_*/PG*.
// Пустая строка: кэш генераций выключен.
func resolveDSN() string {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		return v
	}
	host := strings.TrimSpace(os.Getenv("PGHOST"))
	if host == "" {
		return ""
	}
	user := getEnv("POSTGRES_USER", "studybot")
	pass := os.Getenv("POSTGRES_PASSWORD")
	port := getEnv("PGPORT", "5432")
	db := getEnv("POSTGRES_DB", "studybot")

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, pass),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + db,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SafeDSNSummary: DSN без пароля для логов.
func SafeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	user := u.User.Username()
	host := u.Host
	port := ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return "host=" + host + " db=" + db + " user=" + user
	}
	return "host=" + host + " port=" + port + " db=" + db + " user=" + user
}
