package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	GDriveFileID      string
	GDriveShareURL    string
	GDriveDownloadURL string
	CachePath         string
	ChunkSize         int
	HTTPTimeout       time.Duration

	ListenAddr       string
	PreviewRows      int
	TopN             int
	ExplorerPageSize int

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int

	ExportDir   string
	SnapshotDir string
	ChromeBin   string

	LogLevel string
	NoColor  bool
}

// MaxTopN caps every top-N table and chart.
const MaxTopN = 10

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		GDriveFileID:      getEnv("GDRIVE_FILE_ID", "1IKme2tIvwZOhFUxwVBEMwItx2-coVNVY"),
		GDriveShareURL:    getEnv("GDRIVE_SHARE_URL", "https://drive.google.com/file/d/1jTZvPE1jhk-pde0Q1ywYY0Detd_IeXGU/view?usp=sharing"),
		GDriveDownloadURL: getEnv("GDRIVE_DOWNLOAD_URL", "https://drive.google.com/uc"),
		CachePath:         getEnv("DATA_CACHE_PATH", "nypd_data.csv"),
		ChunkSize:         getEnvInt("DOWNLOAD_CHUNK_SIZE", 32768),
		HTTPTimeout:       time.Duration(getEnvInt("HTTP_TIMEOUT_SEC", 0)) * time.Second,

		ListenAddr:       getEnv("LISTEN_ADDR", ":8501"),
		PreviewRows:      getEnvInt("PREVIEW_ROWS", 5),
		TopN:             clampTopN(getEnvInt("TOP_N", MaxTopN)),
		ExplorerPageSize: getEnvInt("EXPLORER_PAGE_SIZE", 50),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "nypd"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "nypd123"),
		PostgresDB:       getEnv("POSTGRES_DB", "nypd_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 2),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 500),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		ExportDir:   getEnv("EXPORT_DIR", "./output"),
		SnapshotDir: getEnv("SNAPSHOT_DIR", "./output/snapshots"),
		ChromeBin:   getEnv("CHROME_BIN", ""),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		NoColor:  os.Getenv("NO_COLOR") != "",
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func clampTopN(n int) int {
	if n <= 0 || n > MaxTopN {
		return MaxTopN
	}
	return n
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
