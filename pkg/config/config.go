package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"streamverse-backend/pkg/database"
)

// Config 应用配置结构
type Config struct {
	// 环境配置
	Environment string
	Port        string

	// 存储配置
	StorageBackend string
	KVRestURL      string
	KVRestToken    string
	KVKey          string
	PostgresDSN    string
	DataFile       string

	// CORS配置
	AllowedOrigins []string

	// 客户端配置
	APIBaseURL     string
	LocalStorePath string
	RequestTimeout time.Duration

	// 调试配置
	Debug bool
}

// LoadConfig 加载配置（支持本地和Vercel环境）
func LoadConfig() *Config {
	// 根据环境加载对应的 .env 文件
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development" // 默认开发环境
	}

	switch env {
	case "production":
		loadEnvFile(".env.production")
	default:
		loadEnvFile(".env.local")
	}

	config := &Config{
		Environment:    getEnvWithDefault("ENVIRONMENT", "development"),
		Port:           getEnvWithDefault("PORT", "3000"),
		StorageBackend: strings.ToLower(getEnvWithDefault("STORAGE_BACKEND", database.BackendAuto)),
		KVKey:          getEnvWithDefault("KV_KEY", database.DefaultKVKey),
		DataFile:       getEnvWithDefault("DATA_FILE", database.DefaultDataFile),
		APIBaseURL:     getEnvWithDefault("API_BASE_URL", "http://localhost:3000"),
		LocalStorePath: getEnvWithDefault("LOCAL_STORE_PATH", defaultLocalStorePath()),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 5*time.Second),
		Debug:          getEnvBool("DEBUG", false),
	}

	// Trim whitespace to avoid trailing spaces/newlines from env sources
	config.KVRestURL = strings.TrimSpace(os.Getenv("KV_REST_API_URL"))
	config.KVRestToken = strings.TrimSpace(os.Getenv("KV_REST_API_TOKEN"))
	config.PostgresDSN = strings.TrimSpace(os.Getenv("POSTGRES_DSN"))

	allowedOrigins := getEnvWithDefault("ALLOWED_ORIGINS", "*")
	if allowedOrigins == "*" {
		config.AllowedOrigins = []string{"*"}
	} else {
		for _, origin := range strings.Split(allowedOrigins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				config.AllowedOrigins = append(config.AllowedOrigins, origin)
			}
		}
	}

	if config.Environment == "production" {
		if config.StorageBackend == database.BackendAuto && config.KVRestURL == "" && config.PostgresDSN == "" {
			fmt.Println("⚠️  WARNING: Production environment using the JSON file store. Please configure KV_REST_API_URL+KV_REST_API_TOKEN or POSTGRES_DSN")
		}
		// 生产环境关闭调试
		config.Debug = false
	}

	return config
}

// Cached config (initialized once per cold start)
var (
	cachedConfig *Config
	configOnce   sync.Once
)

// GetCached returns the process-wide cached Config.
// On serverless (Vercel), it initializes once per cold start and
// reuses it across warm invocations, avoiding per-request parsing.
func GetCached() *Config {
	configOnce.Do(func() {
		cachedConfig = LoadConfig()
	})
	return cachedConfig
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	known := false
	for _, b := range database.Backends() {
		if c.StorageBackend == b {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("STORAGE_BACKEND %q is not supported (want one of %s)",
			c.StorageBackend, strings.Join(database.Backends(), ", "))
	}

	if c.StorageBackend == database.BackendPostgres && c.PostgresDSN == "" {
		return fmt.Errorf("STORAGE_BACKEND=postgres requires POSTGRES_DSN")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	return nil
}

// DatabaseConfig 转换为存储配置
func (c *Config) DatabaseConfig() database.DatabaseConfig {
	return database.DatabaseConfig{
		Backend:     c.StorageBackend,
		KVRestURL:   c.KVRestURL,
		KVRestToken: c.KVRestToken,
		KVKey:       c.KVKey,
		PostgresDSN: c.PostgresDSN,
		DataFile:    c.DataFile,
		Debug:       c.Debug,
	}
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// 辅助函数

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("3s") or whole seconds ("3").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	fmt.Printf("⚠️  Ignoring invalid %s=%q\n", key, value)
	return defaultValue
}

func defaultLocalStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "streamverse", "local.db")
}

// loadEnvFile 加载 .env 文件到环境变量（已存在的变量不会被覆盖）
func loadEnvFile(filename string) {
	if _, err := os.Stat(filename); err != nil {
		return // 文件不存在，静默返回
	}
	if err := godotenv.Load(filename); err != nil {
		fmt.Printf("⚠️  Failed to load %s: %v\n", filename, err)
	}
}
