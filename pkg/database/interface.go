package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"streamverse-backend/pkg/models"
)

// SiteStore 站点存储接口，所有后端统一实现
//
// Every mutation reads the whole collection, changes it in memory and writes
// the whole collection back. Stores do no locking: concurrent writers can
// lose updates.
type SiteStore interface {
	// Name identifies the backend in logs and health output.
	Name() string

	// Initialize seeds the medium if it holds nothing yet. It is safe to call
	// more than once.
	Initialize(ctx context.Context) error

	ListSites(ctx context.Context) ([]models.Site, error)
	AddSite(ctx context.Context, in models.SiteInput) (*models.Site, error)
	// UpdateSite returns ErrSiteNotFound when id is not in the collection.
	UpdateSite(ctx context.Context, id string, in models.SiteInput) (*models.Site, error)
	// DeleteSite reports false when id is not in the collection.
	DeleteSite(ctx context.Context, id string) (bool, error)

	// 健康检查
	HealthCheck(ctx context.Context) error

	// 关闭连接
	Close() error
}

// 后端类型
const (
	BackendAuto     = "auto"
	BackendKV       = "kv"
	BackendPostgres = "postgres"
	BackendFile     = "file"
	BackendMemory   = "memory"
)

// Backends lists the accepted values of DatabaseConfig.Backend.
func Backends() []string {
	return []string{BackendAuto, BackendKV, BackendPostgres, BackendFile, BackendMemory}
}

// DefaultKVKey is the key that holds the whole collection in KV stores.
const DefaultKVKey = "streamverse:sites"

// DefaultDataFile is where the file backend keeps its JSON document.
var DefaultDataFile = filepath.Join("data", "sites.json")

// DatabaseConfig 存储配置
type DatabaseConfig struct {
	Backend     string
	KVRestURL   string
	KVRestToken string
	KVKey       string
	PostgresDSN string
	DataFile    string
	Debug       bool
}

func (c DatabaseConfig) hasKVRest() bool {
	return c.KVRestURL != "" && c.KVRestToken != ""
}

// NewDatabase 根据环境与配置选择存储实现
//
// auto: KV REST when configured, then Postgres, then the JSON file. An
// explicit "kv" without configuration yields an unavailable store instead of
// failing, so requests surface 500s rather than crashing the function.
func NewDatabase(config DatabaseConfig, opts ...Option) (SiteStore, error) {
	serverless := IsVercelEnvironment()
	if serverless {
		fmt.Printf("🧭 Detected serverless environment\n")
	}

	backend := strings.ToLower(strings.TrimSpace(config.Backend))
	if backend == "" {
		backend = BackendAuto
	}

	if backend == BackendAuto {
		switch {
		case config.hasKVRest():
			backend = BackendKV
		case config.PostgresDSN != "":
			backend = BackendPostgres
		default:
			backend = BackendFile
		}
	}

	key := config.KVKey
	if key == "" {
		key = DefaultKVKey
	}

	switch backend {
	case BackendKV:
		if !config.hasKVRest() {
			fmt.Printf("⚠️  KV storage is not available - missing KV_REST_API_URL or KV_REST_API_TOKEN\n")
			return NewKVDatabase(nil, key, opts...), nil
		}
		fmt.Printf("🚀  Using KV REST storage\n")
		return NewKVDatabase(NewRESTKVClient(config.KVRestURL, config.KVRestToken), key, opts...), nil

	case BackendPostgres:
		if config.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend requires POSTGRES_DSN")
		}
		fmt.Printf("🗄️  Using PostgreSQL key-value storage\n")
		client, err := OpenPostgresKVClient(config.PostgresDSN)
		if err != nil {
			fmt.Printf("❌ PostgreSQL unavailable: %v\n", err)
			return NewKVDatabase(nil, key, opts...), nil
		}
		return NewKVDatabase(client, key, opts...), nil

	case BackendFile:
		path := config.DataFile
		if path == "" {
			path = DefaultDataFile
		}
		if serverless && !filepath.IsAbs(path) {
			// 无服务器环境只有 /tmp 可写
			path = filepath.Join(os.TempDir(), "streamverse-data", filepath.Base(path))
		}
		fmt.Printf("📁  Using JSON file storage at %s\n", path)
		return NewFileDatabase(path, opts...), nil

	case BackendMemory:
		fmt.Printf("🧪  Using in-memory storage\n")
		return NewKVDatabase(NewMemoryKVClient(), key, opts...), nil
	}

	return nil, fmt.Errorf("unknown storage backend %q (want one of %s)", config.Backend, strings.Join(Backends(), ", "))
}

// IsVercelEnvironment 检查是否在Vercel/Lambda环境中
func IsVercelEnvironment() bool {
	vercelEnv := os.Getenv("VERCEL_ENV")
	vercelURL := os.Getenv("VERCEL_URL")
	awsLambda := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
	return vercelEnv != "" || vercelURL != "" || awsLambda != ""
}
