package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// KVTableSchema creates the key-value table used by PostgresKVClient.
const KVTableSchema = `
CREATE TABLE IF NOT EXISTS kv_store (
    key        TEXT PRIMARY KEY,
    value      JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresKVClient PostgreSQL键值实现，一行保存一个键
type PostgresKVClient struct {
	db *sql.DB
}

var _ KVClient = (*PostgresKVClient)(nil)

// OpenPostgresKVClient 创建PostgreSQL键值客户端
func OpenPostgresKVClient(dsn string) (*PostgresKVClient, error) {
	// 尝试多种连接策略来解决Vercel Lambda的IPv6问题
	dsn = strings.TrimSpace(dsn)
	strategies := []string{
		addConnectionParams(dsn, "connect_timeout=10"),
		addConnectionParams(dsn, "sslmode=require&connect_timeout=10"),
		dsn, // 最后尝试原始DSN
	}

	var lastErr error
	for i, strategy := range strategies {
		fmt.Printf("🔄 Trying connection strategy %d...\n", i+1)

		db, err := sql.Open("postgres", strategy)
		if err != nil {
			fmt.Printf("❌ Strategy %d failed to open: %v\n", i+1, err)
			lastErr = err
			continue
		}

		// 设置连接池参数，适合无服务器环境
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = db.PingContext(ctx)
		if err == nil {
			_, err = db.ExecContext(ctx, KVTableSchema)
		}
		cancel()
		if err != nil {
			fmt.Printf("❌ Strategy %d failed: %v\n", i+1, err)
			db.Close()
			lastErr = err
			continue
		}

		fmt.Printf("✅ PostgreSQL connection established successfully with strategy %d\n", i+1)
		return &PostgresKVClient{db: db}, nil
	}

	return nil, fmt.Errorf("failed to connect to PostgreSQL with all strategies: %w: %w", lastErr, ErrStoreUnavailable)
}

// NewPostgresKVClient wraps an already opened database. The kv_store table
// must exist.
func NewPostgresKVClient(db *sql.DB) *PostgresKVClient {
	return &PostgresKVClient{db: db}
}

// addConnectionParams 添加连接参数到DSN
func addConnectionParams(dsn, params string) string {
	if params == "" {
		return dsn
	}

	// URL形式使用查询参数，key=value形式使用空格分隔
	if !strings.Contains(dsn, "://") {
		return dsn + " " + strings.ReplaceAll(params, "&", " ")
	}

	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	return dsn + separator + params
}

// Get 读取键值
func (c *PostgresKVClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := c.db.QueryRowContext(ctx, `SELECT value::text FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w: %w", key, err, ErrStoreUnavailable)
	}
	return []byte(value), true, nil
}

// Set 写入键值（存在则覆盖）
func (c *PostgresKVClient) Set(ctx context.Context, key string, value []byte) error {
	query := `
        INSERT INTO kv_store (key, value, updated_at)
        VALUES ($1, $2::jsonb, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
    `
	if _, err := c.db.ExecContext(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("failed to set %s: %w: %w", key, err, ErrStoreUnavailable)
	}
	return nil
}

// Ping 健康检查
func (c *PostgresKVClient) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", err, ErrStoreUnavailable)
	}
	return nil
}

// Close 关闭连接
func (c *PostgresKVClient) Close() error {
	return c.db.Close()
}
