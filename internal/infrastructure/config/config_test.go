package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		t.Setenv("RB_JWT_SECRET", testSecret)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "backoffice", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "backoffice", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "redis", cfg.Idempotency.Backend)
		assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
		assert.Equal(t, 10*time.Minute, cfg.ReportCache.TTL)
		assert.Equal(t, "default", cfg.Jobs.Queue)
		assert.False(t, cfg.Storage.Enabled())
	})

	t.Run("loads values from environment variables with RB prefix", func(t *testing.T) {
		t.Setenv("RB_JWT_SECRET", testSecret)
		t.Setenv("RB_APP_NAME", "test-app")
		t.Setenv("RB_APP_ENV", "testing")
		t.Setenv("RB_APP_PORT", "9000")
		t.Setenv("RB_DATABASE_HOST", "testdb.local")
		t.Setenv("RB_DATABASE_PORT", "5433")
		t.Setenv("RB_DATABASE_USER", "testuser")
		t.Setenv("RB_DATABASE_PASSWORD", "testpass")
		t.Setenv("RB_DATABASE_DBNAME", "testdb")
		t.Setenv("RB_DATABASE_SSLMODE", "require")
		t.Setenv("RB_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("RB_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("RB_IDEMPOTENCY_BACKEND", "memory")
		t.Setenv("RB_JOBS_CONCURRENCY", "12")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "memory", cfg.Idempotency.Backend)
		assert.Equal(t, 12, cfg.Jobs.Concurrency)
	})

	t.Run("production requires a long jwt secret", func(t *testing.T) {
		t.Setenv("RB_APP_ENV", "production")
		t.Setenv("RB_JWT_SECRET", "short")
		t.Setenv("RB_DATABASE_PASSWORD", "pw")
		t.Setenv("RB_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("rejects an unknown idempotency backend", func(t *testing.T) {
		t.Setenv("RB_JWT_SECRET", testSecret)
		t.Setenv("RB_IDEMPOTENCY_BACKEND", "etcd")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "idempotency.backend")
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{JWT: JWTConfig{Secret: testSecret}}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("idle conns cannot exceed open conns", func(t *testing.T) {
		cfg := base()
		cfg.Database.MaxOpenConns = 5
		cfg.Database.MaxIdleConns = 10
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("storage requires credentials when a bucket is set", func(t *testing.T) {
		cfg := base()
		cfg.Storage.Bucket = "exports"
		require.Error(t, cfg.validate())

		cfg.Storage.AccessKey = "ak"
		cfg.Storage.SecretKey = "sk"
		require.NoError(t, cfg.validate())
		assert.True(t, cfg.Storage.Enabled())
	})

	t.Run("sampling ratio out of range", func(t *testing.T) {
		cfg := base()
		cfg.Telemetry.SamplingRatio = 1.5
		require.Error(t, cfg.validate())
	})

	t.Run("production", func(t *testing.T) {
		prod := func() *Config {
			cfg := base()
			cfg.App.Env = "production"
			cfg.Database.Password = "secret"
			cfg.Database.SSLMode = "require"
			return cfg
		}

		require.NoError(t, prod().validate())

		cfg := prod()
		cfg.JWT.Secret = "short"
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")

		cfg = prod()
		cfg.Database.Password = ""
		require.Error(t, cfg.validate())

		cfg = prod()
		cfg.Database.SSLMode = "disable"
		require.Error(t, cfg.validate())

		cfg = prod()
		cfg.HTTP.CORSAllowOrigins = []string{"https://shop.example.com", "*"}
		require.Error(t, cfg.validate())

		cfg = prod()
		cfg.Telemetry.DBLogFullSQL = true
		require.Error(t, cfg.validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		config   DatabaseConfig
		contains []string
	}{
		{
			name: "basic connection string",
			config: DatabaseConfig{
				Host: "localhost", Port: 5432, User: "postgres", Password: "pw", DBName: "backoffice", SSLMode: "disable",
			},
			contains: []string{"postgres://postgres:pw@localhost:5432/backoffice", "sslmode=disable"},
		},
		{
			name: "password with special characters is escaped",
			config: DatabaseConfig{
				Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "shop", SSLMode: "require",
			},
			contains: []string{"p%40ss%3Aw%2Frd@db:5432/shop", "sslmode=require"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := tt.config.DSN()
			for _, part := range tt.contains {
				assert.True(t, strings.Contains(dsn, part), "dsn %q should contain %q", dsn, part)
			}
		})
	}
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
