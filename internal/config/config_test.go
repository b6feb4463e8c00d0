package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load(Source{LookupEnv: envMap(nil)})
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeTemp(t, "spearfished.yaml", `
backend: postgres
listen: ":9000"
public_url: https://catch.example.com
log_level: debug
postgres:
  dsn: postgres://localhost/spearfished
auth:
  jwt_secret: s3cret
  token_ttl: 12h
species:
  source: remote
  cache_ttl: 30m
feed:
  reconnect: false
  initial_interval: 2s
  max_interval: 30s
`)

	cfg, err := Load(Source{Path: path, LookupEnv: envMap(nil)})
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "postgres://localhost/spearfished", cfg.Postgres.DSN)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, SpeciesRemote, cfg.Species.Source)
	assert.Equal(t, 30*time.Minute, cfg.Species.CacheTTL)
	assert.False(t, cfg.Feed.Reconnect)
	assert.Equal(t, 2*time.Second, cfg.Feed.InitialInterval)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, "spearfished.db", cfg.SQLite.Path, "unset keys keep defaults")
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := writeTemp(t, "spearfished.yaml", "backnd: sqlite\n")

	_, err := Load(Source{Path: path, LookupEnv: envMap(nil)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backnd")
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeTemp(t, "spearfished.yaml", "\n")

	cfg, err := Load(Source{Path: path, LookupEnv: envMap(nil)})
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Backend)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(Source{Path: filepath.Join(t.TempDir(), "nope.yaml"), LookupEnv: envMap(nil)})
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeTemp(t, "spearfished.yaml", "backend: sqlite\nlog_level: info\n")

	cfg, err := Load(Source{Path: path, LookupEnv: envMap(map[string]string{
		"SPEARFISHED_BACKEND":       "FIRESTORE",
		"FIREBASE_CREDENTIALS_PATH": "/secrets/sa.json",
		"FIREBASE_PROJECT_ID":       "spearfished-prod",
		"FIREBASE_STORAGE_BUCKET":   "spearfished-prod.appspot.com",
		"JWT_SECRET":                "from-env",
		"REDIS_ADDR":                "localhost:6379",
		"LOG_LEVEL":                 "WARN",
		"SQLITE_PATH":               "",
	})})
	require.NoError(t, err)

	assert.Equal(t, BackendFirestore, cfg.Backend)
	assert.Equal(t, "/secrets/sa.json", cfg.Firebase.CredentialsPath)
	assert.Equal(t, "spearfished-prod", cfg.Firebase.ProjectID)
	assert.Equal(t, "spearfished-prod.appspot.com", cfg.Firebase.StorageBucket)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "localhost:6379", cfg.Species.RedisAddr)
	assert.Equal(t, slog.LevelWarn, cfg.Level())
	assert.Equal(t, "spearfished.db", cfg.SQLite.Path, "empty variables are ignored")
}

func TestLoad_SpeciesSourceEnv(t *testing.T) {
	tests := []struct {
		value  string
		source string
		file   string
	}{
		{"static", SpeciesStatic, ""},
		{"remote", SpeciesRemote, ""},
		{"/data/species.json", SpeciesFile, "/data/species.json"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cfg, err := Load(Source{LookupEnv: envMap(map[string]string{"SPECIES_SOURCE": tt.value})})
			require.NoError(t, err)
			assert.Equal(t, tt.source, cfg.Species.Source)
			assert.Equal(t, tt.file, cfg.Species.File)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := writeTemp(t, ".env", "JWT_SECRET=from-dotenv\nDATABASE_URL=postgres://dotenv/db\n")

	cfg, err := Load(Source{EnvFile: envFile, LookupEnv: envMap(map[string]string{
		"JWT_SECRET": "from-process",
	})})
	require.NoError(t, err)
	assert.Equal(t, "from-process", cfg.Auth.JWTSecret, "process environment wins")
	assert.Equal(t, "postgres://dotenv/db", cfg.Postgres.DSN)

	_, err = Load(Source{EnvFile: filepath.Join(t.TempDir(), ".env"), LookupEnv: envMap(nil)})
	assert.NoError(t, err, "missing env file is ignored")
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "mysql" }},
		{"postgres without dsn", func(c *Config) { c.Backend = BackendPostgres }},
		{"firestore without project", func(c *Config) {
			c.Backend = BackendFirestore
			c.Firebase.StorageBucket = "b"
		}},
		{"firestore without bucket", func(c *Config) {
			c.Backend = BackendFirestore
			c.Firebase.ProjectID = "p"
		}},
		{"empty sqlite path", func(c *Config) { c.SQLite.Path = "" }},
		{"bad public url", func(c *Config) { c.PublicURL = "localhost:8080" }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"file species without path", func(c *Config) { c.Species.Source = SpeciesFile }},
		{"zero token ttl", func(c *Config) { c.Auth.TokenTTL = 0 }},
		{"negative cache ttl", func(c *Config) { c.Species.CacheTTL = -time.Second }},
		{"empty collection", func(c *Config) { c.Firebase.Collection = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(&cfg)
			err := cfg.Validate()
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestValidate_AcceptsEachBackend(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"sqlite", func(c *Config) {}},
		{"postgres", func(c *Config) {
			c.Backend = BackendPostgres
			c.Postgres.DSN = "postgres://localhost/spearfished"
		}},
		{"firestore", func(c *Config) {
			c.Backend = BackendFirestore
			c.Firebase.ProjectID = "p"
			c.Firebase.StorageBucket = "b"
		}},
		{"file species", func(c *Config) {
			c.Species.Source = SpeciesFile
			c.Species.File = "species.json"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(&cfg)
			assert.NoError(t, cfg.Validate())
		})
	}
}
