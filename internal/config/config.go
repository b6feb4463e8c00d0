package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Backend names a storage backend.
const (
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
)

// Species sources.
const (
	SpeciesStatic = "static"
	SpeciesRemote = "remote"
	SpeciesFile   = "file"
)

// Config is the complete runtime configuration.
type Config struct {
	Backend   string `yaml:"backend"`
	Listen    string `yaml:"listen"`
	PublicURL string `yaml:"public_url"`
	LogLevel  string `yaml:"log_level"`
	SeedDemo  bool   `yaml:"seed_demo"`

	SQLite   SQLite   `yaml:"sqlite"`
	Postgres Postgres `yaml:"postgres"`
	Firebase Firebase `yaml:"firebase"`
	Auth     Auth     `yaml:"auth"`
	Species  Species  `yaml:"species"`
	Feed     Feed     `yaml:"feed"`
}

// SQLite holds the local database settings. The local database also keeps
// user accounts for every backend.
type SQLite struct {
	Path string `yaml:"path"`
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

type Firebase struct {
	CredentialsPath string `yaml:"credentials_path"`
	ProjectID       string `yaml:"project_id"`
	StorageBucket   string `yaml:"storage_bucket"`
	Collection      string `yaml:"collection"`
}

type Auth struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type Species struct {
	Source    string        `yaml:"source"`
	URL       string        `yaml:"url"`
	File      string        `yaml:"file"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
	RedisAddr string        `yaml:"redis_addr"`
}

type Feed struct {
	Reconnect       bool          `yaml:"reconnect"`
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
}

// Default returns the built-in configuration: a local SQLite backend
// serving on :8080 with the static species list.
func Default() Config {
	return Config{
		Backend:   BackendSQLite,
		Listen:    ":8080",
		PublicURL: "http://localhost:8080",
		LogLevel:  "info",
		SQLite:    SQLite{Path: "spearfished.db"},
		Firebase:  Firebase{Collection: "posts"},
		Auth:      Auth{TokenTTL: 7 * 24 * time.Hour},
		Species:   Species{Source: SpeciesStatic, CacheTTL: time.Hour},
		Feed: Feed{
			Reconnect:       true,
			InitialInterval: time.Second,
			MaxInterval:     time.Minute,
		},
	}
}

// Source says where Load reads from. Empty fields are skipped, except
// LookupEnv which defaults to os.LookupEnv.
type Source struct {
	// Path is the YAML file.
	Path string
	// EnvFile is a dotenv file. A missing file is not an error.
	EnvFile   string
	LookupEnv func(string) (string, bool)
}

// Load merges defaults, the YAML file and the environment, then validates.
func Load(src Source) (*Config, error) {
	cfg := Default()

	if src.Path != "" {
		if err := decodeFile(src.Path, &cfg); err != nil {
			return nil, err
		}
	}

	lookup := src.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if src.EnvFile != "" {
		dotenv, err := godotenv.Read(src.EnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file: %w", err)
		}
		if len(dotenv) > 0 {
			lookup = layered(lookup, dotenv)
		}
	}
	applyEnv(&cfg, lookup)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// layered consults primary first, then the dotenv map.
func layered(primary func(string) (string, bool), fallback map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := primary(key); ok {
			return v, true
		}
		v, ok := fallback[key]
		return v, ok
	}
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set("SPEARFISHED_BACKEND", &cfg.Backend)
	set("SPEARFISHED_LISTEN", &cfg.Listen)
	set("SPEARFISHED_PUBLIC_URL", &cfg.PublicURL)
	set("SQLITE_PATH", &cfg.SQLite.Path)
	set("DATABASE_URL", &cfg.Postgres.DSN)
	set("FIREBASE_CREDENTIALS_PATH", &cfg.Firebase.CredentialsPath)
	set("FIREBASE_PROJECT_ID", &cfg.Firebase.ProjectID)
	set("FIREBASE_STORAGE_BUCKET", &cfg.Firebase.StorageBucket)
	set("JWT_SECRET", &cfg.Auth.JWTSecret)
	set("REDIS_ADDR", &cfg.Species.RedisAddr)
	set("LOG_LEVEL", &cfg.LogLevel)

	if v, ok := lookup("SPECIES_SOURCE"); ok && v != "" {
		switch v {
		case SpeciesStatic, SpeciesRemote:
			cfg.Species.Source = v
		default:
			cfg.Species.Source = SpeciesFile
			cfg.Species.File = v
		}
	}

	cfg.Backend = strings.ToLower(cfg.Backend)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
}

// Validate checks the configuration against the embedded schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	file := ctx.CompileString(schemaSource)
	if err := file.Err(); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}
	// #Config stays open until unified with a value, so it is not checked
	// on its own.
	schema := file.LookupPath(cue.ParsePath("#Config"))

	value := ctx.Encode(c)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// ValidationError reports a configuration that fails the schema.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Level maps LogLevel to a slog level.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
