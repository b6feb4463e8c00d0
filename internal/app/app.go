package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/spearfished/internal/blob"
	"github.com/roach88/spearfished/internal/catalog"
	"github.com/roach88/spearfished/internal/config"
	"github.com/roach88/spearfished/internal/docstore"
	"github.com/roach88/spearfished/internal/feed"
	"github.com/roach88/spearfished/internal/identity"
	"github.com/roach88/spearfished/internal/location"
	"github.com/roach88/spearfished/internal/platform"
	"github.com/roach88/spearfished/internal/publish"
	"github.com/roach88/spearfished/internal/store"
)

// BlobReader serves stored images back over HTTP.
type BlobReader interface {
	Get(ctx context.Context, key string) (store.Blob, error)
}

// App is a wired set of components.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Store    *store.Store
	Docs     docstore.Store
	Blobs    blob.Store
	Uploader *blob.Uploader
	// BlobReader is set when images live in the local database.
	BlobReader BlobReader

	Accounts *identity.Local
	Verifier identity.Verifier
	Species  *catalog.Catalog
	Device   *location.Tracker
	Publish  *publish.Publisher

	closers []func() error
}

// New builds an App. Close releases everything it opened.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger, Device: location.NewTracker()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	logger.Debug("opening local database", "path", cfg.SQLite.Path)
	a.Store, err = store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	a.closers = append(a.closers, a.Store.Close)

	if err := a.wireBackend(ctx); err != nil {
		return nil, err
	}
	a.Uploader = blob.NewUploader(a.Blobs)

	if err := a.wireIdentity(); err != nil {
		return nil, err
	}
	if err := a.wireSpecies(); err != nil {
		return nil, err
	}

	a.Publish = publish.New(a.Uploader, a.Docs,
		publish.WithLogger(logger.With("component", "publish")),
		publish.WithDevice(a.Device),
		publish.WithIdentity(a.Accounts),
		publish.WithCatalog(a.Species))

	return a, nil
}

func (a *App) wireBackend(ctx context.Context) error {
	cfg := a.Config
	localBlobs := blob.NewSQLiteStore(a.Store, strings.TrimRight(cfg.PublicURL, "/")+"/blobs")

	switch cfg.Backend {
	case config.BackendSQLite:
		a.Docs = docstore.NewSQLite(a.Store)
		a.Blobs = localBlobs
		a.BlobReader = localBlobs

	case config.BackendPostgres:
		pg, err := docstore.OpenPostgres(ctx, cfg.Postgres.DSN, a.Logger.With("component", "postgres"))
		if err != nil {
			return err
		}
		a.closers = append(a.closers, pg.Close)
		a.Docs = pg
		a.Blobs = localBlobs
		a.BlobReader = localBlobs

	case config.BackendFirestore:
		fb, err := platform.ConnectFirebase(ctx, platform.FirebaseConfig{
			CredentialsPath: cfg.Firebase.CredentialsPath,
			ProjectID:       cfg.Firebase.ProjectID,
			StorageBucket:   cfg.Firebase.StorageBucket,
		}, a.Logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, fb.Close)
		a.Docs = docstore.NewFirestore(fb.Firestore, cfg.Firebase.Collection)
		a.Blobs = blob.NewGCSStore(fb.Bucket, fb.BucketName)
		a.Verifier = identity.NewFirebase(fb.Auth)

	default:
		return fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	a.Logger.Info("backend ready", "backend", cfg.Backend)
	return nil
}

func (a *App) wireIdentity() error {
	secret := []byte(a.Config.Auth.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("generate token secret: %w", err)
		}
		a.Logger.Warn("JWT_SECRET not set; session tokens will not survive a restart")
	}

	accounts, err := identity.NewLocal(a.Store, secret, identity.WithTokenTTL(a.Config.Auth.TokenTTL))
	if err != nil {
		return err
	}
	a.Accounts = accounts
	if a.Verifier == nil {
		a.Verifier = accounts
	}
	return nil
}

func (a *App) wireSpecies() error {
	cfg := a.Config.Species

	var src catalog.Source
	switch cfg.Source {
	case config.SpeciesStatic:
		a.Species = catalog.New(catalog.StaticSource{})
		return nil
	case config.SpeciesRemote:
		src = catalog.NewRemote(cfg.URL)
	case config.SpeciesFile:
		fs, err := catalog.LoadFile(cfg.File)
		if err != nil {
			return err
		}
		src = fs
	default:
		return fmt.Errorf("unknown species source %q", cfg.Source)
	}

	if cfg.CacheTTL > 0 {
		var cache catalog.Cache = catalog.NewMemoryCache(nil)
		if cfg.RedisAddr != "" {
			rc, err := catalog.DialRedis(cfg.RedisAddr)
			if err != nil {
				return err
			}
			a.closers = append(a.closers, rc.Close)
			cache = rc
		}
		src = catalog.NewCached(src, cache, cfg.CacheTTL, a.Logger.With("component", "species"))
	}

	a.Species = catalog.New(src)
	return nil
}

// NewFeed creates a feed synchronizer over the post store with the
// configured reconnect policy. The caller starts and closes it.
func (a *App) NewFeed(opts ...feed.Option) *feed.Synchronizer {
	base := []feed.Option{feed.WithLogger(a.Logger.With("component", "feed"))}
	if a.Config.Feed.Reconnect {
		policy := feed.DefaultReconnectPolicy
		policy.InitialInterval = a.Config.Feed.InitialInterval
		policy.MaxInterval = a.Config.Feed.MaxInterval
		base = append(base, feed.WithReconnect(&policy))
	} else {
		base = append(base, feed.WithReconnect(nil))
	}
	return feed.New(a.Docs, append(base, opts...)...)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
