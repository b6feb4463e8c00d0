package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseConfig selects the project and credentials.
type FirebaseConfig struct {
	// CredentialsPath is a service account JSON file. Empty uses
	// application default credentials.
	CredentialsPath string
	ProjectID       string
	StorageBucket   string
}

// Firebase holds the clients the backend uses.
type Firebase struct {
	Firestore  *firestore.Client
	Bucket     *storage.BucketHandle
	BucketName string
	Auth       *auth.Client
}

// ConnectFirebase initializes the app and its Firestore, Storage and Auth
// clients.
func ConnectFirebase(ctx context.Context, cfg FirebaseConfig, logger *slog.Logger) (*Firebase, error) {
	if cfg.StorageBucket == "" {
		return nil, errors.New("firebase: storage bucket is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	logger.Info("initializing firebase",
		"project", cfg.ProjectID,
		"bucket", cfg.StorageBucket,
		"credentials", cfg.CredentialsPath)

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}

	st, err := app.Storage(ctx)
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("storage client: %w", err)
	}
	bucket, err := st.DefaultBucket()
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("default bucket: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("auth client: %w", err)
	}

	return &Firebase{
		Firestore:  fs,
		Bucket:     bucket,
		BucketName: cfg.StorageBucket,
		Auth:       authClient,
	}, nil
}

// Close releases the Firestore connection.
func (f *Firebase) Close() error {
	if f == nil || f.Firestore == nil {
		return nil
	}
	return f.Firestore.Close()
}
