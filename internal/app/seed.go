package app

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/roach88/spearfished/internal/blob"
	"github.com/roach88/spearfished/internal/docstore"
	"github.com/roach88/spearfished/internal/geo"
	"github.com/roach88/spearfished/internal/post"
)

//go:embed seed/placeholder.png
var placeholderImage []byte

var demoPosts = []post.Post{
	{
		ID:           "demo-fishhunter",
		Username:     "FishHunter",
		FishType:     "Mahi Mahi",
		Description:  "Caught this beautiful fish!",
		Location:     geo.Coordinate{Latitude: 25.7617, Longitude: -80.1918},
		LocationName: "Miami Beach",
	},
	{
		ID:           "demo-spearmaster",
		Username:     "SpearMaster",
		FishType:     "Grouper",
		Description:  "Great day out on the water",
		Location:     geo.Coordinate{Latitude: 25.8617, Longitude: -80.1218},
		LocationName: "Key Largo",
	},
}

// demoImageKey holds the one placeholder image every demo post shares.
const demoImageKey = blob.DefaultPrefix + "demo-placeholder.png"

// SeedDemo writes the demo posts. Posts that already exist are skipped.
// Returns the number written.
func (a *App) SeedDemo(ctx context.Context) (int, error) {
	written := 0
	imageURL := ""
	for _, p := range demoPosts {
		if imageURL == "" {
			url, err := a.putDemoImage(ctx)
			if err != nil {
				return written, err
			}
			imageURL = url
		}
		p.ImageURL = imageURL

		if _, err := a.Docs.Write(ctx, p); err != nil {
			var we *docstore.WriteError
			if errors.As(err, &we) && we.Reason == docstore.ReasonDuplicate {
				a.Logger.Debug("demo post exists", "post_id", p.ID)
				continue
			}
			return written, fmt.Errorf("seed post %s: %w", p.ID, err)
		}
		written++
	}

	a.Logger.Info("seeded demo posts", "written", written)
	return written, nil
}

// putDemoImage stores the placeholder under its fixed key. Reseeding
// overwrites the same object.
func (a *App) putDemoImage(ctx context.Context) (string, error) {
	if err := a.Blobs.Put(ctx, demoImageKey, placeholderImage, "image/png"); err != nil {
		return "", fmt.Errorf("seed image: %w", err)
	}
	url, err := a.Blobs.ResolveURL(ctx, demoImageKey)
	if err != nil {
		return "", fmt.Errorf("seed image: %w", err)
	}
	return url, nil
}
