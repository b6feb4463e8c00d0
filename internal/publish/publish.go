package publish

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/roach88/spearfished/internal/blob"
	"github.com/roach88/spearfished/internal/catalog"
	"github.com/roach88/spearfished/internal/docstore"
	"github.com/roach88/spearfished/internal/geo"
	"github.com/roach88/spearfished/internal/geotag"
	"github.com/roach88/spearfished/internal/identity"
	"github.com/roach88/spearfished/internal/ids"
	"github.com/roach88/spearfished/internal/location"
	"github.com/roach88/spearfished/internal/post"
)

// Uploader stores an image and resolves its URL.
type Uploader interface {
	Upload(ctx context.Context, payload []byte, contentType string) (blob.Upload, error)
}

// CurrentUser reports the signed-in identity.
type CurrentUser interface {
	Current() (identity.Identity, bool)
}

// SpeciesLookup resolves free-text fish types.
type SpeciesLookup interface {
	Lookup(ctx context.Context, name string) (catalog.Species, bool, error)
}

// permissionSource is implemented by device sources that know their
// permission state, such as *location.Tracker.
type permissionSource interface {
	Permission() location.Permission
}

// Request is one publish attempt.
type Request struct {
	Image       []byte
	ContentType string
	// Username defaults to the signed-in identity's display label.
	Username     string
	FishType     string
	Description  string
	LocationName string
	// DeviceLocation overrides the device source when set.
	DeviceLocation *geo.Coordinate
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger. Default slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) { p.logger = l }
}

// WithDevice sets the device location source.
func WithDevice(src location.Source) Option {
	return func(p *Publisher) { p.device = src }
}

// WithIdentity sets the source of the default username.
func WithIdentity(u CurrentUser) Option {
	return func(p *Publisher) { p.user = u }
}

// WithCatalog enables fish type canonicalization.
func WithCatalog(c SpeciesLookup) Option {
	return func(p *Publisher) { p.species = c }
}

// WithIDs sets the post id generator. Default UUIDv7.
func WithIDs(g ids.Generator) Option {
	return func(p *Publisher) { p.ids = g }
}

// Publisher runs publish requests. It holds no per-request state; calls
// may run concurrently.
type Publisher struct {
	uploader Uploader
	writer   docstore.Writer
	device   location.Source
	user     CurrentUser
	species  SpeciesLookup
	ids      ids.Generator
	logger   *slog.Logger
}

// New creates a Publisher.
func New(uploader Uploader, writer docstore.Writer, opts ...Option) *Publisher {
	p := &Publisher{
		uploader: uploader,
		writer:   writer,
		ids:      ids.UUIDv7Generator{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish validates, locates, uploads and writes one post.
func (p *Publisher) Publish(ctx context.Context, req Request) (post.Post, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" && p.user != nil {
		if id, ok := p.user.Current(); ok {
			username = id.DisplayLabel()
		}
	}
	fishType := strings.TrimSpace(req.FishType)

	if err := validate(username, fishType, req.Image); err != nil {
		return post.Post{}, &PublishError{Step: StepValidate, Err: err}
	}

	coord, source, err := p.locate(req)
	if err != nil {
		return post.Post{}, &PublishError{Step: StepLocate, Err: err}
	}

	fishType = p.canonicalFishType(ctx, fishType)

	up, err := p.uploader.Upload(ctx, req.Image, req.ContentType)
	if err != nil {
		perr := &PublishError{Step: StepUpload, Err: err}
		var ue *blob.StorageURLResolutionError
		if errors.As(err, &ue) {
			perr.OrphanedBlob = ue.Key
		}
		return post.Post{}, perr
	}

	pst := post.Post{
		ID:           p.ids.Generate(),
		Username:     username,
		ImageURL:     up.URL,
		FishType:     fishType,
		Description:  req.Description,
		Location:     coord,
		LocationName: strings.TrimSpace(req.LocationName),
	}

	receipt, err := p.writer.Write(ctx, pst)
	if err != nil {
		p.logger.Warn("post write failed after upload",
			"post_id", pst.ID,
			"blob", up.Key,
			"error", err)
		return post.Post{}, &PublishError{Step: StepWrite, Err: err, OrphanedBlob: up.Key}
	}

	if receipt.ID != "" {
		pst.ID = receipt.ID
	}
	pst.Timestamp = receipt.Timestamp

	p.logger.Info("post published",
		"post_id", pst.ID,
		"username", pst.Username,
		"fish_type", pst.FishType,
		"location", pst.Location.String(),
		"location_source", source)
	return pst, nil
}

func validate(username, fishType string, image []byte) error {
	switch {
	case username == "":
		return &ValidationError{Field: FieldUsername}
	case fishType == "":
		return &ValidationError{Field: FieldFishType}
	case len(image) == 0:
		return &ValidationError{Field: FieldImage}
	}
	return nil
}

// locate picks the image geotag, then the device location.
func (p *Publisher) locate(req Request) (geo.Coordinate, string, error) {
	if c, ok := geotag.Extract(req.Image); ok && geo.IsValid(c) {
		return c, "image", nil
	}

	if req.DeviceLocation != nil && geo.IsValid(*req.DeviceLocation) {
		return *req.DeviceLocation, "device", nil
	}

	if p.device != nil {
		if c, ok := p.device.Latest(); ok && geo.IsValid(c) {
			return c, "device", nil
		}
	}

	denied := false
	if ps, ok := p.device.(permissionSource); ok {
		perm := ps.Permission()
		denied = perm == location.PermissionDenied || perm == location.PermissionRestricted
	}
	return geo.Coordinate{}, "", &LocationUnresolvedError{DeviceDenied: denied}
}

// canonicalFishType normalizes the spelling of fishType when it names a
// catalog species exactly. Anything else, including partial matches and
// catalog failures, is stored as typed.
func (p *Publisher) canonicalFishType(ctx context.Context, fishType string) string {
	if p.species == nil {
		return fishType
	}
	sp, ok, err := p.species.Lookup(ctx, fishType)
	if err != nil {
		p.logger.Warn("species lookup failed", "fish_type", fishType, "error", err)
		return fishType
	}
	if !ok || !catalog.SameName(sp.Name, fishType) {
		return fishType
	}
	return sp.Name
}
