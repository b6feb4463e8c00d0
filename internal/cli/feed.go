package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/roach88/spearfished/internal/feed"
	"github.com/roach88/spearfished/internal/geo"
	"github.com/roach88/spearfished/internal/post"
	"github.com/roach88/spearfished/internal/watch"
)

// FeedOptions holds flags for the feed command.
type FeedOptions struct {
	*RootOptions
	Watch   bool
	Map     bool
	Seed    bool
	Timeout time.Duration
}

// NewFeedCommand creates the feed command.
func NewFeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the catch feed",
		Long: `Subscribe to the post feed and print it newest first.

With --watch the command keeps printing each new snapshot until interrupted.
With --map it prints map pins instead, skipping posts without a usable
location.

Example:
  spearfished feed
  spearfished feed --watch --seed
  spearfished feed --map --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeed(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "keep printing updates")
	cmd.Flags().BoolVar(&opts.Map, "map", false, "print map pins instead of posts")
	cmd.Flags().BoolVar(&opts.Seed, "seed", false, "insert the demo posts first")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "how long to wait for the first snapshot")

	return cmd
}

func runFeed(cmd *cobra.Command, opts *FeedOptions) error {
	formatter := opts.formatter(cmd)

	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a)

	ctx, stop := signalContext(cmd, a.Logger)
	defer stop()

	if opts.Seed {
		n, err := a.SeedDemo(ctx)
		if err != nil {
			return formatter.Fail("failed to seed demo posts", err)
		}
		formatter.VerboseLog("Seeded %d demo post(s)", n)
	}

	syncer := a.NewFeed()
	defer syncer.Close()

	latest := watch.New(syncer.Current())
	cancelObserve := syncer.Observe(latest.Set)
	defer cancelObserve()

	if err := syncer.Start(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to start feed", err)
	}

	first, err := waitSettled(ctx, latest, opts.Timeout)
	if err != nil {
		return formatter.Fail("feed did not settle", err)
	}
	if err := printSnapshot(formatter, opts.Map, first); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}

	last := first.Version
	for snap := range latest.Subscribe(ctx) {
		if snap.Version <= last || !settled(snap.State) {
			continue
		}
		last = snap.Version
		if err := printSnapshot(formatter, opts.Map, snap); err != nil {
			return err
		}
	}
	return nil
}

func settled(s feed.State) bool {
	return s == feed.StateLive || s == feed.StateLiveWithError
}

// waitSettled returns the first live (or live with error) snapshot.
func waitSettled(ctx context.Context, v *watch.Value[feed.Snapshot], timeout time.Duration) (feed.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for snap := range v.Subscribe(ctx) {
		if settled(snap.State) {
			return snap, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return feed.Snapshot{}, fmt.Errorf("waiting for feed: %w", err)
	}
	return feed.Snapshot{}, fmt.Errorf("waiting for feed: subscription ended")
}

type feedView struct {
	Version uint64      `json:"version"`
	State   string      `json:"state"`
	Error   string      `json:"error,omitempty"`
	Dropped int         `json:"dropped,omitempty"`
	Posts   []post.Post `json:"posts"`
}

type mapView struct {
	Center geo.Coordinate `json:"center"`
	Pins   []pinView      `json:"pins"`
}

type pinView struct {
	ID       string         `json:"id"`
	FishType string         `json:"fishType"`
	Location geo.Coordinate `json:"location"`
	Name     string         `json:"locationName,omitempty"`
}

func newFeedView(snap feed.Snapshot) feedView {
	v := feedView{
		Version: snap.Version,
		State:   snap.State.String(),
		Dropped: snap.Dropped,
		Posts:   snap.Posts,
	}
	if snap.Err != nil {
		v.Error = snap.Err.Error()
	}
	return v
}

func newMapView(snap feed.Snapshot) mapView {
	pins := snap.Pins()
	v := mapView{Center: geo.DefaultMapCenter, Pins: make([]pinView, 0, len(pins))}
	if len(pins) > 0 {
		v.Center = pins[0].Coordinate
	}
	for _, p := range pins {
		v.Pins = append(v.Pins, pinView{
			ID:       p.Item.ID,
			FishType: p.Item.FishType,
			Location: p.Coordinate,
			Name:     p.Item.LocationName,
		})
	}
	return v
}

func printSnapshot(f *OutputFormatter, asMap bool, snap feed.Snapshot) error {
	if asMap {
		v := newMapView(snap)
		return f.Success(v, func(w io.Writer) error { return renderMap(w, v) })
	}
	v := newFeedView(snap)
	return f.Success(v, func(w io.Writer) error { return renderFeed(w, v) })
}

const coordFormat = "%.4f, %.4f"

var (
	stateLive = color.New(color.FgGreen, color.Bold)
	stateWarn = color.New(color.FgYellow, color.Bold)
	fishStyle = color.New(color.FgCyan, color.Bold)
	dimStyle  = color.New(color.Faint)
)

func renderFeed(w io.Writer, v feedView) error {
	header := stateLive
	if v.State != feed.StateLive.String() {
		header = stateWarn
	}
	header.Fprintf(w, "Feed %s", v.State)
	fmt.Fprintf(w, " (v%d, %d post(s))\n", v.Version, len(v.Posts))
	if v.Error != "" {
		stateWarn.Fprintf(w, "  last error: %s\n", v.Error)
	}
	if v.Dropped > 0 {
		stateWarn.Fprintf(w, "  %d malformed record(s) skipped\n", v.Dropped)
	}

	for _, p := range v.Posts {
		fmt.Fprintln(w)
		fishStyle.Fprint(w, p.FishType)
		fmt.Fprintf(w, "  by %s\n", p.Username)
		where := fmt.Sprintf(coordFormat, p.Location.Latitude, p.Location.Longitude)
		if p.LocationName != "" {
			where = p.LocationName + " (" + where + ")"
		}
		fmt.Fprintf(w, "  %s\n", where)
		dimStyle.Fprintf(w, "  %s\n", p.Timestamp.UTC().Format("2006-01-02 15:04 UTC"))
		if p.Description != "" {
			fmt.Fprintf(w, "  %s\n", p.Description)
		}
		dimStyle.Fprintf(w, "  %s\n", p.ImageURL)
	}
	return nil
}

func renderMap(w io.Writer, v mapView) error {
	fmt.Fprintf(w, "Map center "+coordFormat+" (%d pin(s))\n",
		v.Center.Latitude, v.Center.Longitude, len(v.Pins))
	for _, p := range v.Pins {
		fmt.Fprintf(w, "  "+coordFormat+"  ", p.Location.Latitude, p.Location.Longitude)
		fishStyle.Fprint(w, p.FishType)
		if p.Name != "" {
			fmt.Fprintf(w, "  %s", p.Name)
		}
		fmt.Fprintln(w)
	}
	return nil
}
