package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/spearfished/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen string
	Seed   bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Long: `Start the feed synchronizer and serve the HTTP gateway.

The gateway exposes the live feed, map pins, species, publishing and, for
local backends, stored images and account sign-up/sign-in. It runs until
interrupted.

Example:
  spearfished serve
  spearfished serve --listen :9090 --seed --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Listen, "listen", "l", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&opts.Seed, "seed", false, "insert the demo posts before serving")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a)
	logger := a.Logger

	ctx, stop := signalContext(cmd, logger)
	defer stop()

	if opts.Seed || a.Config.SeedDemo {
		n, err := a.SeedDemo(ctx)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to seed demo posts", err)
		}
		logger.Info("demo posts seeded", "inserted", n)
	}

	syncer := a.NewFeed()
	defer syncer.Close()
	if err := syncer.Start(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to start feed", err)
	}

	srv := server.New(server.Deps{
		Feed:      syncer,
		Publisher: a.Publish,
		Verifier:  a.Verifier,
		Accounts:  a.Accounts,
		Species:   a.Species,
		Blobs:     a.BlobReader,
		Logger:    logger.With("component", "server"),
	})

	addr := opts.Listen
	if addr == "" {
		addr = a.Config.Listen
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on %s (backend %s)\n", a.Config.PublicURL, addr, a.Config.Backend)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
