package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/spearfished/internal/geo"
	"github.com/roach88/spearfished/internal/post"
	"github.com/roach88/spearfished/internal/publish"
)

// PublishOptions holds flags for the publish command.
type PublishOptions struct {
	*RootOptions
	Image        string
	FishType     string
	Username     string
	Description  string
	LocationName string
	Latitude     float64
	Longitude    float64

	Email    string
	Password string
	Token    string
}

// NewPublishCommand creates the publish command.
func NewPublishCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PublishOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a catch",
		Long: `Upload a catch photo and write the post to the feed.

The location comes from the photo's GPS tags when present, otherwise from
--lat/--lon. Without either the publish is rejected. The username defaults
to the signed-in account's email when --email/--password or --token is given.

Example:
  spearfished publish --image hogfish.jpg --fish-type hogfish --username diver1
  spearfished publish --image catch.jpg --fish-type Cobia --lat 25.76 --lon -80.19 \
      --email diver@example.com --password secret`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Image, "image", "i", "", "path to the catch photo (required)")
	cmd.Flags().StringVarP(&opts.FishType, "fish-type", "f", "", "species caught")
	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "display name (defaults to the account email)")
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "free-text description")
	cmd.Flags().StringVar(&opts.LocationName, "location-name", "", "human-readable place name")
	cmd.Flags().Float64Var(&opts.Latitude, "lat", 0, "device latitude, used when the photo has no GPS tags")
	cmd.Flags().Float64Var(&opts.Longitude, "lon", 0, "device longitude, used when the photo has no GPS tags")
	cmd.Flags().StringVar(&opts.Email, "email", "", "sign in with this account")
	cmd.Flags().StringVar(&opts.Password, "password", "", "account password")
	cmd.Flags().StringVar(&opts.Token, "token", "", "resume a session token instead of --email/--password")
	_ = cmd.MarkFlagRequired("image")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
	cmd.MarkFlagsRequiredTogether("email", "password")
	cmd.MarkFlagsMutuallyExclusive("email", "token")

	return cmd
}

func runPublish(cmd *cobra.Command, opts *PublishOptions) error {
	formatter := opts.formatter(cmd)

	image, err := os.ReadFile(opts.Image)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read image", err)
	}

	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a)

	ctx := commandContext(cmd)

	switch {
	case opts.Token != "":
		if _, err := a.Accounts.Resume(ctx, opts.Token); err != nil {
			return formatter.Fail("sign-in failed", err)
		}
	case opts.Email != "":
		if _, err := a.Accounts.SignIn(ctx, opts.Email, opts.Password); err != nil {
			return formatter.Fail("sign-in failed", err)
		}
	}
	if id, ok := a.Accounts.Current(); ok {
		formatter.VerboseLog("Signed in as %s", id.DisplayLabel())
	}

	req := publish.Request{
		Image:        image,
		ContentType:  http.DetectContentType(image),
		Username:     opts.Username,
		FishType:     opts.FishType,
		Description:  opts.Description,
		LocationName: opts.LocationName,
	}
	if cmd.Flags().Changed("lat") {
		req.DeviceLocation = &geo.Coordinate{Latitude: opts.Latitude, Longitude: opts.Longitude}
	}

	p, err := a.Publish.Publish(ctx, req)
	if err != nil {
		return formatter.Fail("publish failed", err)
	}

	return formatter.Success(p, func(w io.Writer) error {
		return renderPublished(w, p)
	})
}

func renderPublished(w io.Writer, p post.Post) error {
	fmt.Fprintf(w, "✓ Published %s\n", p.ID)
	fishStyle.Fprint(w, p.FishType)
	fmt.Fprintf(w, "  by %s at "+coordFormat+"\n", p.Username, p.Location.Latitude, p.Location.Longitude)
	fmt.Fprintf(w, "  %s\n", p.ImageURL)
	return nil
}
