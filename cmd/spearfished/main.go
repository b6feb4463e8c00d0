// Command spearfished publishes geotagged catches and follows the shared feed.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/spearfished/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
