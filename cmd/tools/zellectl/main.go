// Command zellectl manages merchant Zelle recipients and the schema.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is overridden at build time.
var Version = "dev"

func main() {
	if err := newRootCmd(postgresOpener{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(open storeOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "zellectl",
		Short:         "Operate the Zelle payment bridge",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(recipientCmd(open))
	root.AddCommand(migrateCmd(open))
	return root
}
