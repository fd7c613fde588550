package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	edms "github.com/nadwiabd/insight-edms"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render("✗")+" "+err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "edms",
		Short: "Insight EDMS setup service",
		Long: `Runs and administers the Insight EDMS setup service.

Configuration is read from the environment (REDIS_ADDR, API_PORT,
AUTO_ADMIN_PASSWORD, ARCHIVE_BUCKET_URL, ...).`,
		Version:       edms.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newUserCmd(),
		newGrantCmd(),
		newRevokeCmd(),
		newPermissionsCmd(),
		newArchiveCmd(),
	)
	return root
}
