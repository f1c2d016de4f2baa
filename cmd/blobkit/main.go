// Command blobkit runs bulk object-store transfers from the terminal:
// download, upload, delete, and cross-account copy with live progress.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "blobkit",
	Short: "Bulk object-store transfer tool",
	Long: `blobkit runs bulk transfers against an S3-compatible object store:
download and upload whole directory trees, delete selections, and copy
objects across accounts, with live progress, throughput, and ETA.

Connection settings come from flags or the environment (a .env file is
loaded when present): BLOBKIT_REGION, BLOBKIT_ENDPOINT, BLOBKIT_ACCESS_KEY,
BLOBKIT_SECRET_KEY.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
