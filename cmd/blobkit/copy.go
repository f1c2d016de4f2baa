package main

import (
	"github.com/spf13/cobra"

	"github.com/blobkit/transfer"
)

var (
	copyOverwrite bool
	copyPreserve  bool
)

var copyCmd = &cobra.Command{
	Use:   "copy <source-container> <dest-container> <key>...",
	Short: "Copy objects into another container or account",
	Long: `Copy the given keys into the destination container. The destination
account's credentials come from BLOBKIT_DEST_ACCESS_KEY and
BLOBKIT_DEST_SECRET_KEY (plus BLOBKIT_DEST_REGION and
BLOBKIT_DEST_ENDPOINT); when unset, the source account is used. The
destination reads each object through a time-limited URL, so the two
accounts need no trust relationship.`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := newClient(ctx)
		if err != nil {
			return err
		}

		req := transfer.CopyRequest{
			SourceContainer: args[0],
			DestContainer:   args[1],
			Targets:         entriesFromArgs(args[2:]),
		}
		if hasDestEnv() {
			dest, err := newStore(ctx, "BLOBKIT_DEST_")
			if err != nil {
				return err
			}
			req.DestStore = dest
		}

		job, err := client.CopyAcross(ctx, req,
			transfer.WithCallbacks(progressCallbacks()),
			transfer.WithOverwrite(copyOverwrite),
			transfer.WithPreserveStructure(copyPreserve),
		)
		if err != nil {
			return err
		}
		return runJob(ctx, job)
	},
}

func init() {
	copyCmd.Flags().BoolVar(&copyOverwrite, "overwrite", false, "replace existing destination objects")
	copyCmd.Flags().BoolVar(&copyPreserve, "preserve-structure", false, "keep full source keys at the destination")
	rootCmd.AddCommand(copyCmd)
}
