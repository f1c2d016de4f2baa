package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/blobkit/transfer"
	"github.com/blobkit/transfer/transfertypes"
)

var downloadLocalRoot string

var downloadCmd = &cobra.Command{
	Use:   "download <container> <key>...",
	Short: "Download objects or directory trees",
	Long: `Download the given keys into the local root directory. Keys ending
with "/" are treated as directories and downloaded recursively, recreating
the key hierarchy on disk.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := newClient(ctx)
		if err != nil {
			return err
		}

		roots, err := absPaths([]string{downloadLocalRoot})
		if err != nil {
			return err
		}

		job, err := client.Download(ctx, transfer.DownloadRequest{
			Container: args[0],
			Targets:   entriesFromArgs(args[1:]),
			LocalRoot: roots[0],
		}, transfer.WithCallbacks(progressCallbacks()))
		if err != nil {
			return err
		}
		return runJob(ctx, job)
	},
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadLocalRoot, "out", "o", ".", "local directory downloads land in")
	rootCmd.AddCommand(downloadCmd)
}

// entriesFromArgs turns CLI key arguments into selection entries. A
// trailing delimiter marks a directory.
func entriesFromArgs(keys []string) []*transfertypes.ObjectEntry {
	entries := make([]*transfertypes.ObjectEntry, 0, len(keys))
	for _, key := range keys {
		if strings.HasSuffix(key, transfertypes.Delimiter) {
			entries = append(entries, transfertypes.NewDirEntry(key))
		} else {
			entries = append(entries, transfertypes.NewPendingEntry(key))
		}
	}
	return entries
}
