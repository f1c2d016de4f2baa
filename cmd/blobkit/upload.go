package main

import (
	"github.com/spf13/cobra"

	"github.com/blobkit/transfer"
)

var uploadTargetDir string

var uploadCmd = &cobra.Command{
	Use:   "upload <container> <path>...",
	Short: "Upload local files or directories",
	Long: `Upload the given local paths. A directory keeps its own name as the
top of the uploaded hierarchy with relative paths preserved below it.
Uploads always overwrite existing objects.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := newClient(ctx)
		if err != nil {
			return err
		}

		paths, err := absPaths(args[1:])
		if err != nil {
			return err
		}

		job, err := client.Upload(ctx, transfer.UploadRequest{
			Container: args[0],
			Paths:     paths,
			TargetDir: uploadTargetDir,
		}, transfer.WithCallbacks(progressCallbacks()))
		if err != nil {
			return err
		}
		return runJob(ctx, job)
	},
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadTargetDir, "target-dir", "t", "", "key prefix uploads land under")
	rootCmd.AddCommand(uploadCmd)
}
