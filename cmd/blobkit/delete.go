package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blobkit/transfer"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <container> <key>...",
	Short: "Delete objects or directory trees",
	Long: `Delete the given keys. Keys ending with "/" are treated as
directories and their whole subtree is deleted.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if !deleteYes && !confirm(fmt.Sprintf("Delete %d selection(s) from %s?", len(args)-1, args[0])) {
			fmt.Println("Aborted.")
			return nil
		}

		client, err := newClient(ctx)
		if err != nil {
			return err
		}

		job, err := client.Delete(ctx, transfer.DeleteRequest{
			Container: args[0],
			Targets:   entriesFromArgs(args[1:]),
		}, transfer.WithCallbacks(progressCallbacks()))
		if err != nil {
			return err
		}
		return runJob(ctx, job)
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
