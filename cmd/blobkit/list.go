package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blobkit/transfer/internal/progress"
	"github.com/blobkit/transfer/tree"
	"github.com/blobkit/transfer/transfertypes"
)

var listCmd = &cobra.Command{
	Use:   "ls <container> [prefix]",
	Short: "List one level of a container",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := newClient(ctx)
		if err != nil {
			return err
		}

		container := args[0]
		node := tree.NewRoot()
		if len(args) == 2 {
			node = &tree.Node{Entry: transfertypes.NewDirEntry(args[1])}
		}
		if err := node.Expand(ctx, client.Store(), container); err != nil {
			return err
		}

		for _, child := range node.Children {
			if child.IsEmptyMarker() {
				fmt.Println("(no items)")
				continue
			}
			if child.IsDir() {
				fmt.Printf("%12s  %s/\n", "DIR", child.Label())
				continue
			}
			fmt.Printf("%12s  %s\n", progress.FormatBytes(child.Entry.SizeOrZero()), child.Label())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
