package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/vpxkit/pkg/cfb"
)

func init() {
	rootCmd.AddCommand(newTreeCmd())
}

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <table>",
		Short: "Display the storage tree",
		Long: `The tree command lists every storage and stream of the compound
document with stream sizes. Streams kept in the short sector pool are marked.

Example:
  vpxctl tree table.vpx
  vpxctl tree table.vpx --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(args)
		},
	}
}

type treeEntry struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Size  int64  `json:"size,omitempty"`
	Short bool   `json:"short,omitempty"`
}

func runTree(args []string) error {
	t, err := openTable(args[0])
	if err != nil {
		return err
	}
	defer t.Close()

	var entries []treeEntry
	err = t.Document().Walk(func(path string, e cfb.Entry) error {
		entries = append(entries, treeEntry{Path: path, Kind: e.Kind.String(), Size: e.Size, Short: e.Short})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk document: %w", err)
	}

	if jsonOut {
		return printJSON(entries)
	}
	for _, e := range entries {
		depth := strings.Count(e.Path, "/")
		name := e.Path[strings.LastIndex(e.Path, "/")+1:]
		indent := strings.Repeat("  ", depth)
		if e.Kind == cfb.KindStorage.String() {
			printInfo("%s%s/\n", indent, storageColor.Sprint(name))
			continue
		}
		mark := ""
		if e.Short {
			mark = dimColor.Sprint(" [short]")
		}
		printInfo("%s%s  %s%s\n", indent, name, humanSize(e.Size), mark)
	}
	return nil
}
