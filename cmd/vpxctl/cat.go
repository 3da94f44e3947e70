package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/joshuapare/vpxkit/pkg/cfb"
	"github.com/joshuapare/vpxkit/pkg/vpx"
)

var (
	catOffset int64
	catLength int64
	catHex    bool
)

func init() {
	cmd := newCatCmd()
	cmd.Flags().Int64Var(&catOffset, "offset", 0, "Start offset in the stream")
	cmd.Flags().Int64Var(&catLength, "length", cfb.ToEnd, "Number of bytes (-1 for the rest of the stream)")
	cmd.Flags().BoolVar(&catHex, "hex", false, "Hex dump even when stdout is not a terminal")
	rootCmd.AddCommand(cmd)
}

func newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <table> <stream-path>",
		Short: "Print the bytes of a stream",
		Long: `The cat command writes a stream's bytes to stdout. On a terminal (or
with --hex) the bytes are hex dumped instead.

Example:
  vpxctl cat table.vpx GameStg/Version --hex
  vpxctl cat table.vpx TableInfo/Screenshot > shot.png`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCat(args)
		},
	}
}

func runCat(args []string) error {
	t, err := openTable(args[0])
	if err != nil {
		return err
	}
	defer t.Close()

	s, name, err := resolveStream(t, args[1])
	if err != nil {
		return err
	}
	data, err := s.Read(name, catOffset, catLength)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[1], err)
	}

	if catHex || (stdout == os.Stdout && isatty.IsTerminal(os.Stdout.Fd())) {
		d := hex.Dumper(stdout)
		if _, err := d.Write(data); err != nil {
			return err
		}
		return d.Close()
	}
	_, err = stdout.Write(data)
	return err
}

// resolveStream splits "Storage/Sub/Stream" and resolves the storage part.
func resolveStream(t *vpx.Table, path string) (*cfb.Storage, string, error) {
	path = strings.Trim(path, "/")
	dir, name := "", path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		dir, name = path[:i], path[i+1:]
	}
	s, err := t.Document().Storage(dir)
	if err != nil {
		return nil, "", err
	}
	if !s.Has(name) {
		return nil, "", fmt.Errorf("stream %q not found", path)
	}
	return s, name, nil
}
