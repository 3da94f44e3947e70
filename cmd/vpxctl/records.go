package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/vpxkit/pkg/biff"
)

var (
	recordsOffset   int64
	recordsStreamed []string
	recordsNested   []string
)

func init() {
	cmd := newRecordsCmd()
	cmd.Flags().Int64Var(&recordsOffset, "offset", -1, "Offset of the first record (default 4 for GameItem streams, else 0)")
	cmd.Flags().StringSliceVar(&recordsStreamed, "streamed", []string{"CODE"}, "Tags whose payload follows a secondary length")
	cmd.Flags().StringSliceVar(&recordsNested, "nested", []string{"JPEG"}, "Tags that open a nested block")
	rootCmd.AddCommand(cmd)
}

func newRecordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "records <table> <stream-path>",
		Short: "List the BIFF records of a stream",
		Long: `The records command splits a stream into tagged records and prints
each tag with its offset and payload length.

Example:
  vpxctl records table.vpx GameStg/GameData
  vpxctl records table.vpx GameStg/GameItem3 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecords(args)
		},
	}
}

type recordRow struct {
	Offset int64  `json:"offset"`
	Depth  int    `json:"depth"`
	Tag    string `json:"tag"`
	Len    int    `json:"len"`
	Value  string `json:"value,omitempty"`
}

func runRecords(args []string) error {
	t, err := openTable(args[0])
	if err != nil {
		return err
	}
	defer t.Close()

	s, name, err := resolveStream(t, args[1])
	if err != nil {
		return err
	}
	offset := recordsOffset
	if offset < 0 {
		offset = 0
		if strings.HasPrefix(name, "GameItem") {
			offset = 4
		}
	}

	var rows []recordRow
	depth := 0
	collect := func(r biff.Record) (int, error) {
		rows = append(rows, recordRow{Offset: r.Offset, Depth: depth, Tag: r.Tag.String(), Len: r.Len, Value: preview(r)})
		return 0, nil
	}
	level := func() biff.Level {
		l := biff.Level{Default: collect, Streamed: map[biff.Tag]bool{}}
		for _, tag := range recordsStreamed {
			l.Streamed[biff.T(tag)] = true
		}
		return l
	}
	top := level()
	top.Nested = map[biff.Tag]*biff.Nested{}
	for _, tag := range recordsNested {
		top.Nested[biff.T(tag)] = &biff.Nested{
			Level: level(),
			OnStart: func(r biff.Record) error {
				rows = append(rows, recordRow{Offset: r.Offset, Depth: depth, Tag: r.Tag.String(), Value: "{"})
				depth++
				return nil
			},
			OnEnd: func() error {
				depth--
				return nil
			},
		}
	}
	if err := biff.Parse(s, name, offset, &top); err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[1], err)
	}

	if jsonOut {
		return printJSON(rows)
	}
	for _, r := range rows {
		printInfo("%8d %s%s %6d  %s\n", r.Offset, strings.Repeat("  ", r.Depth), tagColor.Sprint(r.Tag), r.Len, r.Value)
	}
	return nil
}

// preview renders short payloads: 4-byte values as integers, anything that
// looks like a length-prefixed string as text.
func preview(r biff.Record) string {
	switch {
	case len(r.Data) == 4:
		v, _ := r.Int32()
		return fmt.Sprint(v)
	case len(r.Data) > 4:
		if n, _ := r.Uint32(); int64(n) == int64(len(r.Data)-4) {
			// Narrow text has no NULs; UTF-16 text of ASCII has many.
			if s, err := r.String(); err == nil && printable(s) {
				return fmt.Sprintf("%q", s)
			}
			if s, err := r.WideString(); err == nil && printable(s) {
				return fmt.Sprintf("%q", s)
			}
		}
		return dimColor.Sprintf("%d bytes", len(r.Data))
	}
	return ""
}

func printable(s string) bool {
	for _, r := range s {
		if r < 0x20 && r != '\t' {
			return false
		}
	}
	return true
}
