package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/vpxkit/pkg/vpx"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <table>",
		Short: "Show table metadata",
		Long: `The info command prints the TableInfo metadata, the file version and
the object counts declared in GameStg/GameData.

Example:
  vpxctl info table.vpx
  vpxctl info table.vpx --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
}

type infoReport struct {
	File        string         `json:"file"`
	Size        int64          `json:"size"`
	FileVersion int32          `json:"file_version"`
	Info        vpx.Info       `json:"info"`
	GameData    gameDataReport `json:"game_data"`
	Items       int            `json:"items"`
	Images      int            `json:"images"`
}

type gameDataReport struct {
	Name        string `json:"name"`
	Items       int    `json:"items"`
	Sounds      int    `json:"sounds"`
	Images      int    `json:"images"`
	Fonts       int    `json:"fonts"`
	Collections int    `json:"collections"`
	ScriptBytes int    `json:"script_bytes"`
}

func runInfo(args []string) error {
	path := args[0]
	t, err := openTable(path)
	if err != nil {
		return err
	}
	defer t.Close()

	rep := infoReport{File: path}
	if st, err := os.Stat(path); err == nil {
		rep.Size = st.Size()
	}
	if rep.FileVersion, err = t.FileVersion(); err != nil {
		return fmt.Errorf("failed to read version: %w", err)
	}
	if rep.Info, err = t.Info(); err != nil {
		return fmt.Errorf("failed to read table info: %w", err)
	}
	gd, err := t.GameData()
	if err != nil {
		return fmt.Errorf("failed to read game data: %w", err)
	}
	rep.GameData = gameDataReport{
		Name:        gd.Name,
		Items:       gd.Items,
		Sounds:      gd.Sounds,
		Images:      gd.Images,
		Fonts:       gd.Fonts,
		Collections: gd.Collections,
		ScriptBytes: len(gd.Script),
	}
	items, err := t.Items()
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}
	rep.Items = len(items)
	images, err := t.Images()
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}
	rep.Images = len(images)

	if jsonOut {
		return printJSON(rep)
	}

	printInfo("\nTable Information:\n")
	printInfo("  File: %s (%s)\n", rep.File, humanSize(rep.Size))
	printInfo("  File version: %s\n", formatVersion(rep.FileVersion))
	field := func(label, v string) {
		if v != "" {
			printInfo("  %s: %s\n", label, v)
		}
	}
	field("Name", rep.Info.Name)
	field("Author", rep.Info.Author)
	field("Version", rep.Info.Version)
	field("Release date", rep.Info.ReleaseDate)
	field("Email", rep.Info.AuthorEmail)
	field("Website", rep.Info.AuthorWebsite)
	field("Blurb", rep.Info.Blurb)
	field("Saved", rep.Info.SaveDate)
	for _, p := range rep.Info.Custom {
		field(p.Name, p.Value)
	}
	if len(rep.Info.Screenshot) > 0 {
		printInfo("  Screenshot: %s\n", humanSize(int64(len(rep.Info.Screenshot))))
	}

	printInfo("\nGame Data:\n")
	field("Name", rep.GameData.Name)
	printInfo("  Items: %d declared, %d stored\n", rep.GameData.Items, rep.Items)
	printInfo("  Images: %d declared, %d stored\n", rep.GameData.Images, rep.Images)
	printInfo("  Sounds: %d\n", rep.GameData.Sounds)
	printInfo("  Fonts: %d\n", rep.GameData.Fonts)
	printInfo("  Collections: %d\n", rep.GameData.Collections)
	printInfo("  Script: %s\n", humanSize(int64(rep.GameData.ScriptBytes)))
	return nil
}

func humanSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d bytes", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	}
}

// formatVersion renders 1072 as 10.7.2.
func formatVersion(v int32) string {
	if v <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d.%d.%d (%d)", v/100, v/10%10, v%10, v)
}
