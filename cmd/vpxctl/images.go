package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/webp"
	"github.com/spf13/cobra"

	"github.com/joshuapare/vpxkit/pkg/bitmap"
)

func init() {
	rootCmd.AddCommand(newImagesCmd())

	export := newExportImageCmd()
	export.Flags().StringVarP(&exportOut, "output", "o", "", "Output file (default <image name>.<format>)")
	export.Flags().StringVar(&exportFormat, "format", "bmp", "Output format: bmp or webp")
	export.Flags().IntVar(&exportQuality, "quality", 90, "WebP quality (0-100)")
	export.Flags().BoolVar(&exportLossless, "lossless", false, "Lossless WebP")
	rootCmd.AddCommand(export)
}

func newImagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "images <table>",
		Short: "List the image library",
		Long: `The images command lists every GameStg/Image stream with its name,
size and storage format ("lzw" for raw bitmaps).

Example:
  vpxctl images table.vpx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImages(args)
		},
	}
}

type imageRow struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Bytes    int    `json:"bytes,omitempty"`
	BadCodes int    `json:"bad_codes,omitempty"`
}

func runImages(args []string) error {
	t, err := openTable(args[0])
	if err != nil {
		return err
	}
	defer t.Close()

	images, err := t.Images()
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}
	rows := make([]imageRow, 0, len(images))
	for _, img := range images {
		rows = append(rows, imageRow{
			Index: img.Index, Name: img.Name, Path: img.Path, Format: img.Format,
			Width: img.Width, Height: img.Height, Bytes: len(img.Data), BadCodes: img.BadCodes,
		})
	}
	if jsonOut {
		return printJSON(rows)
	}
	for _, r := range rows {
		line := fmt.Sprintf("%4d  %-24s %-5s %5dx%-5d %s", r.Index, r.Name, r.Format, r.Width, r.Height, dimColor.Sprint(r.Path))
		if r.BadCodes > 0 {
			line += warnColor.Sprintf("  (%d bad codes)", r.BadCodes)
		}
		printInfo("%s\n", line)
	}
	return nil
}

var (
	exportOut      string
	exportFormat   string
	exportQuality  int
	exportLossless bool
)

func newExportImageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-image <table> <index>",
		Short: "Decode an image and write it as BMP or WebP",
		Long: `The export-image command decodes GameStg/Image<index> (raw LZW
bitmap or embedded file) and writes the pixels in the requested format.

Example:
  vpxctl export-image table.vpx 0
  vpxctl export-image table.vpx 3 --format webp --quality 80 -o backglass.webp`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportImage(args)
		},
	}
}

func runExportImage(args []string) error {
	var index int
	if _, err := fmt.Sscan(args[1], &index); err != nil {
		return fmt.Errorf("invalid image index %q", args[1])
	}
	format := strings.ToLower(exportFormat)
	if format != "bmp" && format != "webp" {
		return fmt.Errorf("unsupported format %q (want bmp or webp)", exportFormat)
	}

	t, err := openTable(args[0])
	if err != nil {
		return err
	}
	defer t.Close()

	img, err := t.Image(index)
	if err != nil {
		return err
	}
	pic, err := t.Picture(img)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", img.Name, err)
	}

	out := exportOut
	if out == "" {
		out = filepath.Base(strings.ReplaceAll(img.Name, `\`, "/")) + "." + format
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if format == "webp" {
		err = webp.Encode(f, pic, webp.Options{Quality: exportQuality, Lossless: exportLossless})
	} else {
		err = bitmap.EncodeBMP(f, pic)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	printInfo("Wrote %s (%dx%d %s)\n", out, pic.Bounds().Dx(), pic.Bounds().Dy(), format)
	return nil
}
