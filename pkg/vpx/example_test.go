package vpx_test

import (
	"fmt"

	"github.com/joshuapare/vpxkit/pkg/vpx"
)

// Example lists the image library of a table.
func Example() {
	t, err := vpx.Open("table.vpx")
	if err != nil {
		fmt.Printf("open failed: %v\n", err)
		return
	}
	defer t.Close()

	images, err := t.Images()
	if err != nil {
		fmt.Printf("images: %v\n", err)
		return
	}
	for _, img := range images {
		fmt.Printf("%d %s %dx%d %s\n", img.Index, img.Name, img.Width, img.Height, img.Format)
	}
}
