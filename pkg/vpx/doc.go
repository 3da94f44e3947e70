// Package vpx reads table files: compound documents holding a TableInfo
// storage with UTF-16 metadata streams and a GameStg storage with BIFF
// record streams for game data, items and images.
//
// # Quick Start
//
//	t, err := vpx.Open("table.vpx")
//	if err != nil {
//		return err
//	}
//	defer t.Close()
//
//	info, err := t.Info()
//	images, err := t.Images()
//	pic, err := t.Picture(images[0])
//
// A Table is not safe for concurrent use. Decoded pictures are kept in a
// per-table cache that is released by Close.
package vpx
