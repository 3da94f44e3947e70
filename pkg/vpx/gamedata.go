package vpx

import (
	"golang.org/x/text/encoding/charmap"

	"github.com/joshuapare/vpxkit/pkg/biff"
	"github.com/joshuapare/vpxkit/pkg/types"
)

// GameData summarises the GameStg/GameData stream.
type GameData struct {
	Name string
	// Object counts declared by the table.
	Items       int
	Sounds      int
	Images      int
	Fonts       int
	Collections int
	// Script is the table script (CODE record).
	Script string
	// Tags counts every top level record by tag.
	Tags map[string]int
}

// GameData parses the top level records of GameStg/GameData. Records other
// than the ones named in GameData are only counted.
func (t *Table) GameData() (GameData, error) {
	gd := GameData{Tags: map[string]int{}}
	gs, err := t.game()
	if err != nil {
		return gd, err
	}

	count := func(dst *int) biff.Handler {
		return func(r biff.Record) (int, error) {
			gd.Tags[r.Tag.String()]++
			v, err := r.Int32()
			*dst = int(v)
			return 0, err
		}
	}
	top := &biff.Level{
		Tags: map[biff.Tag]biff.Handler{
			biff.T("SEDT"): count(&gd.Items),
			biff.T("SSND"): count(&gd.Sounds),
			biff.T("SIMG"): count(&gd.Images),
			biff.T("SFNT"): count(&gd.Fonts),
			biff.T("SCOL"): count(&gd.Collections),
			biff.T("NAME"): func(r biff.Record) (int, error) {
				gd.Tags[r.Tag.String()]++
				var err error
				gd.Name, err = r.WideString()
				return 0, err
			},
			biff.T("CODE"): func(r biff.Record) (int, error) {
				gd.Tags[r.Tag.String()]++
				// The script follows its own length; fetch it directly.
				if err := t.limits.CheckScript(r.Len - 4); err != nil {
					return 0, err
				}
				raw, err := gs.Read(GameDataStream, r.Offset+4, int64(r.Len-4))
				if err != nil {
					return 0, err
				}
				s, err := charmap.Windows1252.NewDecoder().Bytes(raw)
				if err != nil {
					return 0, types.Wrap(types.ErrKindCorrupt, "vpx: decode script", err)
				}
				gd.Script = string(s)
				return 0, nil
			},
		},
		Default: func(r biff.Record) (int, error) {
			gd.Tags[r.Tag.String()]++
			return 0, nil
		},
		Streamed: map[biff.Tag]bool{biff.T("CODE"): true},
	}
	if err := biff.Parse(gs, GameDataStream, 0, top); err != nil {
		return gd, err
	}
	t.log.Debug("vpx: game data", "items", gd.Items, "images", gd.Images, "script", len(gd.Script))
	return gd, nil
}
