package vpx

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/joshuapare/vpxkit/internal/buf"
	"github.com/joshuapare/vpxkit/pkg/biff"
	"github.com/joshuapare/vpxkit/pkg/cfb"
	"github.com/joshuapare/vpxkit/pkg/types"
)

// ItemType is the leading type code of a GameItem stream.
type ItemType int32

// Item types.
const (
	ItemWall ItemType = iota
	ItemFlipper
	ItemTimer
	ItemPlunger
	ItemTextbox
	ItemBumper
	ItemTrigger
	ItemLight
	ItemKicker
	ItemDecal
	ItemGate
	ItemSpinner
	ItemRamp
	ItemTable
	ItemLightCenter
	ItemDragPoint
	ItemCollection
	ItemReel
	ItemLightSequencer
	ItemPrimitive
	ItemFlasher
	ItemRubber
	ItemHitTarget
	ItemBall
)

var itemTypeNames = [...]string{
	"Wall", "Flipper", "Timer", "Plunger", "Textbox", "Bumper", "Trigger",
	"Light", "Kicker", "Decal", "Gate", "Spinner", "Ramp", "Table",
	"LightCenter", "DragPoint", "Collection", "Reel", "LightSequencer",
	"Primitive", "Flasher", "Rubber", "HitTarget", "Ball",
}

func (t ItemType) String() string {
	if t >= 0 && int(t) < len(itemTypeNames) {
		return itemTypeNames[t]
	}
	return fmt.Sprintf("ItemType(%d)", int32(t))
}

// Item is the header of one game item.
type Item struct {
	Index  int
	Stream string
	Type   ItemType
	Name   string
}

var errStop = errors.New("stop")

// Items lists the game items. Streams are taken in numeric order; the
// declared count in GameData is not trusted since editors leave gaps.
func (t *Table) Items() ([]Item, error) {
	gs, err := t.game()
	if err != nil {
		return nil, err
	}
	var items []Item
	for _, n := range numbered(gs, itemPrefix) {
		it, err := readItem(gs, n.stream)
		if err != nil {
			return items, err
		}
		it.Index = n.index
		items = append(items, it)
	}
	return items, nil
}

func readItem(gs *cfb.Storage, stream string) (Item, error) {
	it := Item{Stream: stream}
	head, err := gs.Read(stream, 0, 4)
	if err != nil {
		return it, err
	}
	it.Type = ItemType(buf.I32LE(head))

	top := &biff.Level{Tags: map[biff.Tag]biff.Handler{
		biff.T("NAME"): func(r biff.Record) (int, error) {
			name, err := r.WideString()
			if err != nil {
				return 0, err
			}
			it.Name = name
			return 0, errStop
		},
	}}
	if err := biff.Parse(gs, stream, 4, top); err != nil && !errors.Is(err, errStop) {
		return it, fmt.Errorf("%s: %w", stream, err)
	}
	return it, nil
}

type numberedStream struct {
	index  int
	stream string
}

// numbered returns the streams named prefix<N> sorted by N.
func numbered(s *cfb.Storage, prefix string) []numberedStream {
	var out []numberedStream
	for _, name := range s.Streams() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		n, err := strconv.Atoi(name[len(prefix):])
		if err != nil || n < 0 {
			continue
		}
		out = append(out, numberedStream{index: n, stream: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out
}

func notFound(kind string, i int) error {
	return types.Errorf(types.ErrKindNotFound, "vpx: %s %d not found", kind, i)
}
