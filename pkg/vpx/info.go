package vpx

import (
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/vpxkit/pkg/biff"
	"github.com/joshuapare/vpxkit/pkg/cfb"
	"github.com/joshuapare/vpxkit/pkg/types"
)

// Info is the table metadata kept in the TableInfo storage. Missing streams
// leave their field empty.
type Info struct {
	Name          string
	Author        string
	Version       string
	ReleaseDate   string
	AuthorEmail   string
	AuthorWebsite string
	Blurb         string
	Description   string
	Rules         string
	SaveDate      string
	SaveRevision  string
	// Screenshot is the raw embedded screenshot file, if any.
	Screenshot []byte
	// Custom holds the user defined properties listed in
	// GameStg/CustomInfoTags, in that order.
	Custom []Property
}

// Property is a user defined metadata entry.
type Property struct {
	Name  string
	Value string
}

var infoStreams = []struct {
	name  string
	field func(*Info) *string
}{
	{"TableName", func(i *Info) *string { return &i.Name }},
	{"AuthorName", func(i *Info) *string { return &i.Author }},
	{"TableVersion", func(i *Info) *string { return &i.Version }},
	{"ReleaseDate", func(i *Info) *string { return &i.ReleaseDate }},
	{"AuthorEmail", func(i *Info) *string { return &i.AuthorEmail }},
	{"AuthorWebSite", func(i *Info) *string { return &i.AuthorWebsite }},
	{"TableBlurb", func(i *Info) *string { return &i.Blurb }},
	{"TableDescription", func(i *Info) *string { return &i.Description }},
	{"TableRules", func(i *Info) *string { return &i.Rules }},
	{"TableSaveDate", func(i *Info) *string { return &i.SaveDate }},
	{"TableSaveRev", func(i *Info) *string { return &i.SaveRevision }},
}

// Info reads the table metadata. A table without a TableInfo storage
// returns a zero Info.
func (t *Table) Info() (Info, error) {
	var info Info
	ti, err := t.doc.Storage(InfoStorage)
	if types.IsKind(err, types.ErrKindNotFound) {
		return info, nil
	}
	if err != nil {
		return info, err
	}

	for _, s := range infoStreams {
		v, ok, err := readWide(ti, s.name)
		if err != nil {
			return info, err
		}
		if ok {
			*s.field(&info) = v
		}
	}
	if ti.Has("Screenshot") {
		if info.Screenshot, err = ti.ReadAll("Screenshot"); err != nil {
			return info, err
		}
	}

	names, err := t.customTags()
	if err != nil {
		return info, err
	}
	for _, name := range names {
		v, _, err := readWide(ti, name)
		if err != nil {
			return info, err
		}
		info.Custom = append(info.Custom, Property{Name: name, Value: v})
	}
	return info, nil
}

// customTags lists the CUST records of GameStg/CustomInfoTags.
func (t *Table) customTags() ([]string, error) {
	gs, err := t.game()
	if types.IsKind(err, types.ErrKindNotFound) {
		return nil, nil
	}
	if err != nil || !gs.Has(CustomTagStream) {
		return nil, err
	}
	var names []string
	top := &biff.Level{Tags: map[biff.Tag]biff.Handler{
		biff.T("CUST"): func(r biff.Record) (int, error) {
			name, err := r.String()
			if err != nil {
				return 0, err
			}
			names = append(names, name)
			return 0, nil
		},
	}}
	if err := biff.Parse(gs, CustomTagStream, 0, top); err != nil {
		return nil, err
	}
	return names, nil
}

// readWide reads a whole stream as UTF-16LE text, dropping trailing NULs.
func readWide(s *cfb.Storage, name string) (string, bool, error) {
	if !s.Has(name) {
		return "", false, nil
	}
	raw, err := s.ReadAll(name)
	if err != nil {
		return "", false, err
	}
	if len(raw)%2 == 1 {
		raw = raw[:len(raw)-1]
	}
	v, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return "", false, types.Wrap(types.ErrKindCorrupt, "vpx: decode "+name, err)
	}
	return strings.TrimRight(string(v), "\x00"), true, nil
}
