/*
Package cfb reads compound documents (OLE2 / Compound File Binary): the
container that stores named streams inside nested storages as chains of
fixed-size sectors.

# Quick Start

	doc, err := cfb.Load(source.NewFile("table.vpx"))
	if err != nil {
	    log.Fatal(err)
	}
	defer doc.Close()

	stg, err := doc.Storage("GameStg")
	if err != nil {
	    log.Fatal(err)
	}
	data, err := stg.ReadAll("GameData")

# Read Modes

A Storage offers three ways to get at a stream:

  - Read / ReadAll: one bulk read; contiguous sectors are fetched with a
    single source read.
  - Stream: a pull-based chunk sequence, one sector per chunk, trimmed to
    the requested window.
  - StreamFiltered: drives a Filter over a two-sector sliding window. The
    filter answers each buffer with types.Consumed(n), types.NeedMore(n) or
    types.Done(). NeedMore re-invokes the filter at the same position with
    at least n more bytes, which suits record formats whose length is only
    known after its prefix has been read.

# Error Handling

Load fails with a types.ErrKindStructural error for a bad signature, a
broken allocation table or a missing root, and closes the source before
returning. Lookups of absent storages or streams fail with
types.ErrKindNotFound and leave the document usable.

# Concurrency

A Document is not safe for concurrent use. Drive one parse to completion
before starting another on the same document.
*/
package cfb
