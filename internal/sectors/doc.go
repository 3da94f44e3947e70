// Package sectors builds the allocation tables of a compound document and
// resolves sector chains through them.
//
// # Overview
//
// A compound document stores every stream as a chain of fixed-size sectors.
// The regular allocation table maps each sector id to the id of the next
// sector in its chain, or to a sentinel (EndOfChain, Free, ...). The table
// itself is spread over sectors listed by the master table, whose first 109
// slots live in the header and whose remainder is chained through dedicated
// master sectors.
//
// The short allocation table has the same shape but indexes short sectors
// carved out of the root entry's mini-stream. It is stored as an ordinary
// chain in the regular table.
//
// # Usage Example
//
//	fat, err := sectors.LoadFAT(hdr, readSector)
//	if err != nil {
//	    return err
//	}
//	short, err := sectors.LoadShortFAT(hdr, fat, readSector)
//	if err != nil {
//	    return err
//	}
//	chain, err := fat.Chain(entry.StartSector)
//
// # Sentinels
//
// Sector id 0 is a valid sector. Absence is always expressed with an explicit
// negative sentinel, never by zero.
package sectors
