// Package ztext reads verses from SWORD zText modules.
//
// A module directory holds up to two file triads, one per testament:
//
//	ot.bzv, nt.bzv  verse index, 10 bytes per slot: buffer[4] start[4] length[2]
//	ot.bzs, nt.bzs  block index, 12 bytes per block: offset[4] size[4] ucsize[4]
//	ot.bzz, nt.bzz  concatenated compressed blocks
//
// All integers are little-endian. The slot for a verse is the global index
// computed by package canon; the record at that slot names the compressed
// block holding the verse and the byte range inside the inflated block.
//
// Index files are memory-mapped and the data file is read with pread, so a
// Module serves concurrent lookups without locking.
package ztext
