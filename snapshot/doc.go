// Package snapshot persists the full set of named lists to pebble so
// that recovery only replays the mutation log written after the last
// snapshot.
//
// Key layout:
//
//	list/<name>/<index:%010d>  -> value (int16, big-endian)
//	meta/seq                   -> last log sequence covered
//	meta/created               -> unix nanos of the snapshot
package snapshot
