// Package lpack packs files and directory trees into a single flat archive
// and unpacks such archives back onto disk.
//
// The archive is a sequence of length-prefixed frames with no header and
// no index:
//
//	dirEntry  := decimal ":" name "/" entry* "0:"
//	fileEntry := decimal ":" name decimal ":" raw-bytes
//
// A directory frame declares len(name)+1 bytes for its name, counting the
// trailing "/". Its children follow, closed by the "0:" sentinel. A file
// frame declares its name length, then its payload length, then the
// payload verbatim. Archives are read and written strictly sequentially.
//
// # Packing
//
//	f, err := os.Create("out.lp")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//	stats, err := lpack.Pack(ctx, f, []string{"docs", "README.md"},
//	    lpack.PackWithSortedEntries(true),
//	)
//
// Children are packed in the order the filesystem returns them unless
// [PackWithSortedEntries] is set. Symbolic links, devices, sockets and
// FIFOs are skipped with a warning; every other failure aborts the run.
//
// # Unpacking
//
//	stats, err := lpack.UnpackFile(ctx, "out.lp", "restore")
//
// Unpacking never changes the process working directory. All entries are
// created through an [os.Root] opened on the destination, and names that
// would escape it are rejected as corrupt.
//
// Permissions, ownership and timestamps are not recorded. Directories are
// created with mode 0700 and files with mode 0644, subject to umask.
package lpack
