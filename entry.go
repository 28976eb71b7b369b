package lpack

// EntryKind distinguishes directory frames from file frames.
type EntryKind uint8

const (
	KindFile EntryKind = iota
	KindDir

	// KindOther marks a skipped source entry that is neither a file nor
	// a directory. It never appears in an archive.
	KindOther
)

// String returns the string representation of the kind.
func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Entry describes one archive entry.
type Entry struct {
	// Name is the name stored in the frame, without the directory marker.
	Name string

	// Path is the slash-separated path relative to the archive root.
	Path string

	// Kind is the entry type.
	Kind EntryKind

	// Size is the payload length for files; zero for directories.
	Size int64

	// Depth is the nesting level. Top-level entries have depth 0.
	Depth int
}

// Stats summarizes a pack or unpack run.
type Stats struct {
	// Files is the number of file frames written or extracted.
	Files int

	// Dirs is the number of directory frames written or extracted.
	Dirs int

	// Skipped is the number of source entries left out of the archive.
	Skipped int

	// Bytes is the total payload size of all files.
	Bytes int64
}
