package lpack

// ProgressEvent reports one entry as it is packed, unpacked, or skipped.
type ProgressEvent struct {
	// Stage identifies what happened to the entry.
	Stage ProgressStage

	// Entry describes the entry.
	Entry Entry

	// Reason explains a skip. Empty for other stages.
	Reason string
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

// Progress stages.
const (
	// StagePacking indicates an entry frame is about to be written.
	StagePacking ProgressStage = iota

	// StageUnpacking indicates an entry is about to be created on disk.
	StageUnpacking

	// StageSkipped indicates a source entry was left out of the archive.
	StageSkipped
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StagePacking:
		return "packing"
	case StageUnpacking:
		return "unpacking"
	case StageSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during operations.
// It is called synchronously, in archive order.
type ProgressFunc func(ProgressEvent)
