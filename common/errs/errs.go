package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound           = ErrorKind("Not Found")
	InvalidArgument    = ErrorKind("Invalid Argument")
	InternalError      = ErrorKind("Internal Error")
	Timeout            = ErrorKind("Timeout")
	Unsupported        = ErrorKind("Unsupported")
	ConflictSetting    = ErrorKind("Conflict Setting")
	Closed             = ErrorKind("Closed")
	SomethingWentWrong = ErrorKind("Something went wrong")

	// CycleDetected is returned by thread traversal when topic references
	// form a cycle instead of a tree.
	CycleDetected = ErrorKind("Cycle Detected")

	// ReorgInconsistency is returned when a rollback target is older than
	// the store's retained history.
	ReorgInconsistency = ErrorKind("Reorg Inconsistency")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
