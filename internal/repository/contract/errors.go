package contract

import "errors"

// ErrDuplicate is returned by Create methods when a unique constraint rejects
// the row. Callers use it as the insert-if-absent signal.
var ErrDuplicate = errors.New("duplicate record")
