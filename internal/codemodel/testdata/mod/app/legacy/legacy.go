package legacy

// Old is the previous entry point.
//
// Deprecated: use New.
func Old() {}

// New is the entry point.
func New() {}
