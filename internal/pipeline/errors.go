package pipeline

import "errors"

// ErrStorage marks artifact store failures. The request must fail when it is
// returned; computed results are never reported as cached when they were not.
var ErrStorage = errors.New("artifact storage failure")
