package eventstream

import "errors"

// ErrNilResearchEvent indicates a nil research event payload was provided to a publisher.
var ErrNilResearchEvent = errors.New("nil research event")
