package realtime

import "errors"

var ErrHubClosed = errors.New("realtime hub closed")
