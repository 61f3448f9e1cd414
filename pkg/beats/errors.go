package beats

import "errors"

var (
	ErrDial       = errors.New("beats: dial endpoint")
	ErrSend       = errors.New("beats: send event")
	ErrNoEndpoint = errors.New("beats: endpoint required")
	ErrSinkClosed = errors.New("beats: sink closed")
)
