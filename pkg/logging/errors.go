package logging

import "errors"

var (
	ErrInit            = errors.New("logging: initialize relay")
	ErrInstallHook     = errors.New("logging: install panic hook")
	ErrInvalidLevel    = errors.New("logging: invalid level")
	ErrInvalidEvent    = errors.New("logging: invalid event encoding")
	ErrWriteEvent      = errors.New("logging: write event")
	ErrDecodeEvent     = errors.New("logging: decode event")
	ErrSinkClosed      = errors.New("logging: sink closed")
	ErrReadCrashOutput = errors.New("logging: read crash output")
	ErrOpenCrashSink   = errors.New("logging: open crash monitor sink")
)
