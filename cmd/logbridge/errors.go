package main

import "errors"

// Tail errors
var (
	ErrListen       = errors.New("listen on socket")
	ErrAccept       = errors.New("accept producer connection")
	ErrRemoveSocket = errors.New("remove stale socket")
)

// Emit errors
var (
	ErrDialSocket   = errors.New("dial socket")
	ErrDialBeats    = errors.New("dial beats endpoint")
	ErrMessage      = errors.New("message required")
	ErrReadStdin    = errors.New("read stdin")
	ErrDeliverEvent = errors.New("deliver event")
)
