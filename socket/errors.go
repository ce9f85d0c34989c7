package socket

import "errors"

var (
	errUnsupportedDomain = errors.New("socket: unsupported domain")
	errUnknownSocket     = errors.New("socket: unknown socket id")
)
