package cache

import "errors"

// ErrClosed is returned by operations on a cache after Close.
var ErrClosed = errors.New("cache closed")
