package util

import (
	"io"
	"log/slog"
)

// CloseFunc closes c and logs, rather than returns, a failure. Meant for defer.
func CloseFunc(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("util: close failed", "err", err)
	}
}
