package logging

import (
	"fmt"
	"io"

	"go.uber.org/multierr"
)

// teeWriter writes every line to all writers. One failing writer does not
// stop the others; the line counts as written when any writer took it whole.
type teeWriter struct {
	writers []io.Writer
}

func (t *teeWriter) Write(p []byte) (int, error) {
	var errs error
	written := false
	for i, w := range t.writers {
		n, err := w.Write(p)
		if err == nil && n < len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("log writer %d: %w", i, err))
			continue
		}
		written = true
	}

	if !written {
		return 0, errs
	}
	return len(p), errs
}
