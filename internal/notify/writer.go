package notify

import (
	"context"
	"fmt"
	"io"
)

// WriterNotifier prints messages to w instead of delivering them. Used for
// dry runs.
type WriterNotifier struct {
	w io.Writer
}

// NewWriterNotifier creates a WriterNotifier.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Send writes message followed by a newline.
func (n *WriterNotifier) Send(_ context.Context, message string) error {
	if _, err := fmt.Fprintln(n.w, message); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	return nil
}
