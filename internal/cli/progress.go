package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter shows a progress bar while files are linted.
type CLIProgressReporter struct {
	w       io.Writer
	quiet   bool
	fileBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to w.
func NewCLIProgressReporter(w io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{w: w, quiet: quiet}
}

func (c *CLIProgressReporter) OnLintStart(totalFiles int) {
	if c.quiet || totalFiles == 0 {
		return
	}
	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.w),
		progressbar.OptionSetDescription("Linting files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (c *CLIProgressReporter) OnFileLinted(processed, total int, path string) {
	if c.quiet || c.fileBar == nil {
		return
	}
	_ = c.fileBar.Add(1)
}

func (c *CLIProgressReporter) OnLintComplete(files, diagnostics int, duration time.Duration) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		_ = c.fileBar.Finish()
		c.fileBar = nil
	}
	fmt.Fprintf(c.w, "✓ Linted %d files in %.1fs\n", files, duration.Seconds())
}
