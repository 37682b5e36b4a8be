package annomap

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger creates a logger with timestamp formatting that writes to w and
// filters messages below level.
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "annomap",
	})
}

// logger returns o.Logger, or a stderr logger at o.LogLevel.
func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	level, err := log.ParseLevel(o.LogLevel)
	if err != nil {
		level = log.WarnLevel
	}
	return NewLogger(os.Stderr, level)
}
