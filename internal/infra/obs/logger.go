package obs

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// NewLogger builds the process logger: tinted human-readable output while
// developing, JSON lines for anything deployed. Dev runs at debug so the
// widget's discarded-response traces show up.
func NewLogger(env string) *slog.Logger {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "", "dev", "local", "test", "testing":
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.TimeOnly,
		}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
}
