package tui

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/javiermolinar/weekfit/internal/logging"
)

// DebugLogPath is the fixed path for viewer debug logs.
const DebugLogPath = "weekfit-debug.log"

// openDebugLog returns a JSON logger writing to DebugLogPath when enabled,
// and a no-op logger otherwise. The returned func closes the file.
func openDebugLog(enabled bool) (zerolog.Logger, func(), error) {
	if !enabled {
		return logging.Nop(), func() {}, nil
	}

	f, err := os.Create(DebugLogPath)
	if err != nil {
		return logging.Nop(), func() {}, fmt.Errorf("creating debug log: %w", err)
	}
	logger, err := logging.New(f, "debug", "json", "tui")
	if err != nil {
		_ = f.Close()
		return logging.Nop(), func() {}, err
	}
	logger.Debug().Str("log_file", DebugLogPath).Msg("debug start")

	return logger, func() {
		logger.Debug().Msg("debug end")
		_ = f.Close()
	}, nil
}
