package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner writes the shell startup banner to w.
func PrintBanner(w io.Writer, config *Config, logger *Logger) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 56
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	art := []string{
		`  ___  ____      _    _   _  ____ _____`,
		` / _ \|  _ \    / \  | \ | |/ ___| ____|`,
		`| | | | |_) |  / _ \ |  \| | |  _|  _|`,
		`| |_| |  _ <  / ___ \| |\  | |_| | |___`,
		` \___/|_| \_\/_/   \_\_| \_|\____|_____|`,
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(w, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  A CLI based investment app%s\n\n", textColor, banner.ColorReset)

	kvPad := 12
	kvLines := [][2]string{
		{"Version", GetVersion()},
		{"Environment", config.Environment},
		{"Storage", config.Storage.Backend + " " + config.StorageAddress()},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)

	logger.Info().
		Str("version", GetVersion()).
		Str("environment", config.Environment).
		Str("storage", config.StorageAddress()).
		Msg("Session started")
}

// PrintShutdownBanner writes the goodbye line to w.
func PrintShutdownBanner(w io.Writer, logger *Logger) {
	lineColor := banner.ColorCyan
	hr := lineColor + strings.Repeat("═", 32) + banner.ColorReset

	fmt.Fprintf(w, "\n%s\n  ORANGE: goodbye\n%s\n\n", hr, hr)

	logger.Info().Msg("Session ended")
}
