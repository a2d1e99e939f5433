// Package ttyguard keeps terminal capability probes out of machine-readable
// output. Import it for side effects before anything that touches lipgloss.
//
// Some PTY capture environments answer background-color detection by writing
// OSC/DSR sequences to stdout, which corrupts JSON. For robot, check and
// export invocations CI=1 is set early so termenv skips those probes.
package ttyguard

import (
	"os"
	"strings"
)

func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !shouldSuppress(os.Args[1:], os.Getenv("OASFTREE_ROBOT") == "1") {
		return
	}
	_ = os.Setenv("CI", "1")
}

func shouldSuppress(args []string, envRobot bool) bool {
	if envRobot {
		return true
	}
	for _, arg := range args {
		name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if arg == name {
			// not a flag
			continue
		}
		if strings.HasPrefix(name, "robot-") {
			return true
		}
		switch name {
		case "check", "export-sqlite", "export-svg", "export-png", "version", "help":
			return true
		}
	}
	return false
}
