// debug_log.go - Debug-only logging, gated per component by Config.Debug.

package audio

import "log"

func debugLogf(enabled bool, format string, args ...any) {
	if !enabled {
		return
	}
	log.Printf(format, args...)
}
