package vm

import "time"

// sleep blocks the calling goroutine for durationMs milliseconds. Sleep
// is the sole suspension point in the emulator core; it touches no
// machine state.
func sleep(durationMs uint16) {
	time.Sleep(time.Duration(durationMs) * time.Millisecond)
}
