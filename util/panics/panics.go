package panics

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/cashlabs/cashspv/infrastructure/logger"
)

const exitHandlerTimeout = 5 * time.Second

// HandlePanic recovers a panic, logs it with its stack trace and exits the
// process once the log backend is flushed. It must be deferred directly.
func HandlePanic(log *logger.Logger) {
	err := recover()
	if err == nil {
		return
	}

	reason := fmt.Sprintf("Fatal error: %+v", err)
	exit(log, reason, debug.Stack())
}

// Exit logs the given reason and exits the process once the log backend is
// flushed.
func Exit(log *logger.Logger, reason string) {
	exit(log, reason, nil)
}

func exit(log *logger.Logger, reason string, stackTrace []byte) {
	exitHandlerDone := make(chan struct{})
	go func() {
		log.Criticalf("Exiting: %s", reason)
		if stackTrace != nil {
			log.Criticalf("Stack trace: %s", stackTrace)
		}
		log.Backend().Close()
		close(exitHandlerDone)
	}()

	select {
	case <-time.After(exitHandlerTimeout):
		fmt.Fprintln(os.Stderr, "Couldn't exit gracefully.")
	case <-exitHandlerDone:
	}
	fmt.Fprintln(os.Stderr, reason)
	os.Exit(1)
}
