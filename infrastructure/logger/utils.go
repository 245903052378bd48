package logger

import (
	"time"
)

// LogAndMeasureExecutionTime logs that functionName started and returns a
// function that logs how long it ran. Both are logged at debug level:
//
//	onEnd := logger.LogAndMeasureExecutionTime(log, "ProcessHeaders")
//	defer onEnd()
func LogAndMeasureExecutionTime(log *Logger, functionName string) (onEnd func()) {
	start := time.Now()
	log.Debugf("%s started", functionName)
	return func() {
		log.Debugf("%s finished in %s", functionName, time.Since(start))
	}
}
