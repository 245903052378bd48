package logger

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// BackendLog is the logging backend used to create all subsystem loggers.
var BackendLog = NewBackend()

var (
	subsystemLoggers     = make(map[string]*Logger)
	subsystemLoggersLock sync.Mutex
)

// RegisterSubSystem returns the logger for the given subsystem tag, creating
// it on first use. Packages call it once from their log.go.
func RegisterSubSystem(subsystem string) *Logger {
	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()
	logger, exists := subsystemLoggers[subsystem]
	if !exists {
		logger = BackendLog.Logger(subsystem)
		subsystemLoggers[subsystem] = logger
	}
	return logger
}

// InitLog attaches log file and error log file to the backend log. Either
// path may be empty, in which case no file is opened for it. When
// logToStderr is set, warnings and above are also written to stderr.
func InitLog(logFile, errLogFile string, logToStderr bool) error {
	if logFile != "" {
		err := BackendLog.AddLogFile(logFile, LevelTrace)
		if err != nil {
			return errors.Wrapf(err, "error adding log file %s as log rotator for level %s", logFile, LevelTrace)
		}
	}
	if errLogFile != "" {
		err := BackendLog.AddLogFile(errLogFile, LevelWarn)
		if err != nil {
			return errors.Wrapf(err, "error adding log file %s as log rotator for level %s", errLogFile, LevelWarn)
		}
	}
	if logToStderr {
		err := BackendLog.AddLogWriter(stderrWriter{}, LevelWarn)
		if err != nil {
			return err
		}
	}
	return BackendLog.Run()
}

// SetLogLevel sets the logging level for the provided subsystem. Invalid
// subsystems are ignored. Uninitialized subsystems are dynamically created as
// needed.
func SetLogLevel(subsystemID string, logLevel string) {
	level, _ := LevelFromString(logLevel)
	RegisterSubSystem(subsystemID).SetLevel(level)
}

// SetLogLevels sets the log level for all subsystem loggers to the passed
// level.
func SetLogLevels(logLevel string) {
	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()
	level, _ := LevelFromString(logLevel)
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
}

// SupportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func SupportedSubsystems() []string {
	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}
	sort.Strings(subsystems)
	return subsystems
}

// ParseAndSetLogLevels attempts to parse the specified debug level and set
// the levels accordingly. The level is either a single global level such as
// "debug", or a global level followed by subsystem pairs such as
// "info,DIFF=trace,HDRS=debug". An appropriate error is returned if anything
// is invalid.
func ParseAndSetLogLevels(logLevel string) error {
	levels := strings.Split(logLevel, ",")

	// If the first entry has no =, treat is as the log level for all
	// subsystems.
	globalLevel := levels[0]
	if !strings.Contains(globalLevel, "=") {
		if _, ok := LevelFromString(globalLevel); !ok {
			return errors.Errorf("the specified debug level [%s] is invalid", globalLevel)
		}
		SetLogLevels(globalLevel)
		levels = levels[1:]
	}

	supported := SupportedSubsystems()
	for _, logLevelPair := range levels {
		fields := strings.Split(logLevelPair, "=")
		if len(fields) != 2 {
			return errors.Errorf("the specified debug level has an invalid "+
				"format [%s] -- use format subsystem1=level1,subsystem2=level2", logLevelPair)
		}
		subsysID, level := fields[0], fields[1]

		if !isSupported(supported, subsysID) {
			return errors.Errorf("the specified subsystem [%s] is invalid -- "+
				"supported subsystems %s", subsysID, strings.Join(supported, ", "))
		}
		if _, ok := LevelFromString(level); !ok {
			return errors.Errorf("the specified debug level [%s] is invalid", level)
		}

		SetLogLevel(subsysID, level)
	}

	return nil
}

func isSupported(subsystems []string, subsysID string) bool {
	i := sort.SearchStrings(subsystems, subsysID)
	return i < len(subsystems) && subsystems[i] == subsysID
}

// Fatalf logs a critical error to stderr and exits the process.
func Fatalf(log *Logger, format string, args ...interface{}) {
	log.Criticalf(format, args...)
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
