package main

import (
	"path/filepath"

	"github.com/cashlabs/cashspv/infrastructure/logger"
)

var log = logger.RegisterSubSystem("HCHK")

func initLog(cfg *configFlags) error {
	err := logger.InitLog(filepath.Join(cfg.LogDir, defaultLogFilename),
		filepath.Join(cfg.LogDir, defaultErrLogFilename), true)
	if err != nil {
		return err
	}
	return logger.ParseAndSetLogLevels(cfg.LogLevel)
}
