package difficultymanager

import (
	"github.com/cashlabs/cashspv/infrastructure/logger"
)

var log = logger.RegisterSubSystem("DIFF")
