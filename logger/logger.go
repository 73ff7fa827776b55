package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds the process wide logger. Debug mode logs everything from the
// debug level up in a console friendly format.
func Init(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	l, err := config.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(l)
	return l, nil
}

func L() *zap.Logger {
	return zap.L()
}

func S() *zap.SugaredLogger {
	return zap.S()
}

func Sync() {
	_ = zap.L().Sync()
}
