package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelForVerbosity maps the repeated -v flag: 0 errors only, 1 info, 2+ debug.
func LevelForVerbosity(v int) zapcore.Level {
	switch {
	case v <= 0:
		return zap.ErrorLevel
	case v == 1:
		return zap.InfoLevel
	default:
		return zap.DebugLevel
	}
}

// NewLogger builds the process logger once at startup. Console output goes
// to stderr at the verbosity level; when logDir is set a JSON file sink is
// added that always records info and above.
func NewLogger(logDir string, verbosity int) (*zap.Logger, error) {
	level := LevelForVerbosity(verbosity)

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.TimeKey = "ts"
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, err
		}
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(logDir, "channelcheck.log"),
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		})
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		fileLevel := zap.InfoLevel
		if level < fileLevel {
			fileLevel = level
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, fileLevel))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}
