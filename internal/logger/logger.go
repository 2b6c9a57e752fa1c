package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/detoxscan/internal/constants"
)

// Logger is the process-wide logger. It stays nil until Init, and the
// helpers below drop messages until then.
var Logger *log.Logger

type Config struct {
	Debug     bool
	ConfigDir string
}

// Path returns the log file location under configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, "logs", constants.AppName+".log")
}

// Init points Logger at a rotating file. Debug mode lowers the level and
// mirrors output to stderr; otherwise stderr is left to command output.
func Init(cfg Config) error {
	file := Path(cfg.ConfigDir)
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return err
	}

	var out io.Writer = &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	level := log.WarnLevel
	if cfg.Debug {
		out = io.MultiWriter(os.Stderr, out)
		level = log.DebugLevel
	}

	Logger = log.NewWithOptions(out, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})
	return nil
}

func emit(level log.Level, msg string, keyvals []any) {
	if Logger == nil {
		return
	}
	Logger.Helper()
	Logger.Log(level, msg, keyvals...)
}

func Debug(msg string, keyvals ...any) { emit(log.DebugLevel, msg, keyvals) }

func Info(msg string, keyvals ...any) { emit(log.InfoLevel, msg, keyvals) }

func Warn(msg string, keyvals ...any) { emit(log.WarnLevel, msg, keyvals) }

func Error(msg string, keyvals ...any) { emit(log.ErrorLevel, msg, keyvals) }
