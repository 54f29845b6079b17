// Package logs wraps a single logrus instance behind package-level helpers so
// the rest of the module never touches the logger directly.
package logs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wonvincal/lunar-sub006/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// fileHook mirrors every entry into the rotated log file with its own
// formatter, so console output can stay colored while the file stays plain.
type fileHook struct {
	formatter logrus.Formatter
	writer    io.Writer
}

func (h *fileHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *fileHook) Fire(entry *logrus.Entry) error {
	b, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(b)
	return err
}

var (
	// A plain logger is in place before Init runs so packages can log from
	// tests without the full rotated-file setup.
	log      = logrus.New()
	fileSink *fileHook
)

const timestampLayout = "2006-01-02 15:04:05"

// Init configures console plus rotated-file logging from the config block.
func Init(cfg *config.LogConfig, logFilePath string) error {
	log = logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:            true,
		FullTimestamp:          true,
		TimestampFormat:        timestampLayout,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})

	// Third-party code logging through the global logrus instance stays
	// silent; everything visible goes through this package.
	logrus.SetOutput(io.Discard)
	logrus.StandardLogger().Hooks = make(logrus.LevelHooks)

	if err := os.MkdirAll(filepath.Dir(logFilePath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	fileSink = &fileHook{
		writer: &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		},
		formatter: &logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: timestampLayout,
		},
	}
	log.AddHook(fileSink)

	Infof("Logging system initialized: level %s, file %s", level, logFilePath)
	return nil
}

// Close flushes and closes the rotated file writer.
func Close() {
	if fileSink != nil {
		if closer, ok := fileSink.writer.(io.Closer); ok {
			closer.Close()
		}
	}
	Info("Logging system closed.")
}

func Debug(args ...interface{})                 { log.Debug(args...) }
func Debugf(format string, args ...interface{}) { log.Debugf(format, args...) }
func Info(args ...interface{})                  { log.Info(args...) }
func Infof(format string, args ...interface{})  { log.Infof(format, args...) }
func Warn(args ...interface{})                  { log.Warn(args...) }
func Warnf(format string, args ...interface{})  { log.Warnf(format, args...) }
func Error(args ...interface{})                 { log.Error(args...) }
func Errorf(format string, args ...interface{}) { log.Errorf(format, args...) }
func Fatal(args ...interface{})                 { log.Fatal(args...) }
func Fatalf(format string, args ...interface{}) { log.Fatalf(format, args...) }
