package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type PlainFormatter struct {
	TimestampFormat string
	LevelDesc       []string
}

// Format writes "LEVEL timestamp message" followed by any fields as
// sorted key=value pairs.
func (f *PlainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var buf bytes.Buffer

	levelDesc := "UNKN"
	if int(entry.Level) < len(f.LevelDesc) {
		levelDesc = f.LevelDesc[entry.Level]
	}

	buf.WriteString(levelDesc)
	buf.WriteByte(' ')
	buf.WriteString(entry.Time.Format(f.TimestampFormat))
	buf.WriteByte(' ')
	buf.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&buf, " %s=%v", k, entry.Data[k])
		}
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

type Config struct {
	Debug      bool   `koanf:"debug" json:"debug"`
	Filename   string `koanf:"filename" json:"filename"`
	MaxSizeMB  int    `koanf:"max_size" json:"max_size"` // MB
	MaxBackups int    `koanf:"max_backups" json:"max_backups"`
	MaxAgeDays int    `koanf:"max_age" json:"max_age"` // Days
	Compress   bool   `koanf:"compress" json:"compress"`
}

func (cfg *Config) Validate() error {
	if cfg.Filename == "" {
		return nil
	}
	if cfg.MaxSizeMB < 0 {
		return fmt.Errorf("invalid logging max_size '%d': must be >= 0", cfg.MaxSizeMB)
	}
	if cfg.MaxBackups < 0 {
		return fmt.Errorf("invalid logging max_backups '%d': must be >= 0", cfg.MaxBackups)
	}
	if cfg.MaxAgeDays < 0 {
		return fmt.Errorf("invalid logging max_age '%d': must be >= 0", cfg.MaxAgeDays)
	}
	return nil
}

func GetDefaultConfig() Config {
	return Config{
		Filename:   "logs/parcelfinder.log",
		MaxSizeMB:  500,
		MaxBackups: 10,
		MaxAgeDays: 30,
		Compress:   true,
	}
}

func (cfg *Config) CreateLogger(rotate bool, wrapStdlibDefault bool) *logrus.Logger {
	output := io.Writer(os.Stdout)

	if cfg.Filename != "" {
		lumberjackLogger := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}

		if rotate {
			lumberjackLogger.Rotate()
		}

		// Fork writing into two outputs
		output = io.MultiWriter(output, lumberjackLogger)
	}

	logFormatter := &PlainFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		LevelDesc:       []string{"PANC", "FATL", "ERRO", "WARN", "INFO", "DEBG", "TRCE"},
	}

	logger := logrus.New()
	logger.SetFormatter(logFormatter)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	logger.SetOutput(output)

	if wrapStdlibDefault {
		log.SetOutput(logger.Writer())
	}

	return logger
}
