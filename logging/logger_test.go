package logging

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainFormatterSortsFields(t *testing.T) {
	f := &PlainFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		LevelDesc:       []string{"PANC", "FATL", "ERRO", "WARN", "INFO", "DEBG", "TRCE"},
	}

	entry := &logrus.Entry{
		Time:    time.Date(2024, 6, 11, 8, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "INDEX-BUILD[]: skipping parcel",
		Data: logrus.Fields{
			"reason":     "malformed",
			"expediente": "EXP-1",
		},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "WARN 2024-06-11 08:30:00 INDEX-BUILD[]: skipping parcel expediente=EXP-1 reason=malformed\n", string(out))
}

func TestValidate(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.MaxBackups = -1
	assert.Error(t, cfg.Validate())

	cfg.Filename = ""
	assert.NoError(t, cfg.Validate())
}
