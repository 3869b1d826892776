package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/scantrend/pkg/utils/logging"
)

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]logging.Format{
		"":        logging.FormatAuto,
		"auto":    logging.FormatAuto,
		"console": logging.FormatConsole,
		"JSON":    logging.FormatJSON,
	} {
		got, err := logging.ParseFormat(input)
		gt.NoError(t, err)
		gt.Equal(t, want, got)
	}

	_, err := logging.ParseFormat("xml")
	gt.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	gt.Equal(t, slog.LevelDebug, logging.ParseLogLevel("DEBUG"))
	gt.Equal(t, slog.LevelWarn, logging.ParseLogLevel("warning"))
	gt.Equal(t, slog.LevelError, logging.ParseLogLevel("error"))
	gt.Equal(t, slog.LevelInfo, logging.ParseLogLevel("bogus"))
}

func TestNewLoggerWithFormat(t *testing.T) {
	t.Run("auto on a buffer writes JSON", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewLogger(slog.LevelInfo, &buf)
		logger.Info("hello", "commit", "abc123")

		var record map[string]any
		gt.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		gt.Equal(t, "hello", record["msg"])
		gt.Equal(t, "abc123", record["commit"])
	})

	t.Run("level filters records", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewLoggerWithFormat(slog.LevelWarn, &buf, logging.FormatJSON)
		logger.Info("dropped")
		gt.Equal(t, 0, buf.Len())
	})

	t.Run("console format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewLoggerWithFormat(slog.LevelInfo, &buf, logging.FormatConsole)
		logger.Info("hello")
		gt.S(t, buf.String()).Contains("hello")
	})
}
