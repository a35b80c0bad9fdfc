package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"testing"
)

type setupType struct {
	logger *KMSLogger
	buffer bytes.Buffer
}

func beforeEach(t *testing.T) *setupType {
	var r setupType

	err := InitLoggerWithWriter("info", "json", &r.buffer, false)
	if err != nil {
		t.Fatal(err)
	}

	r.logger = GetLogger()

	return &r
}

type logType struct {
	Time   string
	Level  string
	Source struct {
		Function string
		File     string
		Line     int
	}
	Msg       string
	Stack     string
	Error     string
	Validator string
	Addr      string
	Port      int
}

func parseResult(setup *setupType, t *testing.T) (string, logType) {
	raw := setup.buffer.String()
	var parsed logType

	err := json.Unmarshal(setup.buffer.Bytes(), &parsed)
	if err != nil {
		t.Fatalf("fail to parse log: %v: %s", err, raw)
	}

	return raw, parsed
}

func TestLogLevel(t *testing.T) {
	setup := beforeEach(t)

	setup.logger.log(slog.LevelDebug, 0, "test")
	if 0 < setup.buffer.Len() {
		t.Fatalf("debug log is output: %s", setup.buffer.String())
	}
}

func TestLogLog(t *testing.T) {
	setup := beforeEach(t)

	setup.logger.log(slog.LevelInfo, 0, "test")
	raw, r := parseResult(setup, t)

	if r.Level != "INFO" {
		t.Fatalf("mismatch level: %s", raw)
	}

	if m, err := regexp.MatchString(`/log.TestLogLog$`, r.Source.Function); err != nil || !m {
		t.Fatalf("mismatch source.function: %v", raw)
	}
}

func TestLogError(t *testing.T) {
	setup := beforeEach(t)

	setup.logger.Error("testerr", fmt.Errorf("dummy"))
	raw, r := parseResult(setup, t)

	if r.Level != "ERROR" {
		t.Fatalf("mismatch level: %s", raw)
	}

	if m, err := regexp.MatchString(`/log.TestLogError$`, r.Source.Function); err != nil || !m {
		t.Fatalf("mismatch source.function: %v", raw)
	}

	if r.Error != "dummy" {
		t.Fatalf("mismatch error: %s", raw)
	}
}

func TestLogErrorWithStack(t *testing.T) {
	var buffer bytes.Buffer
	if err := InitLoggerWithWriter("info", "json", &buffer, true); err != nil {
		t.Fatal(err)
	}

	GetLogger().Error("testerr", fmt.Errorf("dummy"))

	var parsed logType
	if err := json.Unmarshal(buffer.Bytes(), &parsed); err != nil {
		t.Fatalf("fail to parse log: %v: %s", err, buffer.String())
	}
	if parsed.Stack == "" {
		t.Fatalf("missing stack: %s", buffer.String())
	}
}

func TestLogWithTarget(t *testing.T) {
	setup := beforeEach(t)

	setup.logger.WithTarget("validator-0", "127.0.0.1", 26658).Info("test")
	raw, r := parseResult(setup, t)

	if r.Validator != "validator-0" || r.Addr != "127.0.0.1" || r.Port != 26658 {
		t.Fatalf("mismatch target attributes: %s", raw)
	}
}

func TestLogInvalidLevel(t *testing.T) {
	var buffer bytes.Buffer
	if err := InitLoggerWithWriter("verbose", "json", &buffer, false); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}
