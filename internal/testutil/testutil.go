package testutil

import (
	"flag"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

var RunLong = flag.Bool("long", false, "run long/heavy tests")

func RequireLong(t testing.TB) {
	t.Helper()
	if !*RunLong {
		t.Skip("skipping long test (use -long to enable)")
	}
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// Logger returns a logger that writes warnings and errors to the test log, so
// they show up only for failing or verbose runs.
func Logger(t testing.TB) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(testWriter{t: t})
	logger.SetLevel(logrus.WarnLevel)
	return logger
}
