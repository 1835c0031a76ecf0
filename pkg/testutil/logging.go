package testutil

import (
	"io"
	"os"
	"slices"

	"github.com/sirupsen/logrus"
)

// Test binaries evaluate every log statement, but only print them when run
// verbosely.
func init() {
	logrus.SetLevel(logrus.TraceLevel)

	if !slices.Contains(os.Args, "-test.v=true") {
		logrus.SetOutput(io.Discard)
	}
}

// DisableLogging discards standard logger output until the returned func is
// called. Use it around failure paths that log expected errors.
func DisableLogging() (reset func()) {
	logger := logrus.StandardLogger()
	previous := logger.Out
	logger.SetOutput(io.Discard)

	return func() {
		logger.SetOutput(previous)
	}
}
