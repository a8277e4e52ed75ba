package testutil

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Tests log at trace level, but only print when run with -v.
func init() {
	logrus.SetLevel(logrus.TraceLevel)

	for _, arg := range os.Args {
		if arg == "-test.v=true" {
			return
		}
	}
	logrus.StandardLogger().Out = io.Discard
}
