package sip_test

import (
	"log/slog"
	"os"
	"testing"

	"go.uber.org/goleak"

	"github.com/ghettovoice/sipmsg/internal/log"
	"github.com/ghettovoice/sipmsg/internal/util"
	"github.com/ghettovoice/sipmsg/uri"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func mustURI(s string) *uri.URI { return util.Must(uri.Parse(s)) }

// testLogger returns log.Dev when SIPMSG_TEST_LOG=dev,
// log.Def in verbose mode and log.Noop otherwise.
func testLogger() *slog.Logger {
	switch {
	case os.Getenv("SIPMSG_TEST_LOG") == "dev":
		return log.Dev
	case testing.Verbose():
		return log.Def
	default:
		return log.Noop
	}
}
