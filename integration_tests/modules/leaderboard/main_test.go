package leaderboardintegrationtests

import (
	"os"
	"testing"

	"github.com/Black-And-White-Club/tipster/integration_tests/testutils"
)

func TestMain(m *testing.M) {
	code := m.Run()
	testutils.Teardown()
	os.Exit(code)
}
