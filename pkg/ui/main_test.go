package ui

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	os.Setenv(NoBrowserEnvVar, "1")
	os.Setenv(TestModeEnvVar, "1")
	os.Exit(m.Run())
}
