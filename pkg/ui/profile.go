package ui

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
)

// Environment switches for side effects that tests must not trigger.
const (
	NoBrowserEnvVar = "PANTHEON_NO_BROWSER"
	TestModeEnvVar  = "PANTHEON_TEST_MODE"
)

// ProfileAction is the label of the central node's profile link.
const ProfileAction = "Aller à la fiche"

func sideEffectsDisabled() bool {
	return os.Getenv(NoBrowserEnvVar) != "" || os.Getenv(TestModeEnvVar) != ""
}

// OpenInBrowser opens url with the platform opener.
// Set PANTHEON_NO_BROWSER=1 to suppress it.
func OpenInBrowser(url string) error {
	if sideEffectsDisabled() {
		return nil
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}

// CopyToClipboard writes text to the system clipboard.
func CopyToClipboard(text string) error {
	if os.Getenv(TestModeEnvVar) != "" {
		return nil
	}
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility available")
	}
	return clipboard.WriteAll(text)
}
