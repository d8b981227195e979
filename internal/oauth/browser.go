package oauth

import (
	"fmt"
	"os/exec"
	"runtime"
)

// BrowserOpener opens a URL for the user.
type BrowserOpener func(url string) error

// OpenBrowser opens url in the default browser on Linux, macOS and Windows.
// It does not wait for the browser to exit.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
