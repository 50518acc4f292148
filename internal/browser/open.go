// Package browser opens URLs in the user's default browser.
package browser

import (
	"os/exec"
	"runtime"

	"github.com/pkg/errors"
)

// Command returns the command that opens url on the given GOOS.
func Command(goos, url string) (*exec.Cmd, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", url), nil
	case "darwin":
		return exec.Command("open", url), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", "", url), nil
	default:
		return nil, errors.Errorf("unsupported platform: %s", goos)
	}
}

// Open opens url in the default browser without waiting for it.
func Open(url string) error {
	cmd, err := Command(runtime.GOOS, url)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "starting %s", cmd.Path)
	}
	go func() { _ = cmd.Wait() }() // reap
	return nil
}
