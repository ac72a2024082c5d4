// Package launch starts local executables and opens URLs in the
// default browser. Processes are started detached: the assistant must
// not block on, or own, what it launches.
package launch

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

type Launcher struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{logger: logger}
}

// Start launches path detached. The child is released immediately;
// failures to start are reported, failures after start are not ours.
func (l *Launcher) Start(path string) error {
	cmd := exec.Command(path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", path, err)
	}
	l.logger.Info("launched", "path", path, "pid", cmd.Process.Pid)
	go func() {
		// Reap the child so it doesn't linger as a zombie.
		_ = cmd.Wait()
	}()
	return nil
}

// OpenURL opens url in the user's default browser.
func (l *Launcher) OpenURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	l.logger.Info("opened url", "url", url)
	go func() { _ = cmd.Wait() }()
	return nil
}
