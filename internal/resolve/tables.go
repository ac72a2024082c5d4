package resolve

import (
	"os"
	"path/filepath"
	"runtime"
)

// Default friendly-name tables. Windows install paths mirror the common
// vendor locations; bare names cover PATH installs on every platform.
func defaultApps() Table {
	chrome := []string{"chrome.exe", "google-chrome", "chromium",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`}
	code := []string{"code", "Code.exe",
		filepath.Join(os.Getenv("LOCALAPPDATA"), "Programs", "Microsoft VS Code", "Code.exe")}

	return Table{
		"chrome":             chrome,
		"google chrome":      chrome,
		"edge": {"msedge.exe", "microsoft-edge",
			`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
			`C:\Program Files\Microsoft\Edge\Application\msedge.exe`},
		"firefox": {"firefox.exe", "firefox",
			`C:\Program Files\Mozilla Firefox\firefox.exe`,
			`C:\Program Files (x86)\Mozilla Firefox\firefox.exe`},
		"vscode":             code,
		"visual studio code": code,
		"notepad":            {"notepad.exe", `C:\Windows\System32\notepad.exe`},
		"calculator":         {"calc.exe", "gnome-calculator", `C:\Windows\System32\calc.exe`},
		"paint":              {"mspaint.exe", `C:\Windows\System32\mspaint.exe`},
		"spotify": {"spotify.exe", "spotify",
			filepath.Join(os.Getenv("APPDATA"), "Spotify", "Spotify.exe")},
		"slack":   {"slack.exe", "slack"},
		"discord": {"Discord.exe", "discord"},
		"teams": {"Teams.exe", "teams",
			`C:\Program Files\Microsoft\Teams\current\Teams.exe`},
		"word":  {"WINWORD.EXE", `C:\Program Files\Microsoft Office\root\Office16\WINWORD.EXE`},
		"excel": {"EXCEL.EXE", `C:\Program Files\Microsoft Office\root\Office16\EXCEL.EXE`},
		"powershell": {"powershell.exe", "pwsh",
			`C:\Windows\System32\WindowsPowerShell\v1.0\powershell.exe`},
		"whatsapp": {"WhatsApp.exe", "whatsapp",
			filepath.Join(os.Getenv("LOCALAPPDATA"), "WhatsApp", "WhatsApp.exe")},
	}
}

func defaultWebsites() map[string]string {
	return map[string]string{
		"google":        "https://www.google.com",
		"youtube":       "https://www.youtube.com",
		"facebook":      "https://www.facebook.com",
		"twitter":       "https://www.twitter.com",
		"instagram":     "https://www.instagram.com",
		"linkedin":      "https://www.linkedin.com",
		"github":        "https://www.github.com",
		"stackoverflow": "https://stackoverflow.com",
		"reddit":        "https://www.reddit.com",
		"amazon":        "https://www.amazon.com",
		"netflix":       "https://www.netflix.com",
		"wikipedia":     "https://www.wikipedia.org",
		"gmail":         "https://mail.google.com",
		"outlook":       "https://outlook.live.com",
		"yahoo":         "https://www.yahoo.com",
		"bing":          "https://www.bing.com",
		"duckduckgo":    "https://duckduckgo.com",
		"whatsapp":      "https://web.whatsapp.com",
	}
}

func defaultSearchDirs() []string {
	if runtime.GOOS == "windows" {
		home := os.Getenv("USERPROFILE")
		return dropEmpty([]string{
			os.Getenv("PROGRAMFILES"),
			os.Getenv("PROGRAMFILES(X86)"),
			os.Getenv("LOCALAPPDATA"),
			`C:\Program Files`,
			`C:\Program Files (x86)`,
			`C:\Windows\System32`,
			filepath.Join(home, "AppData", "Local", "Programs"),
		})
	}

	home, _ := os.UserHomeDir()
	dirs := []string{"/usr/local/bin", "/opt"}
	if runtime.GOOS == "darwin" {
		dirs = append(dirs, "/Applications")
	}
	if home != "" {
		dirs = append(dirs, filepath.Join(home, ".local", "bin"))
	}
	return dirs
}

func dropEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
