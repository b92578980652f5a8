package surface

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// DetectChrome locates a Chrome/Chromium binary: PATH lookup over the usual
// names first, then the common per-OS install locations.
func DetectChrome() (string, bool) {
	binaries := []string{
		"google-chrome",
		"google-chrome-stable",
		"chromium",
		"chromium-browser",
	}
	for _, bin := range binaries {
		if path, err := exec.LookPath(bin); err == nil {
			return path, true
		}
	}
	for _, path := range commonChromePaths() {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func commonChromePaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	case "linux":
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
		}
	case "windows":
		return []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files\Chromium\Application\chromium.exe`,
			`C:\Program Files (x86)\Chromium\Application\chromium.exe`,
		}
	default:
		return nil
	}
}

// ChromeVersion reports the browser version string, "unknown" on failure.
func ChromeVersion(path string) string {
	output, err := exec.Command(path, "--version").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}

// ValidateChrome resolves the browser path for the factory: the configured
// path when set, otherwise auto-detection. Rendering cannot work without
// a browser, so a miss is an error the caller surfaces at startup.
func ValidateChrome(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", fmt.Errorf("configured chrome path %q: %w", configured, err)
		}
		return configured, nil
	}
	path, ok := DetectChrome()
	if !ok {
		return "", fmt.Errorf("chrome/chromium not found; install it or set SWIFTBILL_CHROME_PATH")
	}
	return path, nil
}
