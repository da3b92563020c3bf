package hevcdecoder

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// customFFmpegPath overrides ffmpeg discovery when set via SetFFmpegPath.
var customFFmpegPath string

// SetFFmpegPath sets an explicit ffmpeg executable path. It takes
// precedence over the FFMPEG_PATH environment variable and PATH lookup.
// An empty path restores automatic discovery.
func SetFFmpegPath(path string) {
	customFFmpegPath = path
}

// FindFFmpeg locates the ffmpeg executable using the following priority:
// 1. Custom path set via SetFFmpegPath
// 2. FFMPEG_PATH environment variable
// 3. System PATH lookup
// 4. Common installation paths by OS
func FindFFmpeg() (string, error) {
	if customFFmpegPath != "" {
		if _, err := os.Stat(customFFmpegPath); err == nil {
			return customFFmpegPath, nil
		}
		return "", fmt.Errorf("custom ffmpeg path not found: %s", customFFmpegPath)
	}

	if envPath := os.Getenv("FFMPEG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return path, nil
	}
	if runtime.GOOS == "windows" {
		if path, err := exec.LookPath("ffmpeg.exe"); err == nil {
			return path, nil
		}
	}

	var commonPaths []string
	switch runtime.GOOS {
	case "darwin":
		commonPaths = []string{
			"/opt/homebrew/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/usr/bin/ffmpeg",
		}
	case "linux":
		commonPaths = []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/opt/homebrew/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	case "windows":
		commonPaths = []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files (x86)\ffmpeg\bin\ffmpeg.exe`,
		}
	}

	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrFFmpegNotFound
}

// IsFFmpegAvailable checks if an ffmpeg executable can be located.
func IsFFmpegAvailable() bool {
	_, err := FindFFmpeg()
	return err == nil
}
