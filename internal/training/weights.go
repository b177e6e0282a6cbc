package training

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const defaultWeightsURL = "https://github.com/ultralytics/assets/releases/download/v8.2.0/yolov8m.pt"

// DownloadWeights fetches the pretrained base weights to destPath unless a
// file already exists there. Returns whether a download actually happened.
func DownloadWeights(url, destPath string) (bool, error) {
	if url == "" {
		url = defaultWeightsURL
	}

	if _, err := os.Stat(destPath); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat weights file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return false, fmt.Errorf("create weights dir: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		return false, fmt.Errorf("download weights: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("download weights: unexpected status %d", resp.StatusCode)
	}

	// Download to a temp file first so a partial transfer never passes the
	// existence check on the next run.
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".weights-*")
	if err != nil {
		return false, fmt.Errorf("create temp weights file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return false, fmt.Errorf("write weights file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return false, fmt.Errorf("close weights file: %w", err)
	}

	if err := os.Rename(tmpName, destPath); err != nil {
		_ = os.Remove(tmpName)
		return false, fmt.Errorf("move weights file: %w", err)
	}

	return true, nil
}
