package assembly

import (
	"os"
	"path/filepath"
)

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func joinPath(dir, name string) string {
	return filepath.Join(dir, name)
}
