package utils

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// SaveFile copies src into destDir under a fresh unique name with the given
// extension and returns the written path.
func SaveFile(src io.Reader, destDir, ext string) (string, error) {
	// Create destination directory if it doesn't exist
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	filePath := filepath.Join(destDir, uuid.NewString()+ext)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(filePath)
		return "", err
	}
	return filePath, nil
}

// GetFileURL maps a stored upload path to the URL it is served under
func GetFileURL(uploadDir, filePath string) string {
	if filePath == "" {
		return ""
	}
	rel, err := filepath.Rel(uploadDir, filePath)
	if err != nil {
		return ""
	}
	return "/uploads/" + filepath.ToSlash(rel)
}
