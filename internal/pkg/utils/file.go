package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/airenas/go-app/pkg/goapp"
)

// WriteFile write file to disk
func WriteFile(name string, data []byte) error {
	goapp.Log.Info().Str("name", name).Msg("Save")
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}

// FileExists check if file exists
func FileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// SupportMediaExt checks if media file ext is supported for upload
func SupportMediaExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".mp4", ".avi", ".mkv", ".mov", ".webm", ".flv", ".wmv":
		return true
	}
	return false
}

// FileStem returns the file name without dir and extension
func FileStem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// MakeValidateFileName cleans the name and makes sure it does not escape the dir
func MakeValidateFileName(dir, name string) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || strings.ContainsAny(base, "\x00") {
		return "", fmt.Errorf("wrong file name '%s'", name)
	}
	return filepath.Join(dir, base), nil
}

// ParamTrue - returns true if string param indicates true value
func ParamTrue(prm string) bool {
	return strings.ToLower(prm) == "true" || prm == "1"
}
