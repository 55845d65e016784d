package media

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"

	"rearcam/internal/core/model"
)

// ErrNoMedia is returned when the directory holds no matching capture.
var ErrNoMedia = errors.New("no recent media")

var (
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
	videoExtensions = map[string]bool{".mp4": true, ".mkv": true}
	audioExtensions = map[string]bool{".m4a": true, ".aac": true}
)

// Matches reports whether path has an extension of the given kind.
func Matches(path string, kind model.MediaKind) bool {
	extension := strings.ToLower(filepath.Ext(path))
	switch kind {
	case model.MediaImage:
		return imageExtensions[extension]
	case model.MediaVideo:
		return videoExtensions[extension]
	default:
		return imageExtensions[extension] || videoExtensions[extension] || audioExtensions[extension]
	}
}

// FindRecent returns the most recently modified capture of kind in dir.
func FindRecent(dir string, kind model.MediaKind) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoMedia
		}
		return "", fmt.Errorf("read media dir: %w", err)
	}

	var newest string
	var newestInfo os.FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !Matches(entry.Name(), kind) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newestInfo == nil || info.ModTime().After(newestInfo.ModTime()) ||
			(info.ModTime().Equal(newestInfo.ModTime()) && entry.Name() > filepath.Base(newest)) {
			newest = filepath.Join(dir, entry.Name())
			newestInfo = info
		}
	}
	if newest == "" {
		return "", ErrNoMedia
	}
	return newest, nil
}

// Thumbnail decodes an image file and scales it to fit within size x size.
func Thumbnail(path string, size uint) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open thumbnail source: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	decoded, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return resize.Thumbnail(size, size, decoded, resize.Lanczos3), nil
}
