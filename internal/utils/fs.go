package utils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// AssetsPath is an optional extra root searched for banner media.
var AssetsPath string

// ExtractDir is where banner bundles are unpacked.
var ExtractDir = "tmp"

var (
	imageExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".bmp", ".tga", ".tex"}
	videoExtensions = []string{".mp4", ".webm", ".mov", ".mkv"}
)

var errFound = errors.New("found")

func IsVideoPath(p string) bool {
	return hasExtension(p, videoExtensions)
}

func IsImagePath(p string) bool {
	return hasExtension(p, imageExtensions)
}

func hasExtension(p string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// ResolveMediaPath finds the file a descriptor's src points at. Absolute
// paths and URLs are returned as-is; relative ones are tried against the
// descriptor directory, the extracted bundle dir and AssetsPath in that
// order. If nothing exists the descriptor-relative path is returned.
func ResolveMediaPath(baseDir, src string) string {
	if src == "" {
		return ""
	}
	if strings.Contains(src, "://") || filepath.IsAbs(src) {
		return src
	}

	clean := strings.TrimPrefix(filepath.FromSlash(src), string(filepath.Separator))
	searchPaths := []string{
		filepath.Join(baseDir, clean),
		filepath.Join(ExtractDir, clean),
	}
	if AssetsPath != "" {
		searchPaths = append(searchPaths, filepath.Join(AssetsPath, clean))
	}

	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if found := FindMediaFile(baseDir, filepath.Base(clean)); found != "" {
		return found
	}
	return searchPaths[0]
}

// FindMediaFile does a recursive search under root for a file whose base
// name matches name, ignoring the extension if name has none.
func FindMediaFile(root, name string) string {
	if root == "" || name == "" {
		return ""
	}
	if _, err := os.Stat(root); err != nil {
		return ""
	}

	target := strings.TrimSuffix(name, filepath.Ext(name))
	exact := filepath.Ext(name) != ""

	var foundPath string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		base := d.Name()
		if exact {
			if base == name {
				foundPath = path
				return errFound
			}
			return nil
		}
		if strings.TrimSuffix(base, filepath.Ext(base)) == target && (IsImagePath(base) || IsVideoPath(base)) {
			foundPath = path
			return errFound
		}
		return nil
	})
	return foundPath
}

// ListDescriptors returns every .json file directly under dir, sorted by
// name. A file path is returned as a single-element list.
func ListDescriptors(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		out = append(out, filepath.Join(path, e.Name()))
	}
	return out, nil
}
