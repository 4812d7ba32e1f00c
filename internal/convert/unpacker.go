package convert

import (
	"context"
	"encoding/binary"
	"fmt"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"parallax-banner/internal/utils"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

type FileEntry struct {
	Name   string
	Offset uint32
	Size   uint32
}

func readPkgString(r io.Reader) (string, error) {
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return "", err
	}
	if size > 4096 {
		return "", fmt.Errorf("pkg string length %d too large", size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadPkgIndex parses the header and file table of a .pkg bundle. The
// returned offset is where entry data starts.
func ReadPkgIndex(r io.Reader) (version string, entries []FileEntry, dataStart int64, err error) {
	version, err = readPkgString(r)
	if err != nil {
		return "", nil, 0, fmt.Errorf("pkg version: %w", err)
	}
	dataStart = 4 + int64(len(version))

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return "", nil, 0, fmt.Errorf("pkg file count: %w", err)
	}
	dataStart += 4

	entries = make([]FileEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := readPkgString(r)
		if err != nil {
			return "", nil, 0, fmt.Errorf("pkg entry %d: %w", i, err)
		}
		var pos [2]uint32
		if err := binary.Read(r, binary.LittleEndian, &pos); err != nil {
			return "", nil, 0, fmt.Errorf("pkg entry %d: %w", i, err)
		}
		entries = append(entries, FileEntry{Name: name, Offset: pos[0], Size: pos[1]})
		dataStart += 4 + int64(len(name)) + 8
	}
	return version, entries, dataStart, nil
}

// ExtractPkg unpacks a banner bundle into outputDir.
func ExtractPkg(pkgPath, outputDir string) error {
	utils.Debug("Unpacker: Opening package %s", pkgPath)
	f, err := os.Open(pkgPath)
	if err != nil {
		return err
	}
	defer f.Close()

	version, entries, dataStart, err := ReadPkgIndex(f)
	if err != nil {
		return fmt.Errorf("%s: %w", pkgPath, err)
	}
	utils.Debug("Unpacker: Package Version: %s, File Count: %d", version, len(entries))

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}
	root, err := filepath.Abs(outputDir)
	if err != nil {
		return err
	}

	var total uint64
	for i, entry := range entries {
		destPath := filepath.Join(root, filepath.FromSlash(entry.Name))
		if !strings.HasPrefix(destPath, root+string(filepath.Separator)) {
			return fmt.Errorf("pkg entry %q escapes output directory", entry.Name)
		}
		if i%10 == 0 || i == len(entries)-1 {
			utils.Debug("Unpacker: Extracting file %d/%d: %s", i+1, len(entries), entry.Name)
		}
		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return err
		}

		src := io.NewSectionReader(f, dataStart+int64(entry.Offset), int64(entry.Size))
		if err := writeFile(destPath, src); err != nil {
			return fmt.Errorf("extract %s: %w", entry.Name, err)
		}
		total += uint64(entry.Size)
	}

	utils.Info("Unpacked %d files (%s) from %s", len(entries), humanize.Bytes(total), filepath.Base(pkgPath))
	return nil
}

func writeFile(path string, r io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ConvertTextures decodes every .tex under root into a PNG next to it (or
// into outDir when set). Individual failures are logged and skipped.
func ConvertTextures(ctx context.Context, root, outDir string) (int, error) {
	utils.Info("Starting bulk texture conversion in parallel...")
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return 0, err
		}
	}

	var converted atomic.Int32
	g, ctx := errgroup.WithContext(ctx)
	// Limit concurrency to avoid RAM spikes
	g.SetLimit(10)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".tex") {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		g.Go(func() error {
			if err := convertTexture(path, outDir); err != nil {
				utils.Error("Failed to convert %s: %v", path, err)
				return nil
			}
			converted.Add(1)
			return nil
		})
		return nil
	})

	if werr := g.Wait(); err == nil {
		err = werr
	}
	utils.Info("Bulk conversion finished. Processed %d textures.", converted.Load())
	return int(converted.Load()), err
}

func convertTexture(path, outDir string) error {
	img, err := DecodeImage(path)
	if err != nil {
		return err
	}

	pngPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
	if outDir != "" {
		pngPath = filepath.Join(outDir, filepath.Base(pngPath))
	}

	out, err := os.Create(pngPath)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(pngPath)
		return err
	}
	return out.Close()
}
