package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"
)

// FindLargestImage returns the contents and name of the largest image file
// inside a zip/cbz, rar/cbr or 7z/cb7 container. The largest embedded image
// is usually the main page or the highest-quality scan, which makes it the
// best candidate for visual fingerprinting.
func FindLargestImage(archivePath string) ([]byte, string, error) {
	if containerKind(archivePath) == "" {
		return nil, "", fmt.Errorf("unsupported container format: %s", filepath.Ext(archivePath))
	}
	return findLargestImage(archivePath)
}

// ListImages returns the names of all image files inside a container
func ListImages(archivePath string) ([]string, error) {
	var names []string
	err := walkContainer(archivePath, func(name string, size int64, open func() (io.ReadCloser, error)) {
		if isImageEntry(name) {
			names = append(names, name)
		}
	})
	return names, err
}

func containerKind(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".cbz":
		return "zip"
	case ".rar", ".cbr":
		return "rar"
	case ".7z", ".cb7":
		return "7z"
	}
	return ""
}

func isImageEntry(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif", ".bmp":
		return true
	}
	return false
}

// walkContainer visits every regular file entry in the archive. Entries are
// presented lazily: open is only called for entries the visitor decides to
// read. The rar backend reads sequentially, so there open reads the current
// entry immediately.
func walkContainer(archivePath string, visit func(name string, size int64, open func() (io.ReadCloser, error))) error {
	switch containerKind(archivePath) {
	case "zip":
		reader, err := zip.OpenReader(archivePath)
		if err != nil {
			return err
		}
		defer reader.Close()

		for _, file := range reader.File {
			if file.FileInfo().IsDir() {
				continue
			}
			f := file
			visit(f.Name, int64(f.UncompressedSize64), func() (io.ReadCloser, error) { return f.Open() })
		}
		return nil

	case "7z":
		reader, err := sevenzip.OpenReader(archivePath)
		if err != nil {
			return err
		}
		defer reader.Close()

		for _, file := range reader.File {
			if file.FileInfo().IsDir() {
				continue
			}
			f := file
			visit(f.Name, f.FileInfo().Size(), func() (io.ReadCloser, error) { return f.Open() })
		}
		return nil

	case "rar":
		reader, err := rardecode.OpenReader(archivePath)
		if err != nil {
			return err
		}
		defer reader.Close()

		for {
			header, err := reader.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			if header.IsDir {
				continue
			}
			visit(header.Name, header.UnPackedSize, func() (io.ReadCloser, error) {
				return io.NopCloser(reader), nil
			})
		}

	default:
		return fmt.Errorf("unsupported container format: %s", filepath.Ext(archivePath))
	}
}

// findLargestImage keeps only the biggest image payload seen while walking.
// For rar containers the walk is sequential, which works because entries are
// either skipped outright or fully consumed before the next visit.
func findLargestImage(archivePath string) ([]byte, string, error) {
	var largestData []byte
	var largestName string
	var largestSize int64

	err := walkContainer(archivePath, func(name string, size int64, open func() (io.ReadCloser, error)) {
		if !isImageEntry(name) || size <= largestSize {
			return
		}
		rc, err := open()
		if err != nil {
			return
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err == nil && len(data) > 0 {
			largestData = data
			largestName = name
			largestSize = int64(len(data))
		}
	})
	if err != nil {
		return nil, "", err
	}
	if largestData == nil {
		return nil, "", fmt.Errorf("no image found in %s", filepath.Base(archivePath))
	}
	return largestData, largestName, nil
}
