package output

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yeorinhieut/novel-dl/internal/ui"
)

// PartialSuffix marks a file that is still being written.
const PartialSuffix = ".part"

// FileSink writes into a directory. Files are written under a temporary
// name and renamed into place once complete.
type FileSink struct {
	Dir string
	log *ui.Logger
}

func NewFileSink(dir string, log *ui.Logger) *FileSink {
	return &FileSink{Dir: dir, log: log}
}

func (s *FileSink) SaveText(name, content string) (string, error) {
	return s.write(name, func(w io.Writer) error {
		_, err := io.WriteString(w, content)
		return err
	})
}

func (s *FileSink) SaveArchive(name string, entries []Entry) (string, error) {
	return s.write(name, func(w io.Writer) error {
		return writeZip(w, entries)
	})
}

func (s *FileSink) write(name string, fill func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create output folder: %w", err)
	}

	final := filepath.Join(s.Dir, name)
	tmp := final + PartialSuffix

	out, err := os.Create(tmp)
	if err != nil {
		return "", err
	}

	if err := fill(out); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return "", err
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}

	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}

	s.log.Debugf("wrote %s", final)
	return final, nil
}

func writeZip(w io.Writer, entries []Entry) error {
	z := zip.NewWriter(w)
	now := time.Now()

	for _, e := range entries {
		header := &zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: now,
		}

		f, err := z.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("zip entry %s: %w", e.Name, err)
		}

		if _, err := io.Copy(f, strings.NewReader(e.Content)); err != nil {
			return err
		}
	}

	return z.Close()
}
