package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/alnah/go-augment/internal/corpus"
)

// augmentedSuffix is appended to the input name for the default output file.
const augmentedSuffix = "_augmented"

// deriveOutputPath converts an input path to its default output path.
// Example: "corpus.txt" -> "corpus_augmented.txt"
func deriveOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + augmentedSuffix + ext
}

// checkOutputFree fails early when path already exists.
func checkOutputFree(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("output file already exists: %s: %w", path, ErrOutputExists)
	}
	return nil
}

// createOutputFile creates path for writing.
// It fails if the file already exists (O_EXCL), preventing accidental overwrites.
func createOutputFile(path string) (*os.File, error) {
	// #nosec G302 G304 -- user-specified output file with standard permissions
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("output file already exists: %s: %w", path, ErrOutputExists)
		}
		return nil, fmt.Errorf("cannot create output file: %w", err)
	}
	return f, nil
}

// fileSize returns the size of path in bytes, or 0 when it cannot be read.
func fileSize(path string) uint64 {
	info, err := os.Stat(path)
	if err != nil || info.Size() < 0 {
		return 0
	}
	return uint64(info.Size())
}

// writeSummary prints the result of a corpus run.
func writeSummary(w io.Writer, path string, stats corpus.Stats, elapsed time.Duration) {
	_, _ = fmt.Fprintf(w, "Done: %s (%s)\n", path, humanize.Bytes(fileSize(path)))
	_, _ = fmt.Fprintf(w, "  %s lines read, %s lines written, %s unchanged, %s blank skipped\n",
		humanize.Comma(int64(stats.Lines)),
		humanize.Comma(int64(stats.Written)),
		humanize.Comma(int64(stats.Unchanged)),
		humanize.Comma(int64(stats.Skipped)),
	)
	if stats.Failed > 0 {
		_, _ = fmt.Fprintf(w, "  %s variants kept unchanged after errors\n", humanize.Comma(int64(stats.Failed)))
	}
	_, _ = fmt.Fprintf(w, "  took %s\n", elapsed.Round(time.Millisecond))
}
