package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
)

// File reads contract documents from the local filesystem.
type File struct{}

// Fetch reads the file at loc.Path.
func (File) Fetch(_ context.Context, loc *url.URL) ([]byte, error) {
	f, err := os.Open(loc.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, loc.Path)
		}
		return nil, fmt.Errorf("open %s: %w", loc.Path, err)
	}
	defer f.Close()

	data, err := readLimited(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", loc.Path, err)
	}
	return data, nil
}
