// Package source resolves contract document locations to bytes.
//
// Supported locations:
//
//	builtin:request, builtin:response   embedded documents
//	/abs/path.json, file:///abs/path    local files
//	http://..., https://...             fetched over HTTP
//	s3://bucket/key                     fetched from S3
//
// Documents whose name ends in ".zst" are zstd-decompressed after fetching.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/ahrav/go-grader/internal/contract"
)

// Errors returned by the router.
var (
	// ErrUnsupportedSource indicates a location whose scheme has no backend.
	ErrUnsupportedSource = errors.New("unsupported contract source")

	// ErrNotFound indicates the location does not name an existing document.
	ErrNotFound = errors.New("contract document not found")
)

// maxDocumentSize bounds how much of a remote or decompressed document is read.
const maxDocumentSize = 8 << 20

// Backend fetches documents for a single location scheme.
type Backend interface {
	Fetch(ctx context.Context, loc *url.URL) ([]byte, error)
}

// Router dispatches a location to the backend registered for its scheme.
// It implements contract.Fetcher.
type Router struct {
	backends map[string]Backend
	logger   *slog.Logger
}

var _ contract.Fetcher = (*Router)(nil)

// Option configures a Router.
type Option func(*Router)

// WithBackend registers b for scheme, replacing any existing backend.
func WithBackend(scheme string, b Backend) Option {
	return func(r *Router) { r.backends[strings.ToLower(scheme)] = b }
}

// WithLogger sets the router logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// NewRouter returns a Router serving builtin and file locations. HTTP and S3
// backends are added with WithBackend.
func NewRouter(opts ...Option) *Router {
	r := &Router{
		backends: map[string]Backend{
			"builtin": Builtin{},
			"file":    File{},
		},
		logger: slog.Default().With("component", "contract-source"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch implements contract.Fetcher.
func (r *Router) Fetch(ctx context.Context, location string) ([]byte, error) {
	loc, err := parseLocation(location)
	if err != nil {
		return nil, err
	}

	b, ok := r.backends[loc.Scheme]
	if !ok {
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, loc.Scheme)
	}

	data, err := b.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}

	if isCompressed(loc) {
		data, err = decompress(data)
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", location, err)
		}
	}

	r.logger.DebugContext(ctx, "contract document fetched",
		"location", location,
		"bytes", len(data))
	return data, nil
}

// parseLocation accepts URLs and bare filesystem paths.
func parseLocation(location string) (*url.URL, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", ErrUnsupportedSource)
	}
	if strings.HasPrefix(location, "/") || strings.HasPrefix(location, ".") || !strings.Contains(location, ":") {
		return &url.URL{Scheme: "file", Path: location}, nil
	}

	loc, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedSource, err)
	}
	loc.Scheme = strings.ToLower(loc.Scheme)
	return loc, nil
}

func isCompressed(loc *url.URL) bool {
	name := loc.Path
	if loc.Scheme == "builtin" {
		name = loc.Opaque
	}
	return path.Ext(name) == ".zst"
}

func decompress(data []byte) ([]byte, error) {
	d, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer d.Close()

	return d.DecodeAll(data, nil)
}

// readLimited reads at most maxDocumentSize bytes from r.
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("document exceeds %d bytes", maxDocumentSize)
	}
	return data, nil
}
