package source

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ahrav/go-grader/internal/contract/schemas"
)

// Builtin serves the contract documents embedded in the binary.
type Builtin struct{}

// Fetch returns the embedded document named by the opaque part of loc,
// e.g. "builtin:request".
func (Builtin) Fetch(_ context.Context, loc *url.URL) ([]byte, error) {
	name := loc.Opaque
	if name == "" {
		name = loc.Host
	}
	data, ok := schemas.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: builtin %q", ErrNotFound, name)
	}
	return data, nil
}
