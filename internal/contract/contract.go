// Package contract validates request and response payloads against the two
// fixed JSON Schema (Draft 7) contracts of the grading gateway.
//
// Contracts are fetched and compiled once, at startup, into an immutable Set.
// A Validator wraps a Set and reports at most one violation per call: the
// first rule that fails in schema-document order.
package contract

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-grader/internal/contract/schemas"
	"github.com/ahrav/go-grader/internal/domain"
)

// ID names one of the two contracts.
type ID string

const (
	// Request is the contract for grade request bodies.
	Request ID = "request"

	// Response is the contract for every outbound envelope.
	Response ID = "response"
)

// Message returns the fixed top-level message used when a value violates
// the contract.
func (id ID) Message() string {
	if id == Request {
		return domain.MsgRequestViolation
	}
	return domain.MsgResponseViolation
}

// Errors returned while building a Set.
var (
	// ErrSchemaFetch indicates a contract document could not be retrieved.
	ErrSchemaFetch = errors.New("contract schema fetch failed")

	// ErrSchemaCompile indicates a contract document is not a usable schema.
	ErrSchemaCompile = errors.New("contract schema compile failed")
)

// Fetcher retrieves the raw bytes of a contract document by location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Locations points at the two contract documents.
type Locations struct {
	Request  string
	Response string
}

// BuiltinLocations addresses the embedded contract documents.
var BuiltinLocations = Locations{
	Request:  "builtin:" + schemas.RequestName,
	Response: "builtin:" + schemas.ResponseName,
}

// Set holds both compiled contracts. It is immutable after construction and
// safe to share between any number of concurrent validators.
type Set struct {
	request  *document
	response *document
}

// Load fetches both contracts concurrently and compiles them.
// Any failure is returned; callers treat it as fatal for process readiness.
func Load(ctx context.Context, f Fetcher, locs Locations) (*Set, error) {
	var reqRaw, respRaw []byte

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if reqRaw, err = f.Fetch(gctx, locs.Request); err != nil {
			return fmt.Errorf("%w: %s contract from %q: %w", ErrSchemaFetch, Request, locs.Request, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if respRaw, err = f.Fetch(gctx, locs.Response); err != nil {
			return fmt.Errorf("%w: %s contract from %q: %w", ErrSchemaFetch, Response, locs.Response, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Compile(reqRaw, respRaw)
}

// Compile builds a Set from raw request and response schema documents.
func Compile(requestDoc, responseDoc []byte) (*Set, error) {
	req, err := compileDocument(Request, requestDoc)
	if err != nil {
		return nil, err
	}
	resp, err := compileDocument(Response, responseDoc)
	if err != nil {
		return nil, err
	}
	return &Set{request: req, response: resp}, nil
}

// Builtin compiles the embedded contracts.
func Builtin() (*Set, error) {
	reqDoc, _ := schemas.Lookup(schemas.RequestName)
	respDoc, _ := schemas.Lookup(schemas.ResponseName)
	return Compile(reqDoc, respDoc)
}

// MustBuiltin is Builtin for package-level initialisation and tests.
// It panics if the embedded documents do not compile.
func MustBuiltin() *Set {
	set, err := Builtin()
	if err != nil {
		panic(err)
	}
	return set
}

func (s *Set) document(id ID) *document {
	if id == Request {
		return s.request
	}
	return s.response
}
