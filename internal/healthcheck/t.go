package healthcheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// T is the handle passed to each Case. It satisfies the TestingT interfaces
// of testify's assert and require packages, so cases are written exactly like
// ordinary Go tests. Failure output is kept in memory on the T and never
// written to a shared stream.
type T struct {
	ctx    context.Context
	name   string
	failed bool
	output []string
}

var (
	_ assert.TestingT  = (*T)(nil)
	_ require.TestingT = (*T)(nil)
)

// failNow is the panic value used to abort a case from FailNow.
type failNow struct{}

func newT(ctx context.Context, name string) *T {
	return &T{ctx: ctx, name: name}
}

// Context returns the context of the healthcheck run.
func (t *T) Context() context.Context { return t.ctx }

// Name returns the case name.
func (t *T) Name() string { return t.name }

// Errorf records a failure message and marks the case failed.
func (t *T) Errorf(format string, args ...any) {
	t.failed = true
	t.output = append(t.output, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Logf records a message without failing the case.
func (t *T) Logf(format string, args ...any) {
	t.output = append(t.output, fmt.Sprintf(format, args...))
}

// Fail marks the case failed and continues.
func (t *T) Fail() { t.failed = true }

// FailNow marks the case failed and stops it.
func (t *T) FailNow() {
	t.failed = true
	panic(failNow{})
}

// Failed reports whether the case has failed.
func (t *T) Failed() bool { return t.failed }

// Helper is a no-op; it lets testify skip helper frames.
func (t *T) Helper() {}

// Output returns the messages recorded so far.
func (t *T) Output() []string {
	return append([]string(nil), t.output...)
}
