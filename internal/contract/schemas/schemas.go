// Package schemas embeds the canonical request and response contracts.
// Deployments normally point the gateway at their published copies; the
// embedded documents are the fallback and the reference for tests.
package schemas

import _ "embed"

// Names under which the embedded documents are addressed (builtin:<name>).
const (
	RequestName  = "request"
	ResponseName = "response"
)

var (
	//go:embed request.json
	request []byte

	//go:embed response.json
	response []byte
)

// Lookup returns a copy of the embedded document registered under name.
func Lookup(name string) ([]byte, bool) {
	var doc []byte
	switch name {
	case RequestName:
		doc = request
	case ResponseName:
		doc = response
	default:
		return nil, false
	}
	return append([]byte(nil), doc...), true
}
