// Package payload extracts the request body from an inbound event.
//
// Bodies normally arrive as encoded JSON text. Structured mappings are passed
// through untouched so programmatic callers and tests can skip the encoding
// step.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"unicode/utf8"

	"github.com/ahrav/go-grader/internal/domain"
)

// ParseBody returns the decoded body of event, or an error detail explaining
// why it could not be produced. Exactly one of the two results is non-nil,
// except for a literal JSON null body which decodes to (nil, nil).
func ParseBody(event domain.Event) (any, *domain.ErrorDetail) {
	raw, ok := event.Body()
	if !ok {
		return nil, malformed(domain.MsgNoBody, nil)
	}

	switch body := raw.(type) {
	case map[string]any:
		return body, nil
	case domain.Event:
		return map[string]any(body), nil
	case map[string]string:
		return body, nil
	case string:
		if !utf8.ValidString(body) {
			return nil, malformed(domain.MsgBodyNotText, nil)
		}
		return Decode([]byte(body))
	case json.RawMessage:
		return decodeBytes(body)
	case []byte:
		return decodeBytes(body)
	default:
		return nil, malformed(domain.MsgBodyNotText, nil)
	}
}

func decodeBytes(data []byte) (any, *domain.ErrorDetail) {
	if !utf8.Valid(data) {
		return nil, malformed(domain.MsgBodyNotText, nil)
	}
	return Decode(data)
}

// Decode decodes encoded JSON text. Syntax errors are reported with the
// decoder message and a 1-based line/column location.
func Decode(data []byte) (any, *domain.ErrorDetail) {
	// Unmarshal into a RawMessage first: it runs the full validity scan and
	// reports a byte offset we can turn into a location.
	var probe json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, decodeFailure(data, err)
	}

	v, err := domain.DecodeJSON(data)
	if err != nil {
		return nil, decodeFailure(data, err)
	}
	return v, nil
}

// errUnexpectedEnd is reported with an offset equal to the input length;
// the location points just past the last byte instead.
const errUnexpectedEnd = "unexpected end of JSON input"

func decodeFailure(data []byte, err error) *domain.ErrorDetail {
	offset := int64(len(data)) + 1
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) && syntaxErr.Error() != errUnexpectedEnd {
		offset = syntaxErr.Offset
	}

	return malformed(domain.MsgBodyNotJSON, &domain.DecodeFailure{
		Message:  err.Error(),
		Location: locate(data, offset),
	})
}

// locate converts a decoder offset into a 1-based line and column.
// The decoder reports the count of bytes read including the offending one,
// so the offending byte sits at offset-1.
func locate(data []byte, offset int64) domain.Location {
	idx := int(offset) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(data) {
		idx = len(data)
	}

	prefix := data[:idx]
	line := bytes.Count(prefix, []byte{'\n'}) + 1
	lastNL := bytes.LastIndexByte(prefix, '\n')
	column := utf8.RuneCount(prefix[lastNL+1:]) + 1

	return domain.Location{Line: line, Column: column}
}

func malformed(msg string, thrown any) *domain.ErrorDetail {
	detail := &domain.ErrorDetail{Message: msg, Kind: domain.ErrorKindMalformedInput}
	if thrown != nil {
		detail.ErrorThrown = thrown
	}
	return detail
}
