package dispatch

import (
	"bytes"
	"encoding/json"

	"github.com/ahrav/go-grader/internal/contract"
	"github.com/ahrav/go-grader/internal/domain"
)

// gate checks an outbound payload against the response contract. A failing
// payload is replaced by the contract error; a passing one is returned as a
// domain.Response.
func gate(v *contract.Validator, out any) domain.Response {
	if detail := v.ValidateResponse(out); detail != nil {
		return domain.Failure(detail)
	}

	switch resp := out.(type) {
	case domain.Response:
		return resp
	case *domain.Response:
		return *resp
	}

	resp, err := asResponse(out)
	if err != nil {
		return domain.Failure(&domain.ErrorDetail{
			Message:     domain.MsgResponseViolation,
			Description: err.Error(),
			Kind:        domain.ErrorKindContractViolation,
		})
	}
	return resp
}

// asResponse re-reads a contract-conforming payload as a domain.Response.
func asResponse(out any) (domain.Response, error) {
	data, err := json.Marshal(out)
	if err != nil {
		return domain.Response{}, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var resp domain.Response
	if err := dec.Decode(&resp); err != nil {
		return domain.Response{}, err
	}
	return resp, nil
}
