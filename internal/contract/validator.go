package contract

import (
	"github.com/ahrav/go-grader/internal/domain"
)

// Validator checks values against a compiled contract Set.
type Validator struct {
	set *Set
}

// NewValidator returns a Validator over set.
func NewValidator(set *Set) *Validator {
	return &Validator{set: set}
}

// Validate checks value against the contract named by id. It returns nil
// when the value conforms; otherwise the error detail carries the first
// violation as its ErrorThrown.
func (v *Validator) Validate(id ID, value any) *domain.ErrorDetail {
	instance, err := domain.Normalize(value)
	if err != nil {
		return violation(id, &domain.Violation{
			Message:      err.Error(),
			SchemaPath:   []any{},
			InstancePath: []any{},
		})
	}

	if found := v.set.document(id).check(instance); found != nil {
		return violation(id, found)
	}
	return nil
}

// ValidateRequest checks a decoded grade request body.
func (v *Validator) ValidateRequest(body any) *domain.ErrorDetail {
	return v.Validate(Request, body)
}

// ValidateResponse checks an outbound envelope.
func (v *Validator) ValidateResponse(resp any) *domain.ErrorDetail {
	return v.Validate(Response, resp)
}

func violation(id ID, found *domain.Violation) *domain.ErrorDetail {
	return &domain.ErrorDetail{
		Message:     id.Message(),
		ErrorThrown: found,
		Kind:        domain.ErrorKindContractViolation,
	}
}
