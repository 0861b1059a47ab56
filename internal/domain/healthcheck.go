package domain

// HealthcheckResult aggregates one run of the self-test suite.
// Entries follow suite registration order. Only successes carry timing;
// failures and errors are reported by name alone.
type HealthcheckResult struct {
	TestsPassed bool         `json:"tests_passed"`
	Successes   []CaseTiming `json:"successes"`
	Failures    []CaseRef    `json:"failures"`
	Errors      []CaseRef    `json:"errors"`
}

// CaseTiming records a passing case and its wall time in microseconds.
type CaseTiming struct {
	Name string `json:"name"`
	Time int64  `json:"time"`
}

// CaseRef names a case that failed or errored.
type CaseRef struct {
	Name string `json:"name"`
}

// NewHealthcheckResult returns an empty result with non-nil slices so the
// encoded form always carries arrays.
func NewHealthcheckResult() HealthcheckResult {
	return HealthcheckResult{
		TestsPassed: true,
		Successes:   []CaseTiming{},
		Failures:    []CaseRef{},
		Errors:      []CaseRef{},
	}
}
