package domain

// ValidationResult accumulates the findings of one validation pass. Entries
// are only ever appended, so running the same pass twice over an unchanged
// workflow yields identical error and warning text in identical order.
type ValidationResult struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}
}

// IsValid is computed, never stored: a result is valid iff no errors were
// recorded.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

func (r *ValidationResult) AddError(message string) {
	r.Errors = append(r.Errors, message)
}

func (r *ValidationResult) AddWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}

// Merge appends the other result's entries in order, preserving the fixed
// structure -> config -> dependency reporting order of the aggregate
// validator.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}

	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}
