package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Struct-level validation
// carries the cross-field review invariants that tag rules can't express.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(recordCoherence, Record{})
	return v
}

// recordCoherence enforces the review invariants:
//   - review_outcome is pending exactly when review_state is pending
//   - reviewer_id is present exactly when review_state is reviewed
func recordCoherence(sl validator.StructLevel) {
	r := sl.Current().Interface().(Record)

	pending := r.ReviewState == ReviewPending
	if pending != (r.ReviewOutcome == OutcomePending) {
		sl.ReportError(r.ReviewOutcome, "ReviewOutcome", "review_outcome", "review_coherent", "")
	}
	if pending == (r.ReviewerID == "") {
		return
	}
	sl.ReportError(r.ReviewerID, "ReviewerID", "reviewer_id", "reviewer_coherent", "")
}

// ValidateRecord checks a record against the ingestion invariants.
// The returned error is nil for a well-formed record; otherwise it
// describes the first offending field in a form suitable for an API
// error payload.
func ValidateRecord(r *Record) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "review_coherent":
		return fmt.Errorf("review_outcome must be %q exactly when review_state is %q", OutcomePending, ReviewPending)
	case "reviewer_coherent":
		return fmt.Errorf("reviewer_id must be set exactly when review_state is %q", ReviewDone)
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "oneof":
		return fmt.Errorf("%s has an invalid value %q", fe.Field(), fmt.Sprint(fe.Value()))
	case "gte":
		return fmt.Errorf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
