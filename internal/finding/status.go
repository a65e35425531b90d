package finding

// Status is the overall outcome of a validation or package run.
type Status string

const (
	StatusOK        Status = "OK"
	StatusWarning   Status = "WARNING"
	StatusError     Status = "ERROR"
	StatusCancelled Status = "CANCELLED"
)

// Aggregate returns ERROR if any finding is an error, WARNING if any is a
// warning, otherwise OK. Zero findings is OK.
func Aggregate(findings []Finding) Status {
	highest, ok := Max(findings)
	if !ok {
		return StatusOK
	}
	switch highest {
	case Error:
		return StatusError
	case Warning:
		return StatusWarning
	default:
		return StatusOK
	}
}

// RunStatus folds execution outcomes into the validation status. Cancellation
// wins over everything; any failed copy raises the status to ERROR.
func RunStatus(findings []Finding, failedCopies int, cancelled bool) Status {
	if cancelled {
		return StatusCancelled
	}
	if failedCopies > 0 {
		return StatusError
	}
	return Aggregate(findings)
}

// Blocking reports whether the status should stop a package run without an
// explicit override.
func (s Status) Blocking() bool {
	return s == StatusError
}
