package jobduty

import "errors"

var (
	ErrJobDutyNotFound = errors.New("job duty not found")
)
