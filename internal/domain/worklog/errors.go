package worklog

import "errors"

var (
	ErrWorkLogNotFound     = errors.New("work log not found")
	ErrWorkItemNotFound    = errors.New("work item not found")
	ErrWorkLogExists       = errors.New("a work log already exists for this date")
	ErrWorkLogNotEditable  = errors.New("work log can only be edited while in draft")
	ErrWorkLogNotSubmitted = errors.New("work log is not awaiting review")
	ErrWorkLogEmpty        = errors.New("work log has no items")
	ErrItemsNotReviewed    = errors.New("every work item needs a supervisor evaluation")
	ErrNotLogOwner         = errors.New("work log belongs to another user")
)
