package task

import "errors"

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrNotAssignee         = errors.New("only the assignee can update this task")
	ErrNotAssigner         = errors.New("only the assigner can review this task")
	ErrTaskNotOpen         = errors.New("task is no longer open")
	ErrTaskNotCompleted    = errors.New("task has no completion report to review")
	ErrAssigneeNotFound    = errors.New("assignee not found")
	ErrCannotAssignToSelf  = errors.New("cannot assign a task to yourself")
	ErrDelayReasonRequired = errors.New("delay_reason is required when moving the due date")
	ErrTaskChanged         = errors.New("task was changed by another request")
)
