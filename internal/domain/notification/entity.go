package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeKpiUpdate            NotificationType = "kpi_update"
	TypePerformanceInterview NotificationType = "performance_interview"
	TypeUnreviewedLog        NotificationType = "unreviewed_log"
	TypeOverdueTask          NotificationType = "overdue_task"
	TypeSystem               NotificationType = "system"
)

func (t NotificationType) Valid() bool {
	switch t {
	case TypeKpiUpdate, TypePerformanceInterview, TypeUnreviewedLog, TypeOverdueTask, TypeSystem:
		return true
	}
	return false
}

type Notification struct {
	ID        int64
	UserID    int64
	Type      NotificationType
	Title     string
	Content   string
	RelatedID *int64
	IsRead    bool
	CreatedAt time.Time
}
