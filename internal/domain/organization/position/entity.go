package position

import "time"

type Level string

const (
	LevelStaff      Level = "staff"
	LevelSupervisor Level = "supervisor"
	LevelManager    Level = "manager"
	LevelDirector   Level = "director"
)

func (l Level) Valid() bool {
	switch l {
	case LevelStaff, LevelSupervisor, LevelManager, LevelDirector:
		return true
	}
	return false
}

type Position struct {
	ID           int64
	DepartmentID int64
	Title        string
	Level        Level
	Description  *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
