package organization

import (
	"context"
	"fmt"

	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/department"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/jobduty"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/position"
)

type SeedResult struct {
	Departments int
	Positions   int
	JobDuties   int
	Skipped     bool
}

type seedDepartment struct {
	name, code, description string
}

var seedDepartments = []seedDepartment{
	{"總經理室", "GM", "總經理室"},
	{"北區業務部", "SN", "北區業務部門"},
	{"中區業務部", "SM", "中區業務部門"},
	{"南區業務部", "SS", "南區業務部門"},
	{"現代通路業務部", "SK", "現代通路業務部門"},
	{"外銷通路部", "SX", "外銷通路部門"},
	{"電商部", "SE", "電商部門"},
	{"企劃部", "M", "企劃部門"},
	{"採購部", "PR", "採購部門"},
	{"會計部", "F", "會計部門"},
	{"管理部", "A", "管理部門"},
	{"經營管理室", "O", "經營管理室"},
}

type seedDuty struct {
	code, title, description, category string
}

// Duties of the general manager's office manager, in sort order.
var seedDuties = []seedDuty{
	{"B1", "系統作業", "處理系統相關作業", "基礎作業"},
	{"B2", "促銷檔查審核", "審核促銷檔案", "基礎作業"},
	{"B3", "製作業績統計表", "製作業績統計表", "基礎作業"},
	{"D1", "解算稅務作業", "處理稅務相關作業", "財務作業"},
	{"P7", "人事作業1", "處理人事相關作業", "人事作業"},
	{"P8", "人事作業2", "處理人事相關作業", "人事作業"},
	{"P9", "人事作業3", "處理人事相關作業", "人事作業"},
}

func strPtr(s string) *string {
	return &s
}

// SeedReferenceData is a no-op when the GM department already exists.
func (s *organizationServiceImpl) SeedReferenceData(ctx context.Context) (SeedResult, error) {
	var result SeedResult

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.departmentRepo.ListAll(ctx)
		if err != nil {
			return err
		}
		for _, d := range existing {
			if d.Code == "GM" {
				result.Skipped = true
				return nil
			}
		}

		var gm department.Department
		for _, sd := range seedDepartments {
			created, err := s.departmentRepo.Create(ctx, department.Department{
				Name:        sd.name,
				Code:        sd.code,
				Description: strPtr(sd.description),
			})
			if err != nil {
				return fmt.Errorf("seed department %s: %w", sd.code, err)
			}
			if sd.code == "GM" {
				gm = created
			}
			result.Departments++
		}

		if _, err := s.positionRepo.Create(ctx, position.Position{
			DepartmentID: gm.ID,
			Title:        "總經理",
			Level:        position.LevelDirector,
			Description:  strPtr("總經理職位"),
		}); err != nil {
			return fmt.Errorf("seed position: %w", err)
		}
		manager, err := s.positionRepo.Create(ctx, position.Position{
			DepartmentID: gm.ID,
			Title:        "總經理室經理",
			Level:        position.LevelManager,
			Description:  strPtr("總經理室經理職位"),
		})
		if err != nil {
			return fmt.Errorf("seed position: %w", err)
		}
		result.Positions = 2

		for i, sd := range seedDuties {
			if _, err := s.jobDutyRepo.Create(ctx, jobduty.JobDuty{
				PositionID:  manager.ID,
				Code:        sd.code,
				Title:       sd.title,
				Description: strPtr(sd.description),
				Category:    strPtr(sd.category),
				SortOrder:   i + 1,
			}); err != nil {
				return fmt.Errorf("seed job duty %s: %w", sd.code, err)
			}
			result.JobDuties++
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	return result, nil
}
