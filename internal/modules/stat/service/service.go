package service

import (
	"context"

	"talib.app/backend/internal/entity"
	housingRepo "talib.app/backend/internal/modules/housing/repository"
	itemRepo "talib.app/backend/internal/modules/item/repository"
	ownerRepo "talib.app/backend/internal/modules/owner/repository"
	reportRepo "talib.app/backend/internal/modules/report/repository"
	roommateRepo "talib.app/backend/internal/modules/roommate/repository"
	"talib.app/backend/internal/modules/stat/dto"
	studentRepo "talib.app/backend/internal/modules/student/repository"
	"talib.app/backend/pkg/crud"
)

type StatService interface {
	GetDashboard(ctx context.Context) (*dto.DashboardResponse, error)
}

type statService struct {
	students  studentRepo.StudentRepository
	owners    ownerRepo.OwnerRepository
	housing   housingRepo.HousingRepository
	items     itemRepo.ItemRepository
	roommates roommateRepo.RoommateRepository
	reports   reportRepo.ReportRepository
}

func NewStatService(
	students studentRepo.StudentRepository,
	owners ownerRepo.OwnerRepository,
	housing housingRepo.HousingRepository,
	items itemRepo.ItemRepository,
	roommates roommateRepo.RoommateRepository,
	reports reportRepo.ReportRepository,
) StatService {
	return &statService{
		students:  students,
		owners:    owners,
		housing:   housing,
		items:     items,
		roommates: roommates,
		reports:   reports,
	}
}

func (s *statService) GetDashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	var (
		res dto.DashboardResponse
		err error
	)

	counts := []struct {
		dst   *int64
		count func() (int64, error)
	}{
		{&res.TotalStudents, func() (int64, error) { return s.students.Count(ctx) }},
		{&res.TotalOwners, func() (int64, error) { return s.owners.Count(ctx) }},
		{&res.TotalHousing, func() (int64, error) { return s.housing.Count(ctx, nil) }},
		{&res.AvailableHousing, func() (int64, error) {
			return s.housing.Count(ctx, crud.Conditions{"status": entity.HousingAvailable})
		}},
		{&res.TotalItems, func() (int64, error) { return s.items.Count(ctx, nil) }},
		{&res.UnsoldItems, func() (int64, error) { return s.items.Count(ctx, crud.Conditions{"is_sold": false}) }},
		{&res.RoommateProfiles, func() (int64, error) { return s.roommates.Count(ctx, nil) }},
		{&res.ActiveRoommates, func() (int64, error) { return s.roommates.Count(ctx, crud.Conditions{"is_active": true}) }},
		{&res.PendingReports, func() (int64, error) {
			return s.reports.Count(ctx, crud.Conditions{"status": entity.ReportPending})
		}},
	}

	for _, c := range counts {
		if *c.dst, err = c.count(); err != nil {
			return nil, err
		}
	}
	return &res, nil
}
