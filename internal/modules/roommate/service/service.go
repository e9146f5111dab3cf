package roommate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"talib.app/backend/internal/entity"
	notification "talib.app/backend/internal/modules/notification/service"
	"talib.app/backend/internal/modules/roommate/dto"
	"talib.app/backend/internal/modules/roommate/repository"
	"talib.app/backend/pkg/apperror"
	commonDto "talib.app/backend/pkg/dto"
	"talib.app/backend/pkg/sanitizer"
)

const (
	dateLayout = "2006-01-02"
	// matchNotifyLimit caps how many matching students hear about a new profile.
	matchNotifyLimit = 5
)

type RoommateService interface {
	ListProfiles(ctx context.Context, filter dto.RoommateFilter) (*commonDto.Paginated[dto.RoommateResponse], error)
	GetProfile(ctx context.Context, id uuid.UUID) (*dto.RoommateResponse, error)
	GetMine(ctx context.Context, studentID uuid.UUID) (*dto.RoommateResponse, error)
	CreateProfile(ctx context.Context, studentID uuid.UUID, req dto.CreateRoommateRequest) (*dto.RoommateResponse, error)
	UpdateMine(ctx context.Context, studentID uuid.UUID, req dto.UpdateRoommateRequest) (*dto.RoommateResponse, error)
	DeleteMine(ctx context.Context, studentID uuid.UUID) error
	GetMatches(ctx context.Context, id uuid.UUID, query commonDto.PageQuery) (*commonDto.Paginated[dto.RoommateResponse], error)
	GetMyMatches(ctx context.Context, studentID uuid.UUID, query commonDto.PageQuery) (*commonDto.Paginated[dto.RoommateResponse], error)
	GetContact(ctx context.Context, id uuid.UUID) (*commonDto.ContactResponse, error)
}

type roommateService struct {
	repo     repository.RoommateRepository
	notifier notification.Notifier
	logger   *zap.Logger
}

func NewRoommateService(repo repository.RoommateRepository, notifier notification.Notifier, logger *zap.Logger) RoommateService {
	return &roommateService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("roommate profile not found: %w", apperror.ErrNotFound)
	}
	return err
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil, fmt.Errorf("move_in_date must be YYYY-MM-DD: %w", apperror.ErrBadRequest)
	}
	return &t, nil
}

func cleanInterests(interests []string) datatypes.JSONSlice[string] {
	cleaned := make(datatypes.JSONSlice[string], 0, len(interests))
	seen := make(map[string]struct{}, len(interests))
	for _, interest := range interests {
		interest = strings.ToLower(sanitizer.PlainText(interest))
		if interest == "" {
			continue
		}
		if _, ok := seen[interest]; ok {
			continue
		}
		seen[interest] = struct{}{}
		cleaned = append(cleaned, interest)
	}
	return cleaned
}

func (s *roommateService) toPage(profiles []entity.RoommateProfile, query commonDto.PageQuery, total int64) *commonDto.Paginated[dto.RoommateResponse] {
	data := make([]dto.RoommateResponse, 0, len(profiles))
	for i := range profiles {
		data = append(data, ToResponse(&profiles[i]))
	}
	return commonDto.NewPaginated(data, query, total)
}

func (s *roommateService) ListProfiles(ctx context.Context, filter dto.RoommateFilter) (*commonDto.Paginated[dto.RoommateResponse], error) {
	filter.Normalize()
	if filter.MinBudget != nil && filter.MaxBudget != nil && *filter.MinBudget > *filter.MaxBudget {
		return nil, fmt.Errorf("min_budget must not exceed max_budget: %w", apperror.ErrBadRequest)
	}

	profiles, total, err := s.repo.List(ctx, repository.ListFilter{
		Location:  strings.TrimSpace(filter.Location),
		MinBudget: filter.MinBudget,
		MaxBudget: filter.MaxBudget,
		Gender:    filter.Gender,
	}, filter.Limit, filter.Offset())
	if err != nil {
		return nil, err
	}
	return s.toPage(profiles, filter.PageQuery, total), nil
}

func (s *roommateService) GetProfile(ctx context.Context, id uuid.UUID) (*dto.RoommateResponse, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	resp := ToResponse(profile)
	return &resp, nil
}

func (s *roommateService) GetMine(ctx context.Context, studentID uuid.UUID) (*dto.RoommateResponse, error) {
	profile, err := s.repo.FindByStudentID(ctx, studentID)
	if err != nil {
		return nil, notFound(err)
	}
	resp := ToResponse(profile)
	return &resp, nil
}

func (s *roommateService) CreateProfile(ctx context.Context, studentID uuid.UUID, req dto.CreateRoommateRequest) (*dto.RoommateResponse, error) {
	moveIn, err := parseDate(req.MoveInDate)
	if err != nil {
		return nil, err
	}

	location := sanitizer.PlainText(req.Location)
	if location == "" {
		return nil, fmt.Errorf("location must contain text: %w", apperror.ErrBadRequest)
	}

	profile := &entity.RoommateProfile{
		StudentID:       studentID,
		Bio:             sanitizer.PlainText(req.Bio),
		Budget:          req.Budget,
		Location:        location,
		MoveInDate:      moveIn,
		Gender:          req.Gender,
		PreferredGender: req.PreferredGender,
		Interests:       cleanInterests(req.Interests),
		Lifestyle:       datatypes.JSONMap(req.Lifestyle),
		Preferences:     datatypes.JSONMap(req.Preferences),
		IsActive:        true,
	}

	created, err := s.repo.Create(ctx, profile)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("you already have a roommate profile: %w", apperror.ErrConflict)
	}

	saved, err := s.repo.FindByID(ctx, profile.ID)
	if err != nil {
		return nil, notFound(err)
	}

	s.notifyMatches(ctx, saved)

	resp := ToResponse(saved)
	return &resp, nil
}

// notifyMatches tells the students behind the newest matching profiles about profile.
func (s *roommateService) notifyMatches(ctx context.Context, profile *entity.RoommateProfile) {
	matches, _, err := s.repo.FindMatches(ctx, profile, matchNotifyLimit, 0)
	if err != nil {
		s.logger.Warn("failed to look up roommate matches", zap.String("profile_id", profile.ID.String()), zap.Error(err))
		return
	}

	for _, match := range matches {
		contentID := profile.ID
		actorID := profile.StudentID
		err := s.notifier.Notify(ctx, &entity.Notification{
			RecipientID: match.StudentID,
			ActorID:     &actorID,
			Type:        entity.NotificationRoommateMatch,
			Kind:        entity.KindRoommate,
			ContentID:   &contentID,
			Message:     fmt.Sprintf("A new roommate profile in %s matches your budget", profile.Location),
		})
		if err != nil {
			s.logger.Warn("failed to notify roommate match", zap.String("recipient_id", match.StudentID.String()), zap.Error(err))
		}
	}
}

func (s *roommateService) UpdateMine(ctx context.Context, studentID uuid.UUID, req dto.UpdateRoommateRequest) (*dto.RoommateResponse, error) {
	profile, err := s.repo.FindByStudentID(ctx, studentID)
	if err != nil {
		return nil, notFound(err)
	}

	updates := map[string]any{}
	if req.Bio != nil {
		updates["bio"] = sanitizer.PlainText(*req.Bio)
	}
	if req.Budget != nil {
		updates["budget"] = *req.Budget
	}
	if req.Location != nil {
		location := sanitizer.PlainText(*req.Location)
		if location == "" {
			return nil, fmt.Errorf("location must contain text: %w", apperror.ErrBadRequest)
		}
		updates["location"] = location
	}
	if req.MoveInDate != nil {
		moveIn, err := parseDate(req.MoveInDate)
		if err != nil {
			return nil, err
		}
		updates["move_in_date"] = moveIn
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.PreferredGender != nil {
		updates["preferred_gender"] = *req.PreferredGender
	}
	if req.Interests != nil {
		updates["interests"] = cleanInterests(*req.Interests)
	}
	if req.Lifestyle != nil {
		updates["lifestyle"] = datatypes.JSONMap(*req.Lifestyle)
	}
	if req.Preferences != nil {
		updates["preferences"] = datatypes.JSONMap(*req.Preferences)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.repo.Update(ctx, profile.ID, updates); err != nil {
		return nil, notFound(err)
	}
	return s.GetProfile(ctx, profile.ID)
}

func (s *roommateService) DeleteMine(ctx context.Context, studentID uuid.UUID) error {
	profile, err := s.repo.FindByStudentID(ctx, studentID)
	if err != nil {
		return notFound(err)
	}
	return notFound(s.repo.Delete(ctx, profile.ID))
}

func (s *roommateService) matches(ctx context.Context, profile *entity.RoommateProfile, query commonDto.PageQuery) (*commonDto.Paginated[dto.RoommateResponse], error) {
	query.Normalize()
	profiles, total, err := s.repo.FindMatches(ctx, profile, query.Limit, query.Offset())
	if err != nil {
		return nil, err
	}
	return s.toPage(profiles, query, total), nil
}

func (s *roommateService) GetMatches(ctx context.Context, id uuid.UUID, query commonDto.PageQuery) (*commonDto.Paginated[dto.RoommateResponse], error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return s.matches(ctx, profile, query)
}

func (s *roommateService) GetMyMatches(ctx context.Context, studentID uuid.UUID, query commonDto.PageQuery) (*commonDto.Paginated[dto.RoommateResponse], error) {
	profile, err := s.repo.FindByStudentID(ctx, studentID)
	if err != nil {
		return nil, notFound(err)
	}
	return s.matches(ctx, profile, query)
}

func (s *roommateService) GetContact(ctx context.Context, id uuid.UUID) (*commonDto.ContactResponse, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if profile.Student == nil {
		return nil, fmt.Errorf("student not found: %w", apperror.ErrNotFound)
	}
	return &commonDto.ContactResponse{
		Name:  profile.Student.FullName(),
		Email: profile.Student.Email,
		Phone: profile.Student.Phone,
	}, nil
}

func ToResponse(profile *entity.RoommateProfile) dto.RoommateResponse {
	interests := []string(profile.Interests)
	if interests == nil {
		interests = []string{}
	}

	resp := dto.RoommateResponse{
		ID:              profile.ID,
		StudentID:       profile.StudentID,
		Bio:             profile.Bio,
		Budget:          profile.Budget,
		Location:        profile.Location,
		MoveInDate:      profile.MoveInDate,
		Gender:          profile.Gender,
		PreferredGender: profile.PreferredGender,
		Interests:       interests,
		Lifestyle:       profile.Lifestyle,
		Preferences:     profile.Preferences,
		IsActive:        profile.IsActive,
		CreatedAt:       profile.CreatedAt,
		UpdatedAt:       profile.UpdatedAt,
	}
	if profile.Student != nil {
		resp.Student = &dto.StudentSummary{
			ID:         profile.Student.ID,
			FullName:   profile.Student.FullName(),
			University: profile.Student.University,
			AvatarURL:  profile.Student.AvatarURL,
		}
	}
	return resp
}
