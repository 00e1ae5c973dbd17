package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/sports-meet/models"
	"github.com/Dosada05/sports-meet/repositories"
	"github.com/Dosada05/sports-meet/storage"
)

// FragmentService serves the split files the merge pipeline reads: one schedule per
// day file, one roster per event file and the class mapping.
type FragmentService interface {
	ListSchedules(ctx context.Context) ([]string, error)
	GetSchedule(ctx context.Context, file string) (models.ScheduleDay, error)
	SaveSchedule(ctx context.Context, file string, day models.ScheduleDay) (*WriteResult, error)
	ListRosters(ctx context.Context) ([]string, error)
	GetRoster(ctx context.Context, id string) (*models.PlayerList, error)
	SaveRoster(ctx context.Context, id string, roster models.PlayerList) (*WriteResult, error)
	GetClassMapping(ctx context.Context) (models.ClassMapping, error)
	SaveClassMapping(ctx context.Context, mapping models.ClassMapping) (*WriteResult, error)
}

type fragmentService struct {
	fragments repositories.FragmentRepository
	locker    *storage.Locker
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
}

func NewFragmentService(fragments repositories.FragmentRepository, locker *storage.Locker, notifier Notifier, logger *slog.Logger) FragmentService {
	if logger == nil {
		logger = slog.Default()
	}
	if locker == nil {
		locker = storage.NewLocker()
	}
	return &fragmentService{fragments: fragments, locker: locker, notifier: notifier, logger: logger, now: time.Now}
}

func (s *fragmentService) ListSchedules(ctx context.Context) ([]string, error) {
	keys, err := s.fragments.ListScheduleKeys(ctx)
	if err != nil {
		return nil, storeError(err, ErrNotFound)
	}
	return stems(keys), nil
}

func (s *fragmentService) GetSchedule(ctx context.Context, file string) (models.ScheduleDay, error) {
	stem, err := fragmentStem(file)
	if err != nil {
		return nil, err
	}
	day, err := s.fragments.GetSchedule(ctx, s.fragments.ScheduleKey(stem))
	if err != nil {
		return nil, storeError(err, ErrDayNotFound)
	}
	return day, nil
}

func (s *fragmentService) SaveSchedule(ctx context.Context, file string, day models.ScheduleDay) (*WriteResult, error) {
	stem, err := fragmentStem(file)
	if err != nil {
		return nil, err
	}
	if err := validateScheduleDay(stem, day); err != nil {
		return nil, err
	}
	if day == nil {
		day = models.ScheduleDay{}
	}
	key := s.fragments.ScheduleKey(stem)
	return s.write(ctx, key, func() error { return s.fragments.PutSchedule(ctx, stem, day) })
}

func (s *fragmentService) ListRosters(ctx context.Context) ([]string, error) {
	keys, err := s.fragments.ListRosterKeys(ctx)
	if err != nil {
		return nil, storeError(err, ErrNotFound)
	}
	return stems(keys), nil
}

func (s *fragmentService) GetRoster(ctx context.Context, id string) (*models.PlayerList, error) {
	stem, err := fragmentStem(id)
	if err != nil {
		return nil, err
	}
	roster, err := s.fragments.GetRoster(ctx, s.fragments.RosterKey(stem))
	if err != nil {
		return nil, storeError(err, ErrRosterNotFound)
	}
	return &roster, nil
}

func (s *fragmentService) SaveRoster(ctx context.Context, id string, roster models.PlayerList) (*WriteResult, error) {
	stem, err := fragmentStem(id)
	if err != nil {
		return nil, err
	}
	if roster.Name == "" {
		return nil, fmt.Errorf("%w: roster name is required", ErrValidationFailed)
	}
	if roster.Players == nil {
		roster.Players = [][]models.RosterEntry{}
	}
	key := s.fragments.RosterKey(stem)
	return s.write(ctx, key, func() error { return s.fragments.PutRoster(ctx, stem, roster) })
}

func (s *fragmentService) GetClassMapping(ctx context.Context) (models.ClassMapping, error) {
	mapping, err := s.fragments.GetClassMapping(ctx)
	if err != nil {
		return nil, storeError(err, ErrNotFound)
	}
	return mapping, nil
}

func (s *fragmentService) SaveClassMapping(ctx context.Context, mapping models.ClassMapping) (*WriteResult, error) {
	if mapping == nil {
		return nil, fmt.Errorf("%w: class mapping is required", ErrValidationFailed)
	}
	return s.write(ctx, s.fragments.ClassMappingKey(), func() error { return s.fragments.PutClassMapping(ctx, mapping) })
}

func (s *fragmentService) write(ctx context.Context, key string, put func() error) (*WriteResult, error) {
	unlock, err := s.locker.Lock(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer unlock()

	if err := put(); err != nil {
		return nil, storeError(err, ErrNotFound)
	}
	at := s.now()
	if s.notifier != nil {
		s.notifier.DocumentUpdated(key, at)
	}
	s.logger.InfoContext(ctx, "fragment written", slog.String("key", key))
	return &WriteResult{Key: key, Timestamp: at}, nil
}

// fragmentStem accepts "10" or "10.json" and rejects anything that is not a plain file name.
func fragmentStem(file string) (string, error) {
	stem := strings.TrimSuffix(strings.TrimSpace(file), ".json")
	if stem == "" || strings.ContainsAny(stem, `/\`) || stem == "." || stem == ".." {
		return "", fmt.Errorf("%w: invalid fragment name %q", ErrValidationFailed, file)
	}
	return stem, nil
}

func stems(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = storage.Stem(k)
	}
	return out
}
