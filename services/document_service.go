package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/sports-meet/merge"
	"github.com/Dosada05/sports-meet/models"
	"github.com/Dosada05/sports-meet/repositories"
	"github.com/Dosada05/sports-meet/storage"
)

// Notifier is told about every persisted document. *live.Hub implements it.
type Notifier interface {
	DocumentUpdated(key string, at time.Time)
}

type WriteResult struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	BackupID  string    `json:"backupId,omitempty"`
}

type MergeInput struct {
	Strict bool
	DryRun bool
}

type MergeResult struct {
	Document *models.AggregateDocument `json:"-"`
	Report   *merge.Report             `json:"report"`
	Write    *WriteResult              `json:"write,omitempty"`
}

type DocumentService interface {
	SaveAggregate(ctx context.Context, doc *models.AggregateDocument) (*WriteResult, error)
	SaveDay(ctx context.Context, day string, schedule models.ScheduleDay) (*WriteResult, error)
	SaveRoster(ctx context.Context, id string, roster models.PlayerList) (*WriteResult, error)
	ListBackups(ctx context.Context) ([]repositories.Backup, error)
	RestoreBackup(ctx context.Context, id string) (*WriteResult, error)
	RunMerge(ctx context.Context, input MergeInput) (*MergeResult, error)
}

type DocumentServiceConfig struct {
	Layout     models.MeetLayout
	MaxBackups int
}

type documentService struct {
	aggregates repositories.AggregateRepository
	fragments  repositories.FragmentRepository
	backups    repositories.BackupRepository
	locker     *storage.Locker
	notifier   Notifier
	cfg        DocumentServiceConfig
	logger     *slog.Logger
	now        func() time.Time
}

func NewDocumentService(
	aggregates repositories.AggregateRepository,
	fragments repositories.FragmentRepository,
	backups repositories.BackupRepository,
	locker *storage.Locker,
	notifier Notifier,
	cfg DocumentServiceConfig,
	logger *slog.Logger,
) DocumentService {
	if len(cfg.Layout.Days) == 0 {
		cfg.Layout = models.DefaultMeetLayout()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if locker == nil {
		locker = storage.NewLocker()
	}
	return &documentService{
		aggregates: aggregates,
		fragments:  fragments,
		backups:    backups,
		locker:     locker,
		notifier:   notifier,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *documentService) SaveAggregate(ctx context.Context, doc *models.AggregateDocument) (*WriteResult, error) {
	if err := validateAggregate(doc); err != nil {
		return nil, err
	}
	unlock, err := s.locker.Lock(ctx, s.aggregates.Key())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer unlock()
	return s.writeAggregateLocked(ctx, doc)
}

// SaveDay replaces one day's schedule inside the aggregate. The day is stored under
// whichever alias the aggregate already uses, otherwise under its day key.
func (s *documentService) SaveDay(ctx context.Context, day string, schedule models.ScheduleDay) (*WriteResult, error) {
	layout, ok := s.cfg.Layout.Resolve(day)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDayNotFound, day)
	}
	if err := validateScheduleDay(layout.Key, schedule); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, s.aggregates.Key())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer unlock()

	doc, err := s.loadForUpdate(ctx)
	if err != nil {
		return nil, err
	}
	key := layout.Key
	if existing, _, ok := findDay(doc, layout); ok {
		key = existing
	}
	doc.Games.Days.Set(key, schedule)
	return s.writeAggregateLocked(ctx, doc)
}

// SaveRoster replaces one event's roster inside the aggregate. id may be the event
// name or a legacy alias; unknown ids create a roster keyed by the roster's name.
func (s *documentService) SaveRoster(ctx context.Context, id string, roster models.PlayerList) (*WriteResult, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: roster id is required", ErrValidationFailed)
	}
	if roster.Players == nil {
		roster.Players = [][]models.RosterEntry{}
	}

	unlock, err := s.locker.Lock(ctx, s.aggregates.Key())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer unlock()

	doc, err := s.loadForUpdate(ctx)
	if err != nil {
		return nil, err
	}

	key := id
	if name, ok := doc.Aliases[id]; ok {
		key = name
	} else if _, ok := doc.Players.Get(id); !ok && roster.Name != "" {
		key = roster.Name
	}
	if roster.Name == "" {
		roster.Name = key
	}
	doc.Players.Set(key, roster)
	return s.writeAggregateLocked(ctx, doc)
}

func (s *documentService) ListBackups(ctx context.Context) ([]repositories.Backup, error) {
	backups, err := s.backups.List(ctx)
	if err != nil {
		return nil, storeError(err, ErrBackupNotFound)
	}
	return backups, nil
}

// RestoreBackup makes backup id the current aggregate. The aggregate being replaced
// is backed up first like any other write.
func (s *documentService) RestoreBackup(ctx context.Context, id string) (*WriteResult, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: backup id is required", ErrValidationFailed)
	}
	data, err := s.backups.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, ErrBackupNotFound)
	}
	doc := models.NewAggregateDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: backup %s: %w", ErrParse, id, err)
	}

	unlock, err := s.locker.Lock(ctx, s.aggregates.Key())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer unlock()

	backupID, err := s.backupLocked(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.aggregates.PutRaw(ctx, data); err != nil {
		return nil, storeError(err, ErrAggregateNotFound)
	}
	s.logger.InfoContext(ctx, "aggregate restored from backup", slog.String("backup_id", id))
	return s.finishWrite(ctx, backupID), nil
}

// RunMerge rebuilds the aggregate from the stored fragments and, unless DryRun is
// set, persists it through the regular write path.
func (s *documentService) RunMerge(ctx context.Context, input MergeInput) (*MergeResult, error) {
	pipeline := merge.NewPipeline(s.fragments, merge.Options{Layout: s.cfg.Layout, Strict: input.Strict}, s.logger)
	doc, report, err := pipeline.Run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, merge.ErrDuplicateRosterName):
			return &MergeResult{Report: report}, fmt.Errorf("%w: %w", ErrDuplicateRosterName, err)
		case errors.Is(err, merge.ErrClassMappingUnavailable):
			return nil, storeError(err, ErrNotFound)
		default:
			return nil, fmt.Errorf("%w: %w", ErrIO, err)
		}
	}
	result := &MergeResult{Document: doc, Report: report}
	if input.DryRun {
		return result, nil
	}
	write, err := s.SaveAggregate(ctx, doc)
	if err != nil {
		return nil, err
	}
	result.Write = write
	return result, nil
}

// loadForUpdate reads a private copy of the aggregate; a missing aggregate starts empty.
func (s *documentService) loadForUpdate(ctx context.Context) (*models.AggregateDocument, error) {
	doc, err := s.aggregates.Get(ctx)
	if errors.Is(err, repositories.ErrDocumentNotFound) {
		return models.NewAggregateDocument(), nil
	}
	if err != nil {
		return nil, storeError(err, ErrAggregateNotFound)
	}
	if doc.Aliases == nil {
		doc.Aliases = map[string]string{}
	}
	return doc, nil
}

// writeAggregateLocked must be called with the aggregate lock held.
func (s *documentService) writeAggregateLocked(ctx context.Context, doc *models.AggregateDocument) (*WriteResult, error) {
	backupID, err := s.backupLocked(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.aggregates.Put(ctx, doc); err != nil {
		return nil, storeError(err, ErrAggregateNotFound)
	}
	return s.finishWrite(ctx, backupID), nil
}

// backupLocked copies the current aggregate aside. No aggregate yet means nothing to back up.
func (s *documentService) backupLocked(ctx context.Context) (string, error) {
	raw, err := s.aggregates.GetRaw(ctx)
	if errors.Is(err, repositories.ErrDocumentNotFound) {
		return "", nil
	}
	if err != nil {
		return "", storeError(err, ErrAggregateNotFound)
	}
	backup, err := s.backups.Create(ctx, s.aggregates.Key(), raw, s.now())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}
	return backup.ID, nil
}

func (s *documentService) finishWrite(ctx context.Context, backupID string) *WriteResult {
	at := s.now()
	if removed, err := s.backups.Prune(ctx, s.cfg.MaxBackups); err != nil {
		s.logger.WarnContext(ctx, "failed to prune backups", slog.Any("error", err))
	} else if len(removed) > 0 {
		s.logger.DebugContext(ctx, "pruned backups", slog.Int("removed", len(removed)))
	}
	if s.notifier != nil {
		s.notifier.DocumentUpdated(s.aggregates.Key(), at)
	}
	s.logger.InfoContext(ctx, "aggregate written", slog.String("key", s.aggregates.Key()), slog.String("backup_id", backupID))
	return &WriteResult{Key: s.aggregates.Key(), Timestamp: at, BackupID: backupID}
}

func validateAggregate(doc *models.AggregateDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: aggregate document is required", ErrValidationFailed)
	}
	var err error
	doc.Games.Days.Each(func(key string, day models.ScheduleDay) bool {
		err = validateScheduleDay(key, day)
		return err == nil
	})
	return err
}

func validateScheduleDay(key string, day models.ScheduleDay) error {
	if len(day) > models.QuadrantCount {
		return fmt.Errorf("%w: day %q has %d sessions, at most %d allowed",
			ErrValidationFailed, key, len(day), models.QuadrantCount)
	}
	return nil
}
