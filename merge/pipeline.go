package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/sports-meet/models"
	"github.com/Dosada05/sports-meet/repositories"
	"github.com/Dosada05/sports-meet/storage"
	"golang.org/x/sync/errgroup"
)

var (
	ErrClassMappingUnavailable = errors.New("class mapping unavailable")
	ErrDuplicateRosterName     = errors.New("duplicate roster name")
	ErrReservedDayKey          = errors.New("day key is reserved")
)

const defaultConcurrency = 8

type Options struct {
	Layout models.MeetLayout
	// Strict turns duplicate roster names into ErrDuplicateRosterName instead of last-wins.
	Strict      bool
	Concurrency int
}

type SkippedFragment struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// DuplicateName records fragments that produced the same roster name.
// The last entry of Keys is the one kept in the aggregate.
type DuplicateName struct {
	Name string   `json:"name"`
	Keys []string `json:"keys"`
}

type Report struct {
	Days       int               `json:"days"`
	Rosters    int               `json:"rosters"`
	Backfilled int               `json:"backfilled"`
	Skipped    []SkippedFragment `json:"skipped"`
	Duplicates []DuplicateName   `json:"duplicates"`
}

type Pipeline struct {
	fragments repositories.FragmentRepository
	opts      Options
	logger    *slog.Logger
}

func NewPipeline(fragments repositories.FragmentRepository, opts Options, logger *slog.Logger) *Pipeline {
	if len(opts.Layout.Days) == 0 {
		opts.Layout = models.DefaultMeetLayout()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{fragments: fragments, opts: opts, logger: logger}
}

type loaded[T any] struct {
	key   string
	value T
	err   error
}

// Run builds the aggregate from the fragments currently in the store.
// A fragment that cannot be read or parsed is skipped; an unreadable class mapping aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*models.AggregateDocument, *Report, error) {
	mapping, err := p.fragments.GetClassMapping(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrClassMappingUnavailable, err)
	}

	scheduleKeys, err := p.fragments.ListScheduleKeys(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list schedule fragments: %w", err)
	}
	rosterKeys, err := p.fragments.ListRosterKeys(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list roster fragments: %w", err)
	}

	schedules, err := loadAll(ctx, p.opts.Concurrency, scheduleKeys, p.fragments.GetSchedule)
	if err != nil {
		return nil, nil, err
	}
	rosters, err := loadAll(ctx, p.opts.Concurrency, rosterKeys, p.fragments.GetRoster)
	if err != nil {
		return nil, nil, err
	}

	doc := models.NewAggregateDocument()
	report := &Report{Skipped: []SkippedFragment{}, Duplicates: []DuplicateName{}}

	for _, s := range schedules {
		if s.err != nil {
			p.skip(ctx, report, s.key, s.err)
			continue
		}
		stem := storage.Stem(s.key)
		dayKey := stem
		if day, ok := p.opts.Layout.ByFragment(stem); ok {
			dayKey = day.Key
		} else {
			p.logger.WarnContext(ctx, "schedule fragment is not part of the meet layout, keeping its file name as day key",
				slog.String("key", s.key))
		}
		if dayKey == models.ClassMappingKey {
			p.skip(ctx, report, s.key, fmt.Errorf("%w: %q", ErrReservedDayKey, dayKey))
			continue
		}
		doc.Games.Days.Set(dayKey, s.value)
	}

	sources := make(map[string][]string)
	var order []string
	for _, r := range rosters {
		if r.err != nil {
			p.skip(ctx, report, r.key, r.err)
			continue
		}
		stem := storage.Stem(r.key)
		roster := r.value
		if roster.Name == "" {
			p.logger.WarnContext(ctx, "roster fragment has no name, keying it by file name", slog.String("key", r.key))
			roster.Name = stem
		}
		if roster.Players == nil {
			roster.Players = [][]models.RosterEntry{}
		}

		if _, ok := sources[roster.Name]; !ok {
			order = append(order, roster.Name)
		} else {
			p.logger.WarnContext(ctx, "duplicate roster name, later fragment replaces earlier one",
				slog.String("name", roster.Name),
				slog.String("replaced", sources[roster.Name][len(sources[roster.Name])-1]),
				slog.String("key", r.key))
		}
		sources[roster.Name] = append(sources[roster.Name], r.key)

		doc.Players.Set(roster.Name, roster)
		if stem != roster.Name {
			doc.Aliases[stem] = roster.Name
		}
	}
	for _, name := range order {
		if keys := sources[name]; len(keys) > 1 {
			report.Duplicates = append(report.Duplicates, DuplicateName{Name: name, Keys: keys})
		}
	}

	if p.opts.Strict && len(report.Duplicates) > 0 {
		names := make([]string, 0, len(report.Duplicates))
		for _, d := range report.Duplicates {
			names = append(names, d.Name)
		}
		return nil, report, fmt.Errorf("%w: %s", ErrDuplicateRosterName, strings.Join(names, ", "))
	}

	report.Backfilled = Backfill(&doc.Players, mapping)
	doc.Games.ClassMapping = mapping
	report.Days = doc.Games.Days.Len()
	report.Rosters = doc.Players.Len()

	p.logger.InfoContext(ctx, "merge finished",
		slog.Int("days", report.Days),
		slog.Int("rosters", report.Rosters),
		slog.Int("backfilled", report.Backfilled),
		slog.Int("skipped", len(report.Skipped)),
		slog.Int("duplicates", len(report.Duplicates)))

	return doc, report, nil
}

func (p *Pipeline) skip(ctx context.Context, report *Report, key string, err error) {
	p.logger.WarnContext(ctx, "skipping fragment", slog.String("key", key), slog.Any("error", err))
	report.Skipped = append(report.Skipped, SkippedFragment{Key: key, Reason: err.Error()})
}

// Backfill sets the class of every roster entry that has none from mapping
// and returns how many entries were filled.
func Backfill(players *models.OrderedMap[models.PlayerList], mapping models.ClassMapping) int {
	filled := 0
	players.Each(func(_ string, roster models.PlayerList) bool {
		for _, group := range roster.Players {
			for i := range group {
				if group[i].Class != "" {
					continue
				}
				if class, ok := mapping.Lookup(group[i].Name); ok {
					group[i].Class = class
					filled++
				}
			}
		}
		return true
	})
	return filled
}

// loadAll reads keys concurrently and returns results in the order of keys.
// Per-key failures are kept in the result; only context cancellation fails the call.
func loadAll[T any](ctx context.Context, limit int, keys []string, get func(context.Context, string) (T, error)) ([]loaded[T], error) {
	out := make([]loaded[T], len(keys))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			v, err := get(gCtx, key)
			out[i] = loaded[T]{key: key, value: v, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
