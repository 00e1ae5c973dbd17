package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Dosada05/sports-meet/models"
	"github.com/Dosada05/sports-meet/repositories"
	"golang.org/x/sync/singleflight"
)

// legacyIDSuffixLen is how many trailing characters of a numeric id are matched
// against roster names by the legacy lookup.
const legacyIDSuffixLen = 3

var numericID = regexp.MustCompile(`^\d+$`)

// distanceUnits rewrites schedule spellings ("100M") into roster spellings ("100米").
var distanceUnits = strings.NewReplacer(
	"3000M", "3000米",
	"1500M", "1500米",
	"800M", "800米",
	"400M", "400米",
	"200M", "200米",
	"110M", "110米",
	"100M", "100米",
)

// AthleteHit is one roster row returned by SearchAthletes.
type AthleteHit struct {
	Name     string `json:"name"`
	Class    string `json:"class"`
	GameName string `json:"gameName"`
	GameLink string `json:"gameLink"`
	Group    string `json:"group"`
	Grade    string `json:"grade"`
	Gender   string `json:"gender"`
}

type QueryService interface {
	Aggregate(ctx context.Context) (*models.AggregateDocument, error)
	GetSchedule(ctx context.Context, day string) (*models.Schedule, error)
	GetDay(ctx context.Context, day string) (models.ScheduleDay, error)
	GetRosterByID(ctx context.Context, id string) (*models.PlayerList, error)
	GetRosterByName(ctx context.Context, name, grade, time string) (*models.PlayerList, error)
	GetClassMapping(ctx context.Context) (models.ClassMapping, error)
	SearchAthletes(ctx context.Context, query string) ([]AthleteHit, error)
	Layout() models.MeetLayout
}

type queryService struct {
	aggregates repositories.AggregateRepository
	layout     models.MeetLayout
	loads      singleflight.Group
}

func NewQueryService(aggregates repositories.AggregateRepository, layout models.MeetLayout) QueryService {
	if len(layout.Days) == 0 {
		layout = models.DefaultMeetLayout()
	}
	return &queryService{aggregates: aggregates, layout: layout}
}

func (s *queryService) Layout() models.MeetLayout {
	return s.layout
}

// Aggregate reads the last persisted aggregate. Concurrent callers share one read;
// the returned document must be treated as read-only. The shared read is detached
// from any single caller's cancellation, each caller stops waiting on its own ctx.
func (s *queryService) Aggregate(ctx context.Context) (*models.AggregateDocument, error) {
	loadCtx := context.WithoutCancel(ctx)
	ch := s.loads.DoChan(s.aggregates.Key(), func() (interface{}, error) {
		doc, err := s.aggregates.Get(loadCtx)
		if err != nil {
			return nil, storeError(err, ErrAggregateNotFound)
		}
		return doc, nil
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrIO, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.AggregateDocument), nil
	}
}

func (s *queryService) GetDay(ctx context.Context, day string) (models.ScheduleDay, error) {
	layout, ok := s.layout.Resolve(day)
	if !ok {
		return nil, ErrDayNotFound
	}
	doc, err := s.Aggregate(ctx)
	if err != nil {
		return nil, err
	}
	if _, slice, ok := findDay(doc, layout); ok {
		return slice, nil
	}
	return nil, ErrDayNotFound
}

func (s *queryService) GetSchedule(ctx context.Context, day string) (*models.Schedule, error) {
	slice, err := s.GetDay(ctx, day)
	if err != nil {
		return nil, err
	}
	schedule := slice.Reshape()
	return &schedule, nil
}

// GetRosterByID resolves a legacy roster id: the alias table built at merge time first,
// then, for numeric ids, the first roster whose name contains the id's last three
// characters, then an exact key match.
func (s *queryService) GetRosterByID(ctx context.Context, id string) (*models.PlayerList, error) {
	if id == "" {
		return nil, ErrRosterNotFound
	}
	doc, err := s.Aggregate(ctx)
	if err != nil {
		return nil, err
	}

	if name, ok := doc.Aliases[id]; ok {
		if roster, ok := doc.Players.Get(name); ok {
			return &roster, nil
		}
	}

	if numericID.MatchString(id) {
		suffix := lastRunes(id, legacyIDSuffixLen)
		var found *models.PlayerList
		doc.Players.Each(func(_ string, roster models.PlayerList) bool {
			if roster.Name != "" && strings.Contains(roster.Name, suffix) {
				found = &roster
				return false
			}
			return true
		})
		if found != nil {
			return found, nil
		}
	}

	if roster, ok := doc.Players.Get(id); ok {
		return &roster, nil
	}
	return nil, ErrRosterNotFound
}

// GetRosterByName looks up grade+name after normalizing distance units. A miss is not
// an error: the result is an empty roster carrying the requested name.
func (s *queryService) GetRosterByName(ctx context.Context, name, grade, time string) (*models.PlayerList, error) {
	doc, err := s.Aggregate(ctx)
	if err != nil {
		return nil, err
	}
	key := RosterLookupKey(name, grade)

	if roster, ok := doc.Players.Get(key); ok {
		return &roster, nil
	}
	var found *models.PlayerList
	doc.Players.Each(func(_ string, roster models.PlayerList) bool {
		if roster.Name == key {
			found = &roster
			return false
		}
		return true
	})
	if found != nil {
		return found, nil
	}
	empty := models.EmptyPlayerList(name)
	return &empty, nil
}

func (s *queryService) GetClassMapping(ctx context.Context) (models.ClassMapping, error) {
	doc, err := s.Aggregate(ctx)
	if err != nil {
		return nil, err
	}
	if doc.Games.ClassMapping == nil {
		return models.ClassMapping{}, nil
	}
	return doc.Games.ClassMapping, nil
}

// SearchAthletes returns every roster row whose athlete name or class contains query,
// ignoring case. A blank query matches nothing; otherwise the query is matched untrimmed.
func (s *queryService) SearchAthletes(ctx context.Context, query string) ([]AthleteHit, error) {
	if strings.TrimSpace(query) == "" {
		return []AthleteHit{}, nil
	}
	term := strings.ToLower(query)
	doc, err := s.Aggregate(ctx)
	if err != nil {
		return nil, err
	}

	links := make(map[string]string, len(doc.Aliases))
	for stem, name := range doc.Aliases {
		if cur, ok := links[name]; !ok || stem < cur {
			links[name] = stem
		}
	}

	hits := []AthleteHit{}
	doc.Players.Each(func(key string, roster models.PlayerList) bool {
		gameName := roster.Name
		if gameName == "" {
			gameName = key
		}
		link := key
		if stem, ok := links[key]; ok {
			link = stem
		}
		grade, gender := inferGradeAndGender(gameName)

		for gi, group := range roster.Players {
			for _, entry := range group {
				if strings.TrimSpace(entry.Name) == "" {
					continue
				}
				class := entry.Class
				if class == "" {
					if mapped, ok := doc.Games.ClassMapping.Lookup(entry.Name); ok {
						class = mapped
					} else {
						class = "未知班级"
					}
				}
				if !strings.Contains(strings.ToLower(entry.Name), term) && !strings.Contains(strings.ToLower(class), term) {
					continue
				}
				hits = append(hits, AthleteHit{
					Name:     entry.Name,
					Class:    class,
					GameName: gameName,
					GameLink: "/game/" + link,
					Group:    strconv.Itoa(gi + 1),
					Grade:    grade,
					Gender:   gender,
				})
			}
		}
		return true
	})
	return hits, nil
}

// RosterLookupKey builds the players key used for a schedule entry: grade followed by
// the event name with distance units rewritten.
func RosterLookupKey(name, grade string) string {
	return grade + distanceUnits.Replace(name)
}

// findDay looks a layout day up under each of its aliases, preferring the day key.
func findDay(doc *models.AggregateDocument, day models.DayLayout) (string, models.ScheduleDay, bool) {
	for _, k := range []string{day.Key, day.Fragment, day.Number} {
		if k == "" {
			continue
		}
		if slice, ok := doc.Games.Days.Get(k); ok {
			return k, slice, true
		}
	}
	return "", nil, false
}

func inferGradeAndGender(gameName string) (string, string) {
	grade, gender := "未知", "未知"
	for _, g := range []string{"高一", "高二", "高三"} {
		if strings.Contains(gameName, g) {
			grade = g
			break
		}
	}
	switch {
	case strings.Contains(gameName, "男子"):
		gender = "男"
	case strings.Contains(gameName, "女子"):
		gender = "女"
	}
	return grade, gender
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
