package merge

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Dosada05/sports-meet/models"
	"github.com/Dosada05/sports-meet/repositories"
	"github.com/Dosada05/sports-meet/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seed(t *testing.T, files map[string]string) repositories.FragmentRepository {
	t.Helper()
	store := storage.NewMemoryStore()
	for k, v := range files {
		require.NoError(t, store.Put(context.Background(), k, []byte(v)))
	}
	return repositories.NewFragmentRepository(store, repositories.DefaultKeys())
}

func TestPipeline_MergesScenario(t *testing.T) {
	fragments := seed(t, map[string]string{
		"games/10.json":      `[[{"grade":"高一","name":"A","time":"09:00","link":"x"}],[],[],[]]`,
		"players/10001.json": `{"name":"A","players":[[{"road":"1","name":"张三","data":"-"}]]}`,
		"h2c.json":           `{"张三":"高一(1)班"}`,
	})

	doc, report, err := NewPipeline(fragments, Options{}, discardLogger()).Run(context.Background())
	require.NoError(t, err)

	day, ok := doc.Games.Days.Get("第一天")
	require.True(t, ok)
	require.Len(t, day, 4)
	assert.Equal(t, []models.EventDescriptor{{Grade: "高一", Name: "A", Time: "09:00", Link: "x"}}, day[0])

	roster, ok := doc.Players.Get("A")
	require.True(t, ok)
	assert.Equal(t, "A", roster.Name)
	assert.Equal(t, "高一(1)班", roster.Players[0][0].Class)
	assert.Equal(t, "高一(1)班", doc.Games.ClassMapping["张三"])
	assert.Equal(t, map[string]string{"10001": "A"}, doc.Aliases)

	assert.Equal(t, 1, report.Days)
	assert.Equal(t, 1, report.Rosters)
	assert.Equal(t, 1, report.Backfilled)
	assert.Empty(t, report.Skipped)
	assert.Empty(t, report.Duplicates)
}

func TestPipeline_Idempotent(t *testing.T) {
	fragments := seed(t, map[string]string{
		"games/10.json":      `[[{"grade":"高一","name":"男子组100米预赛","time":"09:00","link":"/g?a=1&b=2"}],[],[],[]]`,
		"games/20.json":      `[[],[],[{"grade":"高二","name":"跳远","time":"14:00","link":""}],[]]`,
		"players/10001.json": `{"name":"高一男子组100米预赛","players":[[{"road":"1","name":"张三","data":"-"},{"road":"2","name":"李四","data":"-"}]]}`,
		"players/20002.json": `{"name":"高二跳远","players":[[{"road":"1","name":"王五","data":"-","class":"高二(3)班"}]]}`,
		"h2c.json":           `{"张三":"高一(1)班","王五":"高二(9)班"}`,
	})
	p := NewPipeline(fragments, Options{}, discardLogger())

	first, _, err := p.Run(context.Background())
	require.NoError(t, err)
	second, _, err := p.Run(context.Background())
	require.NoError(t, err)

	a, err := models.EncodeDocument(first)
	require.NoError(t, err)
	b, err := models.EncodeDocument(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	assert.Equal(t, []string{"第一天", "第二天"}, first.Games.Days.Keys())
}

func TestPipeline_BackfillKeepsExistingClass(t *testing.T) {
	fragments := seed(t, map[string]string{
		"players/1.json": `{"name":"跳远","players":[[{"road":"1","name":"王五","data":"-","class":"高二(3)班"},{"road":"2","name":"赵六","data":"-"}]]}`,
		"h2c.json":       `{"王五":"高二(9)班"}`,
	})

	doc, report, err := NewPipeline(fragments, Options{}, discardLogger()).Run(context.Background())
	require.NoError(t, err)

	roster, _ := doc.Players.Get("跳远")
	assert.Equal(t, "高二(3)班", roster.Players[0][0].Class)
	assert.Equal(t, "", roster.Players[0][1].Class)
	assert.Equal(t, 0, report.Backfilled)
}

func TestPipeline_DuplicateNameLastWins(t *testing.T) {
	fragments := seed(t, map[string]string{
		"players/001.json": `{"name":"B","players":[[{"road":"1","name":"first","data":"-"}]]}`,
		"players/002.json": `{"name":"C","players":[]}`,
		"players/003.json": `{"name":"B","players":[[{"road":"1","name":"second","data":"-"}]]}`,
		"h2c.json":         `{}`,
	})

	doc, report, err := NewPipeline(fragments, Options{}, discardLogger()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C"}, doc.Players.Keys())
	roster, ok := doc.Players.Get("B")
	require.True(t, ok)
	assert.Equal(t, "second", roster.Players[0][0].Name)

	require.Len(t, report.Duplicates, 1)
	assert.Equal(t, "B", report.Duplicates[0].Name)
	assert.Equal(t, []string{"players/001.json", "players/003.json"}, report.Duplicates[0].Keys)
}

func TestPipeline_StrictRejectsDuplicates(t *testing.T) {
	fragments := seed(t, map[string]string{
		"players/001.json": `{"name":"B","players":[]}`,
		"players/002.json": `{"name":"B","players":[]}`,
		"h2c.json":         `{}`,
	})

	doc, report, err := NewPipeline(fragments, Options{Strict: true}, discardLogger()).Run(context.Background())
	assert.ErrorIs(t, err, ErrDuplicateRosterName)
	assert.Nil(t, doc)
	require.NotNil(t, report)
	assert.Len(t, report.Duplicates, 1)
}

func TestPipeline_SkipsBadFragments(t *testing.T) {
	fragments := seed(t, map[string]string{
		"games/10.json":    `[[],[],[],[]]`,
		"games/20.json":    `{"not":"a schedule"}`,
		"players/ok.json":  `{"name":"A","players":[]}`,
		"players/bad.json": `{"name":`,
		"h2c.json":         `{}`,
	})

	doc, report, err := NewPipeline(fragments, Options{}, discardLogger()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"第一天"}, doc.Games.Days.Keys())
	assert.Equal(t, []string{"A"}, doc.Players.Keys())

	var skipped []string
	for _, s := range report.Skipped {
		skipped = append(skipped, s.Key)
		assert.NotEmpty(t, s.Reason)
	}
	assert.ElementsMatch(t, []string{"games/20.json", "players/bad.json"}, skipped)
}

func TestPipeline_AbortsWithoutClassMapping(t *testing.T) {
	fragments := seed(t, map[string]string{
		"games/10.json": `[[],[],[],[]]`,
	})

	_, _, err := NewPipeline(fragments, Options{}, discardLogger()).Run(context.Background())
	assert.ErrorIs(t, err, ErrClassMappingUnavailable)
	assert.ErrorIs(t, err, repositories.ErrDocumentNotFound)

	fragments = seed(t, map[string]string{"h2c.json": `["broken"`})
	_, _, err = NewPipeline(fragments, Options{}, discardLogger()).Run(context.Background())
	assert.ErrorIs(t, err, ErrClassMappingUnavailable)
}

func TestPipeline_UnknownFragmentKeepsStem(t *testing.T) {
	fragments := seed(t, map[string]string{
		"games/30.json": `[[],[],[],[]]`,
		"h2c.json":      `{}`,
	})

	doc, _, err := NewPipeline(fragments, Options{}, discardLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"30"}, doc.Games.Days.Keys())
}

func TestPipeline_SkipsReservedDayKey(t *testing.T) {
	fragments := seed(t, map[string]string{
		"games/10.json":           `[[],[],[],[]]`,
		"games/classMapping.json": `[[],[],[],[]]`,
		"h2c.json":                `{"张三":"高一1班"}`,
	})

	doc, report, err := NewPipeline(fragments, Options{}, discardLogger()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"第一天"}, doc.Games.Days.Keys())
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "games/classMapping.json", report.Skipped[0].Key)
	assert.Contains(t, report.Skipped[0].Reason, "reserved")
	assert.Equal(t, "高一1班", doc.Games.ClassMapping["张三"])
}

func TestPipeline_CustomLayout(t *testing.T) {
	fragments := seed(t, map[string]string{
		"games/d3.json": `[[],[],[],[]]`,
		"h2c.json":      `{}`,
	})
	layout := models.MeetLayout{Days: []models.DayLayout{{Number: "3", Key: "第三天", Fragment: "d3"}}}

	doc, _, err := NewPipeline(fragments, Options{Layout: layout}, discardLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"第三天"}, doc.Games.Days.Keys())
}

func TestPipeline_CanceledContext(t *testing.T) {
	fragments := seed(t, map[string]string{
		"players/1.json": `{"name":"A","players":[]}`,
		"h2c.json":       `{}`,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewPipeline(fragments, Options{}, discardLogger()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
