package sweep

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodepanel/pkg/history"
	"nodepanel/pkg/lock"
	"nodepanel/pkg/logger"
	"nodepanel/pkg/model"
	"nodepanel/pkg/store"
)

func newSweeper(st store.Store, now time.Time) *Sweeper {
	s := NewSweeper(st, lock.NewLocalLocker(), logger.NewNop())
	s.Now = func() time.Time { return now }
	return s
}

func addNode(t *testing.T, st store.Store, n model.Node) model.Node {
	t.Helper()
	created, err := st.CreateNode(n)
	require.NoError(t, err)
	return created
}

func TestRunDemotesStaleNodes(t *testing.T) {
	st := store.NewMemoryStore()
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	stale := addNode(t, st, model.Node{
		Name: "stale", UserEmail: "a@example.com",
		Status: model.StatusOnline, ConnectionCount: 7, CurrentBandwidth: 30,
		LastReportAt: now.Add(-11 * time.Minute),
	})
	fresh := addNode(t, st, model.Node{
		Name: "fresh", UserEmail: "a@example.com",
		Status: model.StatusOnline, ConnectionCount: 3, CurrentBandwidth: 10,
		LastReportAt: now.Add(-5 * time.Minute),
	})

	require.NoError(t, newSweeper(st, now).Run())

	after, _, _ := st.GetNode(stale.ID)
	assert.Equal(t, model.StatusOffline, after.Status)
	assert.Zero(t, after.ConnectionCount)
	assert.Zero(t, after.CurrentBandwidth)

	after, _, _ = st.GetNode(fresh.ID)
	assert.Equal(t, model.StatusOnline, after.Status)
	assert.Equal(t, 3, after.ConnectionCount)
}

func TestRunAggregatesAfterDemotion(t *testing.T) {
	st := store.NewMemoryStore()
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	addNode(t, st, model.Node{
		Name: "stale", UserEmail: "a@example.com",
		Status: model.StatusOnline, ConnectionCount: 7, CurrentBandwidth: 30, TierBandwidth: 100,
		LastReportAt: now.Add(-time.Hour),
	})
	addNode(t, st, model.Node{
		Name: "fresh", UserEmail: "a@example.com",
		Status: model.StatusOnline, ConnectionCount: 3, CurrentBandwidth: 10, TierBandwidth: 50,
		LastReportAt: now.Add(-time.Minute),
	})

	var got Snapshot
	s := newSweeper(st, now)
	s.OnSnapshot = func(snap Snapshot) { got = snap }
	require.NoError(t, s.Run())

	// The stale node's zeroed counters must be reflected in the totals.
	assert.Equal(t, 2, got.TotalNodes)
	assert.Equal(t, 1, got.OnlineNodes)
	assert.Equal(t, 3, got.Connections)
	assert.Equal(t, 10.0, got.Bandwidth)
	assert.Equal(t, 150.0, got.TierBandwidth)
}

func TestRunAppendsHistory(t *testing.T) {
	st := store.NewMemoryStore()
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	addNode(t, st, model.Node{
		Name: "n1", UserEmail: "a@example.com",
		Status: model.StatusOnline, ConnectionCount: 4, CurrentBandwidth: 20, TierBandwidth: 80,
		LastReportAt: now,
	})

	require.NoError(t, newSweeper(st, now).Run())

	for _, key := range model.SeriesKeys() {
		raw, ok, err := st.GetSetting(key)
		require.NoError(t, err)
		require.True(t, ok, key)
		series, err := history.Unmarshal(raw)
		require.NoError(t, err)
		require.Len(t, series.Points, 1, key)
	}
	raw, _, _ := st.GetSetting(model.SettingOnlineNodes)
	series, _ := history.Unmarshal(raw)
	assert.Equal(t, 1.0, series.Points[0].Value)

	updated, ok, _ := st.GetSetting(model.SettingStatsUpdated)
	require.True(t, ok)
	parsed, err := time.Parse(time.RFC3339, updated)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(now))
}

func TestRunSameBucketDoesNotDuplicate(t *testing.T) {
	st := store.NewMemoryStore()
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	s := newSweeper(st, now)

	require.NoError(t, s.Run())
	s.Now = func() time.Time { return now.Add(time.Minute) } // same bucket
	require.NoError(t, s.Run())

	raw, _, _ := st.GetSetting(model.SettingOnlineNodes)
	series, err := history.Unmarshal(raw)
	require.NoError(t, err)
	assert.Len(t, series.Points, 1)
}

func TestRunRecoversCorruptSeries(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.PutSetting(model.SettingBandwidth, "{not json"))
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, newSweeper(st, now).Run())

	raw, _, _ := st.GetSetting(model.SettingBandwidth)
	series, err := history.Unmarshal(raw)
	require.NoError(t, err)
	assert.Len(t, series.Points, 1)
}
