package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodepanel/pkg/apperr"
	"nodepanel/pkg/model"
	"nodepanel/pkg/store"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func seedNode(t *testing.T, st store.Store) model.Node {
	t.Helper()
	n, err := st.CreateNode(model.Node{
		UserEmail:      "owner@example.com",
		Name:           "tokyo-1",
		MaxBandwidth:   200,
		MaxConnections: 50,
		MaxTraffic:     1000,
		TierBandwidth:  100,
		UsedTraffic:    50,
		ResetCycle:     15,
		ResetDate:      time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
		ValidUntil:     time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC),
		Status:         model.StatusOffline,
		ReportToken:    "secret-token",
	})
	require.NoError(t, err)
	return n
}

func baseParams() Params {
	return Params{
		NodeName:    "tokyo-1",
		Email:       "owner@example.com",
		Token:       "secret-token",
		Bandwidth:   80,
		Traffic:     100,
		Connections: 10,
		Online:      true,
	}
}

func TestProcessUnknownNode(t *testing.T) {
	st := store.NewMemoryStore()
	rec := NewReconciler(st)
	p := baseParams()
	p.NodeName = "nowhere"
	_, err := rec.Process(p)
	require.Error(t, err)
	assert.True(t, apperr.IsType(err, apperr.NotFound))
}

func TestProcessTokenMismatchMutatesNothing(t *testing.T) {
	st := store.NewMemoryStore()
	node := seedNode(t, st)
	rec := NewReconciler(st)
	rec.Now = fixedNow(time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC))

	p := baseParams()
	p.Token = "wrong"
	_, err := rec.Process(p)
	require.Error(t, err)
	assert.True(t, apperr.IsType(err, apperr.Forbidden))

	after, _, _ := st.GetNode(node.ID)
	assert.Equal(t, node, after)
}

func TestProcessExpiredLease(t *testing.T) {
	st := store.NewMemoryStore()
	node := seedNode(t, st)
	node.ValidUntil = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.SaveNode(node))

	rec := NewReconciler(st)
	rec.Now = fixedNow(time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC))
	_, err := rec.Process(baseParams())
	require.Error(t, err)
	assert.True(t, apperr.IsType(err, apperr.Forbidden))
}

func TestProcessOverwritesTrafficWithinPeriod(t *testing.T) {
	st := store.NewMemoryStore()
	node := seedNode(t, st)
	rec := NewReconciler(st)
	rec.Now = fixedNow(time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC))

	p := baseParams()
	p.Traffic = 100
	res, err := rec.Process(p)
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.UsedTraffic)

	// A lower cumulative value is accepted verbatim under the default
	// policy: the reporter's counter is authoritative.
	p.Traffic = 40
	res, err = rec.Process(p)
	require.NoError(t, err)
	assert.Equal(t, 40.0, res.UsedTraffic)

	after, _, _ := st.GetNode(node.ID)
	assert.Equal(t, 40.0, after.UsedTraffic)
	assert.True(t, after.ResetDate.Equal(node.ResetDate), "reset date must not move before rollover")
}

func TestProcessMonotonicPolicy(t *testing.T) {
	st := store.NewMemoryStore()
	seedNode(t, st)
	rec := NewReconciler(st)
	rec.Policy = MonotonicWithinPeriod{}
	rec.Now = fixedNow(time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC))

	p := baseParams()
	p.Traffic = 40 // below the stored 50
	res, err := rec.Process(p)
	require.NoError(t, err)
	assert.Equal(t, 50.0, res.UsedTraffic)
}

func TestProcessRollover(t *testing.T) {
	st := store.NewMemoryStore()
	node := seedNode(t, st)
	rec := NewReconciler(st)
	rec.Now = fixedNow(time.Date(2024, time.June, 16, 0, 0, 0, 0, time.UTC))

	p := baseParams()
	p.Traffic = 5
	res, err := rec.Process(p)
	require.NoError(t, err)

	// Rollover rebaselines to the reported total, not zero, and
	// schedules next month's reset.
	assert.Equal(t, 5.0, res.UsedTraffic)
	assert.True(t, res.ResetDate.Equal(time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)),
		"got %v", res.ResetDate)

	after, _, _ := st.GetNode(node.ID)
	assert.Equal(t, 5.0, after.UsedTraffic)
	assert.Equal(t, model.StatusOnline, after.Status)
}

func TestProcessUpdatesLiveMetrics(t *testing.T) {
	st := store.NewMemoryStore()
	node := seedNode(t, st)
	now := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	rec := NewReconciler(st)
	rec.Now = fixedNow(now)

	tier := 150.0
	p := baseParams()
	p.TierBandwidth = &tier
	res, err := rec.Process(p)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, res.MaxTraffic)

	after, _, _ := st.GetNode(node.ID)
	assert.Equal(t, 80.0, after.CurrentBandwidth)
	assert.Equal(t, 10, after.ConnectionCount)
	assert.Equal(t, 150.0, after.TierBandwidth)
	assert.True(t, after.LastReportAt.Equal(now))
	require.Len(t, after.RecentStatus, 1)
}

func TestProcessAppendsLoadDigit(t *testing.T) {
	st := store.NewMemoryStore()
	node := seedNode(t, st)
	rec := NewReconciler(st)
	rec.Now = fixedNow(time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC))

	// 80/100*3 + 100/1000*3 + 10/50*3 = 3.3 -> 4
	_, err := rec.Process(baseParams())
	require.NoError(t, err)
	after, _, _ := st.GetNode(node.ID)
	assert.Equal(t, "4", after.RecentStatus)

	// Offline reports append the sentinel digit 1.
	p := baseParams()
	p.Online = false
	_, err = rec.Process(p)
	require.NoError(t, err)
	after, _, _ = st.GetNode(node.ID)
	assert.Equal(t, "41", after.RecentStatus)
	assert.Equal(t, model.StatusOffline, after.Status)
}
