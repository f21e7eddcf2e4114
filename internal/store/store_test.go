package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	require.NoError(t, err, "new memory store")
	t.Cleanup(func() { s.Close() })
	return s
}

// addFiring is a test helper that records a firing at the given instant.
func addFiring(t *testing.T, s *Store, at time.Time, status, content string) int64 {
	t.Helper()
	id, err := s.AddFiring(Firing{
		FiredAt:    at,
		ActionTime: at.Format("15:04"),
		Kind:       "notification",
		Content:    content,
		Status:     status,
	})
	require.NoError(t, err, "add firing")
	return id
}

func contents(firings []Firing) []string {
	out := make([]string, len(firings))
	for i, f := range firings {
		out[i] = f.Content
	}
	return out
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "history.db")
	s, err := New(path)
	require.NoError(t, err)
	addFiring(t, s, time.Now(), StatusOK, "persisted")
	require.NoError(t, s.Close())

	s2, err := New(path)
	require.NoError(t, err)
	defer s2.Close()
	got, err := s2.ListFirings(FiringFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"persisted"}, contents(got), "reopened store lost history")
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	require.NoError(t, err)
	assert.NotEmpty(t, path)
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.migrate(), "second migration")
}

// ============================================================
// Firings
// ============================================================

func TestAddAndGetFiring(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2026, 4, 2, 9, 0, 30, 0, time.Local)
	id, err := s.AddFiring(Firing{
		FiredAt:    at,
		ActionTime: "09:00",
		Kind:       "command",
		Content:    "backup.sh",
		Source:     "reminder",
		Status:     StatusFailed,
		Error:      "exit status 1",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	f, err := s.GetFiring(id)
	require.NoError(t, err)
	assert.True(t, f.FiredAt.Equal(at), "FiredAt = %v, want %v", f.FiredAt, at)
	assert.Equal(t, "09:00", f.ActionTime)
	assert.Equal(t, "command", f.Kind)
	assert.Equal(t, "backup.sh", f.Content)
	assert.Equal(t, "reminder", f.Source)
	assert.Equal(t, StatusFailed, f.Status)
	assert.Equal(t, "exit status 1", f.Error)
}

func TestAddFiringDefaults(t *testing.T) {
	s := newTestStore(t)
	id, err := s.AddFiring(Firing{ActionTime: "10:00", Kind: "notification", Content: "x"})
	require.NoError(t, err)

	f, err := s.GetFiring(id)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, f.Status)
	assert.Equal(t, "schedule", f.Source)
	assert.False(t, f.FiredAt.IsZero(), "FiredAt should default to now")
}

func TestGetFiringNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetFiring(999)
	assert.Error(t, err)
}

func TestMarkSnoozed(t *testing.T) {
	s := newTestStore(t)
	id := addFiring(t, s, time.Now(), StatusOK, "stretch")

	require.NoError(t, s.MarkSnoozed(id, 15))
	f, err := s.GetFiring(id)
	require.NoError(t, err)
	assert.Equal(t, StatusSnoozed, f.Status)
	assert.Equal(t, 15, f.SnoozeMinutes)
}

func TestMarkSnoozedMissing(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.MarkSnoozed(42, 5))
}

func TestListFiringsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	addFiring(t, s, base, StatusOK, "first")
	addFiring(t, s, base.Add(time.Minute), StatusOK, "second")
	addFiring(t, s, base.Add(2*time.Minute), StatusOK, "third")

	got, err := s.ListFirings(FiringFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second", "first"}, contents(got))
}

func TestListFiringsFilters(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 4, 2, 12, 0, 0, 0, time.Local)
	addFiring(t, s, base.Add(-2*time.Hour), StatusOK, "old")
	addFiring(t, s, base, StatusFailed, "broken")
	addFiring(t, s, base.Add(time.Hour), StatusOK, "new")

	from := base.Add(-time.Minute)
	got, err := s.ListFirings(FiringFilter{From: &from})
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "broken"}, contents(got), "From filter")

	to := base.Add(time.Minute)
	got, err = s.ListFirings(FiringFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, []string{"broken"}, contents(got), "From/To filter")

	got, err = s.ListFirings(FiringFilter{Status: StatusFailed})
	require.NoError(t, err)
	assert.Equal(t, []string{"broken"}, contents(got), "Status filter")

	got, err = s.ListFirings(FiringFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, contents(got), "Limit")
}

func TestListFiringsEmpty(t *testing.T) {
	s := newTestStore(t)
	got, err := s.ListFirings(FiringFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHourlyCounts(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2026, 4, 2, 0, 0, 0, 0, time.Local)
	addFiring(t, s, day.Add(9*time.Hour), StatusOK, "a")
	addFiring(t, s, day.Add(9*time.Hour+30*time.Minute), StatusOK, "b")
	addFiring(t, s, day.Add(23*time.Hour+59*time.Minute), StatusOK, "c")
	addFiring(t, s, day.Add(24*time.Hour), StatusOK, "next day")
	addFiring(t, s, day.Add(-time.Minute), StatusOK, "previous day")

	counts, err := s.HourlyCounts(day.Add(15 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, counts[9])
	assert.Equal(t, 1, counts[23])

	total := 0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, 3, total)
}

func TestGetDaySummary(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2026, 4, 2, 8, 0, 0, 0, time.Local)
	addFiring(t, s, day, StatusOK, "a")
	addFiring(t, s, day.Add(time.Minute), StatusOK, "b")
	addFiring(t, s, day.Add(2*time.Minute), StatusFailed, "c")
	id := addFiring(t, s, day.Add(3*time.Minute), StatusOK, "d")
	require.NoError(t, s.MarkSnoozed(id, 5))

	sum, err := s.GetDaySummary(day)
	require.NoError(t, err)
	assert.Equal(t, "2026-04-02", sum.Date)
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 2, sum.OK)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Snoozed)
}

func TestGetDaySummaryEmpty(t *testing.T) {
	s := newTestStore(t)
	sum, err := s.GetDaySummary(time.Now())
	require.NoError(t, err)
	assert.Zero(t, sum.Total)
}

func TestPruneFirings(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	addFiring(t, s, now.AddDate(0, 0, -40), StatusOK, "ancient")
	addFiring(t, s, now.AddDate(0, 0, -31), StatusOK, "old")
	addFiring(t, s, now.AddDate(0, 0, -1), StatusOK, "recent")

	n, err := s.PruneFirings(now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := s.ListFirings(FiringFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"recent"}, contents(got))
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	defaults := map[string]string{
		"shell":        "sh",
		"bell":         "on",
		"history_days": "30",
	}

	for k, expected := range defaults {
		val, err := s.GetSetting(k)
		require.NoError(t, err, "GetSetting(%q)", k)
		assert.Equal(t, expected, val, "GetSetting(%q)", k)
	}
}

func TestSetSetting(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetSetting("shell", "bash"))
	val, err := s.GetSetting("shell")
	require.NoError(t, err)
	assert.Equal(t, "bash", val)
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetSetting("key", "v1"))
	require.NoError(t, s.SetSetting("key", "v2"))
	val, err := s.GetSetting("key")
	require.NoError(t, err)
	assert.Equal(t, "v2", val)
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	assert.Error(t, err)
}

func TestSettingOr(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, "fallback", s.SettingOr("nonexistent", "fallback"))
	assert.Equal(t, "sh", s.SettingOr("shell", "fallback"))

	require.NoError(t, s.SetSetting("shell", ""))
	assert.Equal(t, "sh", s.SettingOr("shell", "sh"), "empty value should fall back")
}

func TestIntSettingOr(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, 30, s.IntSettingOr("history_days", 7))

	require.NoError(t, s.SetSetting("history_days", "lots"))
	assert.Equal(t, 7, s.IntSettingOr("history_days", 7), "unparsable value should fall back")
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	all, err := s.GetAllSettings()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(all), 3)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Key, all[i].Key, "settings not sorted")
	}
}

func TestCloseStore(t *testing.T) {
	s, err := NewMemory()
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}
