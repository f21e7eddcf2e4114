package schedule

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tod(t *testing.T, s string) TimeOfDay {
	t.Helper()
	v, err := ParseTimeOfDay(s)
	require.NoError(t, err)
	return v
}

// ============================================================
// TimeOfDay
// ============================================================

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"00:00", At(0, 0), false},
		{"09:05", At(9, 5), false},
		{"23:59", At(23, 59), false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"9:05", 0, true},
		{"09-05", 0, true},
		{"0a:05", 0, true},
		{"09:051", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestTimeOfDayAddWraps(t *testing.T) {
	assert.Equal(t, At(0, 5), At(23, 55).Add(10*time.Minute))
	assert.Equal(t, At(23, 50), At(0, 10).Add(-20*time.Minute))
	assert.Equal(t, At(12, 0), At(12, 0).Add(24*time.Hour))
}

func TestTimeOfDayAddMinutesLargeValues(t *testing.T) {
	assert.Equal(t, At(0, 5), At(23, 55).AddMinutes(10))
	assert.Equal(t, At(12, 0), At(12, 0).AddMinutes(3*24*60))
	// 200000000 min is 138888 days plus 21h20m.
	assert.Equal(t, At(6, 20), At(9, 0).AddMinutes(200000000))
	assert.Equal(t, At(18, 7), At(0, 0).AddMinutes(math.MaxInt))
}

func TestClock(t *testing.T) {
	ts := time.Date(2026, 3, 1, 14, 7, 30, 500, time.Local)
	c := Clock(ts)
	assert.Equal(t, 14, c.Hour())
	assert.Equal(t, 7, c.Minute())
	assert.Equal(t, "14:07:30", c.String())
	assert.True(t, c.On(ts).Equal(ts))
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "07:03", At(7, 3).String())
	assert.Equal(t, "00:00", TimeOfDay(0).String())
}

// ============================================================
// IsDue
// ============================================================

func TestIsDueNonWrapping(t *testing.T) {
	start, end := tod(t, "09:00"), tod(t, "09:10")
	assert.True(t, IsDue(start, start, end), "start is inclusive")
	assert.True(t, IsDue(end, start, end), "end is inclusive")
	assert.True(t, IsDue(tod(t, "09:05"), start, end))
	assert.False(t, IsDue(tod(t, "08:59"), start, end))
	assert.False(t, IsDue(tod(t, "09:11"), start, end))
}

func TestIsDueWrapsMidnight(t *testing.T) {
	start, end := tod(t, "23:58"), tod(t, "00:02")
	assert.True(t, IsDue(tod(t, "23:59"), start, end))
	assert.True(t, IsDue(tod(t, "00:00"), start, end))
	assert.True(t, IsDue(tod(t, "00:01"), start, end))
	assert.True(t, IsDue(start, start, end))
	assert.True(t, IsDue(end, start, end))
	assert.False(t, IsDue(tod(t, "12:00"), start, end))
	assert.False(t, IsDue(tod(t, "00:03"), start, end))
	assert.False(t, IsDue(tod(t, "23:57"), start, end))
}

func TestIsDueExhaustiveMinutes(t *testing.T) {
	for _, w := range [][2]TimeOfDay{
		{At(23, 0), At(1, 0)},
		{At(1, 0), At(23, 0)},
		{At(5, 5), At(5, 5)},
	} {
		start, end := w[0], w[1]
		for m := 0; m < 24*60; m++ {
			x := At(0, m)
			var want bool
			if start <= end {
				want = start <= x && x <= end
			} else {
				want = x >= start || x <= end
			}
			require.Equal(t, want, IsDue(x, start, end), "t=%s window=%s-%s", x, start, end)
		}
	}
}

// ============================================================
// Parse
// ============================================================

func TestParseFullSchedule(t *testing.T) {
	text := "# morning\n" +
		"\n" +
		"remind 5 15 60\n" +
		"08:00 \"Stand up\"\n" +
		"08:30 `echo hi`\r\n" +
		"   \n" +
		"23:59 \"Sleep\"\n"

	s, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 15, 60}, s.ReminderOffsets)
	require.Len(t, s.Actions, 3)
	assert.Equal(t, Action{Kind: Notification, Content: "Stand up", Time: At(8, 0)}, s.Actions[0])
	assert.Equal(t, Action{Kind: Command, Content: "echo hi", Time: At(8, 30)}, s.Actions[1])
	assert.Equal(t, Action{Kind: Notification, Content: "Sleep", Time: At(23, 59)}, s.Actions[2])
}

func TestParseKeepsFileOrder(t *testing.T) {
	s, err := Parse("10:00 \"b\"\n09:00 \"a\"\n10:00 \"c\"\n")
	require.NoError(t, err)
	require.Len(t, s.Actions, 3)
	assert.Equal(t, "b", s.Actions[0].Content)
	assert.Equal(t, "a", s.Actions[1].Content)
	assert.Equal(t, "c", s.Actions[2].Content)
}

func TestParseQuoteAndBacktick(t *testing.T) {
	s, err := Parse("12:00 `echo hi`")
	require.NoError(t, err)
	assert.Equal(t, Command, s.Actions[0].Kind)
	assert.Equal(t, "echo hi", s.Actions[0].Content)

	s, err = Parse(`12:00 "hi"`)
	require.NoError(t, err)
	assert.Equal(t, Notification, s.Actions[0].Kind)
	assert.Equal(t, "hi", s.Actions[0].Content)
}

func TestParseContentKeepsInnerQuotes(t *testing.T) {
	s, err := Parse("12:00 `notify-send \"a b\"`")
	require.NoError(t, err)
	assert.Equal(t, `notify-send "a b"`, s.Actions[0].Content)
}

func TestParseAllOrNothing(t *testing.T) {
	bad := []string{
		"08:00 \"ok\"\nbad line",
		"08:00 \"ok\"\n12:00 `hi\"",
		"08:00 \"ok\"\n12:00 hi",
		"08:00 \"ok\"\n12:00 \"hi",
		"08:00 \"ok\"\n12:00 \"",
		"08:00 \"ok\"\n12:00  \"two spaces\"",
		"08:00 \"ok\"\n8:00 \"short time\"",
		"08:00 \"ok\"\n25:00 \"bad hour\"",
		"08:00 \"ok\"\n12:00",
		"08:00 \"ok\"\n12:00\t\"tab\"",
		"08:00 \"ok\"\nremind 5 0",
		"08:00 \"ok\"\nremind 5 -3",
		"08:00 \"ok\"\nremind 5 x",
		"08:00 \"ok\"\nremind 5\nremind 10",
	}
	for _, text := range bad {
		s, err := Parse(text)
		require.Error(t, err, text)
		assert.ErrorIs(t, err, ErrInvalid, text)
		assert.True(t, s.Empty(), "schedule should be empty for %q", text)
		assert.Nil(t, s.Actions, text)
	}
}

func TestParseErrorLine(t *testing.T) {
	_, err := Parse("# c\n08:00 \"ok\"\n\nbad line\n")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 4, pe.Line)
	assert.Equal(t, "bad line", pe.Text)
	assert.Contains(t, pe.Error(), "line 4")
}

func TestParseRemindDedupes(t *testing.T) {
	s, err := Parse("remind 10 5 10")
	require.NoError(t, err)
	assert.Equal(t, []int{10, 5}, s.ReminderOffsets)
	assert.Empty(t, s.Actions)
}

func TestParseBareRemind(t *testing.T) {
	s, err := Parse("remind")
	require.NoError(t, err)
	assert.Empty(t, s.ReminderOffsets)
}

func TestParseEmpty(t *testing.T) {
	s, err := Parse("")
	require.NoError(t, err)
	assert.True(t, s.Empty())
}

func TestScheduleDue(t *testing.T) {
	s, err := Parse("23:59 \"a\"\n12:00 \"noon\"\n00:01 \"b\"\n")
	require.NoError(t, err)
	due := s.Due(At(23, 58), At(0, 2))
	require.Len(t, due, 2)
	assert.Equal(t, "a", due[0].Content)
	assert.Equal(t, "b", due[1].Content)
}

// ============================================================
// Load / Watch
// ============================================================

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routine.txt")
	require.NoError(t, os.WriteFile(path, []byte("07:00 \"wake\"\n"), 0o644))
	s, err := Load(path)
	require.NoError(t, err)
	require.Len(t, s.Actions, 1)
}

func TestWatchSignalsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routine.txt")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := Watch(ctx, path)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("07:00 \"wake\"\n"), 0o644))

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timed out waiting for change signal")
	}

	cancel()
	for range ch {
	}
}

func TestUpcomingWraps(t *testing.T) {
	s, err := Parse("07:00 \"wake\"\n12:00 \"lunch\"\n22:00 \"sleep\"\n12:00 \"pills\"\n")
	require.NoError(t, err)

	up := s.Upcoming(At(12, 0), 3)
	require.Len(t, up, 3)
	assert.Equal(t, "sleep", up[0].Content)
	assert.Equal(t, "wake", up[1].Content)
	assert.Equal(t, "lunch", up[2].Content, "an action at from is a day away")

	assert.Len(t, s.Upcoming(At(0, 0), 10), 4)
}
