package schedule

import (
	"fmt"
	"time"
)

const (
	day           = 24 * time.Hour
	minutesPerDay = 24 * 60
)

// TimeOfDay is a wall-clock offset from local midnight, always in [0, 24h).
type TimeOfDay time.Duration

// Clock returns the wall-clock time of day of t in t's location.
func Clock(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	d := time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
	return TimeOfDay(d)
}

// At builds a TimeOfDay from hour and minute. Out-of-range values wrap.
func At(hour, minute int) TimeOfDay {
	return TimeOfDay(0).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// ParseTimeOfDay parses a strict, zero-padded 24-hour "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("time %q: want HH:MM", s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("time %q: want HH:MM", s)
		}
	}
	hour := int(s[0]-'0')*10 + int(s[1]-'0')
	minute := int(s[3]-'0')*10 + int(s[4]-'0')
	if hour > 23 {
		return 0, fmt.Errorf("time %q: hour out of range", s)
	}
	if minute > 59 {
		return 0, fmt.Errorf("time %q: minute out of range", s)
	}
	return At(hour, minute), nil
}

// Add returns t+d modulo one day, so 23:55 + 10m is 00:05.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	v := (time.Duration(t) + d) % day
	if v < 0 {
		v += day
	}
	return TimeOfDay(v)
}

// AddMinutes returns t plus n minutes modulo one day. n is reduced before it
// becomes a Duration, so any int is safe.
func (t TimeOfDay) AddMinutes(n int) TimeOfDay {
	return t.Add(time.Duration(n%minutesPerDay) * time.Minute)
}

func (t TimeOfDay) Hour() int   { return int(time.Duration(t) / time.Hour) }
func (t TimeOfDay) Minute() int { return int(time.Duration(t)%time.Hour) / int(time.Minute) }

// On returns the instant with this time of day on the calendar date of ref.
func (t TimeOfDay) On(ref time.Time) time.Time {
	y, m, d := ref.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ref.Location()).Add(time.Duration(t))
}

// String formats as HH:MM, adding seconds only when they are non-zero.
func (t TimeOfDay) String() string {
	secs := int(time.Duration(t)%time.Minute) / int(time.Second)
	if secs != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), secs)
	}
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
