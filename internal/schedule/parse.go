package schedule

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrInvalid is wrapped by every error Parse returns.
var ErrInvalid = errors.New("invalid schedule")

// ParseError locates the first offending line of a schedule file.
type ParseError struct {
	Line   int // 1-based
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

func (e *ParseError) Unwrap() error { return ErrInvalid }

const remindKeyword = "remind"

// Parse reads a whole schedule. Any malformed line rejects the entire input:
// the returned Schedule is then the zero value and the error is a *ParseError.
//
// Format, one entry per line:
//
//	# comment
//	remind 5 15 60
//	HH:MM "notification text"
//	HH:MM `shell command`
func Parse(text string) (Schedule, error) {
	var s Schedule
	seenRemind := false

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if fields := strings.Fields(line); fields[0] == remindKeyword {
			if seenRemind {
				return Schedule{}, &ParseError{Line: n, Text: line, Reason: "duplicate remind directive"}
			}
			seenRemind = true
			offsets, err := parseOffsets(fields[1:])
			if err != nil {
				return Schedule{}, &ParseError{Line: n, Text: line, Reason: err.Error()}
			}
			s.ReminderOffsets = offsets
			continue
		}

		a, err := parseAction(line)
		if err != nil {
			return Schedule{}, &ParseError{Line: n, Text: line, Reason: err.Error()}
		}
		s.Actions = append(s.Actions, a)
	}
	if err := sc.Err(); err != nil {
		return Schedule{}, &ParseError{Line: n + 1, Reason: err.Error()}
	}
	return s, nil
}

// Load reads and parses the schedule file at path. Read failures are returned
// unwrapped from ErrInvalid so callers can tell I/O from syntax.
func Load(path string) (Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schedule{}, fmt.Errorf("read schedule: %w", err)
	}
	return Parse(string(data))
}

func parseOffsets(tokens []string) ([]int, error) {
	var offsets []int
	seen := make(map[int]bool, len(tokens))
	for _, tok := range tokens {
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("remind offset %q is not a number", tok)
		}
		if v <= 0 {
			return nil, fmt.Errorf("remind offset %d must be positive", v)
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		offsets = append(offsets, v)
	}
	return offsets, nil
}

func parseAction(line string) (Action, error) {
	if len(line) < 6 || line[5] != ' ' {
		return Action{}, errors.New("expected HH:MM followed by one space")
	}
	t, err := ParseTimeOfDay(line[:5])
	if err != nil {
		return Action{}, err
	}

	payload := line[6:]
	if len(payload) < 2 || payload[0] != payload[len(payload)-1] {
		return Action{}, errors.New("payload must be wrapped in matching \" or ` delimiters")
	}
	var kind Kind
	switch payload[0] {
	case '"':
		kind = Notification
	case '`':
		kind = Command
	default:
		return Action{}, errors.New("payload must be wrapped in matching \" or ` delimiters")
	}
	return Action{Kind: kind, Content: payload[1 : len(payload)-1], Time: t}, nil
}
