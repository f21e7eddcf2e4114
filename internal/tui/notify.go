package tui

import (
	"context"
	"fmt"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/routine/internal/dispatch"
	"github.com/sadopc/routine/internal/schedule"
)

// notice is a fired notification waiting for the user.
type notice struct {
	action    schedule.Action
	offsets   []int
	historyID int64
	firedAt   time.Time
}

// noticeQueue is the notification presenter handed to the action executor.
// Notify only enqueues; the answer arrives later through the dialog, so it
// never reports snooze choices synchronously.
type noticeQueue struct {
	items []notice
}

func (q *noticeQueue) Notify(_ context.Context, a schedule.Action, offsets []int) ([]int, error) {
	q.items = append(q.items, notice{
		action:  a,
		offsets: slices.Clone(offsets),
		firedAt: time.Now(),
	})
	return nil, nil
}

// attach copies history IDs onto the notices queued since index from, pairing
// them with the tick's notification firings in order.
func (q *noticeQueue) attach(from int, fired []dispatch.Firing) {
	i := from
	for _, f := range fired {
		if f.Action.Kind != schedule.Notification || f.Err != nil {
			continue
		}
		if i >= len(q.items) {
			return
		}
		q.items[i].historyID = f.HistoryID
		i++
	}
}

func (q *noticeQueue) len() int { return len(q.items) }

func (q *noticeQueue) pop() (notice, bool) {
	if len(q.items) == 0 {
		return notice{}, false
	}
	n := q.items[0]
	q.items = q.items[1:]
	return n, true
}

// noticeAnswer is the user's response to the dialog at the head of the queue.
// minutes is 0 for dismiss.
type noticeAnswer struct {
	notice  notice
	minutes int
}

type notifyModel struct {
	queue *noticeQueue
	form  *huh.Form
	width int

	// choice survives value copies of the model
	choice *int
}

func newNotifyModel(q *noticeQueue) notifyModel {
	c := 0
	return notifyModel{queue: q, choice: &c}
}

func (n notifyModel) active() bool { return n.form != nil }

// open builds the dialog for the head of the queue if none is showing.
func (n notifyModel) open() (notifyModel, tea.Cmd) {
	if n.form != nil || n.queue.len() == 0 {
		return n, nil
	}
	head := n.queue.items[0]
	*n.choice = 0

	opts := []huh.Option[int]{huh.NewOption("Dismiss", 0)}
	for _, m := range head.offsets {
		opts = append(opts, huh.NewOption(fmt.Sprintf("Remind me in %d min", m), m))
	}
	n.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(head.action.Time.String()).
				Description(head.action.Content).
				Options(opts...).
				Value(n.choice),
		),
	).WithShowHelp(false)
	return n, n.form.Init()
}

func (n notifyModel) update(msg tea.Msg) (notifyModel, tea.Cmd, *noticeAnswer) {
	if n.form == nil {
		return n, nil, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		*n.choice = 0
		return n.finish()
	}

	form, cmd := n.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		n.form = f
	}
	switch n.form.State {
	case huh.StateCompleted:
		return n.finish()
	case huh.StateAborted:
		*n.choice = 0
		return n.finish()
	}
	return n, cmd, nil
}

func (n notifyModel) finish() (notifyModel, tea.Cmd, *noticeAnswer) {
	n.form = nil
	head, ok := n.queue.pop()
	if !ok {
		return n, nil, nil
	}
	ans := &noticeAnswer{notice: head, minutes: *n.choice}
	n, cmd := n.open()
	return n, cmd, ans
}

func (n notifyModel) view(w int) string {
	if n.form == nil {
		return ""
	}
	head := n.queue.items[0]
	title := warningStyle.Bold(true).Render("✉ Reminder")
	fired := mutedStyle.Render("fired " + head.firedAt.Format("15:04"))
	more := ""
	if extra := n.queue.len() - 1; extra > 0 {
		more = mutedStyle.Render(fmt.Sprintf("  (+%d more)", extra))
	}
	return dialogStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", fired, more),
		"",
		n.form.View(),
		"",
		mutedStyle.Render("enter: choose  esc: dismiss"),
	))
}
