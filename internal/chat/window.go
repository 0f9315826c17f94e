// Package chat holds the view state of one chat window: the append-only
// message list, the input line, the loading flag and the scroll indicator.
// Nothing here is persisted; a new Window starts from the welcome message.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"taskagent-portal/internal/client"
	"taskagent-portal/internal/config"
	"taskagent-portal/internal/types"
)

const (
	// MaxInputLength bounds the input line, in runes.
	MaxInputLength = 500
	// scrollThreshold is how close to the bottom still counts as "at the bottom".
	scrollThreshold = 100

	fallbackError = "Something went wrong, please try again."
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
}

// Sender delivers one message to the workflow engine. *client.Client implements it.
type Sender interface {
	SendMessage(ctx context.Context, sess client.Session, query, companyID string) (*types.ChatResponse, error)
}

type Window struct {
	mu       sync.RWMutex
	sender   Sender
	notifier Notifier
	catalog  *config.Catalog

	session    client.Session
	company    string
	messages   []Message
	input      string
	loading    bool
	showScroll bool
}

// NewWindow starts a window for sess with the catalog's welcome message and
// its first company selected. A nil notifier drops notices.
func NewWindow(sender Sender, sess client.Session, catalog *config.Catalog, notifier Notifier) *Window {
	if notifier == nil {
		notifier = NotifierFunc(func(Notice) {})
	}
	w := &Window{
		sender:   sender,
		notifier: notifier,
		catalog:  catalog,
		session:  sess,
		company:  catalog.DefaultCompany().ID,
	}
	w.messages = []Message{{
		ID:        "welcome",
		Role:      RoleAgent,
		Content:   catalog.Welcome,
		Timestamp: time.Now(),
	}}
	return w
}

// Send submits text. Blank text and calls made while a reply is pending are
// ignored and reported as false. Failures become an agent message and an
// error notice; Send never returns them.
func (w *Window) Send(ctx context.Context, text string) bool {
	text = truncate(strings.TrimSpace(text), MaxInputLength)

	w.mu.Lock()
	if text == "" || w.loading {
		w.mu.Unlock()
		return false
	}
	w.appendLocked(RoleUser, "user", text)
	w.input = ""
	w.loading = true
	sess, company := w.session, w.company
	w.mu.Unlock()

	resp, err := w.sender.SendMessage(ctx, sess, text, company)

	w.mu.Lock()
	w.loading = false
	var notice *Notice
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = fallbackError
		}
		w.appendLocked(RoleAgent, "error", "I apologize, but I encountered an error: "+msg)
		notice = &Notice{Kind: NoticeError, Text: msg}
	} else {
		w.appendLocked(RoleAgent, "agent", resp.Reply)
		if resp.Status == "success" {
			notice = &Notice{Kind: NoticeSuccess, Text: "Message sent successfully"}
		}
	}
	w.mu.Unlock()

	if notice != nil {
		w.notifier.Notify(*notice)
	}
	return true
}

// Submit sends the current input line.
func (w *Window) Submit(ctx context.Context) bool {
	return w.Send(ctx, w.Input())
}

// QuickAction sends the i-th catalog quick action.
func (w *Window) QuickAction(ctx context.Context, i int) bool {
	if i < 0 || i >= len(w.catalog.QuickActions) {
		return false
	}
	return w.Send(ctx, w.catalog.QuickActions[i])
}

func (w *Window) appendLocked(role Role, prefix, content string) {
	w.messages = append(w.messages, Message{
		ID:        prefix + "-" + uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// Messages returns a copy of the message list.
func (w *Window) Messages() []Message {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Message, len(w.messages))
	copy(out, w.messages)
	return out
}

func (w *Window) SetInput(s string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.input = truncate(s, MaxInputLength)
}

func (w *Window) Input() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.input
}

func (w *Window) Loading() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loading
}

// CanSend mirrors the send button: enabled with non-blank input and no pending reply.
func (w *Window) CanSend() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return !w.loading && strings.TrimSpace(w.input) != ""
}

// UpdateScroll records the list's scroll position; the scroll-to-bottom
// button shows once the view is scrollThreshold or more away from the bottom.
func (w *Window) UpdateScroll(scrollTop, scrollHeight, clientHeight int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.showScroll = scrollHeight-scrollTop-clientHeight >= scrollThreshold
}

func (w *Window) ShowScrollButton() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.showScroll
}

// SelectCompany switches the company attached to later messages.
func (w *Window) SelectCompany(id string) bool {
	if _, ok := w.catalog.Company(id); !ok {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.company = id
	return true
}

func (w *Window) Company() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.company
}

func (w *Window) Session() client.Session {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.session
}

// ResetSession starts a new correlation session; the message list is kept.
func (w *Window) ResetSession() client.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.session = w.session.Reset()
	return w.session
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
