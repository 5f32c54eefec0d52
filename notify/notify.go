// Package notify implements the action notifier: the user-facing lifecycle of every action (loading, then success or
// error) and the explorer link shown once a transaction has been submitted.
//
// Notifications are handed to a Sink. A notification shown again with the same ID replaces the earlier one, which is
// how a loading notification turns into its success or error.
package notify

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/tarancss/educertify/txn"
)

// Kind of notification.
type Kind string

// Notification kinds.
const (
	Loading Kind = "loading"
	Success Kind = "success"
	Error   Kind = "error"
	Link    Kind = "link"
)

// Durations of notifications. Loading notifications last until replaced.
const (
	DefaultDuration = 6 * time.Second
	LinkDuration    = 10 * time.Second
)

// LinkLabel is the label of explorer links.
const LinkLabel = "View Tx"

// Notification is a single line message for the user.
type Notification struct {
	ID       string        `json:"id"`
	Kind     Kind          `json:"kind"`
	Text     string        `json:"text"`
	Link     string        `json:"link,omitempty"`
	Label    string        `json:"label,omitempty"`
	Duration time.Duration `json:"duration"`
	Time     time.Time     `json:"time"`
}

// Active returns true if the notification should still be displayed at now.
func (n Notification) Active(now time.Time) bool {
	return n.Kind == Loading || now.Before(n.Time.Add(n.Duration))
}

// Sink displays notifications.
type Sink interface {
	Show(n Notification)
}

// Linker builds explorer links for transaction hashes.
type Linker interface {
	Tx(hash string) string
}

// Messages are the texts of an action. Error is optional, the failure itself is shown when empty.
type Messages struct {
	Loading string `json:"loading"`
	Success string `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Notifier converts operations into notifications.
type Notifier struct {
	sink  Sink
	links Linker
	now   func() time.Time
}

// New returns a notifier showing notifications on sink and explorer links built by links.
func New(sink Sink, links Linker) *Notifier {
	return &Notifier{sink: sink, links: links, now: time.Now}
}

// Execute follows op showing its lifecycle. It returns the transaction hash and true on success, or an empty hash and
// false on failure; failures only ever become notifications.
func (n *Notifier) Execute(op *txn.Operation, msgs Messages) (string, bool) {
	id := n.Loading(msgs.Loading)

	res := op.Wait()
	if res.State == txn.OK && res.Hash == "" {
		res = txn.Result{State: txn.Err, Err: txn.ErrNoHash}
	}
	if res.State != txn.OK {
		log.Printf("Action executed with an error:%v", res.Err)

		text := msgs.Error
		if text == "" {
			text = "Error: " + errText(res.Err)
		}
		n.Fail(id, text)

		return "", false
	}

	n.Succeed(id, msgs.Success)
	n.show(Notification{
		ID:       uuid.NewString(),
		Kind:     Link,
		Text:     msgs.Success,
		Link:     n.links.Tx(res.Hash),
		Label:    LinkLabel,
		Duration: LinkDuration,
	})

	return res.Hash, true
}

// Loading shows a loading notification and returns its id.
func (n *Notifier) Loading(text string) string {
	id := uuid.NewString()
	n.show(Notification{ID: id, Kind: Loading, Text: text})
	return id
}

// Succeed replaces notification id with a success.
func (n *Notifier) Succeed(id, text string) {
	n.show(Notification{ID: id, Kind: Success, Text: text, Duration: DefaultDuration})
}

// Fail replaces notification id with an error.
func (n *Notifier) Fail(id, text string) {
	n.show(Notification{ID: id, Kind: Error, Text: text, Duration: DefaultDuration})
}

// Success shows a new success notification.
func (n *Notifier) Success(text string) {
	n.Succeed(uuid.NewString(), text)
}

// Error shows a new error notification.
func (n *Notifier) Error(text string) {
	n.Fail(uuid.NewString(), text)
}

// Linked shows a new notification of kind k carrying the explorer link of hash.
func (n *Notifier) Linked(k Kind, text, hash string) {
	n.show(Notification{
		ID:       uuid.NewString(),
		Kind:     k,
		Text:     text,
		Link:     n.links.Tx(hash),
		Label:    LinkLabel,
		Duration: LinkDuration,
	})
}

func (n *Notifier) show(no Notification) {
	no.Time = n.now()
	n.sink.Show(no)
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
