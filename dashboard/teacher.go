package dashboard

import (
	"context"
	"strconv"
	"sync"

	"github.com/tarancss/educertify/lib/util"
	"github.com/tarancss/educertify/notify"
)

// Messages of the teacher actions.
var (
	initIssuerMsgs = notify.Messages{
		Loading: "Initializing issuer...",
		Success: "Issuer account initialized!",
		Error:   "Failed to initialize.",
	}
	issueMsgs = notify.Messages{
		Loading: "Issuing certificate...",
		Success: "Certificate issued!",
		Error:   "Failed to issue certificate.",
	}
	revokeMsgs = notify.Messages{
		Loading: "Revoking certificate...",
		Success: "Certificate revoked!",
		Error:   "Failed to revoke certificate.",
	}
)

// IssueForm is the draft of a certificate to issue.
type IssueForm struct {
	StudentAddress string `json:"studentAddress"`
	CourseName     string `json:"courseName"`
	IssuerName     string `json:"issuerName"`
	CertURL        string `json:"certUrl"`
}

// RevokeForm is the draft of a certificate to revoke.
type RevokeForm struct {
	StudentAddress string `json:"studentAddress"`
	CertID         string `json:"certId"`
}

// TeacherState is the state of the teacher dashboard.
type TeacherState struct {
	Connected      bool       `json:"connected"`
	Address        string     `json:"address,omitempty"`
	Processing     bool       `json:"processing"`
	ShowIssueForm  bool       `json:"showIssueForm"`
	ShowRevokeForm bool       `json:"showRevokeForm"`
	Issue          IssueForm  `json:"issue"`
	Revoke         RevokeForm `json:"revoke"`
}

// Teacher is the dashboard of certificate issuers.
type Teacher struct {
	a *App

	mu         sync.Mutex
	busy       bool
	showIssue  bool
	showRevoke bool
	issue      IssueForm
	revoke     RevokeForm
}

// State returns the current state of the dashboard.
func (t *Teacher) State() TeacherState {
	addr, ok := t.a.Address()

	t.mu.Lock()
	defer t.mu.Unlock()

	return TeacherState{
		Connected:      ok,
		Address:        addr,
		Processing:     t.busy,
		ShowIssueForm:  t.showIssue,
		ShowRevokeForm: t.showRevoke,
		Issue:          t.issue,
		Revoke:         t.revoke,
	}
}

// OpenIssueForm shows the issue form.
func (t *Teacher) OpenIssueForm() {
	t.mu.Lock()
	t.showIssue = true
	t.mu.Unlock()
}

// CloseIssueForm hides the issue form keeping its draft.
func (t *Teacher) CloseIssueForm() {
	t.mu.Lock()
	t.showIssue = false
	t.mu.Unlock()
}

// OpenRevokeForm shows the revoke form.
func (t *Teacher) OpenRevokeForm() {
	t.mu.Lock()
	t.showRevoke = true
	t.mu.Unlock()
}

// CloseRevokeForm hides the revoke form keeping its draft.
func (t *Teacher) CloseRevokeForm() {
	t.mu.Lock()
	t.showRevoke = false
	t.mu.Unlock()
}

// SetIssueForm replaces the issue draft.
func (t *Teacher) SetIssueForm(f IssueForm) {
	t.mu.Lock()
	t.issue = f
	t.mu.Unlock()
}

// SetRevokeForm replaces the revoke draft.
func (t *Teacher) SetRevokeForm(f RevokeForm) {
	t.mu.Lock()
	t.revoke = f
	t.mu.Unlock()
}

// begin sets the processing flag, failing with ErrBusy if an action is already in flight.
func (t *Teacher) begin() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.busy {
		return ErrBusy
	}
	t.busy = true

	return nil
}

func (t *Teacher) end() {
	t.mu.Lock()
	t.busy = false
	t.mu.Unlock()
}

// InitializeIssuer creates the issuer resources of the connected account.
func (t *Teacher) InitializeIssuer(ctx context.Context) (string, error) {
	if err := t.begin(); err != nil {
		return "", err
	}
	defer t.end()

	return t.a.execute(ctx, FnInitializeIssuer, nil, initIssuerMsgs)
}

// IssueCertificate issues a certificate from the issue draft, dated now. Every field of the draft is required; a
// missing one is reported without submitting anything. Once submitted the draft is reset whatever the outcome, and on
// success the form is hidden and a celebration raised.
func (t *Teacher) IssueCertificate(ctx context.Context) (string, error) {
	if err := t.begin(); err != nil {
		return "", err
	}
	defer t.end()

	t.mu.Lock()
	f := t.issue
	t.mu.Unlock()

	if util.Blank(f.StudentAddress, f.CourseName, f.IssuerName, f.CertURL) {
		t.a.n.Error(MsgFillAllFields)

		return "", ErrMissingFields
	}

	hash, err := t.a.execute(ctx, FnIssueCertificate, []string{
		f.StudentAddress,
		f.CourseName,
		f.IssuerName,
		strconv.FormatInt(t.a.now().Unix(), 10),
		f.CertURL,
	}, issueMsgs)

	t.mu.Lock()
	t.issue = IssueForm{}
	if err == nil {
		t.showIssue = false
	}
	t.mu.Unlock()

	if err == nil {
		t.a.raiseCelebration()
	}

	return hash, err
}

// RevokeCertificate revokes a certificate of a student from the revoke draft. Both fields are required. Once submitted
// the draft is reset and the form hidden whatever the outcome.
func (t *Teacher) RevokeCertificate(ctx context.Context) (string, error) {
	if err := t.begin(); err != nil {
		return "", err
	}
	defer t.end()

	t.mu.Lock()
	f := t.revoke
	t.mu.Unlock()

	if util.Blank(f.StudentAddress, f.CertID) {
		t.a.n.Error(MsgFillAllFields)

		return "", ErrMissingFields
	}

	hash, err := t.a.execute(ctx, FnRevokeCertificate, []string{f.StudentAddress, f.CertID}, revokeMsgs)

	t.mu.Lock()
	t.revoke = RevokeForm{}
	t.showRevoke = false
	t.mu.Unlock()

	return hash, err
}
