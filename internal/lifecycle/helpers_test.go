package lifecycle

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/harambee/studentliving/internal/access"
	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/config"
	"github.com/harambee/studentliving/internal/common/errorx"
	"github.com/harambee/studentliving/internal/document"
	"github.com/harambee/studentliving/internal/notify"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sent struct {
	UserID uint
	Event  cnst.Event
	Data   map[string]any
	Hints  []notify.Channel
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sent
	failFor map[uint]bool
}

func (n *fakeNotifier) Notify(_ context.Context, userID uint, msg notify.Message, hints ...notify.Channel) (notify.Result, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[userID] {
		return notify.Result{}, errors.New("mailbox unavailable")
	}
	n.sent = append(n.sent, sent{UserID: userID, Event: msg.Event, Data: msg.Data, Hints: hints})
	return notify.Result{Persisted: true}, nil
}

func (n *fakeNotifier) events(userID uint) []cnst.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []cnst.Event
	for _, s := range n.sent {
		if s.UserID == userID {
			out = append(out, s.Event)
		}
	}
	return out
}

func (n *fakeNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = nil
}

type fakeRenderer struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (r *fakeRenderer) Render(_ context.Context, kind document.Kind, id uint, _ any) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return document.Key(kind, id), nil
}

// testNow is the fixed clock of every lifecycle test
var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type harness struct {
	t        *testing.T
	ctx      context.Context
	db       database.Database
	svc      *Service
	notifier *fakeNotifier
	docs     *fakeRenderer
	master   access.Principal
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := database.NewSQLite(&config.DatabaseConfig{Type: "sqlite", DBName: filepath.Join(t.TempDir(), "lifecycle.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	h := &harness{
		t:        t,
		ctx:      context.Background(),
		db:       db,
		notifier: &fakeNotifier{failFor: map[uint]bool{}},
		docs:     &fakeRenderer{},
	}
	h.svc = New(zap.NewNop(), db, h.notifier, h.docs, WithClock(func() time.Time { return testNow }))
	h.master = h.principal(h.user("root", cnst.RoleMasterAdmin))
	return h
}

func (h *harness) user(name string, role cnst.Role) *database.User {
	h.t.Helper()
	u := &database.User{Username: name, Email: name + "@example.com", Password: "x", FirstName: name, Role: role, IsActive: true}
	require.NoError(h.t, h.db.CreateUser(h.ctx, u))
	return u
}

func (h *harness) principal(u *database.User) access.Principal {
	return access.Principal{UserID: u.ID, Role: u.Role}
}

func (h *harness) accommodation(name string, rooms int, admins ...*database.User) *database.Accommodation {
	h.t.Helper()
	acc := &database.Accommodation{Name: name, Address: "12 Jan Smuts Ave", MonthlyRent: 4500, RoomsAvailable: rooms}
	require.NoError(h.t, h.db.CreateAccommodation(h.ctx, acc))
	for _, a := range admins {
		require.NoError(h.t, h.db.AssignAdmin(h.ctx, a.ID, acc.ID))
	}
	return acc
}

func (h *harness) rooms(accID uint) int {
	h.t.Helper()
	acc, err := h.db.GetAccommodation(h.ctx, accID)
	require.NoError(h.t, err)
	return acc.RoomsAvailable
}

func (h *harness) apply(student *database.User, acc *database.Accommodation) *database.Application {
	h.t.Helper()
	res, err := h.svc.SubmitApplication(h.ctx, h.principal(student), SubmitApplicationInput{
		AccommodationID: acc.ID,
		MoveInDate:      day(2024, 7, 1),
	})
	require.NoError(h.t, err)
	return res.Entity
}

func (h *harness) lease(student *database.User, acc *database.Accommodation, start, end time.Time) *database.Lease {
	h.t.Helper()
	res, err := h.svc.CreateLease(h.ctx, h.master, CreateLeaseInput{
		StudentID:       student.ID,
		AccommodationID: acc.ID,
		StartDate:       start,
		EndDate:         end,
		MonthlyRent:     4500,
		SecurityDeposit: 4500,
	})
	require.NoError(h.t, err)
	return res.Entity.Lease
}

func (h *harness) invoice(lease *database.Lease, amount float64, due time.Time) *database.Invoice {
	h.t.Helper()
	res, err := h.svc.CreateInvoice(h.ctx, h.master, InvoiceInput{LeaseID: lease.ID, Amount: amount, DueDate: due})
	require.NoError(h.t, err)
	return res.Entity.Invoice
}

func requireKind(t *testing.T, want errorx.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, errorx.KindOf(err), "error: %v", err)
}
