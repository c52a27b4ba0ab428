package document

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleLease() LeaseData {
	signedAt := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)
	return LeaseData{
		Lease: &database.Lease{
			ID:              12,
			StartDate:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:         time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			MonthlyRent:     1250,
			SecurityDeposit: 2500,
			Signed:          true,
			SignedAt:        &signedAt,
		},
		Student:       &database.User{Username: "tn", FirstName: "Thandi", LastName: "Nkosi", Email: "tn@example.com"},
		Accommodation: &database.Accommodation{Name: "Harbour House", Address: "1 Dock Rd"},
		GeneratedAt:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "leases/lease_12.html", Key(KindLease, 12))
	assert.Equal(t, "invoices/invoice_3.html", Key(KindInvoice, 3))

	k, err := ParseKind("invoice")
	require.NoError(t, err)
	assert.Equal(t, KindInvoice, k)
	_, err = ParseKind("receipt")
	assert.Error(t, err)
}

func TestRenderer_LeaseToDisk(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(zap.NewNop(), dir)
	require.NoError(t, err)
	r, err := NewRenderer(zap.NewNop(), store, "", time.Second)
	require.NoError(t, err)

	ref, err := r.Render(context.Background(), KindLease, 12, sampleLease())
	require.NoError(t, err)
	assert.Equal(t, "leases/lease_12.html", ref)

	raw, err := os.ReadFile(filepath.Join(dir, "leases", "lease_12.html"))
	require.NoError(t, err)
	html := string(raw)
	assert.Contains(t, html, "Thandi Nkosi")
	assert.Contains(t, html, "1,250.00")
	assert.Contains(t, html, "1 January 2024 to 31 December 2024 (12 months)")
	assert.Contains(t, html, "no phone on file")
	assert.Contains(t, html, "on 3 January 2024")

	doc, err := r.Open(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, int64(len(raw)), doc.Size())
}

func TestRenderer_InvoiceEscapesInput(t *testing.T) {
	store, err := NewDiskStore(zap.NewNop(), t.TempDir())
	require.NoError(t, err)
	r, err := NewRenderer(zap.NewNop(), store, "", 0)
	require.NoError(t, err)

	lease := sampleLease()
	data := InvoiceData{
		Invoice: &database.Invoice{
			ID: 3, Amount: 1250, DueDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			Description: "<b>February</b>", Status: cnst.InvoiceUnpaid,
		},
		Lease:         lease.Lease,
		Student:       lease.Student,
		Accommodation: lease.Accommodation,
	}
	ref, err := r.Render(context.Background(), KindInvoice, 3, data)
	require.NoError(t, err)

	doc, err := r.Open(context.Background(), ref)
	require.NoError(t, err)
	body, _ := io.ReadAll(doc)
	assert.Contains(t, string(body), "&lt;b&gt;February&lt;/b&gt;")
	assert.Contains(t, string(body), "UNPAID")
}

func TestRenderer_TemplateOverride(t *testing.T) {
	tmplDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "lease.html.tmpl"), []byte("lease {{ .Lease.ID }} for {{ .Student.FullName }}"), 0o644))

	store, err := NewDiskStore(zap.NewNop(), t.TempDir())
	require.NoError(t, err)
	r, err := NewRenderer(zap.NewNop(), store, tmplDir, 0)
	require.NoError(t, err)

	ref, err := r.Render(context.Background(), KindLease, 12, sampleLease())
	require.NoError(t, err)
	doc, err := r.Open(context.Background(), ref)
	require.NoError(t, err)
	body, _ := io.ReadAll(doc)
	assert.Equal(t, "lease 12 for Thandi Nkosi", string(body))
}

func TestNewRenderer_BadTemplate(t *testing.T) {
	tmplDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "invoice.html.tmpl"), []byte("{{ .Invoice.ID "), 0o644))
	_, err := NewRenderer(zap.NewNop(), nil, tmplDir, 0)
	assert.Error(t, err)
}

type failingStore struct{ err error }

func (f failingStore) Put(context.Context, string, io.Reader, string) error { return f.err }
func (f failingStore) Get(context.Context, string) (io.ReadCloser, error) { return nil, f.err }
func (f failingStore) Delete(context.Context, string) error               { return f.err }

func TestRenderer_StoreFailure(t *testing.T) {
	boom := errors.New("disk full")
	r, err := NewRenderer(zap.NewNop(), failingStore{err: boom}, "", 0)
	require.NoError(t, err)

	_, err = r.Render(context.Background(), KindLease, 12, sampleLease())
	assert.ErrorIs(t, err, boom)

	_, err = r.Render(context.Background(), Kind("receipt"), 1, nil)
	assert.Error(t, err)
}

func TestDiskStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewDiskStore(zap.NewNop(), t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "a/b.html", strings.NewReader("one"), contentType))
	require.NoError(t, s.Put(ctx, "a/b.html", strings.NewReader("two"), contentType))
	rc, err := s.Get(ctx, "a/b.html")
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "two", string(b))

	require.NoError(t, s.Delete(ctx, "a/b.html"))
	require.NoError(t, s.Delete(ctx, "a/b.html"))
	_, err = s.Get(ctx, "a/b.html")
	assert.ErrorIs(t, err, ErrNotFound)

	for _, bad := range []string{"", "../escape.html", "/etc/passwd"} {
		assert.Error(t, s.Put(ctx, bad, strings.NewReader("x"), ""), bad)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, s.Put(cancelled, "c.html", strings.NewReader("x"), ""), context.Canceled)
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(context.Background(), zap.NewNop(), config.DocumentsConfig{
		Store: cnst.DocumentStoreDisk,
		Disk:  config.DiskStorageConfig{Path: t.TempDir()},
	})
	require.NoError(t, err)
	assert.IsType(t, &DiskStore{}, s)

	_, err = NewStore(context.Background(), zap.NewNop(), config.DocumentsConfig{Store: "ftp"})
	assert.Error(t, err)

	_, err = NewStore(context.Background(), zap.NewNop(), config.DocumentsConfig{Store: cnst.DocumentStoreS3})
	assert.Error(t, err, "bucket is required")
}

func TestFuncs(t *testing.T) {
	assert.Equal(t, "0.00", money(0))
	assert.Equal(t, "999.50", money(999.5))
	assert.Equal(t, "1,234,567.89", money(1234567.891))
	assert.Equal(t, "-1,000.00", money(-1000))

	assert.Equal(t, "", day(time.Time{}))
	assert.Equal(t, 1, monthsBetween(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 6, monthsBetween(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)))

	data := map[string]any{"User": &database.User{Phone: "+27 82"}, "Empty": (*database.User)(nil)}
	assert.Equal(t, "+27 82", safeGetOr("User.Phone", data, "-"))
	assert.Equal(t, "-", safeGetOr("Empty.Phone", data, "-"))
	assert.Equal(t, "-", safeGetOr("User.Missing", data, "-"))
	assert.Nil(t, safeGet("User.Phone.Deeper", data))
}

func TestOpen_Missing(t *testing.T) {
	store, err := NewDiskStore(zap.NewNop(), t.TempDir())
	require.NoError(t, err)
	r, err := NewRenderer(zap.NewNop(), store, "", 0)
	require.NoError(t, err)
	_, err = r.Open(context.Background(), "leases/lease_404.html")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "text/html; charset=utf-8", ContentType())
}
