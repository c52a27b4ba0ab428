package document

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/pkg/trace"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Kind is a renderable document type
type Kind string

const (
	KindLease   Kind = "lease"
	KindInvoice Kind = "invoice"
)

// Kinds lists every document kind
var Kinds = []Kind{KindLease, KindInvoice}

func (k Kind) IsValid() bool { return k == KindLease || k == KindInvoice }

// ParseKind parses a document kind
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("unknown document kind %q", s)
	}
	return k, nil
}

// Key returns the storage key of the document for an entity, e.g. leases/lease_12.html
func Key(kind Kind, id uint) string {
	return fmt.Sprintf("%ss/%s_%d.html", kind, kind, id)
}

const contentType = "text/html; charset=utf-8"

//go:embed templates/*.html.tmpl
var builtinTemplates embed.FS

// LeaseData is the template input of a lease document
type LeaseData struct {
	Lease         *database.Lease
	Student       *database.User
	Accommodation *database.Accommodation
	GeneratedAt   time.Time
}

// InvoiceData is the template input of an invoice document
type InvoiceData struct {
	Invoice       *database.Invoice
	Lease         *database.Lease
	Student       *database.User
	Accommodation *database.Accommodation
	GeneratedAt   time.Time
}

// Renderer turns lease and invoice data into HTML documents and stores them
type Renderer struct {
	logger    *zap.Logger
	store     Store
	templates map[Kind]*template.Template
	timeout   time.Duration
}

// NewRenderer parses the templates for every kind. A <kind>.html.tmpl file in
// templateDir replaces the built-in template of that kind.
func NewRenderer(logger *zap.Logger, store Store, templateDir string, timeout time.Duration) (*Renderer, error) {
	r := &Renderer{
		logger:    logger,
		store:     store,
		templates: make(map[Kind]*template.Template, len(Kinds)),
		timeout:   timeout,
	}
	for _, kind := range Kinds {
		name := string(kind) + ".html.tmpl"
		src, err := builtinTemplates.ReadFile("templates/" + name)
		if err != nil {
			return nil, err
		}
		if templateDir != "" {
			custom, err := os.ReadFile(filepath.Join(templateDir, name))
			switch {
			case err == nil:
				src = custom
			case !os.IsNotExist(err):
				return nil, err
			}
		}
		t, err := template.New(name).Funcs(sprig.FuncMap()).Funcs(funcMap()).Parse(string(src))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", kind, err)
		}
		r.templates[kind] = t
	}
	return r, nil
}

// Render executes the template of kind with data and stores the output.
// It returns the storage key as the document reference.
func (r *Renderer) Render(ctx context.Context, kind Kind, id uint, data any) (string, error) {
	key := Key(kind, id)
	scope := trace.Tracer(cnst.TraceDocument).Start(ctx, cnst.SpanDocumentRender)
	defer scope.End()
	scope.WithAttrs(
		attribute.String(cnst.AttrDocumentKey, key),
		attribute.Int64(cnst.AttrEntityID, int64(id)),
	)
	ctx = scope.Ctx

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	t, ok := r.templates[kind]
	if !ok {
		err := fmt.Errorf("unknown document kind %q", kind)
		scope.Fail(err)
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		scope.Fail(err)
		return "", fmt.Errorf("render %s: %w", key, err)
	}
	if err := r.store.Put(ctx, key, bytes.NewReader(buf.Bytes()), contentType); err != nil {
		scope.Fail(err)
		return "", fmt.Errorf("store %s: %w", key, err)
	}

	r.logger.Debug("rendered document", zap.String("key", key), zap.Int("bytes", buf.Len()))
	return key, nil
}

// Open returns the stored document behind ref
func (r *Renderer) Open(ctx context.Context, ref string) (*bytes.Reader, error) {
	rc, err := r.store.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return nil, err
	}
	return bytes.NewReader(buf.Bytes()), nil
}

// ContentType is the media type of rendered documents
func ContentType() string { return contentType }
