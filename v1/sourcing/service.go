package sourcing

import (
	"context"
	"time"

	"github.com/chemsource/sourcing/v1/vectordb"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

// Logger is the logging contract of the logger package.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Tracer is the subset of tracer.Tracer the services use.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	RecordErrorOnSpan(span trace.Span, err error)
	SetAttributes(span trace.Span, attrs map[string]interface{})
}

// Config names the namespaces and the normalization policy. It is passed in
// at construction time; nothing here has a process-wide default.
type Config struct {
	ProfilesNamespace     string          `yaml:"profiles_namespace" mapstructure:"profiles_namespace"`
	SellProductsNamespace string          `yaml:"sell_products_namespace" mapstructure:"sell_products_namespace"`
	BuyListsNamespace     string          `yaml:"buy_lists_namespace" mapstructure:"buy_lists_namespace"`
	Normalize             NormalizePolicy `yaml:"normalize" mapstructure:"normalize"`

	// ScanLimit bounds every query. Lookups that must be unique still fetch
	// up to this many so MultiMatch errors report the real count.
	ScanLimit int `yaml:"scan_limit" mapstructure:"scan_limit"`
}

// DefaultConfig returns the namespaces used by the marketplace.
func DefaultConfig() Config {
	return Config{
		ProfilesNamespace:     "profiles",
		SellProductsNamespace: "sell-products",
		BuyListsNamespace:     "buy-lists",
		ScanLimit:             1000,
	}
}

// Params groups the dependencies of the domain services.
type Params struct {
	fx.In

	Store  vectordb.Store
	Config Config
	Logger Logger `optional:"true"`
	Tracer Tracer `optional:"true"`

	// Now overrides the clock in tests.
	Now func() time.Time `optional:"true"`
}

// Base holds what every domain service shares: the store, configuration,
// logging, tracing and the clock.
type Base struct {
	Store  vectordb.Store
	Config Config
	Log    Logger
	tracer Tracer
	now    func() time.Time
	exact  bool
}

// NewBase fills in defaults for the optional dependencies.
func NewBase(p Params) Base {
	b := Base{
		Store:  p.Store,
		Config: p.Config,
		Log:    p.Logger,
		tracer: p.Tracer,
		now:    p.Now,
	}
	if b.Log == nil {
		b.Log = nopLogger{}
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.Config.ScanLimit <= 0 {
		b.Config.ScanLimit = DefaultConfig().ScanLimit
	}
	return b
}

// Now returns the current time in UTC.
func (b Base) Now() time.Time {
	return b.now().UTC()
}

// Normalize applies the configured policy to t. In exact mode t is
// returned unchanged.
func (b Base) Normalize(t Triple) Triple {
	if b.exact {
		return t
	}
	return t.Normalize(b.Config.Normalize)
}

// StartSpan opens a span when a tracer is configured. The returned function
// ends it, recording err if non-nil.
func (b Base) StartSpan(ctx context.Context, name string, attrs map[string]interface{}) (context.Context, func(err error)) {
	if b.tracer == nil {
		return ctx, func(error) {}
	}
	ctx, span := b.tracer.StartSpan(ctx, name)
	b.tracer.SetAttributes(span, attrs)
	return ctx, func(err error) {
		if err != nil {
			b.tracer.RecordErrorOnSpan(span, err)
		}
		span.End()
	}
}

// Find runs a filtered query with metadata, bounded by ScanLimit.
func (b Base) Find(ctx context.Context, namespace string, filter *vectordb.FilterSet) ([]vectordb.Match, error) {
	matches, err := b.Store.Query(ctx, namespace, vectordb.Query{
		Filter:          filter,
		TopK:            b.Config.ScanLimit,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, StoreError("query", namespace, err)
	}
	return matches, nil
}

// FindAll returns every record matching filter, paging ScanLimit records at
// a time. Batch operations use it so nothing past the first page is missed.
func (b Base) FindAll(ctx context.Context, namespace string, filter *vectordb.FilterSet) ([]vectordb.Match, error) {
	matches, err := vectordb.ScanAll(ctx, b.Store, namespace, filter, b.Config.ScanLimit)
	if err != nil {
		return nil, StoreError("scan", namespace, err)
	}
	return matches, nil
}

// ResolveUnique returns the single record matching filter. Zero matches are
// diagnosed with a probe on want's email; more than one is ErrMultiMatch.
func (b Base) ResolveUnique(ctx context.Context, namespace string, fields FieldNames, filter *vectordb.FilterSet, want Triple, productID ProductID) (vectordb.Match, error) {
	matches, err := b.Find(ctx, namespace, filter)
	if err != nil {
		return vectordb.Match{}, err
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return vectordb.Match{}, b.Diagnose(ctx, namespace, fields, filter, want, productID)
	default:
		return vectordb.Match{}, &MatchError{
			Kind:      ErrMultiMatch,
			Namespace: namespace,
			Filter:    filter,
			Count:     len(matches),
		}
	}
}

// diagnosticPolicy only decides which error to report. It never scopes a write.
var diagnosticPolicy = NormalizePolicy{FoldCompanyCase: true}

// Diagnose explains a zero-match lookup. If a record under the same email
// has an identity equal to want after trimming, whitespace collapsing and
// case folding, the result is ErrFilterMismatch carrying the stored variant;
// otherwise ErrZeroMatch. Probe failures fall back to ErrZeroMatch.
func (b Base) Diagnose(ctx context.Context, namespace string, fields FieldNames, filter *vectordb.FilterSet, want Triple, productID ProductID) error {
	zero := &MatchError{Kind: ErrZeroMatch, Namespace: namespace, Filter: filter}
	if want.Email == "" {
		return zero
	}

	probe := BuildFilter(fields, Triple{Email: want.Email}, "")
	candidates, err := b.Find(ctx, namespace, probe)
	if err != nil {
		b.Log.Warn("diagnostic probe failed", err, map[string]interface{}{
			"namespace": namespace,
			"filter":    probe.String(),
		})
		return zero
	}

	target := want.Normalize(diagnosticPolicy)
	for _, c := range candidates {
		stored := fields.Extract(c.Metadata)
		if !identityMatches(stored.Normalize(diagnosticPolicy), target) {
			continue
		}
		if productID != "" && Payload(c.Metadata).Lookup(ProductIDField) != string(productID) {
			continue
		}
		return &MatchError{
			Kind:      ErrFilterMismatch,
			Namespace: namespace,
			Filter:    filter,
			Stored:    &stored,
		}
	}
	return zero
}

// identityMatches compares the fields want constrains.
func identityMatches(stored, want Triple) bool {
	if want.CompanyName != "" && stored.CompanyName != want.CompanyName {
		return false
	}
	if want.ContactNumber != "" && stored.ContactNumber != want.ContactNumber {
		return false
	}
	return stored.Email == want.Email
}

type nopLogger struct{}

func (nopLogger) Info(string, error, ...map[string]interface{})  {}
func (nopLogger) Debug(string, error, ...map[string]interface{}) {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
func (nopLogger) Error(string, error, ...map[string]interface{}) {}
