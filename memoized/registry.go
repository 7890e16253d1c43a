// Package memoized turns methods with arbitrary parameter shapes into memoized methods.
//
// A Registry holds classes. Memoize installs a memoized method on a class under the
// member's name and keeps the original callable reachable under "_unmemoized_<name>".
// Every owner created with Class.NewOwner has its own cache, so results never leak
// between owners, and Owner.Unmemoize / Owner.UnmemoizeAll clear it.
//
// Example:
//
//	reg, _ := memoized.NewRegistry(memoized.WithLogger(logger))
//	report, _ := reg.Define("Report")
//	total, _ := memoized.Memoize(report, "total",
//		signature.MustClassify(signature.Req("a"), signature.Opt("b", 10)),
//		func(ctx context.Context, r *Report, args signature.Bound) (int, error) {
//			return args.Get("a").(int) + args.Get("b").(int), nil
//		})
//	v, err := total.Invoke(ctx, r, 5) // 15, computed once
package memoized

import (
	"cmp"
	"fmt"
	"slices"

	memdb "github.com/hashicorp/go-memdb"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/on-the-ground/memoized_go/observe"
	"github.com/on-the-ground/memoized_go/shared/helper"
)

// UnmemoizedPrefix prefixes the name under which the original callable stays reachable.
const UnmemoizedPrefix = "_unmemoized_"

const (
	tableClass  = "class"
	tableMember = "member"

	indexID          = "id"
	indexName        = "name"
	indexClass       = "class"
	indexClassMember = "class_member"
)

// MeterName is the default instrumentation scope used by WithMeterProvider.
const MeterName = "github.com/on-the-ground/memoized_go"

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableClass: {
				Name: tableClass,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.UUIDFieldIndex{Field: "ID"},
					},
					indexName: {
						Name:    indexName,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Name"},
					},
				},
			},
			tableMember: {
				Name: tableMember,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.UUIDFieldIndex{Field: "ID"},
					},
					indexClass: {
						Name:    indexClass,
						Indexer: &memdb.StringFieldIndex{Field: "Class"},
					},
					indexClassMember: {
						Name:   indexClassMember,
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.StringFieldIndex{Field: "Class"},
								&memdb.StringFieldIndex{Field: "Name"},
							},
						},
					},
				},
			},
		},
	}
}

type classRecord struct {
	ID     string
	Name   string
	Parent string
	class  *Class
}

// memberRecord is one row of a class's indirection table.
type memberRecord struct {
	ID       string
	Class    string
	Name     string
	Memoized bool
	impl     callable
}

// Registry holds class definitions and their memoized members.
// It is safe for concurrent use.
type Registry struct {
	db       *memdb.MemDB
	logger   *zap.Logger
	recorder observe.Recorder
}

type options struct {
	logger        *zap.Logger
	recorder      observe.Recorder
	meterProvider metric.MeterProvider
	meterName     string
}

// Option configures a Registry.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r observe.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithMeterProvider records metrics on a meter from mp, named MeterName unless
// WithMeterName says otherwise.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// WithMeterName names the meter WithMeterProvider creates. An empty name keeps MeterName.
func WithMeterName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.meterName = name
		}
	}
}

// NewRegistry returns an empty registry. Without options it logs nothing and records
// metrics on the no-op meter.
func NewRegistry(opts ...Option) (*Registry, error) {
	o := options{logger: zap.NewNop(), meterName: MeterName}
	for _, opt := range opts {
		opt(&o)
	}
	if o.recorder == nil {
		if o.meterProvider != nil {
			r, err := observe.NewRecorder(o.meterProvider.Meter(o.meterName))
			if err != nil {
				return nil, fmt.Errorf("failed to create metrics recorder: %w", err)
			}
			o.recorder = r
		} else {
			o.recorder = observe.Noop()
		}
	}

	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("failed to create registry database: %w", err)
	}
	return &Registry{db: db, logger: o.logger, recorder: o.recorder}, nil
}

type classOptions struct {
	parent *Class
}

// ClassOption configures a class at definition time.
type ClassOption func(*classOptions)

// Extends makes the defined class a subclass of parent.
// Members memoized on parent are callable on owners of the subclass.
func Extends(parent *Class) ClassOption {
	return func(o *classOptions) { o.parent = parent }
}

// Define adds a class named name.
func (r *Registry) Define(name string, opts ...ClassOption) (*Class, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty class name", ErrInvalidName)
	}
	var o classOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.parent != nil && o.parent.registry != r {
		return nil, fmt.Errorf("%w: parent %s belongs to another registry", ErrUnknownClass, o.parent.name)
	}

	txn := r.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(tableClass, indexName, name)
	if err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrClassExists, name)
	}

	id := uuid.New()
	rec := &classRecord{
		ID:    id.String(),
		Name:  name,
		class: &Class{registry: r, id: id, name: name, parent: o.parent},
	}
	if o.parent != nil {
		rec.Parent = o.parent.name
	}
	if err := txn.Insert(tableClass, rec); err != nil {
		return nil, err
	}
	txn.Commit()

	r.logger.Debug("class defined",
		zap.String("class", name),
		zap.String("parent", rec.Parent),
	)
	return rec.class, nil
}

// Class returns the class defined under name.
func (r *Registry) Class(name string) (*Class, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tableClass, indexName, name)
	if err != nil {
		return nil, err
	}
	rec, ok := helper.GetTypedValueOf2[*classRecord](func() (any, bool) { return raw, raw != nil })
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, name)
	}
	return rec.class, nil
}

// Classes lists the defined class names in order.
func (r *Registry) Classes() []string {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableClass, indexName)
	if err != nil {
		return nil
	}
	var names []string
	for raw := it.Next(); raw != nil; raw = it.Next() {
		names = append(names, raw.(*classRecord).Name)
	}
	return names
}

func (r *Registry) member(class, name string) (*memberRecord, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tableMember, indexClassMember, class, name)
	if err != nil {
		return nil, err
	}
	rec, _ := helper.GetTypedValueOf2[*memberRecord](func() (any, bool) { return raw, raw != nil })
	return rec, nil
}

func (r *Registry) members(class string) ([]*memberRecord, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableMember, indexClass, class)
	if err != nil {
		return nil, err
	}
	var recs []*memberRecord
	for raw := it.Next(); raw != nil; raw = it.Next() {
		recs = append(recs, raw.(*memberRecord))
	}
	slices.SortFunc(recs, func(a, b *memberRecord) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return recs, nil
}
