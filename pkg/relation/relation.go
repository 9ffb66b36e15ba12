package relation

import (
	"context"
	"fmt"
	"nerisdash/pkg/aggregate"
	"nerisdash/pkg/format"
	"nerisdash/pkg/logger"
	"nerisdash/pkg/metrics"
	"nerisdash/pkg/timeseries"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("nerisdash/pkg/relation") //nolint: gochecknoglobals

// JoinType is the kind of join added with Join.
type JoinType string

const (
	InnerJoin JoinType = "inner"
	LeftJoin  JoinType = "left"
	RightJoin JoinType = "right"
	FullJoin  JoinType = "outer"
)

type join struct {
	other *Relation
	using string
	how   JoinType
}

// Relation is a lazy query plan over one parquet file. Builder methods return
// a new Relation and never modify the receiver.
type Relation struct {
	src        *Source
	table      Table
	path       string
	conds      []exp.Expression
	joins      []join
	projection []any
}

// Bounds is a Leaflet bounding box: [[south, west], [north, east]].
type Bounds [2][2]float64

// Table returns the table the relation reads.
func (r *Relation) Table() Table { return r.table }

func (r *Relation) clone() *Relation {
	c := *r
	c.conds = append([]exp.Expression(nil), r.conds...)
	c.joins = append([]join(nil), r.joins...)
	c.projection = append([]any(nil), r.projection...)

	return &c
}

// Where adds conditions.
func (r *Relation) Where(conds ...exp.Expression) *Relation {
	c := r.clone()
	for _, cond := range conds {
		if cond != nil {
			c.conds = append(c.conds, cond)
		}
	}

	return c
}

// WhereSQL adds a raw SQL condition.
func (r *Relation) WhereSQL(cond string) *Relation {
	return r.Where(goqu.L(cond))
}

// Join joins other on a shared column. other is filtered and projected
// before the join.
func (r *Relation) Join(other *Relation, using string, how JoinType) *Relation {
	c := r.clone()
	c.joins = append(c.joins, join{other: other, using: using, how: how})

	return c
}

// Select sets the projection. Columns may be any SQL expression.
func (r *Relation) Select(columns ...string) *Relation {
	c := r.clone()
	c.projection = make([]any, 0, len(columns))
	for _, col := range columns {
		c.projection = append(c.projection, goqu.L(col))
	}

	return c
}

// Dataset assembles the query plan. The projection is skipped when project
// is false.
func (r *Relation) Dataset(project bool) *goqu.SelectDataset {
	ds := dialect.From(goqu.L("read_parquet(?)", r.path))
	if len(r.conds) > 0 {
		ds = ds.Where(r.conds...)
	}

	if len(r.joins) > 0 {
		ds = dialect.From(ds.As("base"))
		for i, j := range r.joins {
			other := j.other.Dataset(true).As(fmt.Sprintf("j%d", i))
			cond := goqu.Using(j.using)
			switch j.how {
			case LeftJoin:
				ds = ds.LeftJoin(other, cond)
			case RightJoin:
				ds = ds.RightJoin(other, cond)
			case FullJoin:
				ds = ds.FullJoin(other, cond)
			default:
				ds = ds.InnerJoin(other, cond)
			}
		}
	}

	if project && len(r.projection) > 0 {
		ds = ds.Select(r.projection...)
	}

	return ds
}

// SQL renders the full query.
func (r *Relation) SQL() (string, error) {
	return toSQL(r.Dataset(true))
}

func toSQL(ds *goqu.SelectDataset) (string, error) {
	sql, _, err := ds.ToSQL()
	if err != nil {
		return "", fmt.Errorf("could not build sql: %w", err)
	}

	return sql, nil
}

func (r *Relation) run(ctx context.Context, op, sql string, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "relation."+op, trace.WithAttributes(
		attribute.String("db.system", "duckdb"),
		attribute.String("db.statement", sql),
		attribute.String("relation.table", r.table.Name),
	))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	metrics.QueryDuration.WithLabelValues(r.table.Name, op).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		logger.Error(ctx, "parquet query failed",
			zap.String("table", r.table.Name), zap.String("op", op), zap.String("sql", sql), zap.Error(err))

		return fmt.Errorf("could not run %s on %s: %w", op, r.table.Name, err)
	}
	logger.Debug(ctx, "parquet query", zap.String("table", r.table.Name), zap.String("op", op),
		zap.Duration("elapsed", time.Since(start)))

	return nil
}

func (r *Relation) frame(ctx context.Context, op, sql string) (*Frame, error) {
	var frame *Frame
	err := r.run(ctx, op, sql, func(ctx context.Context) error {
		rows, err := r.src.Builder.QueryContext(ctx, sql)
		if err != nil {
			return err
		}
		frame, err = ScanFrame(rows)

		return err
	})

	return frame, err
}

// Rows materialises the relation.
func (r *Relation) Rows(ctx context.Context) (*Frame, error) {
	sql, err := r.SQL()
	if err != nil {
		return nil, err
	}

	return r.frame(ctx, "rows", sql)
}

// CountSQL renders the count query. The projection is not applied.
func (r *Relation) CountSQL() (string, error) {
	return toSQL(r.Dataset(false).Select(goqu.COUNT(goqu.Star())))
}

// Count returns the number of matching rows.
func (r *Relation) Count(ctx context.Context) (int64, error) {
	sql, err := r.CountSQL()
	if err != nil {
		return 0, err
	}

	var n int64
	err = r.run(ctx, "count", sql, func(ctx context.Context) error {
		_, err := r.src.Builder.ScanValContext(ctx, &n, sql)

		return err
	})

	return n, err
}

// Distinct returns the distinct values of column.
func (r *Relation) Distinct(ctx context.Context, column string) ([]any, error) {
	sql, err := toSQL(dialect.From(r.Dataset(true).As("rel")).Select(goqu.L(column)).Distinct())
	if err != nil {
		return nil, err
	}

	frame, err := r.frame(ctx, "distinct", sql)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, frame.Len())
	for _, row := range frame.Rows {
		out = append(out, row[0])
	}

	return out, nil
}

func (r *Relation) aggregateDataset(exprs []any, groupBy []string) *goqu.SelectDataset {
	ds := dialect.From(r.Dataset(true).As("rel")).Select(exprs...)
	if len(groupBy) > 0 {
		groups := make([]any, 0, len(groupBy))
		for _, g := range groupBy {
			groups = append(groups, goqu.L(g))
		}
		ds = ds.GroupBy(groups...)
	}

	return ds
}

// AggregateSQL renders an aggregate query.
func (r *Relation) AggregateSQL(exprs []any, groupBy ...string) (string, error) {
	return toSQL(r.aggregateDataset(exprs, groupBy))
}

// Aggregate runs aggregate expressions (goqu expressions or raw SQL strings
// wrapped with goqu.L) grouped by groupBy.
func (r *Relation) Aggregate(ctx context.Context, exprs []any, groupBy ...string) (*Frame, error) {
	sql, err := r.AggregateSQL(exprs, groupBy...)
	if err != nil {
		return nil, err
	}

	return r.frame(ctx, "aggregate", sql)
}

// ScanAggregate runs an aggregate query and scans the rows into dest, a
// pointer to a slice of structs with db tags.
func (r *Relation) ScanAggregate(ctx context.Context, dest any, exprs []any, groupBy ...string) error {
	sql, err := r.AggregateSQL(exprs, groupBy...)
	if err != nil {
		return err
	}

	return r.run(ctx, "aggregate", sql, func(ctx context.Context) error {
		return r.src.Builder.ScanStructsContext(ctx, dest, sql)
	})
}

// SampleSQL renders a reservoir sample of n rows.
func (r *Relation) SampleSQL(n int) (string, error) {
	inner, err := r.SQL()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("SELECT * FROM (%s) AS rel_to_sample USING SAMPLE %d ROWS", inner, n), nil
}

// Sample returns at most n rows sampled from the relation.
func (r *Relation) Sample(ctx context.Context, n int) (*Frame, error) {
	sql, err := r.SampleSQL(n)
	if err != nil {
		return nil, err
	}

	return r.frame(ctx, "sample", sql)
}

// TimeSeriesSQL renders the per interval counts of dateColumn, sorted by date.
func (r *Relation) TimeSeriesSQL(dateColumn string, interval timeseries.Interval, window *timeseries.RollingWindow) (string, error) {
	group := interval.SQL(dateColumn)
	exprs := []any{
		goqu.L(group).As("date"),
		goqu.COUNT(goqu.Star()).As("count"),
	}
	if window != nil {
		exprs = append(exprs, goqu.L(window.Expression(group)).As("rolling_window_avg"))
	}

	return toSQL(r.aggregateDataset(exprs, []string{group}).Order(goqu.I("date").Asc()))
}

// TimeSeriesCounts returns columns date, count and, with a window,
// rolling_window_avg.
func (r *Relation) TimeSeriesCounts(ctx context.Context, dateColumn string, interval timeseries.Interval, window *timeseries.RollingWindow) (*Frame, error) {
	sql, err := r.TimeSeriesSQL(dateColumn, interval, window)
	if err != nil {
		return nil, err
	}

	return r.frame(ctx, "time_series", sql)
}

// ExportData materialises the table's export fields, or every column when the
// table has none.
func (r *Relation) ExportData(ctx context.Context) (*Frame, error) {
	if len(r.table.ExportFields) == 0 {
		return r.Rows(ctx)
	}

	return r.Select(r.table.ExportFields...).Rows(ctx)
}

// withCoordinates drops rows without finite coordinates or with the 0,0
// fallback.
func (r *Relation) withCoordinates(x, y string) *Relation {
	return r.Where(
		goqu.L(x).IsNotNull(),
		goqu.L(y).IsNotNull(),
		goqu.L(x).Neq(0),
		goqu.L(y).Neq(0),
		goqu.L("isfinite("+x+")").IsTrue(),
		goqu.L("isfinite("+y+")").IsTrue(),
	)
}

// PointsRelation is the relation SampledPoints samples from.
func (r *Relation) PointsRelation(bounds *Bounds, x, y string) *Relation {
	rel := r.withCoordinates(x, y)
	if bounds != nil {
		rel = rel.Where(
			goqu.L(y).Between(goqu.Range(bounds[0][0], bounds[1][0])),
			goqu.L(x).Between(goqu.Range(bounds[0][1], bounds[1][1])),
		)
	}

	return rel
}

// SampledPoints samples up to limit located rows, optionally inside bounds.
func (r *Relation) SampledPoints(ctx context.Context, limit int, bounds *Bounds, x, y string) (*Frame, error) {
	return r.PointsRelation(bounds, x, y).Sample(ctx, limit)
}

// Bounds returns the bounding box of all located rows, nil when there are none.
func (r *Relation) Bounds(ctx context.Context, x, y string) (*Bounds, error) {
	frame, err := r.withCoordinates(x, y).Aggregate(ctx, []any{
		goqu.MIN(goqu.L(y)).As("min_y"),
		goqu.MIN(goqu.L(x)).As("min_x"),
		goqu.MAX(goqu.L(y)).As("max_y"),
		goqu.MAX(goqu.L(x)).As("max_x"),
	})
	if err != nil {
		return nil, err
	}
	if frame.Len() == 0 {
		return nil, nil //nolint: nilnil
	}

	var vals [4]float64
	for i, v := range frame.Rows[0] {
		f, ok := format.AsFloat(v)
		if !ok {
			return nil, nil //nolint: nilnil
		}
		vals[i] = f
	}

	return &Bounds{{vals[0], vals[1]}, {vals[2], vals[3]}}, nil
}

// AggregateStats computes group in one query, returning the group defaults
// when no rows match.
func (r *Relation) AggregateStats(ctx context.Context, group aggregate.Group) (map[string]any, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return group.Defaults(), nil
	}

	frame, err := r.Aggregate(ctx, group.Expressions())
	if err != nil {
		return nil, err
	}
	if frame.Len() == 0 {
		return group.Defaults(), nil
	}

	return group.Extract(frame.Record(0)), nil
}

// LastUpdated returns the modification time of the relation's parquet file.
func (r *Relation) LastUpdated(ctx context.Context) string {
	return r.src.LastUpdated(ctx, r.table)
}
