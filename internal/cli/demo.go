package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/on-the-ground/memoized_go/memoized"
	"github.com/on-the-ground/memoized_go/signature"
)

type report struct {
	*memoized.Owner
	computed int
}

type demoStep struct {
	label string
	args  []any
	clear bool
}

var demoSteps = []demoStep{
	{label: "total(5)", args: []any{5}},
	{label: "total(5, 10)", args: []any{5, 10}},
	{label: "total(5, 11)", args: []any{5, 11}},
	{label: "total(5)", args: []any{5}},
	{label: "unmemoize(total)", clear: true},
	{label: "total(5)", args: []any{5}},
}

func (a *App) newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run total(a, b = 10) through the memoizer and show hits and misses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDemo(cmd.Context())
		},
	}
}

func (a *App) runDemo(ctx context.Context) error {
	opts := []memoized.Option{memoized.WithLogger(a.logger)}
	var reader *sdkmetric.ManualReader
	if a.cfg.Metrics {
		reader = sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = mp.Shutdown(context.Background()) }()
		opts = append(opts, memoized.WithMeterProvider(mp), memoized.WithMeterName(a.cfg.MeterName))
	}

	reg, err := memoized.NewRegistry(opts...)
	if err != nil {
		return err
	}
	class, err := reg.Define("Report")
	if err != nil {
		return err
	}
	total, err := memoized.Memoize(class, "total",
		signature.MustClassify(signature.Req("a"), signature.Opt("b", 10)),
		func(_ context.Context, r *report, args signature.Bound) (int, error) {
			r.computed++
			x, _ := args.Get("a").(int)
			y, _ := args.Get("b").(int)
			return x + y, nil
		})
	if err != nil {
		return err
	}

	r := &report{Owner: class.NewOwner()}
	for _, step := range demoSteps {
		if step.clear {
			r.Unmemoize(ctx, total.Name())
			fmt.Fprintf(a.stdout, "%-18s cleared\n", step.label)
			continue
		}
		before := r.computed
		v, err := total.Invoke(ctx, r, step.args...)
		if err != nil {
			return err
		}
		outcome := "cached"
		if r.computed > before {
			outcome = "computed"
		}
		fmt.Fprintf(a.stdout, "%-18s = %-4d %s\n", step.label, v, outcome)
	}
	fmt.Fprintf(a.stdout, "computations: %d, cached keys: %d\n", r.computed, r.Inspect(total.Name()).Keys)

	if reader != nil {
		var rm metricdata.ResourceMetrics
		if err := reader.Collect(ctx, &rm); err != nil {
			return err
		}
		for _, sm := range rm.ScopeMetrics {
			fmt.Fprintf(a.stdout, "scope %s\n", sm.Scope.Name)
			for _, m := range sm.Metrics {
				if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
					var n int64
					for _, dp := range sum.DataPoints {
						n += dp.Value
					}
					fmt.Fprintf(a.stdout, "%s %d\n", m.Name, n)
				}
			}
		}
	}
	return nil
}
