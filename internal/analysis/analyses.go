package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"hmdacli/internal/chart"
	"hmdacli/internal/config"
	"hmdacli/internal/dataset"
	"hmdacli/internal/frame"
	"hmdacli/internal/geo"
)

// Analysis names.
const (
	RateSpreadAnalysis = "rate_spread_by_state_race"
	ApprovalAnalysis   = "approval_by_dwelling"
	HighRateMap        = "county_high_rate_map"
)

// Result is one finished analysis: the derived table and the chart
// spec describing how to draw it.
type Result struct {
	Name  string
	Table *frame.Table
	Chart chart.Spec
}

// Analyzer runs the disparity analyses with the configured cutoffs.
type Analyzer struct {
	cfg    config.AnalysisConfig
	logger *slog.Logger
}

// New creates an analyzer.
func New(cfg config.AnalysisConfig, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{cfg: cfg, logger: logger}
}

// Run executes all three analyses over the loan table and the county
// geometry table.
func (a *Analyzer) Run(ctx context.Context, loans, counties *frame.Table) ([]*Result, error) {
	spread, err := a.RateSpreadByStateRace(ctx, loans)
	if err != nil {
		return nil, err
	}
	approval, err := a.ApprovalByDwelling(ctx, loans)
	if err != nil {
		return nil, err
	}
	highRate, err := a.CountyHighRateMap(ctx, loans, counties)
	if err != nil {
		return nil, err
	}
	return []*Result{spread, approval, highRate}, nil
}

// RateSpreadByStateRace compares the mean rate spread paid by Black
// and white non-Hispanic applicants, state by state. Each state ends
// up as one row with a mean and a loan count per race, a combined
// total, and a label that is present only for states with enough loans
// to be worth annotating on the scatter plot.
func (a *Analyzer) RateSpreadByStateRace(ctx context.Context, loans *frame.Table) (*Result, error) {
	meanBlack := fmt.Sprintf("mean_spread_%d", dataset.RaceBlack)
	meanWhite := fmt.Sprintf("mean_spread_%d", dataset.RaceWhite)
	countBlack := fmt.Sprintf("count_spread_%d", dataset.RaceBlack)
	countWhite := fmt.Sprintf("count_spread_%d", dataset.RaceWhite)

	p := NewPipeline(RateSpreadAnalysis, a.logger,
		Stage{Name: "filter_comparable_applicants", Run: func(_ context.Context, t *frame.Table) (*frame.Table, error) {
			return frame.Filter(t, frame.And(
				frame.Eq("ethnicity", frame.IntValue(dataset.EthnicityNotHispanic)),
				frame.In("race", frame.IntValue(dataset.RaceBlack), frame.IntValue(dataset.RaceWhite)),
			))
		}},
		Stage{Name: "summarize_by_state_race", Run: func(_ context.Context, t *frame.Table) (*frame.Table, error) {
			return frame.GroupBy(t,
				[]string{"state", "race"},
				[]frame.Agg{
					{Name: "mean_spread", Col: "rate_spread", Reducer: frame.Mean},
					{Name: "count_spread", Col: "rate_spread", Reducer: frame.Count},
				})
		}},
		Stage{Name: "pivot_race_columns", Run: func(_ context.Context, t *frame.Table) (*frame.Table, error) {
			return frame.PivotWider(t, "race", "mean_spread", "count_spread")
		}},
		Stage{Name: "total_loans", Run: func(_ context.Context, t *frame.Table) (*frame.Table, error) {
			return frame.SumOf(t, "total_loans", countBlack, countWhite)
		}},
		Stage{Name: "label_large_states", Run: func(_ context.Context, t *frame.Table) (*frame.Table, error) {
			return frame.LabelWhen(t, "state_label", "total_loans", a.cfg.LabelMinCount, "state")
		}},
	)

	out, err := p.Run(ctx, loans)
	if err != nil {
		return nil, err
	}

	spec := chart.Spec{
		Name:  RateSpreadAnalysis,
		Title: "Mean rate spread by state, Black vs white applicants",
		Mark:  chart.MarkPoint,
		X:     chart.Encoding{Field: meanWhite, Title: "Mean rate spread, white applicants"},
		Y:     chart.Encoding{Field: meanBlack, Title: "Mean rate spread, Black applicants"},
		Size:  chart.Encoding{Field: "total_loans", Title: "Loans"},
		Label: "state_label",
		Tooltip: []string{
			"state", meanBlack, meanWhite, "total_loans",
		},
	}
	if err := spec.Validate(out); err != nil {
		return nil, err
	}

	return &Result{Name: RateSpreadAnalysis, Table: out, Chart: spec}, nil
}

// ApprovalByDwelling measures the share of applications that were
// originated, by dwelling category. Property-interest codes outside
// the lookup table mean an ordinary site-built dwelling, so the recode
// falls through to that label rather than erroring.
func (a *Analyzer) ApprovalByDwelling(ctx context.Context, loans *frame.Table) (*Result, error) {
	p := NewPipeline(ApprovalAnalysis, a.logger,
		Stage{Name: "recode_dwelling", Run: func(_ context.Context, t *frame.Table) (*frame.Table, error) {
			return frame.RecodeWithDefault(t, "dwelling_category", "property_interest",
				dataset.PropertyInterestLabels, dataset.DwellingDefault)
		}},
		Stage{Name: "flag_originations", Run: func(_ context.Context, t *frame.Table) (*frame.Table, error) {
			return frame.EqFlag(t, "originated", "action_taken", frame.IntValue(dataset.ActionOriginated))
		}},
		Stage{Name: "summarize_by_dwelling", Run: func(_ context.Context, t *frame.Table) (*frame.Table, error) {
			return frame.GroupBy(t,
				[]string{"dwelling_category"},
				[]frame.Agg{
					{Name: "approval_rate", Col: "originated", Reducer: frame.Mean},
					{Name: "loan_count", Col: "originated", Reducer: frame.Count},
				})
		}},
	)

	out, err := p.Run(ctx, loans)
	if err != nil {
		return nil, err
	}

	spec := chart.Spec{
		Name:    ApprovalAnalysis,
		Title:   "Share of applications originated, by dwelling category",
		Mark:    chart.MarkBar,
		X:       chart.Encoding{Field: "dwelling_category", Title: "Dwelling"},
		Y:       chart.Encoding{Field: "approval_rate", Title: "Share originated"},
		Tooltip: []string{"dwelling_category", "approval_rate", "loan_count"},
	}
	if err := spec.Validate(out); err != nil {
		return nil, err
	}

	return &Result{Name: ApprovalAnalysis, Table: out, Chart: spec}, nil
}

// CountyHighRateMap maps, for one state, the share of loans per county
// whose rate spread exceeds the configured cutoff. The geometry table
// is the left side of the join so that every county appears on the map
// even when no loan was made there.
func (a *Analyzer) CountyHighRateMap(ctx context.Context, loans, counties *frame.Table) (*Result, error) {
	cutoff := a.cfg.HighRateCutoff

	p := NewPipeline(HighRateMap, a.logger,
		Stage{Name: "filter_state", Run: func(_ context.Context, t *frame.Table) (*frame.Table, error) {
			return frame.Filter(t, frame.Eq("state", frame.StringValue(a.cfg.MapState)))
		}},
		Stage{Name: "derive_county_fips", Run: func(_ context.Context, t *frame.Table) (*frame.Table, error) {
			return frame.DerivePrefix(t, geo.KeyColumn, "census_tract", dataset.CountyFIPSWidth)
		}},
		Stage{Name: "flag_high_rate", Run: func(_ context.Context, t *frame.Table) (*frame.Table, error) {
			if _, err := t.Column("rate_spread"); err != nil {
				return nil, err
			}
			return frame.Derive(t, "high_rate", frame.Int, func(r frame.Row) frame.Value {
				v, _ := r.Value("rate_spread")
				f, ok := v.AsFloat()
				if !ok {
					return frame.NullValue(frame.Int)
				}
				if f > cutoff {
					return frame.IntValue(1)
				}
				return frame.IntValue(0)
			})
		}},
		Stage{Name: "summarize_by_county", Run: func(_ context.Context, t *frame.Table) (*frame.Table, error) {
			return frame.GroupBy(t,
				[]string{geo.KeyColumn},
				[]frame.Agg{
					{Name: "high_rate_share", Col: "high_rate", Reducer: frame.Mean},
					{Name: "loan_count", Col: "high_rate", Reducer: frame.Count},
				})
		}},
		Stage{Name: "join_geometry", Run: func(_ context.Context, t *frame.Table) (*frame.Table, error) {
			return frame.LeftJoin(counties, t, geo.KeyColumn)
		}},
	)

	out, err := p.Run(ctx, loans)
	if err != nil {
		return nil, err
	}

	spec := chart.Spec{
		Name:     HighRateMap,
		Title:    fmt.Sprintf("Share of high-rate loans by county, %s", a.cfg.MapState),
		Mark:     chart.MarkGeoshape,
		Fill:     chart.Encoding{Field: "high_rate_share", Title: "High-rate share"},
		Geometry: geo.GeometryColumn,
		Tooltip:  []string{geo.KeyColumn, "county_name", "high_rate_share", "loan_count"},
	}
	if err := spec.Validate(out); err != nil {
		return nil, err
	}

	return &Result{Name: HighRateMap, Table: out, Chart: spec}, nil
}
