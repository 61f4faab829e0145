package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
	"github.com/samirrijal/ndfdanim/internal/core/usecases"
)

func row(ts string, lats, lons, vals []float64) domain.ResultRow {
	return domain.ResultRow{
		Description: "Temperature (F)",
		Timestep:    ts,
		Latitudes:   lats,
		Longitudes:  lons,
		Values:      vals,
	}
}

func TestAggregate_GroupsAndGlobals(t *testing.T) {
	pages := usecases.SlicePages(
		domain.ResultPage{
			Rows:      []domain.ResultRow{row("2024-01-01 00:00:00 Mon", []float64{42, 42.1}, []float64{-75, -75.1}, []float64{30, 35})},
			NextToken: "p2",
		},
		domain.ResultPage{
			Rows: []domain.ResultRow{
				row("2024-01-01 03:00:00 Mon", []float64{41.9, 42.2}, []float64{-74.8, -75.3}, []float64{28, 41}),
				row("2024-01-01 00:00:00 Mon", []float64{42.05}, []float64{-75.05}, []float64{32}),
			},
		},
	)

	ds, err := usecases.Aggregate(pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(ds.Frames))
	}
	if ds.Frames[0].Timestep != "2024-01-01 00:00:00 Mon" {
		t.Errorf("expected first-seen order, got %s first", ds.Frames[0].Timestep)
	}
	if len(ds.Frames[0].Samples) != 3 {
		t.Errorf("expected repeated timestep to append, got %d samples", len(ds.Frames[0].Samples))
	}
	if ds.MinValue != 28 || ds.MaxValue != 41 {
		t.Errorf("expected global range 28..41, got %v..%v", ds.MinValue, ds.MaxValue)
	}
	want := domain.Extent{MinLon: -75.3, MaxLon: -74.8, MinLat: 41.9, MaxLat: 42.2}
	if ds.Extent != want {
		t.Errorf("expected extent %+v, got %+v", want, ds.Extent)
	}
	if ds.SampleCount != 5 {
		t.Errorf("expected 5 samples, got %d", ds.SampleCount)
	}
	if ds.Description != "Temperature (F)" {
		t.Errorf("unexpected description %q", ds.Description)
	}
}

func TestAggregate_EveryValueWithinGlobalRange(t *testing.T) {
	pages := usecases.SlicePages(domain.ResultPage{Rows: []domain.ResultRow{
		row("a", []float64{1, 2, 3}, []float64{-1, -2, -3}, []float64{-4.5, 7, 0}),
		row("b", []float64{1, 2}, []float64{-1, -2}, []float64{12.25, -9}),
	}})
	ds, err := usecases.Aggregate(pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range ds.Frames {
		for _, s := range f.Samples {
			if s.Value < ds.MinValue || s.Value > ds.MaxValue {
				t.Errorf("value %v outside %v..%v", s.Value, ds.MinValue, ds.MaxValue)
			}
			if s.Timestep != f.Timestep {
				t.Errorf("sample timestep %q filed under %q", s.Timestep, f.Timestep)
			}
			if !ds.Extent.Contains(s.Point) {
				t.Errorf("point %+v outside extent %+v", s.Point, ds.Extent)
			}
		}
	}
}

func TestAggregate_Empty(t *testing.T) {
	pages := usecases.SlicePages(domain.ResultPage{Rows: []domain.ResultRow{row("a", nil, nil, nil)}})
	if _, err := usecases.Aggregate(pages); !errors.Is(err, domain.ErrEmptyResultSet) {
		t.Fatalf("expected ErrEmptyResultSet, got %v", err)
	}
	if _, err := usecases.Aggregate(usecases.SlicePages()); !errors.Is(err, domain.ErrEmptyResultSet) {
		t.Fatalf("expected ErrEmptyResultSet for no pages, got %v", err)
	}
}

func TestAggregate_Malformed(t *testing.T) {
	pages := usecases.SlicePages(domain.ResultPage{Rows: []domain.ResultRow{
		row("a", []float64{1, 2}, []float64{1}, []float64{1, 2}),
	}})
	if _, err := usecases.Aggregate(pages); !errors.Is(err, domain.ErrMalformedRow) {
		t.Fatalf("expected ErrMalformedRow, got %v", err)
	}
}

func TestAggregate_PageError(t *testing.T) {
	boom := errors.New("throttled")
	engine := &mockEngine{resultsFn: func(ctx context.Context, jobID, token string) (domain.ResultPage, error) {
		return domain.ResultPage{}, boom
	}}
	_, err := usecases.Aggregate(usecases.Pages(context.Background(), engine, "q-1"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected page error to propagate, got %v", err)
	}
}

func TestPages_FollowsTokensAndRestarts(t *testing.T) {
	var tokens []string
	engine := &mockEngine{resultsFn: func(ctx context.Context, jobID, token string) (domain.ResultPage, error) {
		tokens = append(tokens, token)
		switch token {
		case "":
			return domain.ResultPage{NextToken: "t1"}, nil
		case "t1":
			return domain.ResultPage{NextToken: "t2"}, nil
		default:
			return domain.ResultPage{}, nil
		}
	}}

	seq := usecases.Pages(context.Background(), engine, "q-1")
	for range 2 {
		n := 0
		for _, err := range seq {
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			n++
		}
		if n != 3 {
			t.Fatalf("expected 3 pages, got %d", n)
		}
	}
	want := []string{"", "t1", "t2", "", "t1", "t2"}
	if len(tokens) != len(want) {
		t.Fatalf("expected tokens %v, got %v", want, tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d: expected %q, got %q", i, want[i], tokens[i])
		}
	}
}
