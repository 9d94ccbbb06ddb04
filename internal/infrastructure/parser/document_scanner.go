package parser

import (
	"context"

	"RankingsScanner/internal/domain"
	"RankingsScanner/internal/extract"
	"RankingsScanner/internal/scanner"
)

// StrictStrategy matches whole-document rows in rank, name, city, state, score order.
type StrictStrategy struct{}

func (StrictStrategy) Name() string { return StrategyStrict }

func (StrictStrategy) Extract(ctx context.Context, src *scanner.Source) ([]domain.RawRow, error) {
	page, err := src.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return orMiss(extract.StrictRows(page, src.Category))
}

// AlternateStrategy matches rows in id, name, city, state, score, rank order.
type AlternateStrategy struct{}

func (AlternateStrategy) Name() string { return StrategyAlternate }

func (AlternateStrategy) Extract(ctx context.Context, src *scanner.Source) ([]domain.RawRow, error) {
	page, err := src.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return orMiss(extract.AlternateRows(page, src.Category))
}

// GenericStrategy parses every row of the page anchored on recognised state names.
type GenericStrategy struct {
	states extract.StateSet
}

// NewGenericStrategy uses the given state names, or the built-in list when empty.
func NewGenericStrategy(states []string) *GenericStrategy {
	return &GenericStrategy{states: extract.NewStateSet(states)}
}

func (g *GenericStrategy) Name() string { return StrategyGeneric }

func (g *GenericStrategy) Extract(ctx context.Context, src *scanner.Source) ([]domain.RawRow, error) {
	doc, err := src.Document(ctx)
	if err != nil {
		return nil, err
	}
	return orMiss(extract.GenericRows(doc, src.Category, g.states))
}

func orMiss(rows []domain.RawRow) ([]domain.RawRow, error) {
	if len(rows) == 0 {
		return nil, scanner.ErrMiss
	}
	return rows, nil
}
