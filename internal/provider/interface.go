package provider

import (
	"context"
	"errors"

	"us-screener/internal/model"
)

// ErrNoData reports that the source has no bars for the ticker over the requested range.
var ErrNoData = errors.New("no data")

// DataProvider is the abstraction used by the application when accessing a price source.
// FetchDaily returns daily bars for the inclusive range, or an error; an empty result is ErrNoData.
type DataProvider interface {
	GetName() string
	FetchDaily(ctx context.Context, ticker string, r model.DateRange) (model.Series, error)
	Close() error
}
