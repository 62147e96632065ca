package shaper

import (
	"github.com/leapstack-labs/dbbridge/pkg/adapter"
	"github.com/leapstack-labs/dbbridge/pkg/core"
)

// window holds the eagerly fetched head of a result.
type window struct {
	headers []string
	rows    [][]any
	large   bool
	cursor  *adapter.Cursor
}

func peek(cursor *adapter.Cursor) (*window, error) {
	rows, err := cursor.FetchMany(PeekSize)
	if err != nil {
		return nil, &core.QueryError{Err: err}
	}
	return &window{
		headers: cursor.Columns(),
		rows:    rows,
		large:   len(rows) > LargeThreshold,
		cursor:  cursor,
	}, nil
}

// each visits the peeked rows and, when full is set, every remaining row.
func (w *window) each(full bool, fn func(row []any) error) error {
	for _, row := range w.rows {
		if err := fn(row); err != nil {
			return err
		}
	}
	if !full {
		return nil
	}
	for {
		batch, err := w.cursor.FetchMany(BatchSize)
		if err != nil {
			return &core.QueryError{Err: err}
		}
		if len(batch) == 0 {
			return nil
		}
		for _, row := range batch {
			if err := fn(row); err != nil {
				return err
			}
		}
	}
}
