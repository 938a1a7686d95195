package database

import (
	"context"
	"errors"
)

// Paginate runs query through the two-phase total protocol and returns its
// rows together with the number of rows the query would match without its
// LIMIT clause.
//
// When the adapter declines PrepareTotal the query runs unchanged and the
// total is the number of rows it returned.
func Paginate(ctx context.Context, a Adapter, query string) (Result, int64, error) {
	prepared, err := a.Transform(query, PrepareTotal)
	if errors.Is(err, ErrNotApplicable) {
		res, err := a.Execute(ctx, query)
		if err != nil {
			return Result{}, 0, err
		}
		return res, int64(len(res.Rows)), nil
	}
	if err != nil {
		return Result{}, 0, err
	}

	res, err := a.Execute(ctx, prepared)
	if err != nil {
		return Result{}, 0, err
	}

	total, err := FoundRows(ctx, a, prepared)
	if err != nil {
		return Result{}, 0, err
	}
	return res, total, nil
}

// FoundRows reads back the total of a prepared query that has just been
// executed on a. A total that is not an integer is a statement error and is
// recorded by adapters implementing ErrorKeeper.
func FoundRows(ctx context.Context, a Adapter, prepared string) (int64, error) {
	totalQuery, err := a.Transform(prepared, RetrieveTotal)
	if err != nil {
		return 0, err
	}
	res, err := a.Execute(ctx, totalQuery)
	if err != nil {
		return 0, err
	}

	total, err := res.Scalar()
	if err != nil {
		return 0, recordError(a, NewError(KindStatement, NoCode, "", totalQuery, err))
	}
	return total, nil
}

func recordError(a Adapter, e *Error) error {
	if k, ok := a.(ErrorKeeper); ok {
		return k.RecordError(e)
	}
	return e
}
