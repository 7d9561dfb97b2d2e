package main

import (
	"context"
	"net/http"
	"time"

	"github.com/graph-gophers/dataloader/v7"
)

// DataLoaderContextKey is the key used to store dataloaders in context
type DataLoaderContextKey string

const dataLoaderKey DataLoaderContextKey = "dataloader"

// DataLoaders batches single-candidate lookups issued by concurrent
// request handlers (profile views, match-score calls) into one store
// query per attribute kind within the wait window.
type DataLoaders struct {
	IdentityLoader   *dataloader.Loader[int, *Identity]
	PersonalLoader   *dataloader.Loader[int, *Personal]
	HealthLoader     *dataloader.Loader[int, *Health]
	EducationLoader  *dataloader.Loader[int, *Education]
	ProfessionLoader *dataloader.Loader[int, *Profession]
}

// NewDataLoaders creates the per-kind loaders backed by the store's batch
// lookups.
func NewDataLoaders(store AttributeStore) *DataLoaders {
	return &DataLoaders{
		IdentityLoader: dataloader.NewBatchedLoader(
			batchFn(store.GetIdentities, true), dataloader.WithWait[int, *Identity](16*time.Millisecond)),
		PersonalLoader: dataloader.NewBatchedLoader(
			batchFn(store.GetPersonals, false), dataloader.WithWait[int, *Personal](16*time.Millisecond)),
		HealthLoader: dataloader.NewBatchedLoader(
			batchFn(store.GetHealthRecords, false), dataloader.WithWait[int, *Health](16*time.Millisecond)),
		EducationLoader: dataloader.NewBatchedLoader(
			batchFn(store.GetEducations, false), dataloader.WithWait[int, *Education](16*time.Millisecond)),
		ProfessionLoader: dataloader.NewBatchedLoader(
			batchFn(store.GetProfessions, false), dataloader.WithWait[int, *Profession](16*time.Millisecond)),
	}
}

// batchFn adapts a map-returning store batch lookup into a dataloader
// batch function. When required is set, a missing key yields ErrNotFound;
// otherwise it yields a nil record, which downstream code reads as the
// attribute being absent.
func batchFn[T any](load func(context.Context, []int) (map[int]T, error), required bool) dataloader.BatchFunc[int, *T] {
	return func(ctx context.Context, keys []int) []*dataloader.Result[*T] {
		results := make([]*dataloader.Result[*T], len(keys))

		records, err := load(ctx, keys)
		if err != nil {
			for i := range results {
				results[i] = &dataloader.Result[*T]{Error: err}
			}
			return results
		}

		for i, key := range keys {
			if rec, ok := records[key]; ok {
				rec := rec
				results[i] = &dataloader.Result[*T]{Data: &rec}
			} else if required {
				results[i] = &dataloader.Result[*T]{Error: ErrNotFound}
			} else {
				results[i] = &dataloader.Result[*T]{}
			}
		}
		return results
	}
}

// GetDataLoadersFromContext retrieves dataloaders from context
func GetDataLoadersFromContext(ctx context.Context) *DataLoaders {
	if dl, ok := ctx.Value(dataLoaderKey).(*DataLoaders); ok {
		return dl
	}
	return nil
}

// WithDataLoaders adds dataloaders to context
func WithDataLoaders(ctx context.Context, dl *DataLoaders) context.Context {
	return context.WithValue(ctx, dataLoaderKey, dl)
}

// dataLoaderMiddleware attaches fresh per-request loaders so batching
// never leaks cached records across requests.
func dataLoaderMiddleware(store AttributeStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithDataLoaders(r.Context(), NewDataLoaders(store))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
