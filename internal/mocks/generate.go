// Package mocks provides gomock implementations of the store and sink ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockListingStore(ctrl)
//	store.EXPECT().QueryByOwner(gomock.Any(), "o1").Return(listings, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=profile_store_mock.go github.com/hillstay/hillstay/internal/ports ProfileStore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=listing_store_mock.go github.com/hillstay/hillstay/internal/ports ListingStore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=listing_cache_mock.go github.com/hillstay/hillstay/internal/ports ListingCache
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=analytics_sink_mock.go github.com/hillstay/hillstay/internal/ports AnalyticsSink
