package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/hillstay/hillstay/internal/domain/auth"
	"github.com/hillstay/hillstay/internal/domain/model"
	apperrors "github.com/hillstay/hillstay/internal/errors"
	"github.com/hillstay/hillstay/internal/observability/metrics"
	"github.com/hillstay/hillstay/internal/observability/notify"
	"github.com/hillstay/hillstay/internal/ports"
)

// Listing operation names used for notices and metrics.
const (
	opListingList   = "listing_list"
	opListingPut    = "listing_put"
	opListingDelete = "listing_delete"
	opListingSync   = "listing_sync"
)

// SessionSource exposes the current session to dependent services.
type SessionSource interface {
	Snapshot() domainauth.Session
}

// ListingServiceOptions groups dependencies for ListingService.
type ListingServiceOptions struct {
	Session  SessionSource
	Store    ports.ListingStore
	Cache    ports.ListingCache // optional
	Notifier ports.Notifier
	Metrics  metrics.Recorder
	Logger   *slog.Logger
}

// ListingService backs the owner dashboard. Every operation acts on the
// listings of the owner in the current session.
type ListingService struct {
	session  SessionSource
	store    ports.ListingStore
	cache    ports.ListingCache
	notifier ports.Notifier
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewListingService constructs a ListingService.
func NewListingService(opts ListingServiceOptions) (*ListingService, error) {
	if opts.Session == nil {
		return nil, errors.New("session source is required")
	}
	if opts.Store == nil {
		return nil, errors.New("listing store is required")
	}
	s := &ListingService{
		session:  opts.Session,
		store:    opts.Store,
		cache:    opts.Cache,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}
	if s.notifier == nil {
		s.notifier = noopNotifier{}
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "listing_service")
	return s, nil
}

// List returns the owner's listings. When the remote store fails, the cached copy is
// returned with Stale set.
func (s *ListingService) List(ctx context.Context) (model.ListingPage, error) {
	ownerID, err := s.ownerID(ctx, opListingList)
	if err != nil {
		return model.ListingPage{}, err
	}

	listings, err := s.store.QueryByOwner(ctx, ownerID)
	if err == nil {
		s.metrics.RecordListingOp(opListingList, metrics.ResultSuccess)
		s.refreshCache(ctx, ownerID, listings)
		return model.ListingPage{Listings: nonNil(listings)}, nil
	}

	s.logger.WarnContext(ctx, "listing query failed", "owner_id", ownerID, "error", err)
	if cached, cachedAt, ok := s.fromCache(ctx, ownerID); ok {
		s.metrics.RecordListingOp(opListingList, metrics.ResultStale)
		s.metrics.RecordCacheFallback()
		s.notifier.Notify(ctx, notify.Notice{
			Level:     notify.LevelWarn,
			Code:      string(apperrors.ErrCodeRemoteRead),
			Operation: opListingList,
			Message:   "Showing saved listings while offline.",
		})
		return model.ListingPage{Listings: nonNil(cached), Stale: true, CachedAt: cachedAt}, nil
	}

	s.metrics.RecordListingOp(opListingList, metrics.ResultError)
	appErr := apperrors.RemoteRead(err, "We couldn't load your listings. Please try again.")
	s.notifyFailure(ctx, opListingList, appErr)
	return model.ListingPage{}, appErr
}

// Put creates or replaces one listing. A listing without an ID is assigned one.
func (s *ListingService) Put(ctx context.Context, listing model.Listing) (model.Listing, error) {
	ownerID, err := s.ownerID(ctx, opListingPut)
	if err != nil {
		return model.Listing{}, err
	}
	if err := s.validate(ctx, opListingPut, &listing); err != nil {
		return model.Listing{}, err
	}
	if listing.ID == "" {
		listing.ID = uuid.NewString()
	}
	listing.OwnerID = ownerID

	current, err := s.store.QueryByOwner(ctx, ownerID)
	if err != nil {
		return model.Listing{}, s.writeFailed(ctx, opListingPut, ownerID, err)
	}
	next := slices.DeleteFunc(slices.Clone(current), func(l model.Listing) bool { return l.ID == listing.ID })
	next = append(next, listing)

	if err := s.store.BatchUpsertAndPruneByOwner(ctx, ownerID, next); err != nil {
		return model.Listing{}, s.writeFailed(ctx, opListingPut, ownerID, err)
	}
	s.metrics.RecordListingOp(opListingPut, metrics.ResultSuccess)
	s.reload(ctx, ownerID)
	s.logger.InfoContext(ctx, "listing saved", "owner_id", ownerID, "listing_id", listing.ID)
	return listing, nil
}

// Delete removes one listing by ID.
func (s *ListingService) Delete(ctx context.Context, id string) error {
	ownerID, err := s.ownerID(ctx, opListingDelete)
	if err != nil {
		return err
	}
	if id == "" {
		return apperrors.InvalidArgumentField("id", "Listing id is required.")
	}

	current, err := s.store.QueryByOwner(ctx, ownerID)
	if err != nil {
		return s.writeFailed(ctx, opListingDelete, ownerID, err)
	}
	next := slices.DeleteFunc(slices.Clone(current), func(l model.Listing) bool { return l.ID == id })
	if len(next) == len(current) {
		return apperrors.NotFoundf("Listing %s was not found.", id)
	}

	if err := s.store.BatchUpsertAndPruneByOwner(ctx, ownerID, next); err != nil {
		return s.writeFailed(ctx, opListingDelete, ownerID, err)
	}
	s.metrics.RecordListingOp(opListingDelete, metrics.ResultSuccess)
	s.reload(ctx, ownerID)
	s.logger.InfoContext(ctx, "listing deleted", "owner_id", ownerID, "listing_id", id)
	return nil
}

// Sync makes the owner's stored listings exactly match listings.
func (s *ListingService) Sync(ctx context.Context, listings []model.Listing) ([]model.Listing, error) {
	ownerID, err := s.ownerID(ctx, opListingSync)
	if err != nil {
		return nil, err
	}
	out := make([]model.Listing, len(listings))
	seen := make(map[string]struct{}, len(listings))
	for i := range listings {
		l := listings[i]
		if err := s.validate(ctx, opListingSync, &l); err != nil {
			return nil, err
		}
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		if _, dup := seen[l.ID]; dup {
			return nil, apperrors.InvalidArgumentField("id", "Each listing must have a unique id.")
		}
		seen[l.ID] = struct{}{}
		l.OwnerID = ownerID
		out[i] = l
	}

	if err := s.store.BatchUpsertAndPruneByOwner(ctx, ownerID, out); err != nil {
		return nil, s.writeFailed(ctx, opListingSync, ownerID, err)
	}
	s.metrics.RecordListingOp(opListingSync, metrics.ResultSuccess)
	s.reload(ctx, ownerID)
	s.logger.InfoContext(ctx, "listings synced", "owner_id", ownerID, "count", len(out))
	return out, nil
}

func (s *ListingService) ownerID(ctx context.Context, op string) (string, error) {
	snap := s.session.Snapshot()
	if !snap.IsAuthenticated {
		err := apperrors.NotAuthenticated("Sign in to manage listings.")
		s.notifyFailure(ctx, op, err)
		return "", err
	}
	if !snap.IsOwner() {
		err := apperrors.Forbidden("Only business owners can manage listings.")
		s.notifyFailure(ctx, op, err)
		return "", err
	}
	return snap.OwnerID, nil
}

func (s *ListingService) validate(ctx context.Context, op string, l *model.Listing) error {
	if err := l.Validate(); err != nil {
		appErr := validationError(err)
		s.notifyFailure(ctx, op, appErr)
		return appErr
	}
	return nil
}

func (s *ListingService) writeFailed(ctx context.Context, op, ownerID string, err error) error {
	s.metrics.RecordListingOp(op, metrics.ResultError)
	appErr := apperrors.RemoteWrite(err, "We couldn't save your listings. Please try again.")
	s.logger.WarnContext(ctx, "listing write failed", "op", op, "owner_id", ownerID, "error", err)
	s.notifyFailure(ctx, op, appErr)
	return appErr
}

// reload refreshes the cache from the store after a successful write.
func (s *ListingService) reload(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	listings, err := s.store.QueryByOwner(ctx, ownerID)
	if err != nil {
		s.logger.WarnContext(ctx, "listing reload after write failed", "owner_id", ownerID, "error", err)
		if delErr := s.cache.Delete(ctx, ownerID); delErr != nil {
			s.logger.WarnContext(ctx, "listing cache invalidation failed", "owner_id", ownerID, "error", delErr)
		}
		return
	}
	s.refreshCache(ctx, ownerID, listings)
}

func (s *ListingService) refreshCache(ctx context.Context, ownerID string, listings []model.Listing) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, ownerID, listings); err != nil {
		s.logger.WarnContext(ctx, "listing cache refresh failed", "owner_id", ownerID, "error", err)
	}
}

func (s *ListingService) fromCache(ctx context.Context, ownerID string) ([]model.Listing, time.Time, bool) {
	if s.cache == nil {
		return nil, time.Time{}, false
	}
	listings, cachedAt, ok, err := s.cache.Get(ctx, ownerID)
	if err != nil {
		s.logger.WarnContext(ctx, "listing cache read failed", "owner_id", ownerID, "error", err)
		return nil, time.Time{}, false
	}
	return listings, cachedAt, ok
}

func (s *ListingService) notifyFailure(ctx context.Context, op string, err error) {
	s.notifier.Notify(ctx, notify.Notice{
		Level:     notify.LevelError,
		Code:      string(apperrors.GetCode(err)),
		Operation: op,
		Message:   userMessage(err),
	})
}

func nonNil(in []model.Listing) []model.Listing {
	if in == nil {
		return []model.Listing{}
	}
	return in
}
