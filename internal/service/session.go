package service

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/hillstay/hillstay/internal/domain/auth"
	"github.com/hillstay/hillstay/internal/domain/model"
	apperrors "github.com/hillstay/hillstay/internal/errors"
	"github.com/hillstay/hillstay/internal/observability/metrics"
	"github.com/hillstay/hillstay/internal/observability/notify"
	"github.com/hillstay/hillstay/internal/ports"
)

// Analytics event names emitted by the session controller.
const (
	EventRoleChanged         = "role_changed"
	EventGuestSessionStarted = "guest_session_started"
	EventProfileUpdated      = "profile_updated"
	EventCredentialsLinked   = "credentials_linked"
	EventSignedOut           = "signed_out"
	EventForcedSignOut       = "forced_sign_out"
)

// Operation names used for notices and metrics.
const (
	opLoadProfile     = "load_profile"
	opContinueAsGuest = "continue_as_guest"
	opUpdateProfile   = "update_profile"
	opLinkCredentials = "link_credentials"
	opSignOut         = "sign_out"
	opSoftDelete      = "soft_delete"
)

const defaultRemoteTimeout = 10 * time.Second

var (
	errAlreadyInitialized = errors.New("session controller already initialized")
	errNotInitialized     = errors.New("session controller not initialized")
	errDisposed           = apperrors.Internal("session controller is not running")
	errIdentityChanged    = apperrors.Conflict("The signed-in account changed while saving. Please try again.")
)

// SessionControllerOptions groups dependencies for SessionController.
type SessionControllerOptions struct {
	Provider  ports.IdentityProvider
	Profiles  ports.ProfileStore
	Analytics ports.EventEmitter
	Notifier  ports.Notifier
	Metrics   metrics.Recorder
	Logger    *slog.Logger
	Clock     func() time.Time
	// OptimisticLocking sends the last-read profile version with every update so
	// a concurrent write from another device fails with a Conflict.
	OptimisticLocking bool
	// RemoteTimeout bounds remote calls made while handling identity changes.
	RemoteTimeout time.Duration
}

// SessionController owns the process-wide session. It mirrors the identity
// provider, derives the role from the profile document, and serializes writes.
type SessionController struct {
	provider      ports.IdentityProvider
	profiles      ports.ProfileStore
	analytics     ports.EventEmitter
	notifier      ports.Notifier
	metrics       metrics.Recorder
	logger        *slog.Logger
	clock         func() time.Time
	optimistic    bool
	remoteTimeout time.Duration

	mu          sync.Mutex
	state       domainauth.Session
	rev         uint64
	seq         uint64
	applied     uint64
	lastEvent   identityEvent
	initialized bool
	disposed    bool
	unsubscribe func()
	baseCtx     context.Context
	cancel      context.CancelFunc
	subs        map[uint64]func(domainauth.Session)
	nextSub     uint64

	deliverMu    sync.Mutex
	deliveredRev uint64

	writeMu sync.Mutex
	fetches singleflight.Group
}

// identityEvent records the most recent identity change seen by the controller.
type identityEvent struct {
	seq uint64
	uid string
}

// NewSessionController constructs a controller in the loading state.
func NewSessionController(opts SessionControllerOptions) (*SessionController, error) {
	if opts.Provider == nil {
		return nil, errors.New("identity provider is required")
	}
	if opts.Profiles == nil {
		return nil, errors.New("profile store is required")
	}
	c := &SessionController{
		provider:      opts.Provider,
		profiles:      opts.Profiles,
		analytics:     opts.Analytics,
		notifier:      opts.Notifier,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
		clock:         opts.Clock,
		optimistic:    opts.OptimisticLocking,
		remoteTimeout: opts.RemoteTimeout,
		state:         domainauth.InitialSession(),
		subs:          make(map[uint64]func(domainauth.Session)),
	}
	if c.analytics == nil {
		c.analytics = noopEmitter{}
	}
	if c.notifier == nil {
		c.notifier = noopNotifier{}
	}
	if c.metrics == nil {
		c.metrics = metrics.Nop{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "session_controller")
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.remoteTimeout <= 0 {
		c.remoteTimeout = defaultRemoteTimeout
	}
	return c, nil
}

// Init subscribes to identity changes. It must be called exactly once.
func (c *SessionController) Init(ctx context.Context) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return errDisposed
	}
	if c.initialized {
		c.mu.Unlock()
		return errAlreadyInitialized
	}
	c.initialized = true
	c.baseCtx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	unsub := c.provider.Subscribe(c.handleIdentity)

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		unsub()
		return errDisposed
	}
	c.unsubscribe = unsub
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "session controller initialized")
	return nil
}

// Dispose unsubscribes from the provider and discards any pending fetch results.
// Calls after the first are no-ops.
func (c *SessionController) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	unsub, cancel := c.unsubscribe, c.cancel
	c.unsubscribe, c.cancel = nil, nil
	c.subs = make(map[uint64]func(domainauth.Session))
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if cancel != nil {
		cancel()
	}
	c.logger.Info("session controller disposed")
}

// Ready reports whether the controller is subscribed to the identity provider.
func (c *SessionController) Ready() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.disposed:
		return errDisposed
	case !c.initialized:
		return errNotInitialized
	}
	return nil
}

// Snapshot returns a copy of the current session.
func (c *SessionController) Snapshot() domainauth.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Subscribe registers fn to receive a snapshot after every applied change.
// fn runs synchronously and must not call the controller's write operations.
func (c *SessionController) Subscribe(fn func(domainauth.Session)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed || fn == nil {
		return func() {}
	}
	c.nextSub++
	id := c.nextSub
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *SessionController) handleIdentity(id *domainauth.Identity) {
	c.mu.Lock()
	ctx := c.baseCtx
	c.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	//nolint:errcheck // failures are logged, counted and surfaced as notices
	_ = c.OnIdentityChange(ctx, id)
}

// OnIdentityChange mirrors a provider identity change. A nil identity resets the session.
// A profile read failure forces a sign-out and is returned as a RemoteReadFailure.
func (c *SessionController) OnIdentityChange(ctx context.Context, id *domainauth.Identity) error {
	if id == nil {
		seq := c.beginEvent("")
		c.logger.InfoContext(ctx, "identity cleared")
		//nolint:errcheck // a reset is never guarded
		_ = c.applyIf(seq, domainauth.ResetSession(), nil)
		return nil
	}

	seq := c.beginEvent(id.UID)
	ctx, cancel := context.WithTimeout(ctx, c.remoteTimeout)
	defer cancel()

	doc, err := c.fetchProfile(ctx, id.UID)
	if err != nil {
		if c.isDisposed() {
			return nil
		}
		return c.forceSignOut(ctx, id.UID, err)
	}
	if applyErr := c.applyIf(seq, buildSession(*id, doc), nil); errors.Is(applyErr, errDisposed) {
		c.logger.DebugContext(ctx, "discarding profile for disposed controller", "uid", id.UID)
	}
	return nil
}

// ContinueAsGuest creates an anonymous identity and records the chosen role on its profile.
func (c *SessionController) ContinueAsGuest(ctx context.Context, role domainauth.Role) error {
	if !role.Valid() {
		err := apperrors.InvalidArgumentField("role", "Choose how you want to continue: guest, user or owner.")
		c.notifyFailure(ctx, opContinueAsGuest, err)
		return err
	}
	if !c.writeMu.TryLock() {
		return apperrors.Busy("Another update is still in progress.")
	}
	defer c.writeMu.Unlock()
	if c.isDisposed() {
		return errDisposed
	}
	if snap := c.Snapshot(); snap.IsAuthenticated && !snap.Anonymous {
		err := apperrors.InvalidArgument("You are already signed in. Sign out to continue as a guest.")
		c.notifyFailure(ctx, opContinueAsGuest, err)
		return err
	}

	startSeq := c.currentSeq()
	id, err := c.provider.SignInAnonymously(ctx)
	if err != nil {
		appErr := apperrors.RemoteWrite(err, "We couldn't start a guest session. Please try again.")
		return c.writeFailed(ctx, opContinueAsGuest, "", appErr)
	}

	fields := map[string]any{
		model.ProfileKeyUserType:  string(role),
		model.ProfileKeyUpdatedAt: c.timestamp(),
	}
	if mergeErr := c.profiles.Merge(ctx, id.UID, fields, model.MergeOptions{}); mergeErr != nil {
		appErr := apperrors.RemoteWrite(mergeErr, "We couldn't save your choice. Please try again.")
		if signOutErr := c.provider.SignOut(context.WithoutCancel(ctx)); signOutErr != nil {
			c.logger.WarnContext(ctx, "sign out of abandoned guest identity failed", "uid", id.UID, "error", signOutErr)
		}
		return c.writeFailed(ctx, opContinueAsGuest, id.UID, appErr)
	}
	c.metrics.RecordProfileWrite(opContinueAsGuest, metrics.ResultSuccess)

	doc, err := c.refetch(ctx, id.UID)
	if err != nil {
		return c.forceSignOut(ctx, id.UID, err)
	}
	if applyErr := c.applyIf(c.nextSeq(), buildSession(id, doc), c.identityStable(id.UID, startSeq)); applyErr != nil {
		return applyErr
	}

	c.analytics.Emit(EventGuestSessionStarted, map[string]string{"uid": id.UID, "role": string(role)})
	c.logger.InfoContext(ctx, "guest session started", "uid", id.UID, "role", role)
	return nil
}

// UpdateProfile merges patch plus a fresh timestamp into the profile document and
// refreshes the session from a re-read. The current role is kept unless patch sets one.
func (c *SessionController) UpdateProfile(ctx context.Context, patch model.ProfilePatch) error {
	if snap := c.Snapshot(); !snap.IsAuthenticated || snap.Identity == nil {
		return c.notAuthenticated(ctx)
	}
	if !c.writeMu.TryLock() {
		return apperrors.Busy("Another update is still in progress.")
	}
	defer c.writeMu.Unlock()

	snap := c.Snapshot()
	if !snap.IsAuthenticated || snap.Identity == nil {
		return c.notAuthenticated(ctx)
	}
	if err := patch.Validate(); err != nil {
		appErr := validationError(err)
		c.notifyFailure(ctx, opUpdateProfile, appErr)
		return appErr
	}
	if patch.IsEmpty() {
		return apperrors.InvalidArgument("Nothing to update.")
	}

	uid := snap.UID
	startSeq := c.currentSeq()
	fields := patch.Fields()
	fields[model.ProfileKeyUpdatedAt] = c.timestamp()
	if patch.UserType == nil && snap.Role.Valid() {
		fields[model.ProfileKeyUserType] = string(snap.Role)
	}
	var opts model.MergeOptions
	if c.optimistic {
		version := snap.ProfileVersion
		opts.ExpectedVersion = &version
	}

	if err := c.profiles.Merge(ctx, uid, fields, opts); err != nil {
		appErr := apperrors.RemoteWrite(err, "We couldn't save your profile. Please try again.")
		if apperrors.IsConflict(appErr) {
			appErr.Message = "Your profile was changed elsewhere. Reload and try again."
		}
		return c.writeFailed(ctx, opUpdateProfile, uid, appErr)
	}
	c.metrics.RecordProfileWrite(opUpdateProfile, metrics.ResultSuccess)

	doc, err := c.refetch(ctx, uid)
	if err != nil {
		appErr := apperrors.RemoteRead(err, "Your changes were saved but could not be reloaded.")
		c.logger.WarnContext(ctx, "profile re-read failed", "uid", uid, "error", err)
		c.notifyFailure(ctx, opUpdateProfile, appErr)
		return appErr
	}
	if applyErr := c.applyIf(c.nextSeq(), buildSession(*snap.Identity, doc), c.identityStable(uid, startSeq)); applyErr != nil {
		return applyErr
	}

	c.analytics.Emit(EventProfileUpdated, map[string]string{"uid": uid, "fields": fieldList(fields)})
	c.logger.InfoContext(ctx, "profile updated", "uid", uid)
	return nil
}

// LinkCredentials upgrades the current anonymous identity to an email/password account.
// The uid is kept, so profile history recorded as a guest is retained.
func (c *SessionController) LinkCredentials(ctx context.Context, req model.LinkRequest) error {
	linker, ok := c.provider.(ports.CredentialLinker)
	if !ok {
		return apperrors.InvalidArgument("This sign-in method does not support linking credentials.")
	}
	if !c.writeMu.TryLock() {
		return apperrors.Busy("Another update is still in progress.")
	}
	defer c.writeMu.Unlock()

	snap := c.Snapshot()
	if !snap.IsAuthenticated || snap.Identity == nil {
		err := apperrors.NotAuthenticated("Start a guest session before creating an account.")
		c.notifyFailure(ctx, opLinkCredentials, err)
		return err
	}
	if !snap.Anonymous {
		return apperrors.InvalidArgument("Only guest sessions can be upgraded to an account.")
	}
	if err := req.Validate(); err != nil {
		appErr := validationError(err)
		c.notifyFailure(ctx, opLinkCredentials, appErr)
		return appErr
	}

	startSeq := c.currentSeq()
	id, err := linker.LinkCredentials(ctx, ports.Credentials{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		if apperrors.GetCode(err) == "" {
			err = apperrors.RemoteWrite(err, "We couldn't link your account. Please try again.")
		}
		return c.writeFailed(ctx, opLinkCredentials, snap.UID, err)
	}

	fields := map[string]any{
		model.ProfileKeyEmail:     id.Email,
		model.ProfileKeyUpdatedAt: c.timestamp(),
	}
	if id.DisplayName != "" {
		fields[model.ProfileKeyDisplayName] = id.DisplayName
	}
	if mergeErr := c.profiles.Merge(ctx, id.UID, fields, model.MergeOptions{}); mergeErr != nil {
		c.logger.WarnContext(ctx, "profile mirror after credential link failed", "uid", id.UID, "error", mergeErr)
		c.metrics.RecordProfileWrite(opLinkCredentials, metrics.ResultError)
	} else {
		c.metrics.RecordProfileWrite(opLinkCredentials, metrics.ResultSuccess)
	}

	doc, err := c.refetch(ctx, id.UID)
	if err != nil {
		appErr := apperrors.RemoteRead(err, "Your account was created but your profile could not be reloaded.")
		c.notifyFailure(ctx, opLinkCredentials, appErr)
		return appErr
	}
	if applyErr := c.applyIf(c.nextSeq(), buildSession(id, doc), c.identityStable(id.UID, startSeq)); applyErr != nil {
		return applyErr
	}

	c.analytics.Emit(EventCredentialsLinked, map[string]string{
		"uid":          id.UID,
		"login_method": string(domainauth.ClassifyLoginMethod(id.ProviderID, id.IsAnonymous)),
	})
	c.logger.InfoContext(ctx, "credentials linked", "uid", id.UID)
	return nil
}

// SignOut soft-deletes an anonymous profile, signs out of the provider and always
// resets the local session. A provider failure is returned after the reset.
func (c *SessionController) SignOut(ctx context.Context) error {
	snap := c.Snapshot()

	if snap.IsAuthenticated && snap.Anonymous && snap.UID != "" {
		now := c.timestamp()
		fields := map[string]any{
			model.ProfileKeyDeleted:   true,
			model.ProfileKeyDeletedAt: now,
			model.ProfileKeyUpdatedAt: now,
		}
		if err := c.profiles.Merge(ctx, snap.UID, fields, model.MergeOptions{}); err != nil {
			c.metrics.RecordProfileWrite(opSoftDelete, metrics.ResultError)
			c.logger.WarnContext(ctx, "soft delete of guest profile failed", "uid", snap.UID, "error", err)
		} else {
			c.metrics.RecordProfileWrite(opSoftDelete, metrics.ResultSuccess)
		}
	}

	var result error
	if err := c.provider.SignOut(ctx); err != nil {
		appErr := apperrors.RemoteWrite(err, "Sign-out did not complete with the provider.")
		c.logger.WarnContext(ctx, "provider sign out failed", "uid", snap.UID, "error", err)
		c.notifyFailure(ctx, opSignOut, appErr)
		result = appErr
	}

	//nolint:errcheck // a reset is never guarded
	_ = c.applyIf(c.beginEvent(""), domainauth.ResetSession(), nil)

	if snap.IsAuthenticated {
		c.analytics.Emit(EventSignedOut, map[string]string{"uid": snap.UID, "role": string(snap.Role)})
	}
	c.logger.InfoContext(ctx, "signed out", "uid", snap.UID)
	return result
}

func (c *SessionController) notAuthenticated(ctx context.Context) error {
	err := apperrors.NotAuthenticated("Sign in to update your profile.")
	c.notifyFailure(ctx, opUpdateProfile, err)
	return err
}

// forceSignOut handles an unrecoverable profile read: the provider is signed out
// and the session reset so nothing operates on partial data.
func (c *SessionController) forceSignOut(ctx context.Context, uid string, cause error) error {
	appErr := apperrors.RemoteRead(cause, "We couldn't load your profile. Please sign in again.")
	c.logger.ErrorContext(ctx, "profile fetch failed, forcing sign out", "uid", uid, "error", cause)
	c.metrics.RecordForcedSignOut("profile_fetch_failed")

	signCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.remoteTimeout)
	defer cancel()
	if err := c.provider.SignOut(signCtx); err != nil {
		c.logger.WarnContext(ctx, "forced sign out failed at provider", "uid", uid, "error", err)
	}

	//nolint:errcheck // a reset is never guarded
	_ = c.applyIf(c.beginEvent(""), domainauth.ResetSession(), nil)
	c.notifyFailure(ctx, opLoadProfile, appErr)
	c.analytics.Emit(EventForcedSignOut, map[string]string{"uid": uid, "reason": "profile_fetch_failed"})
	return appErr
}

func (c *SessionController) writeFailed(ctx context.Context, op, uid string, err error) error {
	c.metrics.RecordProfileWrite(op, metrics.ResultError)
	c.logger.WarnContext(ctx, "session write failed", "op", op, "uid", uid, "error", err)
	c.notifyFailure(ctx, op, err)
	return err
}

func (c *SessionController) fetchProfile(ctx context.Context, uid string) (*model.ProfileDocument, error) {
	start := time.Now()
	v, err, _ := c.fetches.Do(uid, func() (any, error) {
		return c.profiles.Get(ctx, uid)
	})
	if err != nil {
		c.metrics.RecordProfileFetch(metrics.ResultError, time.Since(start))
		return nil, err
	}
	doc, _ := v.(*model.ProfileDocument)
	result := metrics.ResultSuccess
	if doc == nil {
		result = metrics.ResultAbsent
	}
	c.metrics.RecordProfileFetch(result, time.Since(start))
	return doc, nil
}

// refetch reads the document again without joining a read that started before a write.
func (c *SessionController) refetch(ctx context.Context, uid string) (*model.ProfileDocument, error) {
	c.fetches.Forget(uid)
	return c.fetchProfile(ctx, uid)
}

func (c *SessionController) beginEvent(uid string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.lastEvent = identityEvent{seq: c.seq, uid: uid}
	return c.seq
}

func (c *SessionController) nextSeq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

func (c *SessionController) currentSeq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// identityStable returns a guard that fails when a different identity was reported after startSeq.
// The guard runs with c.mu held.
func (c *SessionController) identityStable(uid string, startSeq uint64) func() bool {
	return func() bool {
		return c.lastEvent.seq <= startSeq || c.lastEvent.uid == uid
	}
}

// applyIf installs next when seq is newer than the last applied change, the controller
// is live and guard (if any) holds.
func (c *SessionController) applyIf(seq uint64, next domainauth.Session, guard func() bool) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return errDisposed
	}
	if seq <= c.applied {
		c.mu.Unlock()
		return nil
	}
	if guard != nil && !guard() {
		c.mu.Unlock()
		return errIdentityChanged
	}
	prev := c.state
	c.state = next
	c.applied = seq
	c.rev++
	c.mu.Unlock()

	if prev.Role != next.Role {
		c.metrics.RecordTransition(string(prev.Role), string(next.Role))
		c.analytics.Emit(EventRoleChanged, map[string]string{
			"uid":  firstNonEmpty(next.UID, prev.UID),
			"from": string(prev.Role),
			"to":   string(next.Role),
		})
		c.logger.Info("session role changed", "uid", firstNonEmpty(next.UID, prev.UID), "from", prev.Role, "to", next.Role)
	}
	c.deliver()
	return nil
}

// deliver hands the latest snapshot to subscribers, at most once per revision.
func (c *SessionController) deliver() {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	if c.rev == c.deliveredRev {
		c.mu.Unlock()
		return
	}
	c.deliveredRev = c.rev
	snap := c.state
	ids := slices.Sorted(maps.Keys(c.subs))
	subs := make([]func(domainauth.Session), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, c.subs[id])
	}
	c.mu.Unlock()

	for _, fn := range subs {
		c.safeCall(fn, snap.Clone())
	}
}

func (c *SessionController) safeCall(fn func(domainauth.Session), s domainauth.Session) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("session subscriber panicked", "panic", r)
		}
	}()
	fn(s)
}

func (c *SessionController) isDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

func (c *SessionController) notifyFailure(ctx context.Context, op string, err error) {
	c.notifier.Notify(ctx, notify.Notice{
		Level:     notify.LevelError,
		Code:      string(apperrors.GetCode(err)),
		Operation: op,
		Message:   userMessage(err),
	})
}

func (c *SessionController) timestamp() string {
	return c.clock().UTC().Format(time.RFC3339Nano)
}

// buildSession populates a session from an identity and its profile document.
// A missing or soft-deleted document yields defaults.
func buildSession(id domainauth.Identity, doc *model.ProfileDocument) domainauth.Session {
	var d model.ProfileDocument
	if doc != nil && !doc.Deleted {
		d = *doc
	}
	method := domainauth.ClassifyLoginMethod(id.ProviderID, id.IsAnonymous)
	role := domainauth.DeriveRole(&id, d.UserType)

	identity := id
	s := domainauth.Session{
		Identity:        &identity,
		UID:             id.UID,
		Anonymous:       id.IsAnonymous,
		IsAuthenticated: true,
		Role:            role,
		Profile: domainauth.Profile{
			DisplayName:    firstNonEmpty(d.DisplayName, id.DisplayName),
			Email:          firstNonEmpty(d.Email, id.Email),
			Phone:          firstNonEmpty(d.PhoneNumber, id.Phone),
			PhoneVerified:  d.PhoneVerified || (method == domainauth.LoginMethodPhone && id.Phone != ""),
			LoginMethod:    method,
			VisitedPlaces:  slices.Clone(d.VisitedPlaces),
			RecentBookings: slices.Clone(d.RecentBookings),
			SavedPlaces:    slices.Clone(d.SavedPlaces),
		},
	}
	if doc != nil {
		s.ProfileVersion = doc.Version
	}
	if d.UpdatedAt != nil {
		s.UpdatedAt = d.UpdatedAt.UTC()
	}
	if role == domainauth.RoleOwner {
		s.OwnerProfile = &domainauth.OwnerProfile{
			Profession:      d.Profession,
			BusinessAddress: d.BusinessAddress,
			LicenseNumber:   d.LicenseNumber,
		}
		s.OwnerID = id.UID
	}
	return s
}

// validationError converts a model validation failure into an AppError naming the first bad field.
func validationError(err error) error {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		field := verr.FirstField()
		return &apperrors.AppError{
			Code:    apperrors.ErrCodeValidation,
			Message: "Please check the " + humanField(field) + " field.",
			Field:   field,
			Cause:   err,
		}
	}
	return apperrors.Wrap(err, apperrors.ErrCodeInvalidArgument, "Invalid input.")
}

func humanField(field string) string {
	if field == "" {
		return "highlighted"
	}
	var b strings.Builder
	for i, r := range field {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "Something went wrong. Please try again."
}

func fieldList(fields map[string]any) string {
	return strings.Join(slices.Sorted(maps.Keys(fields)), ",")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

type noopEmitter struct{}

func (noopEmitter) Emit(string, map[string]string) {}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, notify.Notice) {}
