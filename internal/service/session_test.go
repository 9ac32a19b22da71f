package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hillstay/hillstay/internal/adapters/memstore"
	domainauth "github.com/hillstay/hillstay/internal/domain/auth"
	"github.com/hillstay/hillstay/internal/domain/model"
	apperrors "github.com/hillstay/hillstay/internal/errors"
	mocks "github.com/hillstay/hillstay/internal/mocks/auth"
	"github.com/hillstay/hillstay/internal/ports"
)

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

// hookedProfiles wraps the in-memory store with optional failure and blocking hooks.
type hookedProfiles struct {
	*memstore.ProfileStore
	getHook   func(ctx context.Context, uid string) error
	mergeHook func(ctx context.Context, uid string, fields map[string]any) error
}

func (h *hookedProfiles) Get(ctx context.Context, uid string) (*model.ProfileDocument, error) {
	if h.getHook != nil {
		if err := h.getHook(ctx, uid); err != nil {
			return nil, err
		}
	}
	return h.ProfileStore.Get(ctx, uid)
}

func (h *hookedProfiles) Merge(ctx context.Context, uid string, fields map[string]any, opts model.MergeOptions) error {
	if h.mergeHook != nil {
		if err := h.mergeHook(ctx, uid, fields); err != nil {
			return err
		}
	}
	return h.ProfileStore.Merge(ctx, uid, fields, opts)
}

type sessionHarness struct {
	c        *SessionController
	provider *mocks.FakeIdentityProvider
	store    *hookedProfiles
	emitter  *mocks.RecordingEmitter
	notifier *mocks.RecordingNotifier
}

func newSessionHarness(t *testing.T, optimistic bool) *sessionHarness {
	t.Helper()
	h := &sessionHarness{
		provider: mocks.NewFakeIdentityProvider(),
		store:    &hookedProfiles{ProfileStore: memstore.NewProfileStore()},
		emitter:  &mocks.RecordingEmitter{},
		notifier: &mocks.RecordingNotifier{},
	}
	c, err := NewSessionController(SessionControllerOptions{
		Provider:          h.provider,
		Profiles:          h.store,
		Analytics:         h.emitter,
		Notifier:          h.notifier,
		Clock:             func() time.Time { return fixedNow },
		OptimisticLocking: optimistic,
	})
	require.NoError(t, err)
	require.NoError(t, c.Init(context.Background()))
	t.Cleanup(c.Dispose)
	h.c = c
	return h
}

func googleUser(uid string) *domainauth.Identity {
	return &domainauth.Identity{UID: uid, DisplayName: "Tenzing", Email: uid + "@example.com", ProviderID: "google.com"}
}

func strPtr(s string) *string { return &s }

func TestNewSessionController_RequiresDependencies(t *testing.T) {
	_, err := NewSessionController(SessionControllerOptions{Profiles: memstore.NewProfileStore()})
	require.Error(t, err)
	_, err = NewSessionController(SessionControllerOptions{Provider: mocks.NewFakeIdentityProvider()})
	require.Error(t, err)
}

func TestSessionController_LoadingUntilFirstEvent(t *testing.T) {
	h := newSessionHarness(t, false)

	assert.True(t, h.c.Snapshot().IsLoading)

	h.provider.Emit(nil)

	snap := h.c.Snapshot()
	assert.False(t, snap.IsLoading)
	assert.Equal(t, domainauth.ResetSession(), snap)
}

func TestSessionController_InitTwice(t *testing.T) {
	h := newSessionHarness(t, false)

	err := h.c.Init(context.Background())
	require.ErrorIs(t, err, errAlreadyInitialized)
	assert.Equal(t, 1, h.provider.Subscriptions())
}

func TestSessionController_Ready(t *testing.T) {
	c, err := NewSessionController(SessionControllerOptions{
		Provider: mocks.NewFakeIdentityProvider(),
		Profiles: memstore.NewProfileStore(),
	})
	require.NoError(t, err)
	require.ErrorIs(t, c.Ready(), errNotInitialized)

	require.NoError(t, c.Init(context.Background()))
	require.NoError(t, c.Ready())

	c.Dispose()
	require.Error(t, c.Ready())
}

func TestSessionController_ContinueAsGuest(t *testing.T) {
	for _, role := range []domainauth.Role{domainauth.RoleGuest, domainauth.RoleUser, domainauth.RoleOwner} {
		t.Run(string(role), func(t *testing.T) {
			h := newSessionHarness(t, false)
			h.provider.Emit(nil)

			require.NoError(t, h.c.ContinueAsGuest(context.Background(), role))

			snap := h.c.Snapshot()
			assert.Equal(t, role, snap.Role)
			assert.True(t, snap.Anonymous)
			assert.True(t, snap.IsAuthenticated)
			assert.Equal(t, domainauth.LoginMethodAnonymous, snap.Profile.LoginMethod)
			require.NotNil(t, snap.Identity)
			assert.Equal(t, snap.Identity.UID, snap.UID)

			doc, err := h.store.Get(context.Background(), snap.UID)
			require.NoError(t, err)
			require.NotNil(t, doc)
			assert.Equal(t, role, doc.UserType)
			assert.Equal(t, fixedNow, doc.UpdatedAt.UTC())

			if role == domainauth.RoleOwner {
				assert.Equal(t, snap.UID, snap.OwnerID)
				assert.True(t, snap.IsOwner())
				require.NotNil(t, snap.OwnerProfile)
			} else {
				assert.Empty(t, snap.OwnerID)
				assert.Nil(t, snap.OwnerProfile)
			}
			assert.Contains(t, h.emitter.Names(), EventGuestSessionStarted)
		})
	}
}

func TestSessionController_ContinueAsGuest_InvalidRole(t *testing.T) {
	for _, role := range []domainauth.Role{domainauth.RoleUnset, "admin"} {
		t.Run(string(role), func(t *testing.T) {
			h := newSessionHarness(t, false)
			h.provider.Emit(nil)
			before := h.c.Snapshot()

			err := h.c.ContinueAsGuest(context.Background(), role)

			require.Error(t, err)
			assert.True(t, apperrors.IsInvalidArgument(err))
			assert.Equal(t, "role", apperrors.GetField(err))
			assert.Equal(t, before, h.c.Snapshot())
			assert.Nil(t, h.provider.Current())
			assert.Equal(t, 0, h.store.Len())

			notices := h.notifier.Notices()
			require.Len(t, notices, 1)
			assert.Equal(t, string(apperrors.ErrCodeInvalidArgument), notices[0].Code)
		})
	}
}

func TestSessionController_ContinueAsGuest_MergeFailureSignsOut(t *testing.T) {
	h := newSessionHarness(t, false)
	h.provider.Emit(nil)
	h.store.mergeHook = func(context.Context, string, map[string]any) error {
		return errors.New("store offline")
	}

	err := h.c.ContinueAsGuest(context.Background(), domainauth.RoleOwner)

	require.Error(t, err)
	assert.True(t, apperrors.IsRemoteWrite(err))
	assert.Equal(t, 1, h.provider.SignOutCalls())
	assert.Equal(t, domainauth.ResetSession(), h.c.Snapshot())
}

func TestSessionController_ContinueAsGuest_RejectsSignedInAccount(t *testing.T) {
	h := newSessionHarness(t, false)
	h.provider.Emit(googleUser("u1"))
	before := h.c.Snapshot()
	require.True(t, before.IsAuthenticated)
	h.provider.SignInAnonymouslyFunc = func(context.Context) (domainauth.Identity, error) {
		t.Error("signed-in account must not be replaced by an anonymous identity")
		return domainauth.Identity{}, errors.New("unexpected")
	}
	h.store.mergeHook = func(context.Context, string, map[string]any) error {
		return errors.New("store offline")
	}

	err := h.c.ContinueAsGuest(context.Background(), domainauth.RoleOwner)

	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidArgument(err))
	assert.Equal(t, 0, h.provider.SignOutCalls())
	assert.Equal(t, before, h.c.Snapshot())
	assert.Equal(t, "u1", h.provider.Current().UID)
}

func TestSessionController_ContinueAsGuest_SignInFailure(t *testing.T) {
	h := newSessionHarness(t, false)
	h.provider.Emit(nil)
	h.provider.SignInAnonymouslyFunc = func(context.Context) (domainauth.Identity, error) {
		return domainauth.Identity{}, errors.New("quota exceeded")
	}

	err := h.c.ContinueAsGuest(context.Background(), domainauth.RoleGuest)

	require.Error(t, err)
	assert.True(t, apperrors.IsRemoteWrite(err))
	assert.Equal(t, domainauth.ResetSession(), h.c.Snapshot())
}

func TestSessionController_OwnerScenario(t *testing.T) {
	h := newSessionHarness(t, false)
	ctx := context.Background()
	h.provider.Emit(nil)

	require.NoError(t, h.c.ContinueAsGuest(ctx, domainauth.RoleOwner))
	require.NoError(t, h.c.UpdateProfile(ctx, model.ProfilePatch{
		Profession:      strPtr("resort-hotel"),
		BusinessAddress: strPtr("Mall Road, Manali"),
	}))

	snap := h.c.Snapshot()
	assert.Equal(t, domainauth.RoleOwner, snap.Role)
	require.NotNil(t, snap.OwnerProfile)
	assert.Equal(t, "resort-hotel", snap.OwnerProfile.Profession)
	assert.Equal(t, "Mall Road, Manali", snap.OwnerProfile.BusinessAddress)
	assert.Equal(t, snap.UID, snap.OwnerID)
	assert.Equal(t, int64(2), snap.ProfileVersion)
}

func TestSessionController_UpdateProfile_KeepsRole(t *testing.T) {
	h := newSessionHarness(t, false)
	ctx := context.Background()
	h.provider.Emit(nil)
	require.NoError(t, h.c.ContinueAsGuest(ctx, domainauth.RoleOwner))

	require.NoError(t, h.c.UpdateProfile(ctx, model.ProfilePatch{BusinessAddress: strPtr("Thamel, Kathmandu")}))

	snap := h.c.Snapshot()
	assert.Equal(t, domainauth.RoleOwner, snap.Role)
	doc, err := h.store.Get(ctx, snap.UID)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleOwner, doc.UserType)
	assert.Contains(t, h.emitter.Names(), EventProfileUpdated)
}

func TestSessionController_UpdateProfile_NotAuthenticated(t *testing.T) {
	h := newSessionHarness(t, false)
	h.provider.Emit(nil)
	before := h.c.Snapshot()

	err := h.c.UpdateProfile(context.Background(), model.ProfilePatch{DisplayName: strPtr("Pemba")})

	require.Error(t, err)
	assert.True(t, apperrors.IsNotAuthenticated(err))
	assert.Equal(t, before, h.c.Snapshot())
	assert.Equal(t, 0, h.store.Len())
}

func TestSessionController_UpdateProfile_Validation(t *testing.T) {
	h := newSessionHarness(t, false)
	h.provider.Emit(googleUser("u1"))

	err := h.c.UpdateProfile(context.Background(), model.ProfilePatch{Email: strPtr("not-an-email")})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "Email", apperrors.GetField(err))

	err = h.c.UpdateProfile(context.Background(), model.ProfilePatch{})
	assert.True(t, apperrors.IsInvalidArgument(err))
}

func TestSessionController_UpdateProfile_RoundTrip(t *testing.T) {
	h := newSessionHarness(t, false)
	ctx := context.Background()
	h.provider.Emit(googleUser("u1"))

	require.NoError(t, h.c.UpdateProfile(ctx, model.ProfilePatch{
		DisplayName:   strPtr("Ang Dorje"),
		PhoneNumber:   strPtr("+9779800000000"),
		VisitedPlaces: []string{"Pokhara", "Lukla"},
	}))

	first := h.c.Snapshot()
	assert.Equal(t, "Ang Dorje", first.Profile.DisplayName)
	assert.Equal(t, "+9779800000000", first.Profile.Phone)
	assert.Equal(t, []string{"Pokhara", "Lukla"}, first.Profile.VisitedPlaces)
	assert.Equal(t, domainauth.RoleUser, first.Role)

	// A fresh controller reading the same store sees at least what was written.
	other, err := NewSessionController(SessionControllerOptions{Provider: mocks.NewFakeIdentityProvider(), Profiles: h.store})
	require.NoError(t, err)
	require.NoError(t, other.OnIdentityChange(ctx, googleUser("u1")))
	second := other.Snapshot()
	assert.Equal(t, first.Profile, second.Profile)
	assert.Equal(t, first.Role, second.Role)
	assert.Equal(t, first.ProfileVersion, second.ProfileVersion)
}

func TestSessionController_UpdateProfile_OptimisticConflict(t *testing.T) {
	h := newSessionHarness(t, true)
	ctx := context.Background()
	h.provider.Emit(googleUser("u1"))

	// Another device writes first.
	require.NoError(t, h.store.ProfileStore.Merge(ctx, "u1", map[string]any{model.ProfileKeyDisplayName: "Elsewhere"}, model.MergeOptions{}))

	err := h.c.UpdateProfile(ctx, model.ProfilePatch{DisplayName: strPtr("Here")})

	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	doc, getErr := h.store.Get(ctx, "u1")
	require.NoError(t, getErr)
	assert.Equal(t, "Elsewhere", doc.DisplayName)
}

func TestSessionController_UpdateProfile_RefetchFailureKeepsState(t *testing.T) {
	h := newSessionHarness(t, false)
	ctx := context.Background()
	h.provider.Emit(googleUser("u1"))
	before := h.c.Snapshot()
	h.store.getHook = func(context.Context, string) error { return errors.New("read timeout") }

	err := h.c.UpdateProfile(ctx, model.ProfilePatch{DisplayName: strPtr("Later")})

	require.Error(t, err)
	assert.True(t, apperrors.IsRemoteRead(err))
	assert.Equal(t, before, h.c.Snapshot())
	assert.Equal(t, 0, h.provider.SignOutCalls())
}

func TestSessionController_UpdateProfile_Busy(t *testing.T) {
	h := newSessionHarness(t, false)
	ctx := context.Background()
	h.provider.Emit(googleUser("u1"))

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	h.store.mergeHook = func(context.Context, string, map[string]any) error {
		once.Do(func() { close(entered) })
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- h.c.UpdateProfile(ctx, model.ProfilePatch{DisplayName: strPtr("First")}) }()
	<-entered

	err := h.c.UpdateProfile(ctx, model.ProfilePatch{DisplayName: strPtr("Second")})
	assert.True(t, apperrors.IsBusy(err))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, "First", h.c.Snapshot().Profile.DisplayName)
}

func TestSessionController_UpdateProfile_SignedOutDuringGuestEntry(t *testing.T) {
	h := newSessionHarness(t, false)
	h.provider.Emit(nil)
	entered := make(chan struct{})
	release := make(chan struct{})
	h.provider.SignInAnonymouslyFunc = func(context.Context) (domainauth.Identity, error) {
		close(entered)
		<-release
		return domainauth.Identity{}, errors.New("quota exceeded")
	}

	done := make(chan error, 1)
	go func() { done <- h.c.ContinueAsGuest(context.Background(), domainauth.RoleUser) }()
	<-entered

	err := h.c.UpdateProfile(context.Background(), model.ProfilePatch{DisplayName: strPtr("Pemba")})
	assert.True(t, apperrors.IsNotAuthenticated(err))

	close(release)
	assert.True(t, apperrors.IsRemoteWrite(<-done))
}

func TestSessionController_NoDocumentDefaultsToUser(t *testing.T) {
	h := newSessionHarness(t, false)

	h.provider.Emit(&domainauth.Identity{UID: "p1", Phone: "+919812345678", ProviderID: "phone"})

	snap := h.c.Snapshot()
	assert.Equal(t, domainauth.RoleUser, snap.Role)
	assert.False(t, snap.Anonymous)
	assert.Equal(t, domainauth.LoginMethodPhone, snap.Profile.LoginMethod)
	assert.True(t, snap.Profile.PhoneVerified)
	assert.Equal(t, "+919812345678", snap.Profile.Phone)
	assert.Equal(t, int64(0), snap.ProfileVersion)
}

func TestSessionController_SoftDeletedDocumentTreatedAsAbsent(t *testing.T) {
	h := newSessionHarness(t, false)
	ctx := context.Background()
	require.NoError(t, h.store.Merge(ctx, "anon-x", map[string]any{
		model.ProfileKeyUserType: "owner",
		model.ProfileKeyDeleted:  true,
	}, model.MergeOptions{}))

	h.provider.Emit(&domainauth.Identity{UID: "anon-x", IsAnonymous: true, ProviderID: "anonymous"})

	snap := h.c.Snapshot()
	assert.Equal(t, domainauth.RoleGuest, snap.Role)
	assert.Nil(t, snap.OwnerProfile)
	assert.Equal(t, int64(1), snap.ProfileVersion)
}

func TestSessionController_FetchFailureForcesSignOut(t *testing.T) {
	h := newSessionHarness(t, false)
	h.store.getHook = func(context.Context, string) error { return errors.New("permission denied") }

	h.provider.Emit(googleUser("u1"))

	assert.Equal(t, domainauth.ResetSession(), h.c.Snapshot())
	assert.Equal(t, 1, h.provider.SignOutCalls())
	assert.Nil(t, h.provider.Current())
	assert.Contains(t, h.emitter.Names(), EventForcedSignOut)

	notices := h.notifier.Notices()
	require.NotEmpty(t, notices)
	assert.Equal(t, string(apperrors.ErrCodeRemoteRead), notices[len(notices)-1].Code)
	assert.Equal(t, opLoadProfile, notices[len(notices)-1].Operation)
}

func TestSessionController_SignOutAnonymousSoftDeletes(t *testing.T) {
	h := newSessionHarness(t, false)
	ctx := context.Background()
	h.provider.Emit(nil)
	require.NoError(t, h.c.ContinueAsGuest(ctx, domainauth.RoleUser))
	uid := h.c.Snapshot().UID

	require.NoError(t, h.c.SignOut(ctx))

	assert.Equal(t, domainauth.ResetSession(), h.c.Snapshot())
	doc, err := h.store.Get(ctx, uid)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.True(t, doc.Deleted)
	require.NotNil(t, doc.DeletedAt)
	assert.Equal(t, fixedNow, doc.DeletedAt.UTC())
	assert.Contains(t, h.emitter.Names(), EventSignedOut)
}

func TestSessionController_SignOutNonAnonymousKeepsDocument(t *testing.T) {
	h := newSessionHarness(t, false)
	ctx := context.Background()
	h.provider.Emit(googleUser("u1"))
	require.NoError(t, h.c.UpdateProfile(ctx, model.ProfilePatch{DisplayName: strPtr("Stays")}))

	require.NoError(t, h.c.SignOut(ctx))

	doc, err := h.store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, doc.Deleted)
	assert.Equal(t, domainauth.ResetSession(), h.c.Snapshot())
}

func TestSessionController_SignOutAlwaysResets(t *testing.T) {
	h := newSessionHarness(t, false)
	ctx := context.Background()
	h.provider.Emit(nil)
	require.NoError(t, h.c.ContinueAsGuest(ctx, domainauth.RoleOwner))
	h.store.mergeHook = func(context.Context, string, map[string]any) error { return errors.New("store offline") }
	h.provider.SignOutFunc = func(context.Context) error { return errors.New("network down") }

	err := h.c.SignOut(ctx)

	require.Error(t, err)
	assert.True(t, apperrors.IsRemoteWrite(err))
	assert.Equal(t, domainauth.ResetSession(), h.c.Snapshot())
}

func TestSessionController_LinkCredentialsKeepsUID(t *testing.T) {
	h := newSessionHarness(t, false)
	ctx := context.Background()
	h.provider.Emit(nil)
	require.NoError(t, h.c.ContinueAsGuest(ctx, domainauth.RoleUser))
	uid := h.c.Snapshot().UID

	require.NoError(t, h.c.LinkCredentials(ctx, model.LinkRequest{
		Email:       " Trekker@Example.com ",
		Password:    "namaste123",
		DisplayName: "Trekker",
	}))

	snap := h.c.Snapshot()
	assert.Equal(t, uid, snap.UID)
	assert.False(t, snap.Anonymous)
	assert.Equal(t, domainauth.RoleUser, snap.Role)
	assert.Equal(t, "trekker@example.com", snap.Profile.Email)
	assert.Equal(t, domainauth.LoginMethodEmail, snap.Profile.LoginMethod)
	assert.Contains(t, h.emitter.Names(), EventCredentialsLinked)
}

func TestSessionController_LinkCredentials_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("not authenticated", func(t *testing.T) {
		h := newSessionHarness(t, false)
		h.provider.Emit(nil)
		err := h.c.LinkCredentials(ctx, model.LinkRequest{Email: "a@b.co", Password: "secret1"})
		assert.True(t, apperrors.IsNotAuthenticated(err))
	})

	t.Run("already linked", func(t *testing.T) {
		h := newSessionHarness(t, false)
		h.provider.Emit(googleUser("u1"))
		err := h.c.LinkCredentials(ctx, model.LinkRequest{Email: "a@b.co", Password: "secret1"})
		assert.True(t, apperrors.IsInvalidArgument(err))
	})

	t.Run("invalid input", func(t *testing.T) {
		h := newSessionHarness(t, false)
		h.provider.Emit(nil)
		require.NoError(t, h.c.ContinueAsGuest(ctx, domainauth.RoleGuest))
		err := h.c.LinkCredentials(ctx, model.LinkRequest{Email: "a@b.co", Password: "123"})
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "Password", apperrors.GetField(err))
		assert.True(t, h.c.Snapshot().Anonymous)
	})

	t.Run("email in use", func(t *testing.T) {
		h := newSessionHarness(t, false)
		h.provider.Emit(nil)
		require.NoError(t, h.c.ContinueAsGuest(ctx, domainauth.RoleGuest))
		h.provider.LinkCredentialsFunc = func(context.Context, ports.Credentials) (domainauth.Identity, error) {
			return domainauth.Identity{}, apperrors.Conflict("email already in use")
		}
		err := h.c.LinkCredentials(ctx, model.LinkRequest{Email: "a@b.co", Password: "secret1"})
		assert.True(t, apperrors.IsConflict(err))
		assert.True(t, h.c.Snapshot().Anonymous)
	})
}

func TestSessionController_DiscardsStaleFetch(t *testing.T) {
	h := newSessionHarness(t, false)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	h.store.getHook = func(_ context.Context, uid string) error {
		if uid == "slow" {
			close(started)
			<-release
		}
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- h.c.OnIdentityChange(ctx, googleUser("slow")) }()
	<-started

	require.NoError(t, h.c.OnIdentityChange(ctx, googleUser("fast")))
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, "fast", h.c.Snapshot().UID)
}

func TestSessionController_DisposeDiscardsPendingFetch(t *testing.T) {
	h := newSessionHarness(t, false)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	h.store.getHook = func(context.Context, string) error {
		close(started)
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- h.c.OnIdentityChange(ctx, googleUser("u1")) }()
	<-started
	h.c.Dispose()
	close(release)
	require.NoError(t, <-done)

	snap := h.c.Snapshot()
	assert.True(t, snap.IsLoading)
	assert.Empty(t, snap.UID)
	assert.Equal(t, 0, h.provider.ListenerCount())
	assert.Equal(t, 0, h.provider.SignOutCalls())

	err := h.c.ContinueAsGuest(ctx, domainauth.RoleGuest)
	require.ErrorIs(t, err, errDisposed)
	require.ErrorIs(t, h.c.Init(ctx), errDisposed)
}

func TestSessionController_Subscribe(t *testing.T) {
	h := newSessionHarness(t, false)
	ctx := context.Background()

	var mu sync.Mutex
	var roles []domainauth.Role
	unsubscribe := h.c.Subscribe(func(s domainauth.Session) {
		mu.Lock()
		defer mu.Unlock()
		roles = append(roles, s.Role)
	})

	h.provider.Emit(nil)
	require.NoError(t, h.c.ContinueAsGuest(ctx, domainauth.RoleOwner))
	unsubscribe()
	require.NoError(t, h.c.SignOut(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, roles)
	assert.Equal(t, domainauth.RoleUnset, roles[0])
	assert.Equal(t, domainauth.RoleOwner, roles[len(roles)-1])
}

func TestSessionController_RoleChangeAnalytics(t *testing.T) {
	h := newSessionHarness(t, false)
	h.provider.Emit(nil)

	require.NoError(t, h.c.ContinueAsGuest(context.Background(), domainauth.RoleOwner))

	var found bool
	for _, ev := range h.emitter.Events() {
		if ev.Name == EventRoleChanged && ev.Attrs["to"] == string(domainauth.RoleOwner) {
			found = true
		}
	}
	assert.True(t, found, "expected a role_changed event to owner")
}

func TestBuildSession(t *testing.T) {
	updated := fixedNow.Add(-time.Hour)
	id := domainauth.Identity{UID: "o1", DisplayName: "Provider Name", Email: "o1@example.com", ProviderID: "password"}
	doc := &model.ProfileDocument{
		DisplayName:     "Doc Name",
		UserType:        domainauth.RoleOwner,
		Profession:      "resort-hotel",
		BusinessAddress: "Lakeside",
		LicenseNumber:   "NP-42",
		SavedPlaces:     []string{"Everest Base Camp"},
		UpdatedAt:       &updated,
		Version:         7,
	}

	s := buildSession(id, doc)

	assert.Equal(t, "Doc Name", s.Profile.DisplayName)
	assert.Equal(t, "o1@example.com", s.Profile.Email)
	assert.Equal(t, domainauth.LoginMethodEmail, s.Profile.LoginMethod)
	assert.Equal(t, []string{"Everest Base Camp"}, s.Profile.SavedPlaces)
	assert.Equal(t, &domainauth.OwnerProfile{Profession: "resort-hotel", BusinessAddress: "Lakeside", LicenseNumber: "NP-42"}, s.OwnerProfile)
	assert.Equal(t, "o1", s.OwnerID)
	assert.Equal(t, int64(7), s.ProfileVersion)
	assert.Equal(t, updated, s.UpdatedAt)

	doc.SavedPlaces[0] = "mutated"
	assert.Equal(t, "Everest Base Camp", s.Profile.SavedPlaces[0])
}

func TestHumanField(t *testing.T) {
	assert.Equal(t, "business address", humanField("BusinessAddress"))
	assert.Equal(t, "email", humanField("Email"))
	assert.Equal(t, "highlighted", humanField(""))
}
