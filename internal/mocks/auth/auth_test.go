package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/hillstay/hillstay/internal/domain/auth"
	"github.com/hillstay/hillstay/internal/observability/notify"
	"github.com/hillstay/hillstay/internal/ports"
)

func TestFakeIdentityProvider_DeliversSynchronously(t *testing.T) {
	p := NewFakeIdentityProvider()
	var got []*domainauth.Identity
	unsub := p.Subscribe(func(id *domainauth.Identity) { got = append(got, id) })

	id, err := p.SignInAnonymously(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "anon-1", id.UID)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsAnonymous)

	require.NoError(t, p.SignOut(context.Background()))
	require.Len(t, got, 2)
	assert.Nil(t, got[1])
	assert.Equal(t, 1, p.SignOutCalls())

	unsub()
	assert.Equal(t, 0, p.ListenerCount())
	p.Emit(&domainauth.Identity{UID: "x"})
	assert.Len(t, got, 2)
}

func TestFakeIdentityProvider_Overrides(t *testing.T) {
	p := NewFakeIdentityProvider()
	boom := errors.New("boom")
	p.SignInAnonymouslyFunc = func(context.Context) (domainauth.Identity, error) { return domainauth.Identity{}, boom }
	p.SignOutFunc = func(context.Context) error { return boom }

	_, err := p.SignInAnonymously(context.Background())
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, p.SignOut(context.Background()), boom)
	assert.Equal(t, 1, p.SignOutCalls())
}

func TestFakeIdentityProvider_LinkKeepsUID(t *testing.T) {
	p := NewFakeIdentityProvider()
	_, err := p.LinkCredentials(context.Background(), ports.Credentials{Email: "a@example.com"})
	require.Error(t, err)

	anon, err := p.SignInAnonymously(context.Background())
	require.NoError(t, err)
	linked, err := p.LinkCredentials(context.Background(), ports.Credentials{Email: "a@example.com", DisplayName: "A"})
	require.NoError(t, err)
	assert.Equal(t, anon.UID, linked.UID)
	assert.False(t, linked.IsAnonymous)
	assert.Equal(t, "A", p.Current().DisplayName)
}

func TestRecorders(t *testing.T) {
	var em RecordingEmitter
	attrs := map[string]string{"role": "owner"}
	em.Emit("role_changed", attrs)
	attrs["role"] = "mutated"
	require.Len(t, em.Events(), 1)
	assert.Equal(t, "owner", em.Events()[0].Attrs["role"])
	assert.Equal(t, []string{"role_changed"}, em.Names())

	var n RecordingNotifier
	n.Notify(context.Background(), notify.Notice{Message: "x"})
	assert.Len(t, n.Notices(), 1)
}
