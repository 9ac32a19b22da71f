package authfeed

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/hillstay/hillstay/internal/domain/auth"
)

type recorder struct {
	mu  sync.Mutex
	got []*domainauth.Identity
}

func (r *recorder) listen(id *domainauth.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, id)
}

func (r *recorder) snapshot() []*domainauth.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domainauth.Identity(nil), r.got...)
}

func (r *recorder) waitFor(t *testing.T, n int) []*domainauth.Identity {
	t.Helper()
	require.Eventually(t, func() bool { return len(r.snapshot()) >= n }, 2*time.Second, 5*time.Millisecond)
	return r.snapshot()
}

func TestFeed_SubscribeDeliversCurrentFirst(t *testing.T) {
	f := New(nil)
	defer f.Close()

	var r recorder
	unsub := f.Subscribe(r.listen)
	defer unsub()

	got := r.waitFor(t, 1)
	assert.Nil(t, got[0])
}

func TestFeed_PublishPreservesOrder(t *testing.T) {
	f := New(nil)
	defer f.Close()

	var r recorder
	f.Subscribe(r.listen)

	for _, uid := range []string{"a", "b", "c"} {
		f.Publish(&domainauth.Identity{UID: uid})
	}
	f.Publish(nil)

	got := r.waitFor(t, 5)
	require.Len(t, got, 5)
	assert.Nil(t, got[0])
	assert.Equal(t, "a", got[1].UID)
	assert.Equal(t, "b", got[2].UID)
	assert.Equal(t, "c", got[3].UID)
	assert.Nil(t, got[4])
	assert.Nil(t, f.Current())
}

func TestFeed_UnsubscribeStopsDelivery(t *testing.T) {
	f := New(nil)
	defer f.Close()

	var r recorder
	unsub := f.Subscribe(r.listen)
	r.waitFor(t, 1)
	unsub()
	unsub()

	f.Publish(&domainauth.Identity{UID: "x"})
	f.Close()
	assert.Len(t, r.snapshot(), 1)
}

func TestFeed_ListenerMayPublish(t *testing.T) {
	f := New(nil)
	defer f.Close()

	var r recorder
	f.Subscribe(func(id *domainauth.Identity) {
		r.listen(id)
		if id != nil && id.UID == "forced" {
			f.Publish(nil)
		}
	})
	f.Publish(&domainauth.Identity{UID: "forced"})

	got := r.waitFor(t, 3)
	assert.Nil(t, got[2])
}

func TestFeed_PanickingListenerDoesNotStopFeed(t *testing.T) {
	f := New(nil)
	defer f.Close()

	f.Subscribe(func(*domainauth.Identity) { panic("boom") })
	var r recorder
	f.Subscribe(r.listen)
	f.Publish(&domainauth.Identity{UID: "u"})

	got := r.waitFor(t, 2)
	assert.Equal(t, "u", got[1].UID)
}

func TestFeed_CurrentIsCopy(t *testing.T) {
	f := New(nil)
	defer f.Close()

	id := &domainauth.Identity{UID: "u1"}
	f.Publish(id)
	id.UID = "mutated"
	require.NotNil(t, f.Current())
	assert.Equal(t, "u1", f.Current().UID)
}
