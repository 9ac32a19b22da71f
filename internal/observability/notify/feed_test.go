package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_NotifyFillsDefaults(t *testing.T) {
	fixed := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	feed := NewFeed(FeedOptions{Capacity: 3, Clock: func() time.Time { return fixed }})

	feed.Notify(context.Background(), Notice{Message: "could not save profile"})

	got := feed.List(0)
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, LevelError, got[0].Level)
	assert.Equal(t, fixed, got[0].Time)
}

func TestFeed_EvictsOldest(t *testing.T) {
	feed := NewFeed(FeedOptions{Capacity: 3})
	ctx := context.Background()
	for i := range 5 {
		feed.Notify(ctx, Notice{Message: fmt.Sprintf("n%d", i)})
	}

	got := feed.List(0)
	require.Len(t, got, 3)
	assert.Equal(t, "n2", got[0].Message)
	assert.Equal(t, "n4", got[2].Message)

	latest := feed.List(2)
	require.Len(t, latest, 2)
	assert.Equal(t, "n3", latest[0].Message)
}

func TestFeed_Clear(t *testing.T) {
	feed := NewFeed(FeedOptions{Capacity: 2})
	feed.Notify(context.Background(), Notice{Message: "x"})
	feed.Clear()
	assert.Empty(t, feed.List(0))
}

func TestSinkFunc_Nil(t *testing.T) {
	var f SinkFunc
	assert.NotPanics(t, func() { f.Notify(context.Background(), Notice{}) })
}

func TestSinkFunc_Forwards(t *testing.T) {
	var got Notice
	var sink Sink = SinkFunc(func(_ context.Context, n Notice) { got = n })
	sink.Notify(context.Background(), Notice{Code: "remote_write_failure"})
	assert.Equal(t, "remote_write_failure", got.Code)
}
