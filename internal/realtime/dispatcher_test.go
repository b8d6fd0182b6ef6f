package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/markpoint/backend/internal/domain"
	"github.com/markpoint/backend/internal/geo"
)

func testMark(lat, lon float64) *domain.Mark {
	now := time.Now()
	return &domain.Mark{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Name:      "pop-up market",
		Latitude:  lat,
		Longitude: lon,
		Geohash:   geo.Encode(lat, lon, 5),
		StartAt:   now,
		Duration:  24,
		EndAt:     now.Add(24 * time.Hour),
	}
}

func registerWithViewport(t *testing.T, hub *Hub, lat, lon, radius float64) *Client {
	t.Helper()
	c := NewClient(ChannelMarks, uuid.New(), nil)
	hub.Register(c)

	f, err := domain.NewMarkFilter(lat, lon, radius, time.Now(), 24, false, 5)
	require.NoError(t, err)
	hub.UpdateFilter(c.ID, f)
	return c
}

func recvFrame(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(time.Second):
		t.Fatalf("no frame received for session %s", c.ID)
		return nil
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.Send:
		t.Fatalf("unexpected frame for session %s: %s", c.ID, msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcherDeliversToMatchingViewports(t *testing.T) {
	hub := NewHub(zap.NewNop())
	d := NewDispatcher(hub, "", zap.NewNop())

	// Two viewers near the mark, one in another city.
	near1 := registerWithViewport(t, hub, 55.75, 37.61, 1000)
	near2 := registerWithViewport(t, hub, 55.7502, 37.6102, 1000)
	far := registerWithViewport(t, hub, 48.85, 2.35, 1000)

	d.PublishMarkEvent(domain.MarkEvent{
		Action: domain.MarkActionCreated,
		Mark:   testMark(55.7505, 37.6105),
	})

	var env Envelope
	require.NoError(t, json.Unmarshal(recvFrame(t, near1), &env))
	assert.Equal(t, "marks_created", env.Event)

	recvFrame(t, near2)
	assertNoFrame(t, far)
}

func TestDispatcherSkipsSessionsWithoutViewport(t *testing.T) {
	hub := NewHub(zap.NewNop())
	d := NewDispatcher(hub, "", zap.NewNop())

	// Registered but never declared an area.
	silent := NewClient(ChannelMarks, uuid.New(), nil)
	hub.Register(silent)

	d.PublishMarkEvent(domain.MarkEvent{
		Action: domain.MarkActionCreated,
		Mark:   testMark(55.75, 37.61),
	})

	assertNoFrame(t, silent)
}

func TestDispatcherActionsMapToEvents(t *testing.T) {
	hub := NewHub(zap.NewNop())
	d := NewDispatcher(hub, "", zap.NewNop())
	viewer := registerWithViewport(t, hub, 55.75, 37.61, 1000)

	for _, action := range []domain.MarkAction{domain.MarkActionCreated, domain.MarkActionUpdated, domain.MarkActionDeleted} {
		d.PublishMarkEvent(domain.MarkEvent{Action: action, Mark: testMark(55.75, 37.61)})

		var env Envelope
		require.NoError(t, json.Unmarshal(recvFrame(t, viewer), &env))
		assert.Equal(t, "marks_"+string(action), env.Event)
	}
}

func TestDispatcherRadiusBoundary(t *testing.T) {
	hub := NewHub(zap.NewNop())
	d := NewDispatcher(hub, "", zap.NewNop())

	// Tight viewport around the mark's cell: inside 200 m gets the push, a
	// mark in the same cell but beyond the radius does not.
	viewer := registerWithViewport(t, hub, 55.75, 37.61, 200)

	d.PublishMarkEvent(domain.MarkEvent{
		Action: domain.MarkActionCreated,
		Mark:   testMark(55.7505, 37.6105),
	})
	recvFrame(t, viewer)

	beyond := testMark(55.76, 37.61)
	if geo.Encode(55.76, 37.61, 5) == geo.Encode(55.75, 37.61, 5) {
		d.PublishMarkEvent(domain.MarkEvent{Action: domain.MarkActionCreated, Mark: beyond})
		assertNoFrame(t, viewer)
	}
}

func TestDispatcherNilMark(t *testing.T) {
	hub := NewHub(zap.NewNop())
	d := NewDispatcher(hub, "", zap.NewNop())
	viewer := registerWithViewport(t, hub, 55.75, 37.61, 1000)

	d.PublishMarkEvent(domain.MarkEvent{Action: domain.MarkActionDeleted, Mark: nil})

	assertNoFrame(t, viewer)
}

func TestDispatcherResolvesPhotoURLs(t *testing.T) {
	hub := NewHub(zap.NewNop())
	d := NewDispatcher(hub, "https://api.example.com", zap.NewNop())
	viewer := registerWithViewport(t, hub, 55.75, 37.61, 1000)

	mark := testMark(55.75, 37.61)
	mark.Photos = []string{"uploads/a.jpg", "https://cdn.example.com/b.jpg"}

	d.PublishMarkEvent(domain.MarkEvent{Action: domain.MarkActionCreated, Mark: mark})

	var env struct {
		Event string      `json:"event"`
		Data  domain.Mark `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recvFrame(t, viewer), &env))

	assert.Equal(t, []string{
		"https://api.example.com/uploads/a.jpg",
		"https://cdn.example.com/b.jpg",
	}, env.Data.Photos)

	// The stored mark keeps raw references.
	assert.Equal(t, "uploads/a.jpg", mark.Photos[0])
}

func TestDispatcherEventBaseURLOverridesDefault(t *testing.T) {
	hub := NewHub(zap.NewNop())
	d := NewDispatcher(hub, "https://default.example.com", zap.NewNop())
	viewer := registerWithViewport(t, hub, 55.75, 37.61, 1000)

	mark := testMark(55.75, 37.61)
	mark.Photos = []string{"uploads/a.jpg"}

	d.PublishMarkEvent(domain.MarkEvent{
		Action:  domain.MarkActionCreated,
		Mark:    mark,
		BaseURL: "https://request.example.com",
	})

	var env struct {
		Event string      `json:"event"`
		Data  domain.Mark `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recvFrame(t, viewer), &env))
	assert.Equal(t, "https://request.example.com/uploads/a.jpg", env.Data.Photos[0])
}
