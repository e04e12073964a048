package detect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technosupport/ts-sentinel/internal/broadcast"
	"github.com/technosupport/ts-sentinel/internal/crowd"
	"github.com/technosupport/ts-sentinel/internal/data"
)

type recordingStore struct {
	created []*data.Event
	err     error
}

func (r *recordingStore) Create(_ context.Context, e *data.Event) (*data.Event, error) {
	if r.err != nil {
		return nil, r.err
	}
	e.ID = "stored-" + e.CameraID
	r.created = append(r.created, e)
	return e, nil
}

type fixedProducer struct {
	event  *data.Event
	sample *data.CrowdSample
}

func (f *fixedProducer) ProduceEvent(context.Context) (*data.Event, error) {
	e := *f.event
	return &e, nil
}
func (f *fixedProducer) ProduceSample(context.Context) (*data.CrowdSample, error) {
	s := *f.sample
	return &s, nil
}

func testGenerator(store EventWriter) (*Generator, *broadcast.Hub, *crowd.Buffer) {
	hub := broadcast.NewHub(8, nil)
	buf := crowd.NewBuffer(10)
	bcast := broadcast.NewBroadcaster(hub, nil, nil, nil)
	prod := &fixedProducer{
		event:  &data.Event{Action: data.ActionIntrusion, CameraID: "CAM001", Severity: data.SeverityCritical, Status: data.StatusActive},
		sample: &data.CrowdSample{Count: 12, Density: data.DensityMedium, CameraID: "CAM002"},
	}
	return NewGenerator(prod, store, buf, nil, bcast, nil), hub, buf
}

func TestGenerateEventStoresThenBroadcasts(t *testing.T) {
	st := &recordingStore{}
	g, hub, _ := testGenerator(st)
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	g.GenerateEvent(context.Background())

	require.Len(t, st.created, 1)
	select {
	case msg := <-sub.C():
		assert.Equal(t, broadcast.KindNewEvent, msg.Type)
		e := msg.Data.(*data.Event)
		assert.Equal(t, "stored-CAM001", e.ID)
	case <-time.After(time.Second):
		t.Fatal("event was not broadcast")
	}
}

// Broadcast must happen even when the store path errors out entirely.
func TestGenerateEventBroadcastsOnStoreFailure(t *testing.T) {
	st := &recordingStore{err: errors.New("backend exploded")}
	g, hub, _ := testGenerator(st)
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	g.GenerateEvent(context.Background())

	select {
	case msg := <-sub.C():
		assert.Equal(t, broadcast.KindNewEvent, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("broadcast skipped on store failure")
	}
}

func TestSampleCrowdBuffersAndBroadcasts(t *testing.T) {
	g, hub, buf := testGenerator(&recordingStore{})
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	g.SampleCrowd(context.Background())

	assert.Equal(t, 1, buf.Len())
	latest, ok := buf.Latest()
	require.True(t, ok)
	assert.Equal(t, 12, latest.Count)

	select {
	case msg := <-sub.C():
		assert.Equal(t, broadcast.KindCrowdUpdate, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("sample was not broadcast")
	}
}
