package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/prism/internal/engine"
	"github.com/your-org/prism/internal/engine/enginetest"
	"github.com/your-org/prism/internal/models"
)

type fakeStore struct {
	statuses   map[uuid.UUID]models.PhotoStatus
	embeddings []models.FaceEmbedding

	statusErr error
	embedErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{statuses: make(map[uuid.UUID]models.PhotoStatus)}
}

func (s *fakeStore) UpdatePhotoStatus(ctx context.Context, id uuid.UUID, status models.PhotoStatus) error {
	if s.statusErr != nil {
		return s.statusErr
	}
	s.statuses[id] = status
	return nil
}

func (s *fakeStore) AddFaceEmbedding(ctx context.Context, fe *models.FaceEmbedding) error {
	if s.embedErr != nil {
		return s.embedErr
	}
	s.embeddings = append(s.embeddings, *fe)
	return nil
}

type fakeObjects struct {
	data map[string][]byte
	err  error
}

func (o *fakeObjects) GetObject(ctx context.Context, key string) ([]byte, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.data[key], nil
}

type fakeEvents struct {
	published []models.ProcessedEvent
}

func (e *fakeEvents) PublishProcessedEvent(ctx context.Context, ev models.ProcessedEvent) error {
	e.published = append(e.published, ev)
	return nil
}

func task() models.IngestTask {
	return models.IngestTask{
		PhotoID:   uuid.MustParse("cccccccc-0000-0000-0000-000000000001"),
		AlbumID:   uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		ObjectKey: "photos/a/b.jpg",
	}
}

func TestProcess_StoresEmbeddingsAndCompletes(t *testing.T) {
	store := newFakeStore()
	objects := &fakeObjects{data: map[string][]byte{"photos/a/b.jpg": []byte("jpeg")}}
	extractor := &enginetest.FakeExtractor{Faces: []engine.Face{
		{Embedding: []float32{1, 2}, BBox: []int32{0, 0, 10, 10}, DetScore: 0.9},
		{Embedding: []float32{3, 4}, BBox: []int32{20, 20, 30, 30}, DetScore: 0.8},
	}}
	events := &fakeEvents{}

	p := NewProcessor(store, objects, extractor, events)
	tk := task()

	require.NoError(t, p.Process(context.Background(), tk))

	assert.Equal(t, models.PhotoStatusCompleted, store.statuses[tk.PhotoID])
	require.Len(t, store.embeddings, 2)
	assert.Equal(t, tk.PhotoID, store.embeddings[0].PhotoID)

	require.Len(t, events.published, 1)
	assert.Equal(t, models.PhotoStatusCompleted, events.published[0].Status)
	assert.Equal(t, 2, events.published[0].FaceCount)
}

func TestProcess_NoFacesStillCompletes(t *testing.T) {
	store := newFakeStore()
	objects := &fakeObjects{data: map[string][]byte{"photos/a/b.jpg": []byte("jpeg")}}
	events := &fakeEvents{}

	p := NewProcessor(store, objects, &enginetest.FakeExtractor{}, events)
	tk := task()

	require.NoError(t, p.Process(context.Background(), tk))

	assert.Equal(t, models.PhotoStatusCompleted, store.statuses[tk.PhotoID])
	assert.Empty(t, store.embeddings)
	require.Len(t, events.published, 1)
	assert.Equal(t, 0, events.published[0].FaceCount)
}

func TestProcess_ExtractorFailureMarksFailed(t *testing.T) {
	store := newFakeStore()
	objects := &fakeObjects{data: map[string][]byte{"photos/a/b.jpg": []byte("jpeg")}}
	extractor := &enginetest.FakeExtractor{Err: engine.ErrExtractorUnavailable}
	events := &fakeEvents{}

	p := NewProcessor(store, objects, extractor, events)
	tk := task()

	err := p.Process(context.Background(), tk)
	require.Error(t, err)

	assert.Equal(t, models.PhotoStatusFailed, store.statuses[tk.PhotoID])
	require.Len(t, events.published, 1)
	assert.Equal(t, models.PhotoStatusFailed, events.published[0].Status)
	assert.NotEmpty(t, events.published[0].Error)
}

func TestProcess_ObjectFetchFailureMarksFailed(t *testing.T) {
	store := newFakeStore()
	objects := &fakeObjects{err: errors.New("object missing")}
	events := &fakeEvents{}

	p := NewProcessor(store, objects, &enginetest.FakeExtractor{}, events)
	tk := task()

	err := p.Process(context.Background(), tk)
	require.Error(t, err)
	assert.Equal(t, models.PhotoStatusFailed, store.statuses[tk.PhotoID])
}
