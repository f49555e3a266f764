package export

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"ursa/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	posts    []domain.Record
	users    []domain.Record
	postsErr error
	usersErr error
	calls    []string
}

func (s *stubSource) Posts(context.Context) ([]domain.Record, error) {
	s.calls = append(s.calls, "posts")
	return s.posts, s.postsErr
}

func (s *stubSource) Users(context.Context) ([]domain.Record, error) {
	s.calls = append(s.calls, "users")
	return s.users, s.usersErr
}

type recordingWriter struct {
	records     []domain.Record
	destination string
	calls       int
	err         error
}

func (w *recordingWriter) Write(_ context.Context, records []domain.Record, destination string) error {
	w.calls++
	w.records = records
	w.destination = destination

	return w.err
}

type recordingStore struct {
	records []domain.Record
	err     error
}

func (s *recordingStore) SaveMergedRecords(_ context.Context, records []domain.Record) (int, error) {
	s.records = records
	return len(records), s.err
}

func mustRecords(t *testing.T, raw string) []domain.Record {
	t.Helper()

	records, err := domain.ParseRecords([]byte(raw))
	require.NoError(t, err)

	return records
}

func TestExporterRunMergesAndWrites(t *testing.T) {
	source := &stubSource{
		posts: mustRecords(t, `[{"id":1,"userId":10,"title":"a"},{"id":2,"userId":99,"title":"b"}]`),
		users: mustRecords(t, `[{"id":10,"name":"Bob"}]`),
	}
	writer := &recordingWriter{}
	store := &recordingStore{}

	err := New(source, writer, store, "out.json", slog.Default()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"posts", "users"}, source.calls)
	assert.Equal(t, "out.json", writer.destination)
	require.Len(t, writer.records, 1)
	assert.Equal(t, []string{"postId", "userId", "title", "name"}, writer.records[0].Keys())
	assert.Equal(t, writer.records, store.records)
}

func TestExporterRunHTTPFailureWritesNothing(t *testing.T) {
	fetchErr := errors.New("GET /users/: unexpected status: 404 Not Found")
	source := &stubSource{
		posts:    mustRecords(t, `[{"id":1,"userId":10}]`),
		usersErr: fetchErr,
	}
	writer := &recordingWriter{}
	store := &recordingStore{}

	err := New(source, writer, store, "", slog.Default()).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fetchErr)
	assert.Contains(t, err.Error(), "fetch users")

	assert.Zero(t, writer.calls)
	assert.Nil(t, store.records)
}

func TestExporterRunPostsFailureSkipsUsers(t *testing.T) {
	source := &stubSource{postsErr: errors.New("boom")}
	writer := &recordingWriter{}

	err := New(source, writer, nil, "", slog.Default()).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"posts"}, source.calls)
	assert.Zero(t, writer.calls)
}

func TestExporterRunWriteFailureSkipsStore(t *testing.T) {
	source := &stubSource{
		posts: mustRecords(t, `[{"id":1,"userId":10}]`),
		users: mustRecords(t, `[{"id":10}]`),
	}
	writeErr := errors.New("disk full")
	writer := &recordingWriter{err: writeErr}
	store := &recordingStore{}

	err := New(source, writer, store, "out.json", slog.Default()).Run(context.Background())
	require.ErrorIs(t, err, writeErr)
	assert.Nil(t, store.records)
}

func TestExporterRunWithoutStore(t *testing.T) {
	source := &stubSource{
		posts: mustRecords(t, `[]`),
		users: mustRecords(t, `[]`),
	}
	writer := &recordingWriter{}

	require.NoError(t, New(source, writer, nil, "", slog.Default()).Run(context.Background()))
	assert.Equal(t, 1, writer.calls)
	assert.Empty(t, writer.records)
}
