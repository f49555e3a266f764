package commands

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"ursa/internal/config"
	"ursa/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPosts = `[
		{"userId":1,"id":1,"title":"sunt aut facere","body":"quia et suscipit"},
		{"userId":2,"id":2,"title":"qui est esse","body":"est rerum tempore"},
		{"userId":9,"id":3,"title":"orphan","body":"no author"}
	]`
	testUsers = `[
		{"id":1,"name":"Leanne Graham","username":"Bret","email":"Sincere@april.biz"},
		{"id":2,"name":"Ervin Howell","username":"Antonette","email":"Shanna@melissa.tv"}
	]`
)

type testApp struct {
	*App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestApp(t *testing.T, baseURL string) testApp {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cfg := config.Config{
		BaseURL:     baseURL,
		HTTPTimeout: 5 * time.Second,
		LogLevel:    "info",
		LogFormat:   "text",
	}
	log := slog.New(slog.NewTextHandler(&stderr, nil))

	return testApp{
		App:    New(cfg, "test", log, &stdout, &stderr, false),
		stdout: &stdout,
		stderr: &stderr,
	}
}

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/posts/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/posts/":
			_, _ = w.Write([]byte(testPosts))
		case "/posts/1":
			_, _ = w.Write([]byte(`{"userId":1,"id":1,"title":"sunt aut facere"}`))
		case "/posts/1/comments":
			_, _ = w.Write([]byte(`[{"postId":1,"id":1,"body":"laudantium"}]`))
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/users/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testUsers))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestHandleMergeWritesFile(t *testing.T) {
	srv := newAPIServer(t)
	app := newTestApp(t, srv.URL)
	path := filepath.Join(t.TempDir(), "merged.json")

	require.NoError(t, app.HandleMerge(context.Background(), []string{"--file", path}))
	assert.Empty(t, app.stdout.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	records, err := domain.ParseRecords(data)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t,
		[]string{"userId", "postId", "title", "body", "name", "username", "email"},
		records[0].Keys())

	name, _ := records[1].Get("name")
	assert.Equal(t, "Ervin Howell", name.String())
}

func TestHandleMergePrintsToConsole(t *testing.T) {
	srv := newAPIServer(t)
	app := newTestApp(t, srv.URL)

	require.NoError(t, app.HandleMerge(context.Background(), []string{"-t"}))

	records, err := domain.ParseRecords(app.stdout.Bytes())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestHandleMergeTerminalOutput(t *testing.T) {
	srv := newAPIServer(t)

	tests := [][]string{
		{},
		{"-t"},
		{"--no-truncation"},
		{"--truncate"},
		{"--truncate", "--no-truncation"},
	}

	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			cfg := config.Config{BaseURL: srv.URL, HTTPTimeout: 5 * time.Second}
			app := New(cfg, "test", slog.New(slog.NewTextHandler(&stderr, nil)), &stdout, &stderr, true)

			require.NoError(t, app.HandleMerge(context.Background(), args))
			assert.NotContains(t, stdout.String(), "more records")

			records, err := domain.ParseRecords(stdout.Bytes())
			require.NoError(t, err)
			assert.Len(t, records, 2)
		})
	}
}

func TestHandleMergeYAML(t *testing.T) {
	srv := newAPIServer(t)
	app := newTestApp(t, srv.URL)

	require.NoError(t, app.HandleMerge(context.Background(), []string{"--format", "yaml"}))
	assert.Contains(t, app.stdout.String(), "- userId: 1\n  postId: 1\n")
}

func TestHandleMergeHTTPFailureWritesNothing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	app := newTestApp(t, srv.URL)
	path := filepath.Join(t.TempDir(), "merged.json")

	err := app.HandleMerge(context.Background(), []string{"--file", path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no output file may be created")
	assert.Empty(t, app.stdout.String())
}

func TestHandleMergeWithSQLite(t *testing.T) {
	srv := newAPIServer(t)
	app := newTestApp(t, srv.URL)
	dir := t.TempDir()

	err := app.HandleMerge(context.Background(), []string{
		"--file", filepath.Join(dir, "merged.json"),
		"--sqlite", filepath.Join(dir, "ursa.sqlite"),
	})
	require.NoError(t, err)
	assert.Contains(t, app.stderr.String(), "Saved merged records")
}

func TestHandleMergeUsageErrors(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:0")

	tests := [][]string{
		{"extra"},
		{"--format", "xml"},
		{"--every", "not a cron spec"},
		{"--unknown"},
	}

	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			err := app.HandleMerge(context.Background(), args)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUsage)
		})
	}
}

func TestHandleMergeHelp(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:0")

	require.NoError(t, app.HandleMerge(context.Background(), []string{"-h"}))
	assert.Contains(t, app.stderr.String(), "Usage: ursa merge")
}

func TestHandleMergeScheduledStopsOnCancel(t *testing.T) {
	srv := newAPIServer(t)
	app := newTestApp(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := app.HandleMerge(ctx, []string{"--every", "@hourly", "--file", filepath.Join(t.TempDir(), "m.json")})
	require.NoError(t, err)
	assert.Contains(t, app.stderr.String(), "Scheduler is started")
}

func TestHandlePostsAll(t *testing.T) {
	srv := newAPIServer(t)
	app := newTestApp(t, srv.URL)

	require.NoError(t, app.HandlePosts(context.Background(), nil))

	records, err := domain.ParseRecords(app.stdout.Bytes())
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestHandlePostsSingleWithComments(t *testing.T) {
	srv := newAPIServer(t)
	app := newTestApp(t, srv.URL)

	require.NoError(t, app.HandlePosts(context.Background(), []string{"-p", "1", "-w"}))

	record, err := domain.ParseRecord(app.stdout.Bytes())
	require.NoError(t, err)

	comments, ok := record.Get("comments")
	require.True(t, ok)
	assert.Equal(t, "laudantium", comments.Get("0.body").String())
}

func TestHandlePostsMissingPost(t *testing.T) {
	srv := newAPIServer(t)
	app := newTestApp(t, srv.URL)

	err := app.HandlePosts(context.Background(), []string{"--post-id", "404"})
	require.Error(t, err)
	assert.Empty(t, app.stdout.String())
}

func TestHandlePostsRejectsNegativeID(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:0")

	err := app.HandlePosts(context.Background(), []string{"--post-id", "-3"})
	assert.ErrorIs(t, err, ErrUsage)
}

func TestHandleLinerConsole(t *testing.T) {
	input := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(input, []byte("alpha\nbeta"), 0o600))

	app := newTestApp(t, "http://127.0.0.1:0")
	require.NoError(t, app.HandleLiner(context.Background(), []string{input}))

	assert.Equal(t, "     1: alpha\n     2: beta\n", app.stdout.String())
}

func TestHandleLinerJSONToFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.txt")
	outPath := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(input, []byte("alpha\n"), 0o600))

	app := newTestApp(t, "http://127.0.0.1:0")
	require.NoError(t, app.HandleLiner(context.Background(), []string{"-j", "-o", outPath, input}))
	assert.Empty(t, app.stdout.String())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"number":1,"text":"alpha"}]`, string(data))
}

func TestHandleLinerFallsBackToConsole(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(input, []byte("alpha\n"), 0o600))

	app := newTestApp(t, "http://127.0.0.1:0")
	badOut := filepath.Join(dir, "missing", "out.txt")

	require.NoError(t, app.HandleLiner(context.Background(), []string{"--output-file", badOut, input}))
	assert.Equal(t, "     1: alpha\n", app.stdout.String())
	assert.Contains(t, app.stderr.String(), "Failed to write data")
}

func TestHandleLinerMissingInput(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:0")

	err := app.HandleLiner(context.Background(), []string{filepath.Join(t.TempDir(), "nope.txt")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUsage)

	err = app.HandleLiner(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUsage)
}

func TestHandleVerifyJSON(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.json")
	invalid := filepath.Join(dir, "invalid.json")
	missing := filepath.Join(dir, "missing.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"ok":true}`), 0o600))
	require.NoError(t, os.WriteFile(invalid, []byte(`{"ok":}`), 0o600))

	tests := []struct {
		path string
		want string
	}{
		{valid, "The file '" + valid + "' contains valid JSON.\n"},
		{missing, "Could not find the file '" + missing + "'\n"},
		{invalid, "Invalid JSON: "},
	}

	for _, test := range tests {
		t.Run(filepath.Base(test.path), func(t *testing.T) {
			app := newTestApp(t, "http://127.0.0.1:0")
			require.NoError(t, app.HandleVerifyJSON(context.Background(), []string{test.path}))
			assert.True(t, strings.HasPrefix(app.stdout.String(), test.want), app.stdout.String())
		})
	}
}
