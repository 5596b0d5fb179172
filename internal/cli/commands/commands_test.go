package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/velocity/internal/cli/ui"
	"github.com/crimson-sun/velocity/internal/engine/testdata"
)

// run executes the command tree in an empty directory and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runWithStatus(t, args...)
	return out, err
}

// runWithStatus is run that also returns the status lines.
func runWithStatus(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range []string{"CONFIG_PATH", "VELOCITY_KEYS", "VELOCITY_OUTPUT", "VELOCITY_FORMAT", "VELOCITY_SOURCE", "VELOCITY_AS_OF", "VELOCITY_DEDUP"} {
		unsetenv(t, key)
	}
	var status bytes.Buffer
	ui.SetOutput(&status)
	t.Cleanup(func() { ui.SetOutput(os.Stderr) })

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), status.String(), err
}

// unsetenv removes key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	prev, ok := os.LookupEnv(key)
	os.Unsetenv(key)
	t.Cleanup(func() {
		if ok {
			os.Setenv(key, prev)
		}
	})
}

func corpusFile(t *testing.T) string {
	t.Helper()
	entries, err := testdata.LoadActions()
	require.NoError(t, err)
	data, err := json.Marshal(testdata.Raws(entries))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "actions.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestCount_FileToStdout(t *testing.T) {
	input := corpusFile(t)
	out, err := run(t, "count",
		"--source", "file", "--input", input,
		"--output", "stdout",
		"--finished", strings.Join(testdata.FinishedLists, "|"),
		"--reject", strings.Join(testdata.ExcludedLists, "|"),
	)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"date\tcreate\tremove\tfinish",
		"2024-01-01\t2\t0\t0",
		"2024-01-02\t4\t0\t0",
		"2024-01-03\t4\t2\t0",
		"2024-01-04\t4\t2\t1",
		"2024-01-05\t4\t2\t2",
		"",
	}, "\n"), out)
}

func TestCount_AsOfExtendsTable(t *testing.T) {
	input := corpusFile(t)
	out, err := run(t, "count",
		"--source", "file", "--input", input,
		"--output", "stdout", "--format", "csv",
		"--finished", "Done", "--reject", "Reference",
		"--as-of", "2024-01-07",
	)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 8, "header plus 2024-01-01 through 2024-01-07")
	assert.Equal(t, "2024-01-07,4,2,2", lines[7])
}

func TestCount_FileOutput(t *testing.T) {
	input := corpusFile(t)
	dest := filepath.Join(t.TempDir(), "counts.csv")
	t.Setenv("VELOCITY_OUTPUT_PATH", dest)

	out, err := run(t, "count",
		"--source", "file", "--input", input,
		"--output", "file", "--format", "csv",
		"--finished", "Done", "--reject", "Reference",
	)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "date,create,remove,finish\n2024-01-01,2,0,0\n"))
}

func TestCount_InvalidConfig(t *testing.T) {
	_, err := run(t, "count", "--source", "file")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input")
}

func TestCount_MalformedInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"x","type":"createCard","date":"yesterday","data":{"card":{"id":"c"}}}]`), 0o644))

	out, err := run(t, "count", "--source", "file", "--input", path, "--output", "stdout")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
	assert.Equal(t, "date\tcreate\tremove\tfinish\n", out, "no rows after a failed run")
}

func TestCount_Dedup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repeated.json")
	doc := `{"id":"a1","type":"createCard","date":"2024-01-01T09:00:00.000Z","data":{"card":{"id":"c1","name":"A"}}}`
	require.NoError(t, os.WriteFile(path, []byte(doc+"\n"+doc+"\n"), 0o644))

	out, status, err := runWithStatus(t, "count", "--source", "file", "--input", path, "--output", "stdout")
	require.NoError(t, err)
	assert.Equal(t, "date\tcreate\tremove\tfinish\n2024-01-01\t2\t0\t0\n", out, "repeated ids count by default")
	assert.NotContains(t, status, "duplicate")

	out, status, err = runWithStatus(t, "count", "--source", "file", "--input", path, "--output", "stdout", "--dedup")
	require.NoError(t, err)
	assert.Equal(t, "date\tcreate\tremove\tfinish\n2024-01-01\t1\t0\t0\n", out)
	assert.Contains(t, status, "dropped 1 duplicate actions")
}

func TestCount_SourceHelpListsProviders(t *testing.T) {
	cmd := newCountCmd(&state{})
	usage := cmd.Flags().Lookup("source").Usage
	for _, name := range []string{"file", "kafka", "trello"} {
		assert.Contains(t, usage, name)
	}
}

func TestRules(t *testing.T) {
	t.Setenv("finished", "Done|Shipped")
	t.Setenv("reject", "Reference")
	out, err := run(t, "rules")
	require.NoError(t, err)

	assert.Contains(t, out, "lists other than Reference")
	assert.Contains(t, out, "copyCard -> create")
	assert.Contains(t, out, "updateCard:closed action-in-lists[Done Shipped] -> finish")
	assert.Contains(t, out, "filter=copyCard,createCard,moveCardToBoard,convertToCardFromCheckItem,deleteCard,moveCardFromBoard,updateCard:closed,updateCard:idList")
}

func trelloServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/1/members/me/boards", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "k" || r.URL.Query().Get("token") != "t" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "b1", "name": "Roadmap"},
			{"id": "b2", "name": "Old plans", "closed": true},
		})
	})
	mux.HandleFunc("/1/boards/b1/lists", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "l1", "name": "Backlog"},
			{"id": "l2", "name": "Done"},
			{"id": "l3", "name": "Reference"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestBoards(t *testing.T) {
	srv := trelloServer(t)
	t.Setenv("VELOCITY_TRELLO_ENDPOINT", srv.URL)
	t.Setenv("TRELLO_API_KEY", "k")
	t.Setenv("OAUTH_TOKEN", "t")

	out, err := run(t, "boards")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Roadmap", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Old plans"))
}

func TestBoards_MissingCredentials(t *testing.T) {
	t.Setenv("TRELLO_API_KEY", "")
	t.Setenv("OAUTH_TOKEN", "")
	_, err := run(t, "boards")
	assert.Error(t, err)
}

func TestLists(t *testing.T) {
	srv := trelloServer(t)
	t.Setenv("VELOCITY_TRELLO_ENDPOINT", srv.URL)
	t.Setenv("TRELLO_API_KEY", "k")
	t.Setenv("OAUTH_TOKEN", "t")
	t.Setenv("finished", "Done")
	t.Setenv("reject", "Reference")

	out, err := run(t, "lists", "--board", "Road")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Backlog", lines[0])
	assert.Contains(t, lines[1], "Done")
	assert.Contains(t, lines[1], "(finished)")
	assert.Contains(t, lines[2], "(rejected)")
}
