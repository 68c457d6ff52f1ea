package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echonote/echonote/internal/model"
	"github.com/echonote/echonote/internal/pipeline"
	"github.com/echonote/echonote/internal/services"
	"github.com/echonote/echonote/internal/store/sqlite"
	"github.com/echonote/echonote/internal/transcribe"
)

type fakeTranscriber struct {
	calls int
	text  string
	err   error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeStructurer struct {
	calls int
	obj   map[string]any
	err   error
}

func (f *fakeStructurer) Structure(ctx context.Context, transcript string) (map[string]any, error) {
	f.calls++
	return f.obj, f.err
}

type testEnv struct {
	server *httptest.Server
	tr     *fakeTranscriber
	st     *fakeStructurer
	cards  *sqlite.Store
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	cards, err := sqlite.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cards.Close() })

	tr := &fakeTranscriber{text: "Finish the report and call Alex"}
	st := &fakeStructurer{obj: map[string]any{
		"title":        "Report and Call",
		"category":     []any{"Work"},
		"action_items": []any{"Finish the report", "Call Alex"},
		"mood":         "focused",
	}}

	svc := services.NewMemoryService(cards, services.DefaultListLimits)
	pipe := pipeline.New(tr, st, cards, 0, zerolog.Nop())
	server := httptest.NewServer(NewRouter(svc, pipe, nil, cards))
	t.Cleanup(server.Close)

	return &testEnv{server: server, tr: tr, st: st, cards: cards}
}

func postAudio(t *testing.T, env *testEnv, size int) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", "recording.webm")
	require.NoError(t, err)
	_, err = fw.Write(make([]byte, size))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(env.server.URL+"/memory", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func decodeCard(t *testing.T, r io.Reader) model.MemoryCard {
	t.Helper()
	var card model.MemoryCard
	require.NoError(t, json.NewDecoder(r).Decode(&card))
	return card
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestCaptureEndToEnd(t *testing.T) {
	env := setupEnv(t)

	resp := postAudio(t, env, 5000)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeCard(t, resp.Body)
	assert.Equal(t, "Report and Call", created.Title)
	assert.Equal(t, "Finish the report and call Alex", created.Transcript)
	assert.Equal(t, []string{"Work"}, created.Category)
	assert.Equal(t, []string{"Finish the report", "Call Alex"}, created.ActionItems)
	assert.Equal(t, []int{}, created.CompletedActionItems)
	assert.Equal(t, "focused", created.Mood)

	// GET by id returns the identical record
	getResp, err := http.Get(env.server.URL + "/memory/" + created.ID)
	require.NoError(t, err)
	defer func() { _ = getResp.Body.Close() }()
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	assert.Equal(t, created, decodeCard(t, getResp.Body))

	// toggle the first action item complete
	patchResp := doJSON(t, http.MethodPatch, env.server.URL+"/memory/"+created.ID,
		`{"action":"toggle_complete","actionIndex":0}`)
	defer func() { _ = patchResp.Body.Close() }()
	require.Equal(t, http.StatusOK, patchResp.StatusCode)
	toggled := decodeCard(t, patchResp.Body)
	assert.Equal(t, []int{0}, toggled.CompletedActionItems)
}

func TestCreateMemoryEmptyAudio(t *testing.T) {
	env := setupEnv(t)
	// below the pipeline's minimum byte threshold
	resp := postAudio(t, env, 100)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, env.tr.calls)
}

func TestCreateMemoryEmptyTranscript(t *testing.T) {
	env := setupEnv(t)
	env.tr.err = transcribe.ErrEmptyTranscript

	// the user can fix a silent recording, so this is a 400, not a 500
	resp := postAudio(t, env, 5000)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, env.st.calls)

	var envlp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envlp))
	assert.Equal(t, "Empty transcription. Try again.", envlp.Error)
}

func TestCreateMemoryMissingField(t *testing.T) {
	env := setupEnv(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(env.server.URL+"/memory", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateMemoryUpstreamFailure(t *testing.T) {
	env := setupEnv(t)
	env.tr.err = fmt.Errorf("whisper is down")

	resp := postAudio(t, env, 5000)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var envlp struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envlp))
	assert.Equal(t, "Server error", envlp.Error)
	assert.Contains(t, envlp.Detail, "whisper is down")
}

func TestListMemoriesClampsLimit(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := env.cards.Create(ctx, "t", model.CandidateCard{Title: "n", Mood: "m"})
		require.NoError(t, err)
	}

	resp, err := http.Get(env.server.URL + "/memory?limit=0")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Items []model.MemoryCard `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	// limit=0 takes the default, not zero rows
	assert.Len(t, body.Items, 3)
}

func TestGetMemoryNotFound(t *testing.T) {
	env := setupEnv(t)
	resp, err := http.Get(env.server.URL + "/memory/does-not-exist")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var envlp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envlp))
	assert.Equal(t, "Memory not found", envlp.Error)
}

func TestPatchActionItemMutations(t *testing.T) {
	env := setupEnv(t)

	resp := postAudio(t, env, 5000)
	created := decodeCard(t, resp.Body)
	_ = resp.Body.Close()
	url := env.server.URL + "/memory/" + created.ID

	// complete both items, then delete the first: index 1 shifts to 0
	for _, body := range []string{
		`{"action":"toggle_complete","actionIndex":0}`,
		`{"action":"toggle_complete","actionIndex":1}`,
	} {
		r := doJSON(t, http.MethodPatch, url, body)
		require.Equal(t, http.StatusOK, r.StatusCode)
		_ = r.Body.Close()
	}

	r := doJSON(t, http.MethodPatch, url, `{"action":"delete_action_item","actionIndex":0}`)
	require.Equal(t, http.StatusOK, r.StatusCode)
	card := decodeCard(t, r.Body)
	_ = r.Body.Close()
	assert.Equal(t, []string{"Call Alex"}, card.ActionItems)
	assert.Equal(t, []int{0}, card.CompletedActionItems)

	// out-of-range index is a 400, not silent corruption
	r = doJSON(t, http.MethodPatch, url, `{"action":"toggle_complete","actionIndex":9}`)
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
	_ = r.Body.Close()

	r = doJSON(t, http.MethodPatch, url, `{"action":"update_action_item","actionIndex":0,"text":"Call Alex today"}`)
	require.Equal(t, http.StatusOK, r.StatusCode)
	card = decodeCard(t, r.Body)
	_ = r.Body.Close()
	assert.Equal(t, []string{"Call Alex today"}, card.ActionItems)
	assert.Equal(t, []int{0}, card.CompletedActionItems)
}

func TestPatchFreeFormUpdate(t *testing.T) {
	env := setupEnv(t)
	resp := postAudio(t, env, 5000)
	created := decodeCard(t, resp.Body)
	_ = resp.Body.Close()

	r := doJSON(t, http.MethodPatch, env.server.URL+"/memory/"+created.ID,
		`{"title":"Renamed","category":["Work","Chore"]}`)
	require.Equal(t, http.StatusOK, r.StatusCode)
	card := decodeCard(t, r.Body)
	_ = r.Body.Close()
	assert.Equal(t, "Renamed", card.Title)
	assert.Equal(t, []string{"Work", "Chore"}, card.Category)
	assert.Equal(t, created.Transcript, card.Transcript)

	// unknown action and empty body are both rejected
	r = doJSON(t, http.MethodPatch, env.server.URL+"/memory/"+created.ID, `{"action":"archive"}`)
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
	_ = r.Body.Close()
	r = doJSON(t, http.MethodPatch, env.server.URL+"/memory/"+created.ID, `{}`)
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
	_ = r.Body.Close()
}

func TestDeleteMemory(t *testing.T) {
	env := setupEnv(t)
	resp := postAudio(t, env, 5000)
	created := decodeCard(t, resp.Body)
	_ = resp.Body.Close()
	url := env.server.URL + "/memory/" + created.ID

	r := doJSON(t, http.MethodDelete, url, "")
	require.Equal(t, http.StatusOK, r.StatusCode)
	var body struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	_ = r.Body.Close()
	assert.True(t, body.Success)

	r = doJSON(t, http.MethodDelete, url, "")
	assert.Equal(t, http.StatusNotFound, r.StatusCode)
	_ = r.Body.Close()
}

func TestHealthDB(t *testing.T) {
	env := setupEnv(t)
	resp, err := http.Get(env.server.URL + "/health/db")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
