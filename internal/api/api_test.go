package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetbrief/meetbrief/internal/api/recovery"
	"github.com/meetbrief/meetbrief/internal/auth"
	"github.com/meetbrief/meetbrief/internal/model"
	"github.com/meetbrief/meetbrief/internal/services"
	"github.com/meetbrief/meetbrief/internal/store/sqlite"
)

type fakeGenerator struct {
	out string
	err error
}

func (f *fakeGenerator) Generate(ctx context.Context, originalText, instruction string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]bool
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[to] {
		return fmt.Errorf("connection refused")
	}
	f.sent = append(f.sent, to)
	return nil
}

func newTestServer(t *testing.T, gen services.Generator, mail *fakeMailer) *httptest.Server {
	t.Helper()

	st, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	authorizer := auth.NewMockAuthorizer()
	summarySvc := services.NewSummaryService(st, gen)
	shareSvc := services.NewShareService(mail, time.Second, zerolog.Nop())

	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	summary := NewSummaryHandler(summarySvc, authorizer)
	root.HandleFunc("/api/summaries", summary.CreateSummary).Methods("POST")
	root.HandleFunc("/api/summaries", summary.ListSummaries).Methods("GET")
	root.HandleFunc("/api/summaries/{summaryId}", summary.GetSummary).Methods("GET")
	root.HandleFunc("/api/summaries/{summaryId}", summary.UpdateSummary).Methods("PUT")
	root.HandleFunc("/api/summaries/{summaryId}", summary.DeleteSummary).Methods("DELETE")

	share := NewShareHandler(summarySvc, shareSvc, authorizer)
	root.HandleFunc("/api/summaries/{summaryId}/share", share.ShareSummary).Methods("POST")
	root.HandleFunc("/api/mail/test", share.SendTestMail).Methods("POST")

	healthHandler := NewHealthHandler()
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	srv := httptest.NewServer(root)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, payload interface{}, authorized bool) (*http.Response, map[string]interface{}) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+auth.LocalDevAPIKey)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	_ = resp.Body.Close()
	return resp, decoded
}

func TestSummaryLifecycle(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{out: "Generated overview of the meeting."}, &fakeMailer{})

	// create
	resp, created := doJSON(t, "POST", srv.URL+"/api/summaries", map[string]interface{}{
		"originalText": "Long meeting transcript about the Q3 roadmap.",
		"instruction":  "Summarize in three bullet points",
	}, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := created["summaryId"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, model.DefaultTitle, created["title"])
	assert.Equal(t, "Generated overview of the meeting.", created["generatedSummary"])
	assert.Equal(t, "Generated overview of the meeting.", created["editedSummary"])

	// list
	resp, listed := doJSON(t, "GET", srv.URL+"/api/summaries", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, listed["count"])

	// edit
	resp, edited := doJSON(t, "PUT", srv.URL+"/api/summaries/"+id, map[string]interface{}{
		"editedSummary": "Refined overview.",
		"title":         "Q3 Roadmap Sync",
		"tags":          []string{"roadmap", "q3"},
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Refined overview.", edited["editedSummary"])
	assert.Equal(t, "Generated overview of the meeting.", edited["generatedSummary"])
	assert.Equal(t, "Q3 Roadmap Sync", edited["title"])

	// get reflects the edit
	resp, got := doJSON(t, "GET", srv.URL+"/api/summaries/"+id, nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Refined overview.", got["editedSummary"])

	// delete, then get reports not found
	resp, _ = doJSON(t, "DELETE", srv.URL+"/api/summaries/"+id, nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, "GET", srv.URL+"/api/summaries/"+id, nil, true)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateValidatesInput(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{out: "ignored"}, &fakeMailer{})

	resp, _ := doJSON(t, "POST", srv.URL+"/api/summaries", map[string]interface{}{
		"originalText": "   ",
		"instruction":  "summarize",
	}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, "POST", srv.URL+"/api/summaries", map[string]interface{}{
		"originalText": "some text",
		"instruction":  "",
	}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerationFailureReturns500(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{err: fmt.Errorf("%w: provider unavailable", model.ErrProvider)}, &fakeMailer{})

	resp, _ := doJSON(t, "POST", srv.URL+"/api/summaries", map[string]interface{}{
		"originalText": "some text",
		"instruction":  "summarize",
	}, true)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// nothing was persisted
	resp, listed := doJSON(t, "GET", srv.URL+"/api/summaries", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, listed["count"])
}

func TestRequestsRequireAPIKey(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{out: "x"}, &fakeMailer{})

	resp, _ := doJSON(t, "GET", srv.URL+"/api/summaries", nil, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, "POST", srv.URL+"/api/summaries", map[string]interface{}{
		"originalText": "text", "instruction": "summarize",
	}, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestShareReportsPerRecipientOutcomes(t *testing.T) {
	mail := &fakeMailer{failFor: map[string]bool{"bad@example.com": true}}
	srv := newTestServer(t, &fakeGenerator{out: "Body"}, mail)

	resp, created := doJSON(t, "POST", srv.URL+"/api/summaries", map[string]interface{}{
		"originalText": "text", "instruction": "summarize",
	}, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := created["summaryId"].(string)

	resp, shared := doJSON(t, "POST", srv.URL+"/api/summaries/"+id+"/share", map[string]interface{}{
		"recipients": []string{"good@example.com", "bad@example.com"},
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, shared["recipientsCount"])

	report := shared["report"].(map[string]interface{})
	assert.EqualValues(t, 1, report["deliveredCount"])
	assert.EqualValues(t, 1, report["failedCount"])

	// invalid recipient list is rejected before any dispatch
	resp, _ = doJSON(t, "POST", srv.URL+"/api/summaries/"+id+"/share", map[string]interface{}{
		"recipients": []string{},
	}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// sharing an unknown summary is a 404
	resp, _ = doJSON(t, "POST", srv.URL+"/api/summaries/does-not-exist/share", map[string]interface{}{
		"recipients": []string{"good@example.com"},
	}, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestShareAllFailed(t *testing.T) {
	mail := &fakeMailer{failFor: map[string]bool{"a@example.com": true, "b@example.com": true}}
	srv := newTestServer(t, &fakeGenerator{out: "Body"}, mail)

	_, created := doJSON(t, "POST", srv.URL+"/api/summaries", map[string]interface{}{
		"originalText": "text", "instruction": "summarize",
	}, true)
	id := created["summaryId"].(string)

	resp, body := doJSON(t, "POST", srv.URL+"/api/summaries/"+id+"/share", map[string]interface{}{
		"recipients": []string{"a@example.com", "b@example.com"},
	}, true)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	report := body["report"].(map[string]interface{})
	assert.EqualValues(t, 0, report["deliveredCount"])
	assert.EqualValues(t, 2, report["failedCount"])
}

func TestMailTest(t *testing.T) {
	mail := &fakeMailer{}
	srv := newTestServer(t, &fakeGenerator{out: "x"}, mail)

	resp, body := doJSON(t, "POST", srv.URL+"/api/mail/test", map[string]interface{}{}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["message"], "demo@example.com")
	assert.Equal(t, []string{"demo@example.com"}, mail.sent)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{out: "x"}, &fakeMailer{})

	resp, body := doJSON(t, "GET", srv.URL+"/api/health", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, []interface{}{"healthy", "unhealthy"}, body["status"])
}
