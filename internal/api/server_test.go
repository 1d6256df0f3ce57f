package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examforge/examforge/internal/activity"
	"github.com/examforge/examforge/internal/examgen"
	"github.com/examforge/examforge/internal/llm"
	"github.com/examforge/examforge/internal/store"
)

const threeMC = `{"questions":[
 {"id":"q1","type":"multipleChoice","question":"Past of 'ir'?","options":["fui","vou","irei","ia"],"correctAnswer":"fui"},
 {"id":"q2","type":"multipleChoice","question":"Past of 'ser'?","options":["sou","fui","serei","era"],"correctAnswer":"fui"},
 {"id":"q3","type":"multipleChoice","question":"Past of 'ter'?","options":["tive","tenho","terei","tinha"],"correctAnswer":"tive"}
]}`

const testSecret = "test-secret"

type fixture struct {
	srv  *httptest.Server
	mock *llm.MockProvider
	svc  *activity.Service
}

func newFixture(t *testing.T, opts Options, responses ...llm.MockResponse) *fixture {
	t.Helper()
	mock := llm.NewMockProvider(responses...)
	gen := examgen.NewGenerator(mock, examgen.DefaultConfig())
	gen.NewRand = func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	st, err := store.Open(store.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	svc := activity.NewService(st.ActivityRepo())

	s := NewServer(gen, svc, opts)
	s.Seed = func() int { return 3 }
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, mock: mock, svc: svc}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func exampleRequest() map[string]any {
	return map[string]any{
		"title":          "T",
		"language":       "portuguese",
		"difficulty":     "b1",
		"topics":         "verbs",
		"questionsCount": 3,
		"questionTypes": map[string]bool{
			"multipleChoice": true, "fillBlanks": false, "trueFalse": false, "openQuestions": false,
		},
		"generateMultipleVersions": true,
		"versionsCount":            2,
		"generateGabarito":         true,
	}
}

func signToken(t *testing.T, sub string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestGenerate_MultiVersionShape(t *testing.T) {
	f := newFixture(t, Options{}, llm.TextResponse(threeMC))

	resp, body := f.do(t, http.MethodPost, "/generate-activity", "", exampleRequest())
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	versions, ok := body["versions"].([]any)
	require.True(t, ok)
	require.Len(t, versions, 2)
	for i, raw := range versions {
		v := raw.(map[string]any)
		assert.Equal(t, examgen.Letter(i), v["versionId"])
		assert.Equal(t, "Version "+examgen.Letter(i), v["versionName"])
		qs := v["questions"].([]any)
		key := v["gabarito"].([]any)
		require.Len(t, qs, 3)
		require.Len(t, key, 3)
		for j, rq := range qs {
			q := rq.(map[string]any)
			opts := q["options"].([]any)
			letter := key[j].(map[string]any)["answer"].(string)
			assert.Equal(t, q["correctAnswer"], opts[letter[0]-'A'])
		}
	}
	assert.NotContains(t, body, "questions")
	assert.NotEmpty(t, body["generatedAt"])
	cfg := body["config"].(map[string]any)
	assert.Equal(t, float64(3), cfg["variabilitySeed"])
	assert.Equal(t, "T", cfg["title"])
	assert.Contains(t, f.mock.LastPrompt(), examgen.VariabilityPhrase(3))
}

func TestGenerate_SingleShapeWithSeed(t *testing.T) {
	f := newFixture(t, Options{}, llm.TextResponse(threeMC))

	req := exampleRequest()
	req["generateMultipleVersions"] = false
	req["variabilitySeed"] = 4
	req["turmaNome"] = "9B"
	req["materialTitulo"] = "Chapter 2"
	req["materialConteudo"] = "Preterite forms."

	resp, body := f.do(t, http.MethodPost, "/generate-activity", "", req)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.NotContains(t, body, "versions")
	qs := body["questions"].([]any)
	require.Len(t, qs, 3)
	assert.Equal(t, "q1", qs[0].(map[string]any)["id"])
	assert.Len(t, body["gabarito"], 3)

	prompt := f.mock.LastPrompt()
	assert.Contains(t, prompt, examgen.VariabilityPhrase(4))
	assert.Contains(t, prompt, "Class: 9B")
	assert.Contains(t, prompt, "Preterite forms.")
}

func TestGenerate_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
		detail string
	}{
		{"missing title", func(r map[string]any) { delete(r, "title") }, "title"},
		{"missing types", func(r map[string]any) { delete(r, "questionTypes") }, "questionTypes"},
		{"no type selected", func(r map[string]any) {
			r["questionTypes"] = map[string]bool{"multipleChoice": false}
		}, "questionTypes"},
		{"too many versions", func(r map[string]any) { r["versionsCount"] = 27 }, "versionsCount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{}, llm.TextResponse(threeMC))
			req := exampleRequest()
			tt.mutate(req)

			resp, body := f.do(t, http.MethodPost, "/generate-activity", "", req)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, body["details"], tt.detail)
			assert.Equal(t, 0, f.mock.CallCount())
		})
	}

	f := newFixture(t, Options{})
	resp, body := f.do(t, http.MethodPost, "/generate-activity", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid JSON body", body["error"])
}

func TestGenerate_UpstreamAndValidationFailuresAre500(t *testing.T) {
	for name, resp := range map[string]llm.MockResponse{
		"upstream":  llm.ErrorResponse(&llm.ErrUpstream{StatusCode: 503, Body: "overloaded"}),
		"empty":     llm.TextResponse(""),
		"malformed": llm.TextResponse("not json"),
		"types":     llm.TextResponse(`{"questions":[{"type":"openQuestions","question":"q"}]}`),
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, Options{}, resp)
			r, body := f.do(t, http.MethodPost, "/generate-activity", "", exampleRequest())
			assert.Equal(t, http.StatusInternalServerError, r.StatusCode)
			assert.NotEmpty(t, body["error"])
			assert.NotEmpty(t, body["details"])

			list, err := f.svc.List(context.Background(), activity.ListOptions{})
			require.NoError(t, err)
			assert.Empty(t, list, "failed generation persists nothing")
		})
	}
}

func TestGenerate_UpstreamDetailsCarryBody(t *testing.T) {
	f := newFixture(t, Options{}, llm.ErrorResponse(&llm.ErrUpstream{StatusCode: 503, Body: "overloaded"}))
	_, body := f.do(t, http.MethodPost, "/generate-activity", "", exampleRequest())
	assert.Contains(t, body["details"], "503")
	assert.Contains(t, body["details"], "overloaded")
}

func TestGenerate_MethodsAndCORS(t *testing.T) {
	f := newFixture(t, Options{})

	resp, body := f.do(t, http.MethodGet, "/generate-activity", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "method not allowed", body["error"])

	req, err := http.NewRequest(http.MethodOptions, f.srv.URL+"/generate-activity", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://teacher.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	pre, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	pre.Body.Close()
	assert.Less(t, pre.StatusCode, 300)
	assert.Equal(t, "*", pre.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, pre.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, Options{})
	resp, body := f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}
