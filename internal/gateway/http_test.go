package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rahul/rasoi/internal/governance"
	"github.com/rahul/rasoi/internal/pipeline"
	"github.com/rahul/rasoi/internal/store"
)

type stubRunner struct {
	err error
}

func (r stubRunner) Run(ctx context.Context, userInput string, budget float64) (*pipeline.State, error) {
	if r.err != nil {
		return nil, r.err
	}
	within := true
	total := 65.0
	return &pipeline.State{
		UserInput:    userInput,
		Budget:       budget,
		FinalMessage: "Buy milk and bread.",
		WithinBudget: &within,
		TotalCost:    &total,
	}, nil
}

type stubTranscriber struct {
	text string
	err  error
}

func (t stubTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	return t.text, t.err
}

func newTestGateway(t *testing.T, runner Runner) *HTTPGateway {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.NewStore(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	return NewHTTPGateway(":0", runner, st, stubTranscriber{text: "Cheese Sandwich for 1"}, governance.NewDefaultPolicyEngine())
}

func doRequest(gw *HTTPGateway, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	gw.server.Handler.ServeHTTP(w, req)
	return w
}

func TestRunEndpoint(t *testing.T) {
	gw := newTestGateway(t, stubRunner{})

	body := `{"user_input": "Cheese Sandwich for 1", "budget": 9999}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := doRequest(gw, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var state pipeline.State
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatal(err)
	}
	if state.FinalMessage == "" {
		t.Error("response missing final_message")
	}
}

func TestRunEndpointRejectsBadBody(t *testing.T) {
	gw := newTestGateway(t, stubRunner{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/run", strings.NewReader(`{"budget": 5}`))
	req.Header.Set("Content-Type", "application/json")

	if w := doRequest(gw, req); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRunEndpointPolicyDenial(t *testing.T) {
	gw := newTestGateway(t, stubRunner{})

	body := `{"user_input": "dinner", "budget": -3}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	if w := doRequest(gw, req); w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRunEndpointSurfacesRunFailure(t *testing.T) {
	gw := newTestGateway(t, stubRunner{err: errors.New("reasoning service unreachable")})

	body := `{"user_input": "dinner", "budget": 50}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := doRequest(gw, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "error") {
		t.Errorf("failure response carries no error: %s", w.Body.String())
	}
}

func TestProductCRUDEndpoints(t *testing.T) {
	gw := newTestGateway(t, stubRunner{})

	product := `{"name": "Milk", "price": 40, "category": "dairy", "manufacturer": "SimpleDairy", "composition": "Whole milk"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(product))
	req.Header.Set("Content-Type", "application/json")
	if w := doRequest(gw, req); w.Code != http.StatusOK {
		t.Fatalf("create: status = %d, body = %s", w.Code, w.Body.String())
	}

	w := doRequest(gw, httptest.NewRequest(http.MethodGet, "/api/v1/products/Milk", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("get: status = %d", w.Code)
	}
	var got store.Product
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Price != 40 {
		t.Errorf("got %+v", got)
	}

	if w := doRequest(gw, httptest.NewRequest(http.MethodGet, "/api/v1/products/Ghost", nil)); w.Code != http.StatusNotFound {
		t.Errorf("missing product: status = %d, want 404", w.Code)
	}

	if w := doRequest(gw, httptest.NewRequest(http.MethodDelete, "/api/v1/products/Milk", nil)); w.Code != http.StatusOK {
		t.Errorf("delete: status = %d", w.Code)
	}
}

func TestAudioUploadEndpoint(t *testing.T) {
	gw := newTestGateway(t, stubRunner{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio_file", "request.ogg")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("fake audio bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/audio/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := doRequest(gw, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["transcription"] != "Cheese Sandwich for 1" {
		t.Errorf("transcription = %v", resp["transcription"])
	}
	if resp["final_message"] == "" {
		t.Error("response missing final_message")
	}
}

func TestIndexPage(t *testing.T) {
	gw := newTestGateway(t, stubRunner{})

	w := doRequest(gw, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<form") {
		t.Error("index page missing the request form")
	}
}
