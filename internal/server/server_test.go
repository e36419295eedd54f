package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/couples"
	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
	"github.com/joseph-ayodele/wedding-ledger/internal/export"
	"github.com/joseph-ayodele/wedding-ledger/internal/extraction"
	"github.com/joseph-ayodele/wedding-ledger/internal/importer"
	"github.com/joseph-ayodele/wedding-ledger/internal/repository/repotest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeExtractor returns a contract payload per file and fails the files
// listed in fail.
type fakeExtractor struct {
	mu    sync.Mutex
	fail  map[string]extraction.FailureKind
	calls []string
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte, filename string, docType constants.DocumentType) (*extraction.Payload, error) {
	f.mu.Lock()
	f.calls = append(f.calls, filename)
	f.mu.Unlock()
	if kind, ok := f.fail[filename]; ok {
		return nil, &extraction.Failure{Kind: kind, Filename: filename}
	}
	return &extraction.Payload{
		DocumentType: docType,
		Filename:     filename,
		Confidence:   extraction.ConfidenceHigh,
		Contract: &extraction.ContractFields{
			Bride:       entity.Party{FirstName: "Amanda"},
			Groom:       entity.Party{FirstName: "Justin", LastName: "Kong"},
			WeddingDate: "2026-09-12",
			Total:       decimal.NewNullDecimal(decimal.NewFromInt(3955)),
		},
	}, nil
}

type fixture struct {
	store  *repotest.Store
	ex     *fakeExtractor
	queue  *importer.Queue
	svc    Services
	router *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repotest.New()
	ex := &fakeExtractor{fail: map[string]extraction.FailureKind{}}
	queue := importer.NewQueue()
	svc := Services{
		Extraction: ex,
		Importer:   importer.NewImporter(nil, nil),
		Store:      store,
		Couples:    couples.NewService(store, nil),
		Export:     export.NewService(store.Couples(), nil),
		Queue:      queue,
	}
	return &fixture{store: store, ex: ex, queue: queue, svc: svc, router: NewRouter(svc, 1<<20)}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func multipartBody(t *testing.T, docType string, files map[string]string, order []string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("document_type", docType))
	for _, name := range order {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestExtract_KeepsOrderAndRecoversFailures(t *testing.T) {
	f := newFixture(t)
	f.ex.fail["scan.pdf"] = extraction.UnsupportedDocument

	body, ct := multipartBody(t, "contract", map[string]string{
		"kong.txt": "contract text",
		"scan.pdf": "%PDF",
		"shah.md":  "# contract",
	}, []string{"kong.txt", "scan.pdf", "shah.md"})
	req := httptest.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Results []extractResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "kong.txt", resp.Results[0].Filename)
	assert.Equal(t, "scan.pdf", resp.Results[1].Filename)
	assert.Equal(t, "shah.md", resp.Results[2].Filename)

	assert.Empty(t, resp.Results[0].Error)
	assert.Equal(t, extraction.ConfidenceHigh, resp.Results[0].Payload.Confidence)

	failed := resp.Results[1]
	assert.Equal(t, extraction.UnsupportedDocument, failed.FailureKind)
	require.NotNil(t, failed.Payload)
	assert.Equal(t, extraction.ConfidenceLow, failed.Payload.Confidence)
	assert.Equal(t, constants.DocContract, failed.Payload.DocumentType)
	assert.Len(t, f.ex.calls, 3)
}

func TestExtract_RejectsBadForm(t *testing.T) {
	f := newFixture(t)

	body, ct := multipartBody(t, "invoice", map[string]string{"a.txt": "x"}, []string{"a.txt"})
	req := httptest.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, ct = multipartBody(t, "contract", nil, nil)
	req = httptest.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", ct)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no files uploaded")
}

func TestImport_CommitsReviewedBatch(t *testing.T) {
	f := newFixture(t)
	p, err := f.ex.Extract(context.Background(), nil, "kong.pdf", constants.DocContract)
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/api/import", map[string]any{
		"items": []map[string]any{
			{"filename": "kong.pdf", "payload": p, "selected": true},
			{"filename": "dup.pdf", "payload": p, "selected": false},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res importer.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.PerItem, 2)
	assert.NotEmpty(t, res.PerItem[0].ID)
	assert.True(t, res.PerItem[0].Created)

	all := f.store.AllCouples()
	require.Len(t, all, 1)
	assert.Equal(t, "Amanda & Justin Kong", all[0].CoupleName)
}

func TestImport_EmptyBatchIsRejected(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/import", map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "InvalidArgument")
}

func TestCoupleRoutes(t *testing.T) {
	f := newFixture(t)
	c := entity.Couple{
		ID:            uuid.New(),
		CoupleName:    "Amanda & Justin Kong",
		WeddingDate:   "2026-09-12",
		ContractTotal: decimal.NewNullDecimal(decimal.NewFromInt(3955)),
		BalanceOwing:  decimal.NewNullDecimal(decimal.NewFromInt(3955)),
		Status:        constants.StatusBooked,
	}
	f.store.Seed(c, entity.Couple{CoupleName: "Priya & Sam", Status: constants.StatusProspect})

	w := f.do(t, http.MethodGet, "/api/couples?status=booked", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Couples []entity.Couple `json:"couples"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Couples, 1)
	assert.Equal(t, c.ID, list.Couples[0].ID)

	w = f.do(t, http.MethodPost, "/api/couples/"+c.ID.String()+"/payments", map[string]any{"amount": "500", "paid_on": "2025-11-02"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/couples/"+c.ID.String()+"/staff", map[string]any{"staff_name": "Jo", "role": "Second Shooter"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/couples/"+c.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail couples.Detail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.True(t, detail.Couple.BalanceOwing.Decimal.Equal(decimal.NewFromInt(3455)))
	assert.Len(t, detail.Payments, 1)
	require.Len(t, detail.Staff, 1)
	assert.Equal(t, "second shooter", detail.Staff[0].Role)

	w = f.do(t, http.MethodPut, "/api/couples/"+c.ID.String()+"/status", map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/couples/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/couples/"+uuid.NewString(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/couples/"+c.ID.String()+"/payments", map[string]any{"amount": "-5"}).Code)
}

func TestQueueRoutes(t *testing.T) {
	f := newFixture(t)
	p, err := f.ex.Extract(context.Background(), nil, "kong.pdf", constants.DocContract)
	require.NoError(t, err)

	ready := f.queue.Add("kong.pdf", constants.DocContract, []byte("x"))
	require.NoError(t, f.queue.Set(ready, importer.Ready{Payload: p}))
	skipped := f.queue.Add("other.pdf", constants.DocContract, []byte("y"))
	require.NoError(t, f.queue.Set(skipped, importer.Ready{Payload: p}))

	w := f.do(t, http.MethodPatch, "/api/queue/"+string(skipped), map[string]any{"selected": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPatch, "/api/queue/nope", map[string]any{"selected": true}).Code)

	w = f.do(t, http.MethodPost, "/api/queue/import", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res importer.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Skipped)

	w = f.do(t, http.MethodGet, "/api/queue", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Items []queueItemView `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Items, 2)
	assert.Equal(t, "done", list.Items[0].State)
	require.NotNil(t, list.Items[0].CoupleID)
	assert.Equal(t, "ready", list.Items[1].State)
	assert.False(t, list.Items[1].Selected)

	// no pool configured
	body, ct := multipartBody(t, "contract", map[string]string{"a.txt": "x"}, []string{"a.txt"})
	req := httptest.NewRequest(http.MethodPost, "/api/queue", body)
	req.Header.Set("Content-Type", ct)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestExportXLSX(t *testing.T) {
	f := newFixture(t)
	f.store.Seed(entity.Couple{CoupleName: "Amanda & Justin Kong", Status: constants.StatusBooked, WeddingDate: "2026-09-12"})

	w := f.do(t, http.MethodGet, "/api/export.xlsx?from=2026-01-01&to=2026-12-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/export.xlsx?from=01/02/2026", nil).Code)
}

func TestMiddleware(t *testing.T) {
	f := newFixture(t)
	f.router.GET("/boom", func(*gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), "req-42")

	w = f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHealth_Unhealthy(t *testing.T) {
	f := newFixture(t)
	f.svc.Health = func(context.Context) error { return assert.AnError }
	router := NewRouter(f.svc, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
