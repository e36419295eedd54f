package server

import (
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/async"
	"github.com/joseph-ayodele/wedding-ledger/internal/blobstore"
	"github.com/joseph-ayodele/wedding-ledger/internal/common"
	"github.com/joseph-ayodele/wedding-ledger/internal/couples"
	"github.com/joseph-ayodele/wedding-ledger/internal/export"
	"github.com/joseph-ayodele/wedding-ledger/internal/importer"
	"github.com/joseph-ayodele/wedding-ledger/internal/ingest"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves the review UI's JSON API.
type Handler struct {
	svc      Services
	maxBytes int64
}

// NewRouter builds the gin engine with middleware and routes registered.
func NewRouter(svc Services, maxUploadBytes int64) *gin.Engine {
	if maxUploadBytes <= 0 {
		maxUploadBytes = ingest.DefaultMaxBytes
	}
	h := &Handler{svc: svc, maxBytes: maxUploadBytes}
	logger := svc.logger()

	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger), Recovery(logger))
	r.MaxMultipartMemory = maxUploadBytes

	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	api.POST("/extract", h.Extract)
	api.POST("/import", h.Import)

	api.GET("/queue", h.ListQueue)
	api.POST("/queue", h.SubmitQueue)
	api.PATCH("/queue/:id", h.SelectQueueItem)
	api.POST("/queue/import", h.ImportQueue)

	api.GET("/couples", h.ListCouples)
	api.GET("/couples/:id", h.GetCouple)
	api.PUT("/couples/:id/status", h.SetStatus)
	api.POST("/couples/:id/payments", h.RecordPayment)
	api.POST("/couples/:id/deliverables", h.AddDeliverable)
	api.POST("/couples/:id/staff", h.AssignStaff)
	api.GET("/couples/:id/documents/:filename", h.GetDocument)
	api.POST("/deliverables/:id/delivered", h.MarkDelivered)

	api.GET("/export.xlsx", h.ExportXLSX)
	return r
}

func (h *Handler) Health(c *gin.Context) {
	if h.svc.Health != nil {
		if err := h.svc.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Extract runs every uploaded file through the oracle and returns one review
// payload per file. A file that fails extraction still gets a payload.
func (h *Handler) Extract(c *gin.Context) {
	if h.svc.Extraction == nil {
		respondError(c, status.Error(codes.Unavailable, "extraction is not configured"))
		return
	}
	docs, err := h.readUploads(c)
	if err != nil {
		respondError(c, err)
		return
	}
	results := h.svc.extractAll(c.Request.Context(), docs)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type importRequest struct {
	Items []importer.BatchItem `json:"items"`
}

// Import commits a reviewed batch.
func (h *Handler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.InvalidArgumentErrorf("invalid request body: %v", err))
		return
	}
	if len(req.Items) == 0 {
		respondError(c, status.Error(codes.InvalidArgument, "items must not be empty"))
		return
	}
	for i := range req.Items {
		if req.Items[i].ID == "" {
			req.Items[i].ID = importer.NewItemID()
		}
	}
	res := h.svc.Importer.ImportBatch(c.Request.Context(), h.svc.Store, req.Items, nil)
	c.JSON(http.StatusOK, res)
}

type queueItemView struct {
	ID           importer.ItemID        `json:"id"`
	Filename     string                 `json:"filename"`
	DocumentType constants.DocumentType `json:"document_type"`
	Selected     bool                   `json:"selected"`
	State        string                 `json:"state"`
	Payload      any                    `json:"payload,omitempty"`
	CoupleID     *uuid.UUID             `json:"couple_id,omitempty"`
	Created      bool                   `json:"created,omitempty"`
	Partial      bool                   `json:"partial,omitempty"`
	Message      string                 `json:"message,omitempty"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

func viewOf(it importer.Item) queueItemView {
	v := queueItemView{
		ID:           it.ID,
		Filename:     it.Filename,
		DocumentType: it.DocumentType,
		Selected:     it.Selected,
		State:        it.State.Name(),
		UpdatedAt:    it.UpdatedAt,
	}
	switch st := it.State.(type) {
	case importer.Ready:
		v.Payload = st.Payload
	case importer.Done:
		v.CoupleID, v.Created = &st.CoupleID, st.Created
	case importer.Failed:
		v.Message, v.Partial = st.Message, st.Partial
		if st.Partial {
			v.CoupleID = &st.CoupleID
		}
	}
	return v
}

func (h *Handler) ListQueue(c *gin.Context) {
	if h.svc.Queue == nil {
		respondError(c, status.Error(codes.Unavailable, "import queue is not enabled"))
		return
	}
	items := h.svc.Queue.List()
	out := make([]queueItemView, 0, len(items))
	for _, it := range items {
		out = append(out, viewOf(it))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

// SubmitQueue adds uploads to the queue; extraction happens in the
// background and the UI polls ListQueue.
func (h *Handler) SubmitQueue(c *gin.Context) {
	if h.svc.Queue == nil || h.svc.Pool == nil {
		respondError(c, status.Error(codes.Unavailable, "import queue is not enabled"))
		return
	}
	docs, err := h.readUploads(c)
	if err != nil {
		respondError(c, err)
		return
	}
	ids := make([]importer.ItemID, 0, len(docs))
	for _, d := range docs {
		id, err := async.Submit(c.Request.Context(), h.svc.Pool, h.svc.Queue, d.Filename, d.DocumentType, d.Data)
		if err != nil {
			h.svc.logger().Warn("queue.submit.failed", "filename", d.Filename, "item_id", id, "error", err)
		}
		ids = append(ids, id)
	}
	c.JSON(http.StatusAccepted, gin.H{"ids": ids})
}

type selectRequest struct {
	Selected bool `json:"selected"`
}

func (h *Handler) SelectQueueItem(c *gin.Context) {
	if h.svc.Queue == nil {
		respondError(c, status.Error(codes.Unavailable, "import queue is not enabled"))
		return
	}
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.InvalidArgumentErrorf("invalid request body: %v", err))
		return
	}
	id := importer.ItemID(c.Param("id"))
	if err := h.svc.Queue.Select(id, req.Selected); err != nil {
		respondError(c, status.Error(codes.NotFound, err.Error()))
		return
	}
	it, _ := h.svc.Queue.Get(id)
	c.JSON(http.StatusOK, viewOf(it))
}

func (h *Handler) ImportQueue(c *gin.Context) {
	if h.svc.Queue == nil {
		respondError(c, status.Error(codes.Unavailable, "import queue is not enabled"))
		return
	}
	res := h.svc.Importer.ImportQueue(c.Request.Context(), h.svc.Store, h.svc.Queue)
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListCouples(c *gin.Context) {
	list, err := h.svc.Couples.ListCouples(c.Request.Context(), couples.ListCouplesRequest{
		Status:      c.Query("status"),
		WeddingDate: c.Query("wedding_date"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"couples": list})
}

func (h *Handler) GetCouple(c *gin.Context) {
	d, err := h.svc.Couples.GetCouple(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) SetStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.InvalidArgumentErrorf("invalid request body: %v", err))
		return
	}
	if err := h.svc.Couples.SetStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": req.Status})
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	PaidOn string          `json:"paid_on"`
	Method string          `json:"method"`
	Payer  string          `json:"payer"`
}

func (h *Handler) RecordPayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.InvalidArgumentErrorf("invalid request body: %v", err))
		return
	}
	couple, payment, err := h.svc.Couples.RecordPayment(c.Request.Context(), couples.RecordPaymentRequest{
		CoupleID: c.Param("id"),
		Amount:   req.Amount,
		PaidOn:   req.PaidOn,
		Method:   req.Method,
		Payer:    req.Payer,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"couple": couple, "payment": payment})
}

type deliverableRequest struct {
	Kind    string `json:"kind"`
	DueDate string `json:"due_date"`
}

func (h *Handler) AddDeliverable(c *gin.Context) {
	var req deliverableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.InvalidArgumentErrorf("invalid request body: %v", err))
		return
	}
	d, err := h.svc.Couples.AddDeliverable(c.Request.Context(), couples.AddDeliverableRequest{
		CoupleID: c.Param("id"),
		Kind:     req.Kind,
		DueDate:  req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *Handler) MarkDelivered(c *gin.Context) {
	if err := h.svc.Couples.MarkDelivered(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type staffRequest struct {
	StaffName string `json:"staff_name"`
	Role      string `json:"role"`
}

func (h *Handler) AssignStaff(c *gin.Context) {
	var req staffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, common.InvalidArgumentErrorf("invalid request body: %v", err))
		return
	}
	a, err := h.svc.Couples.AssignStaff(c.Request.Context(), couples.AssignStaffRequest{
		CoupleID:  c.Param("id"),
		StaffName: req.StaffName,
		Role:      req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// GetDocument streams back the original file stored for a couple.
func (h *Handler) GetDocument(c *gin.Context) {
	if h.svc.Blobs == nil {
		respondError(c, status.Error(codes.Unavailable, "document storage is not enabled"))
		return
	}
	coupleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, status.Error(codes.InvalidArgument, "couple id must be a UUID"))
		return
	}
	filename := c.Param("filename")
	data, err := h.svc.Blobs.Get(c.Request.Context(), blobstore.ObjectPath(coupleID, filename))
	if err != nil {
		respondError(c, common.ToStatus(err))
		return
	}
	c.Data(http.StatusOK, constants.ContentTypeFor(filepath.Ext(filename)), data)
}

func (h *Handler) ExportXLSX(c *gin.Context) {
	w := export.Window{From: c.Query("from"), To: c.Query("to")}
	validator := common.NewValidator()
	validator.Field("from", w.From, common.ISODate)
	validator.Field("to", w.To, common.ISODate)
	if err := common.ValidateAndReturnError(validator); err != nil {
		respondError(c, err)
		return
	}
	data, err := h.svc.Export.ExportCouplesXLSX(c.Request.Context(), w)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="couples.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// readUploads collects every file under the "file" or "files" form keys.
func (h *Handler) readUploads(c *gin.Context) ([]ingest.Document, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, common.InvalidArgumentErrorf("expected multipart form: %v", err)
	}
	docType, ok := constants.ParseDocumentType(c.PostForm("document_type"))
	if !ok {
		return nil, common.InvalidArgumentErrorf("document_type must be one of contract, extras-quote, lead-quote")
	}
	headers := slices.Concat(form.File["file"], form.File["files"])
	if len(headers) == 0 {
		return nil, status.Error(codes.InvalidArgument, "no files uploaded")
	}
	docs := make([]ingest.Document, 0, len(headers))
	for _, fh := range headers {
		data, err := h.readPart(fh)
		if err != nil {
			return nil, err
		}
		docs = append(docs, ingest.Document{Filename: fh.Filename, DocumentType: docType, Data: data})
	}
	return docs, nil
}

func (h *Handler) readPart(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > h.maxBytes {
		return nil, common.InvalidArgumentErrorf("%s exceeds %d bytes", fh.Filename, h.maxBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, common.InvalidArgumentErrorf("open %s: %v", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return nil, common.InternalErrorf("read %s: %v", fh.Filename, err)
	}
	if int64(len(data)) > h.maxBytes {
		return nil, common.InvalidArgumentErrorf("%s exceeds %d bytes", fh.Filename, h.maxBytes)
	}
	return data, nil
}

// respondError writes err as {"error": ...} with the HTTP status matching its
// gRPC code. Plain errors go through common.ToStatus first.
func respondError(c *gin.Context, err error) {
	st, ok := status.FromError(err)
	if !ok {
		st, _ = status.FromError(common.ToStatus(err))
	}
	code := httpStatus(st.Code())
	if code >= 500 {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(code, gin.H{"error": st.Message(), "code": st.Code().String(), "request_id": getRequestID(c)})
}

func httpStatus(code codes.Code) int {
	switch code {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Unimplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
