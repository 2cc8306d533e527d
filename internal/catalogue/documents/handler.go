package documents

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"DIMS-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/documents", auth.RequireOperation(auth.OpDocumentRead), h.ListDocuments)
	r.GET("/documents/:document_ulid", auth.RequireOperation(auth.OpDocumentRead), h.GetDocument)
	r.GET("/documents/:document_ulid/download", auth.RequireOperation(auth.OpDocumentRead), h.DownloadDocument)

	r.POST("/documents", auth.RequireOperation(auth.OpDocumentWrite), h.UploadDocument)
	r.PUT("/documents/:document_ulid", auth.RequireOperation(auth.OpDocumentWrite), h.UpdateDocument)
	r.DELETE("/documents/:document_ulid", auth.RequireOperation(auth.OpDocumentWrite), h.DeleteDocument)
}

// UploadDocument accepts multipart/form-data: title, description, file.
func (h *Handler) UploadDocument(c *gin.Context) {
	title := c.PostForm("title")
	description := c.PostForm("description")

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "file is required"))
		return
	}

	res, err := h.svc.Upload(c.Request.Context(), UploadInput{
		Title:       title,
		Description: description,
		UploadedBy:  auth.UserID(c),
		FileHeader:  fh,
		SaveFile:    func(dst string) error { return c.SaveUploadedFile(fh, dst) },
	})
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}

	c.Header("Location", "/documents/"+res.DocumentULID)
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetDocument(c *gin.Context) {
	res, err := h.svc.GetDocument(c.Request.Context(), c.Param("document_ulid"))
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListDocuments(c *gin.Context) {
	p := Page{
		Limit:  atoiDef(c.Query("limit"), 50),
		Offset: atoiDef(c.Query("offset"), 0),
		Order:  strings.ToLower(c.DefaultQuery("order", "desc")),
	}
	docs, total, err := h.svc.ListDocuments(c.Request.Context(), p)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": docs, "total": total})
}

// DownloadDocument streams the stored file as an attachment and bumps the
// download counter.
func (h *Handler) DownloadDocument(c *gin.Context) {
	m, err := h.svc.PrepareDownload(c.Request.Context(), c.Param("document_ulid"))
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}

	c.Header("Content-Type", m.ContentType)
	c.FileAttachment(m.FilePath, m.OriginalName)
}

func (h *Handler) UpdateDocument(c *gin.Context) {
	var req UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.UpdateDocument(c.Request.Context(), c.Param("document_ulid"), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	if err := h.svc.DeleteDocument(c.Request.Context(), c.Param("document_ulid")); err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// ===== helpers =====

func atoiDef(s string, d int) int {
	if s == "" {
		return d
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return n
}

type errDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func apiErr(code Code, msg string) errDTO {
	var e errDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func apiErrFrom(err error) errDTO {
	if api, ok := err.(*APIError); ok {
		return apiErr(api.Code, api.Message)
	}
	return apiErr(CodeInternal, err.Error())
}
