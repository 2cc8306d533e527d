package requests

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"DIMS-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// Lecturer
	r.POST("/requests", auth.RequireOperation(auth.OpRequestCreate), h.Create)
	r.GET("/requests/my", auth.RequireOperation(auth.OpRequestListMine), h.ListMine)
	r.GET("/requests/:request_ulid", auth.RequireOperation(auth.OpRequestRead), h.Get)

	// Admin
	r.GET("/requests", auth.RequireOperation(auth.OpRequestListAll), h.ListAll)
	r.PUT("/requests/:request_ulid/status", auth.RequireOperation(auth.OpRequestDecide), h.Decide)

	// Storekeeper
	r.PUT("/requests/:request_ulid/issue", auth.RequireOperation(auth.OpRequestIssue), h.Issue)
	r.PUT("/requests/:request_ulid/return", auth.RequireOperation(auth.OpRequestReturn), h.Return)
	r.GET("/requests/queues/:queue", auth.RequireOperation(auth.OpRequestQueues), h.ListQueue)
}

// ---------- handlers ----------

func (h *Handler) Create(c *gin.Context) {
	var in CreateRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	res, err := h.svc.Create(c.Request.Context(), auth.UserID(c), in)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}

	c.Header("Location", "/requests/"+res.RequestULID)
	c.JSON(http.StatusCreated, res)
}

// Get returns one request. Lecturers only see their own.
func (h *Handler) Get(c *gin.Context) {
	res, err := h.svc.Get(c.Request.Context(), c.Param("request_ulid"))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	if auth.Role(c) == auth.RoleLecturer && res.RequesterID != auth.UserID(c) {
		c.JSON(http.StatusNotFound, errorBody(CodeNotFound, "request not found"))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Decide(c *gin.Context) {
	var in DecideRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json"))
		return
	}

	res, err := h.svc.Decide(c.Request.Context(), c.Param("request_ulid"), in)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Issue(c *gin.Context) {
	res, err := h.svc.Issue(c.Request.Context(), c.Param("request_ulid"))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Return(c *gin.Context) {
	res, err := h.svc.Return(c.Request.Context(), c.Param("request_ulid"))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListMine(c *gin.Context) {
	res, total, err := h.svc.ListMine(c.Request.Context(), auth.UserID(c), pageFromQuery(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": res, "total": total})
}

func (h *Handler) ListAll(c *gin.Context) {
	res, total, err := h.svc.ListAll(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": res, "total": total})
}

func (h *Handler) ListQueue(c *gin.Context) {
	res, total, err := h.svc.ListQueue(c.Request.Context(), c.Param("queue"), pageFromQuery(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": res, "total": total})
}

// ---------- helpers ----------

func pageFromQuery(c *gin.Context) Page {
	return Page{
		Limit:  parseIntDefault(c.Query("limit"), 50),
		Offset: parseIntDefault(c.Query("offset"), 0),
		Order:  c.DefaultQuery("order", "desc"),
	}
}

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func errorFromErr(err error) errorDTO {
	var msg string
	var code Code = CodeInternal
	if de, ok := err.(*DomainError); ok {
		code, msg = de.Code, de.Message
	} else {
		msg = err.Error()
	}
	return errorBody(code, msg)
}
