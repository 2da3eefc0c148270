package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/student-roster/internal/middleware"
	"github.com/noah-isme/student-roster/internal/models"
	"github.com/noah-isme/student-roster/internal/service"
	"github.com/noah-isme/student-roster/internal/viewmodel"
	appErrors "github.com/noah-isme/student-roster/pkg/errors"
	"github.com/noah-isme/student-roster/pkg/response"
)

type studentService interface {
	LoadAll(ctx context.Context) ([]models.Student, error)
	Get(ctx context.Context, id string) (*models.Student, error)
	Form(ctx context.Context, id string) (*service.StudentForm, error)
	Create(ctx context.Context, req service.CreateStudentRequest) (*models.Student, error)
	Update(ctx context.Context, id string, req service.UpdateStudentRequest) (*models.Student, error)
	DeleteMany(ctx context.Context, ids []string) ([]models.Student, error)
}

type rosterExporter interface {
	Generate(ctx context.Context, format string) (*service.ExportResult, error)
}

// BulkDeleteRequest selects rows for deletion. Confirm must be true.
type BulkDeleteRequest struct {
	IDs     []string `json:"ids"`
	Confirm bool     `json:"confirm"`
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students studentService
	exports  rosterExporter
	logger   *zap.Logger
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService, exports rosterExporter, logger *zap.Logger) *StudentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentHandler{students: students, exports: exports, logger: logger}
}

// List godoc
// @Summary List students
// @Description Returns the roster, seeding it on first use.
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.students.LoadAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, map[string]interface{}{"total": len(students)})
}

// Get godoc
// @Summary Get student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Form godoc
// @Summary Edit form prefill
// @Description Splits the stored name into first and last name.
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/form [get]
func (h *StudentHandler) Form(c *gin.Context) {
	form, err := h.students.Form(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, form)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid student payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditStudentIDs(c, student.ID)
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid student payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// BulkDelete godoc
// @Summary Delete selected students
// @Description Requires confirm=true. Every id must exist.
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body BulkDeleteRequest true "Selection"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /students/bulk-delete [post]
func (h *StudentHandler) BulkDelete(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid delete payload"))
		return
	}

	ctx := c.Request.Context()
	list := viewmodel.NewListViewModel(h.students, h.logger)
	if err := list.Load(ctx); err != nil {
		response.Error(c, err)
		return
	}
	if err := list.Select(req.IDs...); err != nil {
		response.Error(c, err)
		return
	}

	var confirm viewmodel.Confirmer
	if req.Confirm {
		confirm = viewmodel.AlwaysConfirm
	}
	selected := list.SelectedIDs()
	if _, err := list.DeleteSelected(ctx, confirm); err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditStudentIDs(c, selected...)
	remaining := list.Students()
	response.JSON(c, http.StatusOK, remaining, map[string]interface{}{
		"deleted": len(selected),
		"total":   len(remaining),
	})
}

// Export godoc
// @Summary Export roster
// @Tags Students
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /students/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	result, err := h.exports.Generate(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Data)
}
