package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"assetimport/internal/domain"
	"assetimport/internal/report"
	"assetimport/internal/service"
)

// ImportHandler handles spreadsheet import endpoints.
type ImportHandler struct {
	importService service.ImportService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importService service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// Template handles GET /api/v1/imports/:kind/template
// @Summary Download import template
// @Description Header-only workbook with the expected columns and an Instructions sheet
// @Tags imports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param kind path string true "Import kind" Enums(categories, assets, asset-updates)
// @Success 200 {file} file "Template workbook"
// @Failure 404 {object} APIResponse "Unknown import kind"
// @Router /imports/{kind}/template [get]
func (h *ImportHandler) Template(c *gin.Context) {
	kind, err := domain.ParseImportKind(c.Param("kind"))
	if err != nil {
		HandleError(c, err)
		return
	}

	dl, err := h.importService.Template(kind)
	if err != nil {
		HandleError(c, err)
		return
	}
	sendDownload(c, dl)
}

// Import handles POST /api/v1/imports/:kind
//
// The spreadsheet arrives in the multipart field "file". validate_only=true,
// as a query or form value, runs the local checks without submitting.
// @Summary Import a spreadsheet
// @Description Parse, validate and bulk-submit the rows of an uploaded workbook
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param kind path string true "Import kind" Enums(categories, assets, asset-updates)
// @Param file formData file true "Spreadsheet (.xlsx or .xls, max 5MB)"
// @Param validate_only query bool false "Validate without submitting" default(false)
// @Success 201 {object} APIResponse{data=report.View} "Import result"
// @Failure 400 {object} APIResponse "Missing file, unsupported type or unreadable spreadsheet"
// @Failure 404 {object} APIResponse "Unknown import kind"
// @Failure 413 {object} APIResponse "File too large"
// @Router /imports/{kind} [post]
func (h *ImportHandler) Import(c *gin.Context) {
	kind, err := domain.ParseImportKind(c.Param("kind"))
	if err != nil {
		HandleError(c, err)
		return
	}

	validateOnly := false
	if raw := c.DefaultQuery("validate_only", c.PostForm("validate_only")); raw != "" {
		validateOnly, err = strconv.ParseBool(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_PARAMETER", "validate_only must be true or false")
			return
		}
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.importService.Import(c.Request.Context(), service.ImportInput{
		Kind:         kind,
		FileName:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Size:         header.Size,
		File:         file,
		ValidateOnly: validateOnly,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, report.Render(result))
}

// GetResult handles GET /api/v1/imports/results/:id
// @Summary Get import result
// @Tags imports
// @Produce json
// @Param id path string true "Import result ID (UUID)"
// @Success 200 {object} APIResponse{data=report.View} "Import result"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 404 {object} APIResponse "Result not found or expired"
// @Router /imports/results/{id} [get]
func (h *ImportHandler) GetResult(c *gin.Context) {
	id, ok := parseResultID(c)
	if !ok {
		return
	}

	result, err := h.importService.GetResult(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, report.Render(result))
}

// Export handles GET /api/v1/imports/results/:id/export
//
// format=xlsx (default) returns the results workbook; format=csv returns the
// rejected rows only.
// @Summary Export import result
// @Tags imports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
// @Param id path string true "Import result ID (UUID)"
// @Param format query string false "Download format" Enums(xlsx, csv) default(xlsx)
// @Success 200 {file} file "Results workbook or rejected rows CSV"
// @Failure 400 {object} APIResponse "Invalid ID or format"
// @Failure 404 {object} APIResponse "Result not found or expired"
// @Router /imports/results/{id}/export [get]
func (h *ImportHandler) Export(c *gin.Context) {
	id, ok := parseResultID(c)
	if !ok {
		return
	}

	var (
		dl  *service.Download
		err error
	)
	switch c.DefaultQuery("format", "xlsx") {
	case "xlsx":
		dl, err = h.importService.ExportResult(c.Request.Context(), id)
	case "csv":
		dl, err = h.importService.ExportRejected(c.Request.Context(), id)
	default:
		RespondError(c, http.StatusBadRequest, "INVALID_PARAMETER", "format must be xlsx or csv")
		return
	}
	if err != nil {
		HandleError(c, err)
		return
	}
	sendDownload(c, dl)
}

// Archive handles POST /api/v1/imports/results/:id/archive
// @Summary Archive import result to S3
// @Description Uploads the results workbook and returns a presigned download URL
// @Tags imports
// @Produce json
// @Param id path string true "Import result ID (UUID)"
// @Success 201 {object} APIResponse{data=service.ArchiveOutput} "Archived"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 404 {object} APIResponse "Result not found or expired"
// @Failure 409 {object} APIResponse "Archive not configured"
// @Failure 500 {object} APIResponse "Upload failed"
// @Router /imports/results/{id}/archive [post]
func (h *ImportHandler) Archive(c *gin.Context) {
	id, ok := parseResultID(c)
	if !ok {
		return
	}

	out, err := h.importService.ArchiveResult(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, out)
}

// DeleteResult handles DELETE /api/v1/imports/results/:id
// @Summary Discard import result
// @Tags imports
// @Produce json
// @Param id path string true "Import result ID (UUID)"
// @Success 200 {object} APIResponse "Import result deleted"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 404 {object} APIResponse "Result not found or expired"
// @Router /imports/results/{id} [delete]
func (h *ImportHandler) DeleteResult(c *gin.Context) {
	id, ok := parseResultID(c)
	if !ok {
		return
	}

	if err := h.importService.DeleteResult(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "import result deleted"})
}

func parseResultID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid import result ID")
		return uuid.Nil, false
	}
	return id, true
}

func sendDownload(c *gin.Context, dl *service.Download) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, dl.FileName))
	c.Data(http.StatusOK, dl.ContentType, dl.Data)
}
