package handlers

import (
	"context"
	"net/http"

	"mockexam-service/internal/models"
	"mockexam-service/internal/pdfimport"
	"mockexam-service/internal/service"

	"github.com/gin-gonic/gin"
)

// maxPDFSize caps uploads at 150MB.
const maxPDFSize = 150 << 20

type AdminHandler struct {
	Tests *service.TestService
	Users *service.UserService
}

func NewAdminHandler(tests *service.TestService, users *service.UserService) *AdminHandler {
	return &AdminHandler{Tests: tests, Users: users}
}

// CreateTest persists a hand-authored test.
func (h *AdminHandler) CreateTest(c *gin.Context) {
	var test models.Test
	if err := c.ShouldBindJSON(&test); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid test format", "details": err.Error()})
		return
	}

	if err := h.Tests.Create(context.Background(), &test); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"test":    test,
		"message": "Test created successfully",
	})
}

// UpdateTest replaces a test's content. Existing results keep their scores.
func (h *AdminHandler) UpdateTest(c *gin.Context) {
	var test models.Test
	if err := c.ShouldBindJSON(&test); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid test format", "details": err.Error()})
		return
	}

	if err := h.Tests.Update(context.Background(), c.Param("id"), &test); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Test updated"})
}

// ListTests returns everything, inactive and premium included, with answers.
func (h *AdminHandler) ListTests(c *gin.Context) {
	tests, err := h.Tests.AdminList(context.Background())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tests": tests,
		"count": len(tests),
	})
}

// SetTestActive toggles catalog visibility without deleting history.
func (h *AdminHandler) SetTestActive(c *gin.Context) {
	var req struct {
		IsActive *bool `json:"isActive" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	if err := h.Tests.SetActive(context.Background(), c.Param("id"), *req.IsActive); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Test updated"})
}

func (h *AdminHandler) DeleteTest(c *gin.Context) {
	if err := h.Tests.Delete(context.Background(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Test deleted"})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.Users.ListAll(context.Background())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

// UploadPDF parses an exam paper and returns the extracted questions for
// review. Nothing is persisted; CreateTestFromPDF does that after the admin
// has checked the extraction.
func (h *AdminHandler) UploadPDF(c *gin.Context) {
	header, err := c.FormFile("pdf")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No PDF file uploaded"})
		return
	}
	if header.Size > maxPDFSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large. Maximum size is 150MB"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload", "details": err.Error()})
		return
	}
	defer file.Close()

	extraction, err := pdfimport.Extract(file, header.Size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse PDF. Make sure it is a valid text-based PDF", "details": err.Error()})
		return
	}
	if extraction.ImageBased {
		c.JSON(http.StatusOK, gin.H{
			"message":      "PDF appears to be image-based (scanned). Only text-based PDFs are supported; convert with OCR first",
			"isImageBased": true,
			"questions":    []pdfimport.ParsedQuestion{},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Questions extracted",
		"isImageBased": false,
		"questions":    extraction.Questions,
		"count":        len(extraction.Questions),
		"rawPreview":   extraction.RawPreview,
	})
}

// CreateTestFromPDF turns reviewed extracted questions into a live test,
// auto-splitting them into the standard three sections.
func (h *AdminHandler) CreateTestFromPDF(c *gin.Context) {
	var req struct {
		Title       string                     `json:"title" binding:"required"`
		Description string                     `json:"description"`
		Duration    int                        `json:"duration"`
		Questions   []pdfimport.ParsedQuestion `json:"questions" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and questions are required", "details": err.Error()})
		return
	}

	test := pdfimport.BuildTest(req.Title, req.Description, req.Duration, req.Questions)
	if err := h.Tests.Create(context.Background(), test); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"test":    test,
		"message": "Test created successfully from PDF",
	})
}
