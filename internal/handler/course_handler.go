package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studentdash/roster-backend/internal/model"
	"github.com/studentdash/roster-backend/internal/response"
)

// CourseCatalog is the read side of the student data provider.
type CourseCatalog interface {
	Courses() []string
	ByCourse(ctx context.Context, course string) ([]model.Student, error)
}

// CourseHandler serves the course catalogue.
type CourseHandler struct {
	catalog CourseCatalog
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(catalog CourseCatalog) *CourseHandler {
	return &CourseHandler{catalog: catalog}
}

// ListCourses godoc
// GET /api/v1/courses
// Lists built-in courses followed by courses introduced by added students.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"courses": h.catalog.Courses()})
}

// ListDirectory godoc
// GET /api/v1/directory/students?course=Data%20Science
// Queries the data provider directly, bypassing the workspace roster.
func (h *CourseHandler) ListDirectory(c *gin.Context) {
	course := c.DefaultQuery("course", string(model.AllCourses))

	students, err := h.catalog.ByCourse(c.Request.Context(), course)
	if err != nil {
		response.Fail(c, http.StatusBadGateway, response.ErrFetchFailed)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course, "students": students})
}
