package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"lms_backend/internal/export"
	"lms_backend/internal/model"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// @Summary Student dashboard
// @Description Enrolled courses, each paired with the current progress snapshot
// @Tags dashboards
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /dashboard/student [get]
func (c *DashboardController) Student(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.DashboardService.ForStudent(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}

// @Summary Parent dashboard
// @Description Each linked child with their enrolled courses and progress
// @Tags dashboards
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /dashboard/parent [get]
func (c *DashboardController) Parent(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.DashboardService.ForParent(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}

// @Summary Per-course progress table
// @Description Every enrolled student's completion count and percentage
// @Tags dashboards
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "course id"
// @Success 200 {object} util.Response
// @Router /courses/{id}/report [get]
func (c *DashboardController) CourseProgress(ctx *gin.Context) {
	courseID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	course, rows, err := c.DashboardService.CourseProgress(ctx.Request.Context(), uint(courseID))
	if err != nil {
		if errors.Is(err, util.ErrCourseUnavailable) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"course": course, "students": rows})
}

// @Summary Export per-course progress as xlsx
// @Tags dashboards
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security ApiKeyAuth
// @Param id path int true "course id"
// @Success 200 {file} binary
// @Router /courses/{id}/report/export [get]
func (c *DashboardController) ExportCourseProgress(ctx *gin.Context) {
	courseID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	course, rows, err := c.DashboardService.CourseProgress(ctx.Request.Context(), uint(courseID))
	if err != nil {
		if errors.Is(err, util.ErrCourseUnavailable) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	file, err := export.BuildWorkbook([]export.SheetSpec{progressSheet(course, rows)})
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	filename := fmt.Sprintf("course_%d_progress_%s.xlsx", course.ID, time.Now().Format("2006-01-02"))
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(ctx.Writer); err != nil {
		ctx.AbortWithStatus(http.StatusInternalServerError)
	}
}

func progressSheet(course *model.Course, rows []service.CourseProgressRow) export.SheetSpec {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			strconv.FormatUint(uint64(r.UserID), 10),
			r.Name,
			r.Email,
			strconv.Itoa(r.CompletedCount),
			strconv.Itoa(r.TotalLectures),
			strconv.Itoa(r.Progress) + "%",
		})
	}
	return export.SheetSpec{
		Title:  course.Title,
		Header: []string{"ID", "Name", "Email", "Completed", "Lectures", "Progress"},
		Rows:   data,
	}
}
