package controller

import (
	"errors"
	"strconv"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CatalogService *service.CatalogService
}

func NewCourseController(catalogService *service.CatalogService) *CourseController {
	return &CourseController{CatalogService: catalogService}
}

func isStaff(role model.UserRole) bool {
	return role == model.Teacher || role == model.Admin || role == model.Management
}

// @Summary List courses
// @Description Students see published courses only; staff see all
// @Tags courses
// @Produce json
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(20)
// @Success 200 {object} util.Response
// @Router /courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	claims := util.GetUserFromContext(ctx)
	publishedOnly := claims == nil || !isStaff(claims.Role)

	var (
		courses []model.Course
		total   int64
		err     error
	)
	if publishedOnly {
		courses, total, err = c.CatalogService.ListPublished(page, limit)
	} else {
		courses, total, err = c.CatalogService.ListAll(page, limit)
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"courses": courses, "total": total, "page": page, "limit": limit})
}

// @Summary Courses the current user is enrolled in
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /courses/enrolled [get]
func (c *CourseController) ListEnrolled(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courses, err := c.CatalogService.ListEnrolled(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary Courses taught by the current user
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /courses/teaching [get]
func (c *CourseController) ListTeaching(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courses, err := c.CatalogService.ListByTeacher(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary Course detail
// @Description Hydrated course with ordered lectures and enrolled count
// @Tags courses
// @Produce json
// @Param id path int true "course id"
// @Success 200 {object} util.Response
// @Router /courses/{id} [get]
func (c *CourseController) Get(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	claims := util.GetUserFromContext(ctx)
	includeUnpublished := claims != nil && isStaff(claims.Role)

	detail, err := c.CatalogService.GetByID(uint(id), includeUnpublished)
	if err != nil {
		if errors.Is(err, util.ErrCourseUnavailable) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CourseRequest true "course fields"
// @Success 201 {object} util.Response
// @Router /courses [post]
func (c *CourseController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CatalogService.Create(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// @Summary Update a course
// @Tags courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "course id"
// @Param body body service.CourseRequest true "course fields"
// @Success 200 {object} util.Response
// @Router /courses/{id} [put]
func (c *CourseController) Update(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	if !c.ownsCourse(ctx, uint(id)) {
		return
	}
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CatalogService.Update(uint(id), req)
	if err != nil {
		if errors.Is(err, util.ErrCourseUnavailable) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary Delete a course
// @Description Removes the course, its lectures, enrollments and completion rows
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "course id"
// @Success 200 {object} util.Response
// @Router /courses/{id} [delete]
func (c *CourseController) Delete(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	if !c.ownsCourse(ctx, uint(id)) {
		return
	}

	if err := c.CatalogService.Delete(ctx.Request.Context(), uint(id)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": id})
}

// @Summary Toggle publish state
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "course id"
// @Success 200 {object} util.Response
// @Router /courses/{id}/publish [patch]
func (c *CourseController) TogglePublish(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	if !c.ownsCourse(ctx, uint(id)) {
		return
	}

	course, err := c.CatalogService.TogglePublish(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrCourseUnavailable) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

type SchedulePublishRequest struct {
	PublishAt time.Time `json:"publishAt" binding:"required"`
}

// @Summary Schedule course publishing
// @Description The course goes live automatically when the scheduled time arrives
// @Tags courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "course id"
// @Param body body SchedulePublishRequest true "publish time"
// @Success 200 {object} util.Response
// @Router /courses/{id}/schedule [post]
func (c *CourseController) SchedulePublish(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	if !c.ownsCourse(ctx, uint(id)) {
		return
	}
	var req SchedulePublishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.CatalogService.SchedulePublish(uint(id), req.PublishAt); err != nil {
		if errors.Is(err, util.ErrCourseUnavailable) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"publishAt": req.PublishAt})
}

// @Summary Add a lecture
// @Tags lectures
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "course id"
// @Param body body service.LectureRequest true "lecture fields"
// @Success 201 {object} util.Response
// @Router /courses/{id}/lectures [post]
func (c *CourseController) AddLecture(ctx *gin.Context) {
	courseID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	if !c.ownsCourse(ctx, uint(courseID)) {
		return
	}
	var req service.LectureRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lecture, err := c.CatalogService.AddLecture(ctx.Request.Context(), uint(courseID), req)
	if err != nil {
		if errors.Is(err, util.ErrCourseUnavailable) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, lecture)
}

// @Summary Update a lecture
// @Tags lectures
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "course id"
// @Param lectureId path int true "lecture id"
// @Param body body service.LectureRequest true "lecture fields"
// @Success 200 {object} util.Response
// @Router /courses/{id}/lectures/{lectureId} [put]
func (c *CourseController) UpdateLecture(ctx *gin.Context) {
	courseID, lectureID, ok := lecturePath(ctx)
	if !ok {
		return
	}
	if !c.ownsCourse(ctx, courseID) {
		return
	}
	var req service.LectureRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lecture, err := c.CatalogService.UpdateLecture(courseID, lectureID, req)
	if err != nil {
		lectureError(ctx, err)
		return
	}
	util.Success(ctx, lecture)
}

// @Summary Remove a lecture
// @Description Enrolled users' progress is recomputed against the shrunken list
// @Tags lectures
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "course id"
// @Param lectureId path int true "lecture id"
// @Success 200 {object} util.Response
// @Router /courses/{id}/lectures/{lectureId} [delete]
func (c *CourseController) RemoveLecture(ctx *gin.Context) {
	courseID, lectureID, ok := lecturePath(ctx)
	if !ok {
		return
	}
	if !c.ownsCourse(ctx, courseID) {
		return
	}

	if err := c.CatalogService.RemoveLecture(ctx.Request.Context(), courseID, lectureID); err != nil {
		lectureError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": lectureID})
}

// @Summary Fetch a lecture for playback
// @Description Free previews are open; everything else requires enrollment
// @Tags lectures
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "course id"
// @Param lectureId path int true "lecture id"
// @Success 200 {object} util.Response
// @Router /courses/{id}/lectures/{lectureId} [get]
func (c *CourseController) GetLecture(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	courseID, lectureID, ok := lecturePath(ctx)
	if !ok {
		return
	}

	lecture, err := c.CatalogService.GetLecture(claims.UserID, courseID, lectureID)
	if err != nil {
		if errors.Is(err, util.ErrNotEnrolled) {
			util.Forbidden(ctx)
			return
		}
		lectureError(ctx, err)
		return
	}
	util.Success(ctx, lecture)
}

// ownsCourse allows the owning teacher plus admin and management roles through.
// Writes a response and returns false when access is denied.
func (c *CourseController) ownsCourse(ctx *gin.Context, courseID uint) bool {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return false
	}
	if claims.Role == model.Admin || claims.Role == model.Management {
		return true
	}

	detail, err := c.CatalogService.GetByID(courseID, true)
	if err != nil {
		if errors.Is(err, util.ErrCourseUnavailable) {
			util.NotFound(ctx)
			return false
		}
		util.LogInternalError(ctx, err)
		return false
	}
	if detail.TeacherID != claims.UserID {
		util.Forbidden(ctx)
		return false
	}
	return true
}

func lecturePath(ctx *gin.Context) (courseID, lectureID uint, ok bool) {
	cid, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return 0, 0, false
	}
	lid, err := strconv.ParseUint(ctx.Param("lectureId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid lecture id")
		return 0, 0, false
	}
	return uint(cid), uint(lid), true
}

func lectureError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrLectureNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrLectureNotInCourse):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
