package controller

import (
	"errors"
	"strconv"

	"lms_backend/internal/model"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// @Summary List users
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(20)
// @Param role query string false "filter by role"
// @Success 200 {object} util.Response
// @Router /admin/users [get]
func (c *UserController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	role := model.UserRole(ctx.Query("role"))

	users, total, err := c.UserService.List(page, limit, role)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"users": users, "total": total, "page": page, "limit": limit})
}

// @Summary Get a user
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "user id"
// @Success 200 {object} util.Response
// @Router /admin/users/{id} [get]
func (c *UserController) Get(ctx *gin.Context) {
	id, ok := userPath(ctx)
	if !ok {
		return
	}

	user, err := c.UserService.Get(id)
	if err != nil {
		userError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// @Summary Create a user
// @Description Admin add-user path; role is assigned once and is immutable after
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateUserRequest true "user fields"
// @Success 201 {object} util.Response
// @Router /admin/users [post]
func (c *UserController) Create(ctx *gin.Context) {
	var req service.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.Create(req)
	if err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, user)
}

// @Summary Update a user
// @Description The role field is not accepted here; roles never change after creation
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "user id"
// @Param body body service.UpdateUserRequest true "mutable user fields"
// @Success 200 {object} util.Response
// @Router /admin/users/{id} [put]
func (c *UserController) Update(ctx *gin.Context) {
	id, ok := userPath(ctx)
	if !ok {
		return
	}
	var req service.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.Update(id, req)
	if err != nil {
		userError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// @Summary Delete a user
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "user id"
// @Success 200 {object} util.Response
// @Router /admin/users/{id} [delete]
func (c *UserController) Delete(ctx *gin.Context) {
	id, ok := userPath(ctx)
	if !ok {
		return
	}

	if err := c.UserService.Delete(id); err != nil {
		userError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": id})
}

type SetDisabledRequest struct {
	Disabled *bool `json:"disabled" binding:"required"`
}

// @Summary Enable or disable an account
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "user id"
// @Param body body SetDisabledRequest true "disabled flag"
// @Success 200 {object} util.Response
// @Router /admin/users/{id}/disabled [patch]
func (c *UserController) SetDisabled(ctx *gin.Context) {
	id, ok := userPath(ctx)
	if !ok {
		return
	}
	var req SetDisabledRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.SetDisabled(id, *req.Disabled); err != nil {
		userError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id, "disabled": *req.Disabled})
}

type LinkParentRequest struct {
	ParentID  uint `json:"parentId" binding:"required"`
	StudentID uint `json:"studentId" binding:"required"`
}

// @Summary Link a parent to a student
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body LinkParentRequest true "parent and student ids"
// @Success 201 {object} util.Response
// @Router /admin/parent-links [post]
func (c *UserController) LinkParent(ctx *gin.Context) {
	var req LinkParentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.LinkParent(req.ParentID, req.StudentID); err != nil {
		switch {
		case errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.BadRequest(ctx, "parent-student link requires a parent and a student account")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, gin.H{"parentId": req.ParentID, "studentId": req.StudentID})
}

func userPath(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return 0, false
	}
	return uint(id), true
}

func userError(ctx *gin.Context, err error) {
	if errors.Is(err, util.ErrUserNotFound) {
		util.NotFound(ctx)
		return
	}
	util.LogInternalError(ctx, err)
}
