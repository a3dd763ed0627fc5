package controller

import (
	"encoding/json"
	"errors"

	"lms_backend/internal/service"
	"lms_backend/internal/util"
	"lms_backend/internal/validators"

	"github.com/gin-gonic/gin"
)

type WizardController struct {
	WizardService *service.WizardService
}

func NewWizardController(wizardService *service.WizardService) *WizardController {
	return &WizardController{WizardService: wizardService}
}

type StartWizardRequest struct {
	Kind string `json:"kind" binding:"required"`
}

type WizardStepRequest struct {
	Step   int             `json:"step" binding:"required,min=1"`
	Fields json.RawMessage `json:"fields" binding:"required"`
}

// @Summary Start a wizard draft
// @Description Kinds: signup, add-user, create-course
// @Tags wizards
// @Accept json
// @Produce json
// @Param body body StartWizardRequest true "wizard kind"
// @Success 201 {object} util.Response
// @Router /wizards [post]
func (c *WizardController) Start(ctx *gin.Context) {
	var req StartWizardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var ownerID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		ownerID = claims.UserID
	}

	draft, err := c.WizardService.Start(ctx.Request.Context(), req.Kind, ownerID)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, draft)
}

// @Summary Fetch a wizard draft
// @Tags wizards
// @Produce json
// @Param id path string true "draft id"
// @Success 200 {object} util.Response
// @Router /wizards/{id} [get]
func (c *WizardController) Get(ctx *gin.Context) {
	draft, err := c.WizardService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		wizardError(ctx, err)
		return
	}
	util.Success(ctx, draft)
}

// @Summary Submit one wizard step
// @Description Steps must be submitted in order; out-of-sequence submissions are rejected
// @Tags wizards
// @Accept json
// @Produce json
// @Param id path string true "draft id"
// @Param body body WizardStepRequest true "step number and fields"
// @Success 200 {object} util.Response
// @Router /wizards/{id}/steps [post]
func (c *WizardController) SubmitStep(ctx *gin.Context) {
	var req WizardStepRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	draft, err := c.WizardService.SubmitStep(ctx.Request.Context(), ctx.Param("id"), req.Step, req.Fields)
	if err != nil {
		var fieldErr *validators.FieldError
		if errors.As(err, &fieldErr) {
			util.UnprocessableEntity(ctx, fieldErr.Error())
			return
		}
		wizardError(ctx, err)
		return
	}
	util.Success(ctx, draft)
}

// @Summary Finalize a wizard
// @Description Materializes the draft into its target record; the draft survives on failure
// @Tags wizards
// @Produce json
// @Param id path string true "draft id"
// @Success 200 {object} util.Response
// @Router /wizards/{id}/submit [post]
func (c *WizardController) Submit(ctx *gin.Context) {
	draft, err := c.WizardService.Submit(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if draft != nil {
			// Materialization failed; the draft is kept so the caller can retry.
			util.UnprocessableEntity(ctx, draft.FailError)
			return
		}
		wizardError(ctx, err)
		return
	}
	util.Success(ctx, draft)
}

func wizardError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrDraftNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrWizardStep):
		util.Error(ctx, 409, err.Error())
	case errors.Is(err, util.ErrWizardNotComplete):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
