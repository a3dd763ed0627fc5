package service

import (
	"context"
	"encoding/json"
	"fmt"
	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/util"
	"lms_backend/internal/validators"
	"lms_backend/pkg/logger"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const wizardKeyPrefix = "wizard:"

type WizardState string

const (
	WizardActive     WizardState = "active"
	WizardSubmitting WizardState = "submitting"
	WizardSucceeded  WizardState = "succeeded"
	WizardFailed     WizardState = "failed"
)

// WizardDraft accumulates partial input across the steps of a multi-step
// client flow (signup, add-user, create-course). One draft, one submit.
type WizardDraft struct {
	ID        string                 `json:"id"`
	Kind      string                 `json:"kind"`
	OwnerID   uint                   `json:"ownerId"`
	Step      int                    `json:"step"` // next step to submit, 1-based
	Steps     int                    `json:"steps"`
	State     WizardState            `json:"state"`
	Data      map[string]interface{} `json:"data"`
	FailError string                 `json:"failError,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// WizardService stores drafts in redis under a TTL and materializes a
// completed draft through the owning service in a single submit. Without a
// redis client it falls back to an in-process map.
type WizardService struct {
	Redis   *redis.Client
	TTL     time.Duration
	Auth    *AuthService
	User    *UserService
	Catalog *CatalogService

	mu     sync.Mutex
	drafts map[string]*WizardDraft
}

func NewWizardService(rdb *redis.Client, cfg *config.Config, auth *AuthService, user *UserService, catalog *CatalogService) *WizardService {
	return &WizardService{
		Redis:   rdb,
		TTL:     time.Duration(cfg.Wizard.DraftTTLMinutes) * time.Minute,
		Auth:    auth,
		User:    user,
		Catalog: catalog,
		drafts:  make(map[string]*WizardDraft),
	}
}

func (s *WizardService) Start(ctx context.Context, kind string, ownerID uint) (*WizardDraft, error) {
	if !validators.KnownKind(kind) {
		return nil, fmt.Errorf("unknown wizard kind %q", kind)
	}

	now := time.Now()
	draft := &WizardDraft{
		ID:        uuid.New().String(),
		Kind:      kind,
		OwnerID:   ownerID,
		Step:      1,
		Steps:     validators.StepCount(kind),
		State:     WizardActive,
		Data:      make(map[string]interface{}),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *WizardService) Get(ctx context.Context, id string) (*WizardDraft, error) {
	return s.load(ctx, id)
}

// SubmitStep validates the payload for the draft's current step, merges it
// into the accumulated data, and advances. Steps cannot be skipped.
func (s *WizardService) SubmitStep(ctx context.Context, id string, step int, payload json.RawMessage) (*WizardDraft, error) {
	draft, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.State != WizardActive {
		return nil, util.ErrWizardStep
	}
	if step != draft.Step {
		return nil, util.ErrWizardStep
	}

	if err := validators.ValidateStep(draft.Kind, step, payload); err != nil {
		return nil, err
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		draft.Data[k] = v
	}

	if draft.Step < draft.Steps {
		draft.Step++
	} else {
		draft.Step = draft.Steps + 1 // all steps done, ready to submit
	}
	draft.UpdatedAt = time.Now()

	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Submit materializes a fully-stepped draft. The draft transitions through
// submitting to succeeded or failed; a failed draft keeps its data so the
// client can fix a step and resubmit.
func (s *WizardService) Submit(ctx context.Context, id string) (*WizardDraft, error) {
	draft, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.State != WizardActive && draft.State != WizardFailed {
		return nil, util.ErrWizardStep
	}
	if draft.Step <= draft.Steps {
		return nil, util.ErrWizardNotComplete
	}

	draft.State = WizardSubmitting
	draft.UpdatedAt = time.Now()
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}

	if err := s.materialize(ctx, draft); err != nil {
		draft.State = WizardFailed
		draft.FailError = err.Error()
		draft.UpdatedAt = time.Now()
		if saveErr := s.save(ctx, draft); saveErr != nil {
			logger.Log.Error("wizard draft save after failure", zap.Error(saveErr))
		}
		return draft, err
	}

	draft.State = WizardSucceeded
	draft.FailError = ""
	draft.UpdatedAt = time.Now()
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *WizardService) materialize(ctx context.Context, draft *WizardDraft) error {
	raw, err := json.Marshal(draft.Data)
	if err != nil {
		return err
	}

	switch draft.Kind {
	case validators.KindSignup:
		var data struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Avatar   string `json:"avatar"`
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			return err
		}
		return s.Auth.Register(&model.User{
			Name:     data.Name,
			Email:    data.Email,
			Password: data.Password,
			Avatar:   data.Avatar,
			Role:     model.Student,
		})

	case validators.KindAddUser:
		var data UserWizardData
		if err := json.Unmarshal(raw, &data); err != nil {
			return err
		}
		_, err := s.User.Create(CreateUserRequest{
			Name:     data.Name,
			Email:    data.Email,
			Password: data.Password,
			Role:     model.UserRole(data.Role),
		})
		return err

	case validators.KindCreateCourse:
		var data struct {
			CourseRequest
			Lectures []validators.LectureDraft `json:"lectures"`
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			return err
		}
		course, err := s.Catalog.Create(draft.OwnerID, data.CourseRequest)
		if err != nil {
			return err
		}
		for _, l := range data.Lectures {
			if _, err := s.Catalog.AddLecture(ctx, course.ID, LectureRequest{
				Title:         l.Title,
				VideoURL:      l.VideoURL,
				Duration:      l.Duration,
				IsPreviewFree: l.IsPreviewFree,
			}); err != nil {
				return err
			}
		}
		return nil
	}

	return fmt.Errorf("unknown wizard kind %q", draft.Kind)
}

// UserWizardData is the accumulated add-user draft shape.
type UserWizardData struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *WizardService) save(ctx context.Context, draft *WizardDraft) error {
	if s.Redis == nil {
		s.mu.Lock()
		s.drafts[draft.ID] = draft
		s.mu.Unlock()
		return nil
	}

	payload, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, wizardKeyPrefix+draft.ID, payload, s.TTL).Err()
}

func (s *WizardService) load(ctx context.Context, id string) (*WizardDraft, error) {
	if s.Redis == nil {
		s.mu.Lock()
		draft, ok := s.drafts[id]
		s.mu.Unlock()
		if !ok {
			return nil, util.ErrDraftNotFound
		}
		return draft, nil
	}

	val, err := s.Redis.Get(ctx, wizardKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, util.ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}

	var draft WizardDraft
	if err := json.Unmarshal([]byte(val), &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}
