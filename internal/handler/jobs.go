package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/model"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/pool"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/service"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/store"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/pkg/response"
)

type JobHandler struct {
	service   *service.JobService
	validator *validator.Validate
}

func NewJobHandler(svc *service.JobService, v *validator.Validate) *JobHandler {
	return &JobHandler{
		service:   svc,
		validator: v,
	}
}

// SubmitDecode handles POST /api/jobs/decode
func (h *JobHandler) SubmitDecode(c *fiber.Ctx) error {
	var req model.DecodeJobPayload
	return h.submit(c, model.JobKindDecode, &req)
}

// SubmitHistogram handles POST /api/jobs/histogram
func (h *JobHandler) SubmitHistogram(c *fiber.Ctx) error {
	var req model.HistogramJobPayload
	return h.submit(c, model.JobKindHistogram, &req)
}

// SubmitMix handles POST /api/jobs/mix
func (h *JobHandler) SubmitMix(c *fiber.Ctx) error {
	var req model.MixJobPayload
	return h.submit(c, model.JobKindMix, &req)
}

// SubmitBeam handles POST /api/jobs/beam
func (h *JobHandler) SubmitBeam(c *fiber.Ctx) error {
	var req model.BeamJobPayload
	return h.submit(c, model.JobKindBeam, &req)
}

func (h *JobHandler) submit(c *fiber.Ctx, kind model.JobKind, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.Submit(c.Context(), kind, req)
	if err != nil {
		if errors.Is(err, pool.ErrQueueFull) {
			return response.CapacityExceeded(c, "Job queue is full")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, result)
}

// Status handles GET /api/jobs/status/:jobId
func (h *JobHandler) Status(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.Status(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Job not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// Result handles GET /api/jobs/result/:jobId
func (h *JobHandler) Result(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.Result(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Job not found")
		}
		if errors.Is(err, service.ErrNotCompleted) {
			return response.ValidationError(c, "Job not completed yet", nil)
		}
		return response.ServiceError(c, err.Error())
	}

	c.Set("Content-Type", "application/json")
	return c.Send(result)
}

// Cancel handles POST /api/jobs/cancel/:jobId
func (h *JobHandler) Cancel(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.Cancel(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Job not found")
		}
		if errors.Is(err, service.ErrAlreadyCompleted) {
			return response.ValidationError(c, "Job already completed", nil)
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
