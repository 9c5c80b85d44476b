// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package httpapi exposes the similarity engine over HTTP: submit a
// batch for scoring and read back a persisted result by slug.
//
// Authentication is this layer's concern, not the engine's: the core
// coordinator never sees a user identity. AuthFunc is checked before a
// job is queued and, on failure, the handler reports the documented
// `false` submit response rather than an HTTP error — callers are
// expected to treat "false" as "try again after authenticating."
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parthenon-labs/simscan/pkg/logging"
	"github.com/parthenon-labs/simscan/pkg/validation"
	"github.com/parthenon-labs/simscan/services/simcore/coordinate"
	"github.com/parthenon-labs/simscan/services/simcore/errs"
	"github.com/parthenon-labs/simscan/services/simcore/jobstore"
	"github.com/parthenon-labs/simscan/services/simcore/lang"
	"github.com/parthenon-labs/simscan/services/simcore/metrics"
)

// AuthFunc authenticates an inbound submit request. A nil AuthFunc on
// Handlers allows every request, matching the core's auth-free design.
type AuthFunc func(c *gin.Context) bool

// ErrorResponse is the JSON body returned on 4xx/5xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Handlers bundles the dependencies every route needs.
type Handlers struct {
	registry *lang.Registry
	store    *jobstore.Store
	logger   *logging.Logger
	auth     AuthFunc

	// JobTimeout bounds how long a single submit's Work call may run
	// before its context is cancelled.
	JobTimeout time.Duration
}

// NewHandlers wires the HTTP layer to its dependencies. auth may be
// nil to allow every request.
func NewHandlers(registry *lang.Registry, store *jobstore.Store, logger *logging.Logger, auth AuthFunc) *Handlers {
	return &Handlers{
		registry:   registry,
		store:      store,
		logger:     logger,
		auth:       auth,
		JobTimeout: 2 * time.Minute,
	}
}

// RegisterRoutes mounts the engine's routes on router.
func (h *Handlers) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", h.handleHealth)
	router.POST("/v1/submit", h.handleSubmit)
	router.GET("/v1/results/:slug", h.handleResults)
}

func (h *Handlers) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// submitRequestBody mirrors validation.SubmitRequest for JSON binding;
// gin's ShouldBindJSON needs the json tags regardless of the separate
// validator struct tags, so the two stay side by side rather than
// sharing one type with both binding and business-validation tags.
type submitRequestBody struct {
	Language    string                       `json:"language"`
	Template    string                       `json:"template"`
	Submissions []validation.SubmissionInput `json:"submissions"`
}

func (h *Handlers) handleSubmit(c *gin.Context) {
	if h.auth != nil && !h.auth(c) {
		c.JSON(http.StatusOK, false)
		return
	}

	var body submitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	req := validation.SubmitRequest{
		Language:    body.Language,
		Template:    body.Template,
		Submissions: body.Submissions,
	}
	if err := validation.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "VALIDATION_FAILED"})
		return
	}

	language, err := lang.ResolveTag(req.Language)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "UNSUPPORTED_LANGUAGE"})
		return
	}

	submissions := make([]coordinate.Submission, len(req.Submissions))
	for i, s := range req.Submissions {
		submissions[i] = coordinate.Submission{Name: s.Name, Code: s.Code}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.JobTimeout)
	defer cancel()

	work := coordinate.Request{
		Language:    language,
		Template:    req.Template,
		Submissions: submissions,
		Params:      coordinate.DefaultParams(),
	}

	result, err := coordinate.Work(ctx, work, h.registry, h.logger)
	if err != nil {
		h.logger.Error("job failed", "error", err)
		metrics.RecordJobCompleted(outcomeFor(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "JOB_FAILED"})
		return
	}

	slug, err := h.store.Save(result)
	if err != nil {
		h.logger.Error("persist result failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "PERSIST_FAILED"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"slug": slug})
}

func (h *Handlers) handleResults(c *gin.Context) {
	slug := c.Param("slug")
	result, err := h.store.Load(slug)
	if errors.Is(err, jobstore.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "job not found", Code: "NOT_FOUND"})
		return
	}
	if err != nil {
		h.logger.Error("load result failed", "error", err, "slug", slug)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "LOAD_FAILED"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func outcomeFor(err error) string {
	if errors.Is(err, errs.ErrCancelled) {
		return "cancelled"
	}
	return "error"
}
