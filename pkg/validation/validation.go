// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation holds the go-playground/validator rules for
// requests entering the HTTP layer.
package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// MaxSubmissionBytes bounds a single submission's source to keep one
// job's tokenization cost predictable.
const MaxSubmissionBytes = 1 << 20 // 1MB

// MaxSubmissions bounds batch size per job.
const MaxSubmissions = 500

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("maxsrcbytes", validateMaxSourceBytes)
}

// validateMaxSourceBytes enforces MaxSubmissionBytes on a string field.
func validateMaxSourceBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxSubmissionBytes
}

// SubmissionInput is one submitted document in a SubmitRequest.
type SubmissionInput struct {
	Name string `json:"name" validate:"required,max=256"`
	Code string `json:"code" validate:"required,maxsrcbytes"`
}

// SubmitRequest is the validated shape of a POST /v1/submit body.
type SubmitRequest struct {
	Language    string            `json:"language" validate:"required,oneof=cpp rust python verilog sql javascript lua"`
	Template    string            `json:"template" validate:"omitempty,maxsrcbytes"`
	Submissions []SubmissionInput `json:"submissions" validate:"required,min=2,max=500,dive"`
}

// Validate runs struct validation and returns a flattened, field-level
// error message suitable for an API response.
func Validate(req *SubmitRequest) error {
	if err := validate.Struct(req); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		return fmt.Errorf("validation failed on field %q: %s", verrs[0].Namespace(), verrs[0].Tag())
	}
	return nil
}
