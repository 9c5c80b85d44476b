package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRequest() *SubmitRequest {
	return &SubmitRequest{
		Language: "python",
		Submissions: []SubmissionInput{
			{Name: "a.py", Code: "x = 1\n"},
			{Name: "b.py", Code: "x = 1\n"},
		},
	}
}

func TestValidate_AcceptsWellFormedRequest(t *testing.T) {
	assert.NoError(t, Validate(validRequest()))
}

func TestValidate_RejectsUnknownLanguage(t *testing.T) {
	req := validRequest()
	req.Language = "cobol"
	assert.Error(t, Validate(req))
}

func TestValidate_RejectsTooFewSubmissions(t *testing.T) {
	req := validRequest()
	req.Submissions = req.Submissions[:1]
	assert.Error(t, Validate(req))
}

func TestValidate_RejectsOversizedSource(t *testing.T) {
	req := validRequest()
	req.Submissions[0].Code = strings.Repeat("a", MaxSubmissionBytes+1)
	assert.Error(t, Validate(req))
}

func TestValidate_RejectsEmptySubmissionName(t *testing.T) {
	req := validRequest()
	req.Submissions[0].Name = ""
	assert.Error(t, Validate(req))
}
