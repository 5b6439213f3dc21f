package validator

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/nulzo/prompt-gateway/pkg/api"
	"github.com/stretchr/testify/assert"
)

func TestParseError_MissingFields(t *testing.T) {
	v := New()

	err := binding.Validator.ValidateStruct(&api.GenerateRequest{})
	errs := v.ParseError(err)

	assert.Equal(t, "provider is a required field", errs["provider"])
	assert.Equal(t, "prompt is a required field", errs["prompt"])
}

func TestParseError_MalformedBody(t *testing.T) {
	errs := New().ParseError(errors.New("unexpected EOF"))

	assert.Len(t, errs, 1)
	assert.Contains(t, errs["body"], "Invalid request body")
}
