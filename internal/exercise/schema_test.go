package exercise

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chunkrecall/trainer/internal/llm"
)

func TestSchemas(t *testing.T) {
	assert.NoError(t, llm.Validate(exerciseSchema, `{"question":"q","answer_key":"a"}`))
	assert.Error(t, llm.Validate(exerciseSchema, `{"question":"","answer_key":"a"}`))

	assert.NoError(t, llm.Validate(reviewSchema, `{"score":5,"better":"","comment":"良い"}`))
	assert.Error(t, llm.Validate(reviewSchema, `{"score":6,"better":"","comment":"x"}`))
	assert.Error(t, llm.Validate(reviewSchema, `{"score":2.5,"better":"","comment":"x"}`))
}
