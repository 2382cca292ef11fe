package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeTransformer_Success(t *testing.T) {
	out, err := EnvelopeTransformer(nil, "200", map[string]any{"id": "veh-1"})
	require.NoError(t, err)

	envelope, ok := out.(successEnvelope)
	require.True(t, ok)

	assert.Equal(t, envelopeVersion, envelope.V)
	assert.True(t, envelope.Success)
	assert.Equal(t, map[string]any{"id": "veh-1"}, envelope.Data)
}

func TestEnvelopeTransformer_NilData(t *testing.T) {
	out, err := EnvelopeTransformer(nil, "204", nil)
	require.NoError(t, err)

	envelope, ok := out.(successEnvelope)
	require.True(t, ok)

	assert.True(t, envelope.Success)
	assert.Nil(t, envelope.Data)
}

func TestEnvelopeTransformer_SimpleError(t *testing.T) {
	apiErr := &APIError{status: http.StatusNotFound, Message: "Resource not found"}

	out, err := EnvelopeTransformer(nil, "404", apiErr)
	require.NoError(t, err)

	envelope, ok := out.(errorEnvelope)
	require.True(t, ok)

	assert.Equal(t, envelopeVersion, envelope.V)
	assert.False(t, envelope.Success)
	assert.Equal(t, "Resource not found", envelope.Error)
}

func TestEnvelopeTransformer_DetailedError(t *testing.T) {
	apiErr := &APIError{
		status:  http.StatusBadRequest,
		Code:    "VALIDATION",
		Message: "year must be between 1900 and 2027",
		Details: map[string]any{"field": "year"},
	}

	out, err := EnvelopeTransformer(nil, "400", apiErr)
	require.NoError(t, err)

	envelope, ok := out.(errorEnvelope)
	require.True(t, ok)

	assert.False(t, envelope.Success)
	assert.Equal(t, "VALIDATION", envelope.Code)
	assert.Equal(t, "year must be between 1900 and 2027", envelope.Message)
	assert.NotNil(t, envelope.Details)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 404, statusCode("404"))
	assert.Equal(t, 500, statusCode("garbage"))
	assert.Equal(t, 500, statusCode(""))
	assert.Equal(t, 500, statusCode("99"))
}

func TestIsErrorStatus(t *testing.T) {
	assert.True(t, isErrorStatus("404"))
	assert.True(t, isErrorStatus("500"))
	assert.False(t, isErrorStatus("200"))
	assert.False(t, isErrorStatus("304"))
	assert.False(t, isErrorStatus(""))
}
