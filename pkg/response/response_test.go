package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/test/assert"

	pkgerrors "portfolio/pkg/errors"
)

func TestStatusForCode(t *testing.T) {
	assert.DeepEqual(t, http.StatusBadRequest, StatusForCode("INVALID_REQUEST"))
	assert.DeepEqual(t, http.StatusUnprocessableEntity, StatusForCode("VALIDATION_FAILED"))
	assert.DeepEqual(t, http.StatusTooManyRequests, StatusForCode("TOO_MANY_REQUESTS"))
	assert.DeepEqual(t, http.StatusInternalServerError, StatusForCode("SUBMIT_FAILED"))
	assert.DeepEqual(t, http.StatusInternalServerError, StatusForCode("SOMETHING_ELSE"))
}

func TestError_HidesUnknownErrors(t *testing.T) {
	c := app.NewContext(0)
	Error(context.Background(), c, errors.New("dial tcp 10.0.0.1:5432: connection refused"))

	assert.DeepEqual(t, http.StatusInternalServerError, c.Response.StatusCode())

	var body ErrorResponse
	assert.Nil(t, json.Unmarshal(c.Response.Body(), &body))
	assert.DeepEqual(t, pkgerrors.InternalServerError.Code, body.Error.Code)
	assert.DeepEqual(t, pkgerrors.InternalServerError.Message, body.Error.Message)
}

func TestAbortWithError(t *testing.T) {
	c := app.NewContext(0)
	AbortWithError(context.Background(), c, pkgerrors.TooManyRequests)

	assert.DeepEqual(t, http.StatusTooManyRequests, c.Response.StatusCode())
	assert.True(t, c.IsAborted())
}
