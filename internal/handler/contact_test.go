package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/test/assert"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol"

	"portfolio/internal/model"
	"portfolio/internal/model/dto"
	"portfolio/internal/service"
	"portfolio/internal/validation"
)

type memoryStore struct {
	err   error
	saved []*model.ContactMessage
}

func (s *memoryStore) Append(ctx context.Context, msg *model.ContactMessage) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, msg)
	return nil
}

func newContactServer(store *memoryStore) *server.Hertz {
	h := server.New()
	ch := NewContactHandler(service.NewContactService(store))
	h.POST("/v1/contact", ch.Submit)
	return h
}

func postJSON(h *server.Hertz, body string) *protocol.Response {
	w := ut.PerformRequest(h.Engine, http.MethodPost, "/v1/contact",
		&ut.Body{Body: bytes.NewBufferString(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"})
	return w.Result()
}

func decode(t *testing.T, resp *protocol.Response) dto.SubmitResult {
	t.Helper()
	var out dto.SubmitResult
	assert.Nil(t, json.Unmarshal(resp.Body(), &out))
	return out
}

const validJSON = `{"name":"Alice","email":"alice@example.com","subject":"Project inquiry","message":"I would like to discuss a project."}`

func TestContactHandler_Accepted(t *testing.T) {
	store := &memoryStore{}
	resp := postJSON(newContactServer(store), validJSON)

	assert.DeepEqual(t, http.StatusCreated, resp.StatusCode())
	out := decode(t, resp)
	assert.True(t, out.Success)
	assert.DeepEqual(t, "Message sent successfully! I will get back to you soon.", out.Message)
	assert.DeepEqual(t, 1, len(store.saved))
	assert.DeepEqual(t, "Alice", store.saved[0].Name)
}

func TestContactHandler_ValidationRejected(t *testing.T) {
	store := &memoryStore{}
	resp := postJSON(newContactServer(store),
		`{"name":"A","email":"alice@example.com","subject":"Project inquiry","message":"I would like to discuss a project."}`)

	assert.DeepEqual(t, http.StatusUnprocessableEntity, resp.StatusCode())
	out := decode(t, resp)
	assert.False(t, out.Success)
	assert.DeepEqual(t, "Validation failed", out.Message)
	assert.DeepEqual(t, validation.FieldErrors{validation.FieldName: "Name must be at least 2 characters"}, out.Errors)
	assert.DeepEqual(t, 0, len(store.saved))
}

func TestContactHandler_MissingFieldsAreEmpty(t *testing.T) {
	resp := postJSON(newContactServer(&memoryStore{}), `{}`)

	assert.DeepEqual(t, http.StatusUnprocessableEntity, resp.StatusCode())
	assert.DeepEqual(t, 4, len(decode(t, resp).Errors))
}

func TestContactHandler_StoreFailure(t *testing.T) {
	resp := postJSON(newContactServer(&memoryStore{err: errors.New("db down")}), validJSON)

	assert.DeepEqual(t, http.StatusInternalServerError, resp.StatusCode())
	out := decode(t, resp)
	assert.False(t, out.Success)
	assert.DeepEqual(t, "Failed to send message. Please try again later.", out.Message)
	assert.Nil(t, out.Errors)

	var raw map[string]interface{}
	assert.Nil(t, json.Unmarshal(resp.Body(), &raw))
	_, hasErrors := raw["errors"]
	assert.False(t, hasErrors)
}

func TestContactHandler_MalformedBody(t *testing.T) {
	store := &memoryStore{}
	resp := postJSON(newContactServer(store), `{"name": "Alice",`)

	assert.DeepEqual(t, http.StatusBadRequest, resp.StatusCode())
	out := decode(t, resp)
	assert.False(t, out.Success)
	assert.DeepEqual(t, "Invalid request body", out.Message)
	assert.DeepEqual(t, 0, len(store.saved))
}

func TestContactHandler_FormEncoded(t *testing.T) {
	store := &memoryStore{}
	h := newContactServer(store)

	form := url.Values{
		"name":    {"Bob"},
		"email":   {"bob@example.com"},
		"subject": {"Hello from a form"},
		"message": {"Plain HTML form submissions work too."},
	}.Encode()
	w := ut.PerformRequest(h.Engine, http.MethodPost, "/v1/contact",
		&ut.Body{Body: bytes.NewBufferString(form), Len: len(form)},
		ut.Header{Key: "Content-Type", Value: "application/x-www-form-urlencoded"})

	assert.DeepEqual(t, http.StatusCreated, w.Result().StatusCode())
	assert.DeepEqual(t, 1, len(store.saved))
	assert.DeepEqual(t, "bob@example.com", store.saved[0].Email)
}

func TestContactHandler_QueryDoesNotOverrideJSONBody(t *testing.T) {
	store := &memoryStore{}
	h := newContactServer(store)

	w := ut.PerformRequest(h.Engine, http.MethodPost, "/v1/contact?name=Mallory&email=m@evil.io",
		&ut.Body{Body: bytes.NewBufferString(validJSON), Len: len(validJSON)},
		ut.Header{Key: "Content-Type", Value: "application/json; charset=utf-8"})

	assert.DeepEqual(t, http.StatusCreated, w.Result().StatusCode())
	assert.DeepEqual(t, 1, len(store.saved))
	assert.DeepEqual(t, "Alice", store.saved[0].Name)
	assert.DeepEqual(t, "alice@example.com", store.saved[0].Email)
}

func TestContactHandler_QueryDoesNotFillFormBody(t *testing.T) {
	store := &memoryStore{}
	h := newContactServer(store)

	form := url.Values{
		"email":   {"bob@example.com"},
		"subject": {"Hello from a form"},
		"message": {"Plain HTML form submissions work too."},
	}.Encode()
	w := ut.PerformRequest(h.Engine, http.MethodPost, "/v1/contact?name=Mallory",
		&ut.Body{Body: bytes.NewBufferString(form), Len: len(form)},
		ut.Header{Key: "Content-Type", Value: "application/x-www-form-urlencoded"})

	assert.DeepEqual(t, http.StatusUnprocessableEntity, w.Result().StatusCode())
	assert.DeepEqual(t, "Name must be at least 2 characters", decode(t, w.Result()).Errors[validation.FieldName])
	assert.DeepEqual(t, 0, len(store.saved))
}

func TestContactHandler_Multipart(t *testing.T) {
	store := &memoryStore{}
	h := newContactServer(store)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	assert.Nil(t, mw.WriteField("name", "Carol"))
	assert.Nil(t, mw.WriteField("email", "carol@example.com"))
	assert.Nil(t, mw.WriteField("subject", "Multipart hello"))
	assert.Nil(t, mw.WriteField("message", "Sent as multipart/form-data."))
	assert.Nil(t, mw.Close())

	w := ut.PerformRequest(h.Engine, http.MethodPost, "/v1/contact",
		&ut.Body{Body: &buf, Len: buf.Len()},
		ut.Header{Key: "Content-Type", Value: mw.FormDataContentType()})

	assert.DeepEqual(t, http.StatusCreated, w.Result().StatusCode())
	assert.DeepEqual(t, 1, len(store.saved))
	assert.DeepEqual(t, "Carol", store.saved[0].Name)
}

func TestHealthHandler(t *testing.T) {
	h := server.New()
	down := NewHealthHandler(func(context.Context) error { return errors.New("no db") })
	up := NewHealthHandler(func(context.Context) error { return nil })
	h.GET("/healthz", down.Live)
	h.GET("/readyz/down", down.Ready)
	h.GET("/readyz/up", up.Ready)

	w := ut.PerformRequest(h.Engine, http.MethodGet, "/healthz", nil)
	assert.DeepEqual(t, http.StatusOK, w.Result().StatusCode())

	w = ut.PerformRequest(h.Engine, http.MethodGet, "/readyz/down", nil)
	assert.DeepEqual(t, http.StatusServiceUnavailable, w.Result().StatusCode())

	w = ut.PerformRequest(h.Engine, http.MethodGet, "/readyz/up", nil)
	assert.DeepEqual(t, http.StatusOK, w.Result().StatusCode())
}
