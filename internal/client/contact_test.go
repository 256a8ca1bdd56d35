package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/common/test/assert"
	"github.com/cloudwego/hertz/pkg/protocol"

	"portfolio/internal/model/dto"
	"portfolio/internal/validation"
)

type fakeDoer struct {
	status int
	body   string
	err    error

	calls       int
	uri         string
	method      string
	contentType string
	reqBody     string
	timeout     time.Duration
}

func (d *fakeDoer) DoTimeout(ctx context.Context, req *protocol.Request, resp *protocol.Response, timeout time.Duration) error {
	d.calls++
	d.uri = req.URI().String()
	d.method = string(req.Method())
	d.contentType = string(req.Header.ContentType())
	d.reqBody = string(req.Body())
	d.timeout = timeout
	if d.err != nil {
		return d.err
	}
	resp.SetStatusCode(d.status)
	resp.SetBodyString(d.body)
	return nil
}

var fields = validation.Fields{
	Name:    "Al",
	Email:   "a@b.co",
	Subject: "Hello there",
	Message: "This is a test message.",
}

func newTestClient(t *testing.T, doer Doer, opts ...Option) *ContactClient {
	t.Helper()
	c, err := NewContactClient("http://localhost:8080/", append(opts, WithDoer(doer))...)
	assert.Nil(t, err)
	return c
}

func TestSubmit_Accepted(t *testing.T) {
	doer := &fakeDoer{status: 201, body: `{"success":true,"message":"Message sent successfully! I will get back to you soon."}`}
	c := newTestClient(t, doer)

	res, err := c.Submit(context.Background(), fields)
	assert.Nil(t, err)
	assert.DeepEqual(t, dto.Accepted(), res)

	assert.DeepEqual(t, "http://localhost:8080/v1/contact", doer.uri)
	assert.DeepEqual(t, "POST", doer.method)
	assert.DeepEqual(t, "application/json", doer.contentType)
	assert.DeepEqual(t, `{"name":"Al","email":"a@b.co","subject":"Hello there","message":"This is a test message."}`, doer.reqBody)
	assert.DeepEqual(t, DefaultTimeout, doer.timeout)
}

func TestSubmit_RejectedCarriesFieldErrors(t *testing.T) {
	doer := &fakeDoer{status: 422, body: `{"success":false,"message":"Validation failed","errors":{"name":"Name must be at least 2 characters"}}`}
	res, err := newTestClient(t, doer).Submit(context.Background(), fields)

	assert.Nil(t, err)
	assert.DeepEqual(t, dto.ResultRejected, res.Kind())
	assert.DeepEqual(t, "Name must be at least 2 characters", res.Errors[validation.FieldName])
}

func TestSubmit_StoreFailureIsAResult(t *testing.T) {
	doer := &fakeDoer{status: 500, body: `{"success":false,"message":"Failed to send message. Please try again later."}`}
	res, err := newTestClient(t, doer).Submit(context.Background(), fields)

	assert.Nil(t, err)
	assert.DeepEqual(t, dto.Failed(), res)
}

func TestSubmit_TransportFaults(t *testing.T) {
	tests := []struct {
		name string
		doer *fakeDoer
	}{
		{"dial error", &fakeDoer{err: errors.New("dial tcp: connection refused")}},
		{"rate limited envelope", &fakeDoer{status: 429, body: `{"error":{"code":"TOO_MANY_REQUESTS","message":"Too many requests"}}`}},
		{"html body", &fakeDoer{status: 502, body: `<html>Bad Gateway</html>`}},
		{"empty message", &fakeDoer{status: 200, body: `{"success":true,"message":""}`}},
		{"empty body", &fakeDoer{status: 204}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestClient(t, tt.doer).Submit(context.Background(), fields)
			assert.True(t, errors.Is(err, ErrTransport))
		})
	}
}

func TestSubmit_TimeoutFollowsContextDeadline(t *testing.T) {
	doer := &fakeDoer{status: 201, body: `{"success":true,"message":"ok"}`}
	c := newTestClient(t, doer, WithTimeout(time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := c.Submit(ctx, fields)
	assert.Nil(t, err)
	assert.True(t, doer.timeout > 0 && doer.timeout <= time.Second)
}

func TestSubmit_ExpiredContext(t *testing.T) {
	doer := &fakeDoer{}
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := newTestClient(t, doer).Submit(ctx, fields)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.DeepEqual(t, 0, doer.calls)
}

func TestNewContactClient_EmptyURL(t *testing.T) {
	_, err := NewContactClient("")
	assert.NotNil(t, err)
}
