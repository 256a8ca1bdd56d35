package form

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"portfolio/internal/model"
	"portfolio/internal/model/dto"
	"portfolio/internal/service"
	"portfolio/internal/validation"
)

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Failure(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, msg)
}

func (n *recordingNotifier) total() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.successes) + len(n.failures)
}

type fakeSubmitter struct {
	calls  int32
	result dto.SubmitResult
	err    error
}

func (s *fakeSubmitter) Submit(ctx context.Context, fields validation.Fields) (dto.SubmitResult, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.result, s.err
}

type memoryStore struct {
	mu    sync.Mutex
	saved []*model.ContactMessage
}

func (s *memoryStore) Append(ctx context.Context, msg *model.ContactMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, msg)
	return nil
}

func fill(t *testing.T, c *Controller, f validation.Fields) {
	t.Helper()
	for _, field := range validation.Order {
		if err := c.Change(field, f.Get(field)); err != nil {
			t.Fatalf("Change(%s): %v", field, err)
		}
	}
}

var validInput = validation.Fields{
	Name:    "Al",
	Email:   "a@b.co",
	Subject: "Hello there",
	Message: "This is a test message.",
}

// 直接接到 ContactService，验证整条链路
func TestController_ValidSubmissionStoresOneRecordAndResets(t *testing.T) {
	store := &memoryStore{}
	svc := service.NewContactService(store)
	notifier := &recordingNotifier{}

	var states []State
	c := New(SubmitterFunc(func(ctx context.Context, f validation.Fields) (dto.SubmitResult, error) {
		return svc.Submit(ctx, dto.NewContactFormRequest(f)), nil
	}), notifier, WithStateObserver(func(from, to State) {
		states = append(states, to)
	}))

	fill(t, c, validInput)
	if got := c.Submit(context.Background()); got != OutcomeSent {
		t.Fatalf("outcome = %v, want sent", got)
	}

	if len(store.saved) != 1 {
		t.Fatalf("stored %d records, want 1", len(store.saved))
	}
	if got := store.saved[0].Fields(); got != validInput {
		t.Errorf("stored fields = %+v, want %+v", got, validInput)
	}
	if c.Values() != (validation.Fields{}) {
		t.Errorf("values not reset: %+v", c.Values())
	}
	if len(c.Errors()) != 0 {
		t.Errorf("errors not reset: %v", c.Errors())
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v, want idle", c.State())
	}
	if len(notifier.successes) != 1 || notifier.successes[0] != dto.MessageAccepted {
		t.Errorf("success notifications = %v", notifier.successes)
	}
	if len(notifier.failures) != 0 {
		t.Errorf("unexpected failure notifications: %v", notifier.failures)
	}

	want := []State{StateEditing, StateSubmitting, StateSuccess, StateIdle}
	if !reflect.DeepEqual(states, want) {
		t.Errorf("transitions = %v, want %v", states, want)
	}
}

func TestController_LocalValidationBlocksSubmit(t *testing.T) {
	sub := &fakeSubmitter{result: dto.Accepted()}
	notifier := &recordingNotifier{}
	var focused validation.Field
	c := New(sub, notifier, WithFocus(func(f validation.Field) { focused = f }))

	in := validInput
	in.Name = "A"
	fill(t, c, in)

	if got := c.Submit(context.Background()); got != OutcomeInvalid {
		t.Fatalf("outcome = %v, want invalid", got)
	}
	if sub.calls != 0 {
		t.Errorf("submitter called %d times", sub.calls)
	}
	want := validation.FieldErrors{validation.FieldName: "Name must be at least 2 characters"}
	if !reflect.DeepEqual(c.Errors(), want) {
		t.Errorf("errors = %v, want %v", c.Errors(), want)
	}
	if focused != validation.FieldName {
		t.Errorf("focused = %q, want name", focused)
	}
	if c.State() != StateFailed {
		t.Errorf("state = %v, want failed", c.State())
	}
	if notifier.total() != 0 {
		t.Error("local validation failure must not notify")
	}
	if c.Values() != in {
		t.Error("values must be retained")
	}
}

func TestController_MultipleLocalErrors(t *testing.T) {
	sub := &fakeSubmitter{}
	var focused validation.Field
	c := New(sub, nil, WithFocus(func(f validation.Field) { focused = f }))

	fill(t, c, validation.Fields{Name: "Alice", Email: "not-an-email", Subject: "Hi", Message: "short"})
	if got := c.Submit(context.Background()); got != OutcomeInvalid {
		t.Fatalf("outcome = %v", got)
	}

	errs := c.Errors()
	if len(errs) != 3 {
		t.Fatalf("errors = %v, want 3", errs)
	}
	if _, ok := errs[validation.FieldName]; ok {
		t.Error("name is valid and must not have an error")
	}
	if focused != validation.FieldEmail {
		t.Errorf("focused = %q, want email", focused)
	}
	if sub.calls != 0 {
		t.Error("submitter must not be called")
	}
}

func TestController_StoreFailureKeepsValues(t *testing.T) {
	sub := &fakeSubmitter{result: dto.Failed()}
	notifier := &recordingNotifier{}
	c := New(sub, notifier)

	fill(t, c, validInput)
	if got := c.Submit(context.Background()); got != OutcomeRejected {
		t.Fatalf("outcome = %v, want rejected", got)
	}

	if c.Values() != validInput {
		t.Errorf("values = %+v, want retained", c.Values())
	}
	if len(c.Errors()) != 0 {
		t.Errorf("storage failure must not set field errors: %v", c.Errors())
	}
	if len(notifier.failures) != 1 || notifier.failures[0] != dto.MessageSubmitFailed {
		t.Errorf("failures = %v", notifier.failures)
	}
	if c.State() != StateEditing {
		t.Errorf("state = %v, want editing", c.State())
	}
}

func TestController_MergesServerFieldErrors(t *testing.T) {
	sub := &fakeSubmitter{result: dto.Rejected(validation.FieldErrors{
		validation.FieldEmail: "Please enter a valid email address",
	})}
	notifier := &recordingNotifier{}
	c := New(sub, notifier)

	fill(t, c, validInput)
	if got := c.Submit(context.Background()); got != OutcomeRejected {
		t.Fatalf("outcome = %v", got)
	}

	want := validation.FieldErrors{validation.FieldEmail: "Please enter a valid email address"}
	if !reflect.DeepEqual(c.Errors(), want) {
		t.Errorf("errors = %v, want %v", c.Errors(), want)
	}
	if len(notifier.failures) != 1 || notifier.failures[0] != dto.MessageValidationFailed {
		t.Errorf("failures = %v", notifier.failures)
	}
	if c.Values() != validInput {
		t.Error("values must be retained")
	}
}

func TestController_TransportErrorIsGeneric(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("connection refused")}
	notifier := &recordingNotifier{}
	c := New(sub, notifier)

	fill(t, c, validInput)
	if got := c.Submit(context.Background()); got != OutcomeTransportError {
		t.Fatalf("outcome = %v", got)
	}
	if len(c.Errors()) != 0 {
		t.Errorf("transport failure must not claim field errors: %v", c.Errors())
	}
	if len(notifier.failures) != 1 || notifier.failures[0] != TransportErrorMessage {
		t.Errorf("failures = %v", notifier.failures)
	}
	if c.State() != StateEditing {
		t.Errorf("state = %v", c.State())
	}
}

func TestController_TimeoutAbandonsCall(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	notifier := &recordingNotifier{}
	c := New(SubmitterFunc(func(ctx context.Context, f validation.Fields) (dto.SubmitResult, error) {
		<-release
		return dto.Accepted(), nil
	}), notifier, WithTimeout(20*time.Millisecond))

	fill(t, c, validInput)
	start := time.Now()
	if got := c.Submit(context.Background()); got != OutcomeTransportError {
		t.Fatalf("outcome = %v, want transport error", got)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("submit did not honour the timeout")
	}
	if c.State() != StateEditing {
		t.Errorf("state = %v, want editing", c.State())
	}
	if c.Values() != validInput {
		t.Error("values must be retained")
	}
	if notifier.total() != 1 {
		t.Errorf("notifications = %d, want 1", notifier.total())
	}
}

func TestController_ConcurrentSubmitCallsHandlerOnce(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls int32

	notifier := &recordingNotifier{}
	c := New(SubmitterFunc(func(ctx context.Context, f validation.Fields) (dto.SubmitResult, error) {
		atomic.AddInt32(&calls, 1)
		close(entered)
		<-release
		return dto.Accepted(), nil
	}), notifier)
	fill(t, c, validInput)

	first := make(chan Outcome, 1)
	go func() { first <- c.Submit(context.Background()) }()

	<-entered
	if got := c.Submit(context.Background()); got != OutcomeIgnored {
		t.Errorf("second submit = %v, want ignored", got)
	}
	if c.State() != StateSubmitting {
		t.Errorf("state = %v, want submitting", c.State())
	}
	close(release)

	if got := <-first; got != OutcomeSent {
		t.Errorf("first submit = %v, want sent", got)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("handler called %d times, want 1", n)
	}
	if notifier.total() != 1 {
		t.Errorf("notifications = %d, want 1", notifier.total())
	}
}

func TestController_BlurShowsOnlyTouchedErrors(t *testing.T) {
	c := New(&fakeSubmitter{}, nil)

	if err := c.Change(validation.FieldName, "A"); err != nil {
		t.Fatal(err)
	}
	if len(c.Errors()) != 0 {
		t.Error("untouched field must not show an error")
	}

	if err := c.Blur(validation.FieldName); err != nil {
		t.Fatal(err)
	}
	if got := c.Errors()[validation.FieldName]; got != "Name must be at least 2 characters" {
		t.Errorf("name error = %q", got)
	}

	// 修改时乐观清除
	if err := c.Change(validation.FieldName, "Ab"); err != nil {
		t.Fatal(err)
	}
	if len(c.Errors()) != 0 {
		t.Errorf("error should clear on change: %v", c.Errors())
	}

	// 空字段 blur 也会校验
	if err := c.Blur(validation.FieldEmail); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Errors()[validation.FieldEmail]; !ok {
		t.Error("blurred empty email should show an error")
	}
}

func TestController_UnknownField(t *testing.T) {
	c := New(&fakeSubmitter{}, nil)

	if err := c.Change(validation.Field("phone"), "1"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Change err = %v", err)
	}
	if err := c.Blur(validation.Field("phone")); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Blur err = %v", err)
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v, want idle", c.State())
	}
}

func TestController_ResubmitAfterFailure(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("boom")}
	c := New(sub, nil)
	fill(t, c, validInput)

	if got := c.Submit(context.Background()); got != OutcomeTransportError {
		t.Fatalf("outcome = %v", got)
	}

	sub.err = nil
	sub.result = dto.Accepted()
	if got := c.Submit(context.Background()); got != OutcomeSent {
		t.Fatalf("retry outcome = %v", got)
	}
	if sub.calls != 2 {
		t.Errorf("calls = %d, want 2", sub.calls)
	}
}
