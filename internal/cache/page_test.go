package cache

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type fakeDeleter struct {
	err   error
	calls [][]string
}

func (f *fakeDeleter) Del(ctx context.Context, keys ...string) *redislib.IntCmd {
	f.calls = append(f.calls, keys)
	cmd := redislib.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(int64(len(keys)))
	}
	return cmd
}

func TestPageInvalidator_DeletesConfiguredKeys(t *testing.T) {
	del := &fakeDeleter{}
	inv := NewPageInvalidator(del, NewCircuitBreaker("t", 3, time.Minute), "folio:page:/", "folio:page:/contact")

	if err := inv.AfterSubmit(context.Background(), nil); err != nil {
		t.Fatalf("AfterSubmit: %v", err)
	}
	want := [][]string{{"folio:page:/", "folio:page:/contact"}}
	if !reflect.DeepEqual(del.calls, want) {
		t.Errorf("Del calls = %v, want %v", del.calls, want)
	}
}

func TestPageInvalidator_NoKeysIsNoop(t *testing.T) {
	del := &fakeDeleter{}
	inv := NewPageInvalidator(del, NewCircuitBreaker("t", 3, time.Minute))

	if err := inv.AfterSubmit(context.Background(), nil); err != nil {
		t.Fatalf("AfterSubmit: %v", err)
	}
	if len(del.calls) != 0 {
		t.Errorf("unexpected Del calls: %v", del.calls)
	}
}

func TestPageInvalidator_ErrorsTripBreaker(t *testing.T) {
	del := &fakeDeleter{err: errors.New("connection refused")}
	inv := NewPageInvalidator(del, NewCircuitBreaker("t", 2, time.Minute), "folio:page:/")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := inv.AfterSubmit(ctx, nil); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	err := inv.AfterSubmit(ctx, nil)
	if !errors.Is(err, ErrBreakerOpen) {
		t.Errorf("err = %v, want ErrBreakerOpen", err)
	}
	if len(del.calls) != 2 {
		t.Errorf("Redis must not be called while the breaker is open, got %d calls", len(del.calls))
	}
}
