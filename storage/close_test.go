package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestCloseAll_ContinuesAfterFailure(t *testing.T) {
	var order []string
	record := func(name string, err error) closer {
		return closer{name: name, close: func(context.Context) error {
			order = append(order, name)
			return err
		}}
	}

	boom := errors.New("boom")
	err := closeAll(context.Background(), []closer{
		record("rabbitmq", nil),
		record("redis", boom),
		record("postgres", nil),
	})

	if want := []string{"rabbitmq", "redis", "postgres"}; !reflect.DeepEqual(order, want) {
		t.Errorf("close order = %v, want %v", order, want)
	}
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

func TestCloseAll_NoErrors(t *testing.T) {
	err := closeAll(context.Background(), []closer{
		{name: "redis", close: func(context.Context) error { return nil }},
	})
	if err != nil {
		t.Errorf("err = %v", err)
	}
}
