// Package form 是联系表单的客户端状态机：字段值、touched 标记、逐字段和整表校验、
// 提交生命周期和一次性通知。
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"portfolio/internal/model/dto"
	"portfolio/internal/validation"
)

// DefaultTimeout 单次提交的最长等待时间
const DefaultTimeout = 15 * time.Second

// TransportErrorMessage 传输失败或超时时给用户的文案
const TransportErrorMessage = "Something went wrong. Please try again later."

var ErrUnknownField = errors.New("form: unknown field")

// Submitter 把通过本地校验的字段交给服务端，error 只表示传输层故障
type Submitter interface {
	Submit(ctx context.Context, fields validation.Fields) (dto.SubmitResult, error)
}

// SubmitterFunc 函数适配器
type SubmitterFunc func(ctx context.Context, fields validation.Fields) (dto.SubmitResult, error)

func (f SubmitterFunc) Submit(ctx context.Context, fields validation.Fields) (dto.SubmitResult, error) {
	return f(ctx, fields)
}

// Notifier 用户可见的一次性提示
type Notifier interface {
	Success(message string)
	Failure(message string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Failure(string) {}

type transition struct {
	from, to State
}

// Controller 单个表单实例。所有方法并发安全，同一时间最多一个在途提交。
type Controller struct {
	submitter Submitter
	notifier  Notifier
	timeout   time.Duration
	focus     func(validation.Field)
	observe   func(from, to State)

	mu      sync.Mutex
	state   State
	values  validation.Fields
	errors  validation.FieldErrors
	touched map[validation.Field]bool
	pending []transition
}

type Option func(*Controller)

// WithTimeout 设置提交超时，<=0 时使用 DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithFocus 本地校验失败时以第一个错误字段回调（按声明顺序）
func WithFocus(fn func(validation.Field)) Option {
	return func(c *Controller) {
		c.focus = fn
	}
}

// WithStateObserver 状态变化回调，在锁外按发生顺序调用
func WithStateObserver(fn func(from, to State)) Option {
	return func(c *Controller) {
		c.observe = fn
	}
}

func New(submitter Submitter, notifier Notifier, opts ...Option) *Controller {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	c := &Controller{
		submitter: submitter,
		notifier:  notifier,
		timeout:   DefaultTimeout,
		errors:    validation.FieldErrors{},
		touched:   make(map[validation.Field]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Change 更新字段值；字段已有错误时先乐观清除，等 blur/submit 再校验
func (c *Controller) Change(field validation.Field, value string) error {
	if !validation.Known(field) {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	c.mu.Lock()
	defer c.unlock()

	c.values.Set(field, value)
	delete(c.errors, field)
	if c.state != StateSubmitting {
		c.setState(StateEditing)
	}
	return nil
}

// Blur 标记 touched 并单独校验该字段
func (c *Controller) Blur(field validation.Field) error {
	if !validation.Known(field) {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	c.mu.Lock()
	defer c.unlock()

	c.touched[field] = true
	if msg, ok := validation.ValidateField(field, c.values.Get(field)); !ok {
		c.errors[field] = msg
	} else {
		delete(c.errors, field)
	}
	return nil
}

// Submit 提交表单。Submitting 期间重复调用直接返回 OutcomeIgnored。
// 本地校验失败不会调用 Submitter，也不发通知；到达 Submitter 的每次提交恰好一条通知。
func (c *Controller) Submit(ctx context.Context) Outcome {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.unlock()
		return OutcomeIgnored
	}

	for _, field := range validation.Order {
		c.touched[field] = true
	}

	res := validation.Validate(c.values)
	if !res.Valid() {
		c.errors = res.Errors.Clone()
		c.setState(StateFailed)
		first, _ := res.Errors.First()
		c.unlock()

		if c.focus != nil {
			c.focus(first)
		}
		return OutcomeInvalid
	}

	c.errors = validation.FieldErrors{}
	c.setState(StateSubmitting)
	fields := c.values
	c.unlock()

	// 调用期间不持锁，Change 仍可用
	result, err := c.call(ctx, fields)

	c.mu.Lock()
	switch {
	case err != nil:
		c.setState(StateFailed)
		c.setState(StateEditing)
		c.unlock()

		c.notifier.Failure(TransportErrorMessage)
		return OutcomeTransportError

	case result.Success:
		c.values = validation.Fields{}
		c.errors = validation.FieldErrors{}
		c.touched = make(map[validation.Field]bool)
		c.setState(StateSuccess)
		c.setState(StateIdle)
		c.unlock()

		c.notifier.Success(result.Message)
		return OutcomeSent

	default:
		// 只有服务端校验失败会带字段错误，存储失败只有通用文案
		for field, msg := range result.Errors {
			if !validation.Known(field) {
				continue
			}
			c.errors[field] = msg
			c.touched[field] = true
		}
		c.setState(StateFailed)
		c.setState(StateEditing)
		c.unlock()

		msg := result.Message
		if msg == "" {
			msg = TransportErrorMessage
		}
		c.notifier.Failure(msg)
		return OutcomeRejected
	}
}

// call 在超时内等待 Submitter，超时后放弃这次调用
func (c *Controller) call(ctx context.Context, fields validation.Fields) (dto.SubmitResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type reply struct {
		result dto.SubmitResult
		err    error
	}
	done := make(chan reply, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: fmt.Errorf("submitter panic: %v", r)}
			}
		}()
		result, err := c.submitter.Submit(ctx, fields)
		done <- reply{result: result, err: err}
	}()

	select {
	case r := <-done:
		return r.result, r.err
	case <-ctx.Done():
		return dto.SubmitResult{}, ctx.Err()
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Values() validation.Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values
}

// Errors 返回可见错误，只包含 touched 字段
func (c *Controller) Errors() validation.FieldErrors {
	c.mu.Lock()
	defer c.mu.Unlock()

	visible := validation.FieldErrors{}
	for field, msg := range c.errors {
		if c.touched[field] {
			visible[field] = msg
		}
	}
	return visible
}

func (c *Controller) Touched(field validation.Field) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched[field]
}

func (c *Controller) setState(to State) {
	if c.state == to {
		return
	}
	c.pending = append(c.pending, transition{from: c.state, to: to})
	c.state = to
}

// unlock 释放锁后再回调状态观察者
func (c *Controller) unlock() {
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	if c.observe == nil {
		return
	}
	for _, t := range pending {
		c.observe(t.from, t.to)
	}
}
