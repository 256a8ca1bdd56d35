package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"portfolio/pkg/logger"
)

// ErrBreakerOpen 熔断期间直接拒绝调用
var ErrBreakerOpen = errors.New("circuit breaker is open")

// State 熔断器状态
type State int

const (
	StateClosed   State = iota // 正常工作
	StateOpen                  // 熔断中
	StateHalfOpen              // 尝试恢复
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker 保护 Redis 调用，连续失败 maxFailures 次后熔断 resetTimeout
type CircuitBreaker struct {
	now func() time.Time

	lastFailTime time.Time
	name         string

	resetTimeout     time.Duration
	maxFailures      int
	halfOpenMaxCalls int

	mu            sync.Mutex
	state         State
	failures      int
	halfOpenCalls int
}

// NewCircuitBreaker 创建熔断器
func NewCircuitBreaker(name string, maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		name:             name,
		maxFailures:      maxFailures,
		resetTimeout:     resetTimeout,
		halfOpenMaxCalls: 3,
		state:            StateClosed,
		now:              time.Now,
	}
}

// Call 执行带熔断保护的操作
func (cb *CircuitBreaker) Call(ctx context.Context, operation func(ctx context.Context) error) error {
	if !cb.allowRequest() {
		return fmt.Errorf("%w: %s", ErrBreakerOpen, cb.name)
	}

	err := operation(ctx)
	cb.recordResult(err)
	return err
}

func (cb *CircuitBreaker) allowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.now().Sub(cb.lastFailTime) < cb.resetTimeout {
			return false
		}
		cb.transitionToHalfOpen()
		fallthrough
	case StateHalfOpen:
		if cb.halfOpenCalls >= cb.halfOpenMaxCalls {
			return false
		}
		cb.halfOpenCalls++
		return true
	default:
		return false
	}
}

func (cb *CircuitBreaker) recordResult(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.onFailure()
	} else {
		cb.onSuccess()
	}
}

func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.transitionToClosed()
	}
}

func (cb *CircuitBreaker) onFailure() {
	cb.failures++
	cb.lastFailTime = cb.now()

	logger.Logger.Warn("Cache operation failed",
		zap.String("breaker", cb.name),
		zap.Int("failures", cb.failures),
		zap.Stringer("state", cb.state),
	)

	switch cb.state {
	case StateClosed:
		if cb.failures >= cb.maxFailures {
			cb.transitionToOpen()
		}
	case StateHalfOpen:
		cb.transitionToOpen()
	}
}

func (cb *CircuitBreaker) transitionToClosed() {
	cb.state = StateClosed
	cb.failures = 0
	cb.halfOpenCalls = 0

	logger.Logger.Info("Circuit breaker transitioned to closed",
		zap.String("breaker", cb.name),
	)
}

func (cb *CircuitBreaker) transitionToOpen() {
	cb.state = StateOpen
	cb.halfOpenCalls = 0

	logger.Logger.Warn("Circuit breaker transitioned to open",
		zap.String("breaker", cb.name),
		zap.Int("failures", cb.failures),
		zap.Duration("reset_timeout", cb.resetTimeout),
	)
}

func (cb *CircuitBreaker) transitionToHalfOpen() {
	cb.state = StateHalfOpen
	cb.halfOpenCalls = 0

	logger.Logger.Info("Circuit breaker transitioned to half-open",
		zap.String("breaker", cb.name),
	)
}

// GetState 获取当前状态
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// RedisBreaker 页面缓存失效用：连续失败 5 次后熔断，30 秒后尝试恢复
var RedisBreaker = NewCircuitBreaker("redis_cache", 5, 30*time.Second)
