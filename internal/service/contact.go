package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"portfolio/internal/model"
	"portfolio/internal/model/dto"
	"portfolio/internal/repository"
	"portfolio/internal/validation"
	"portfolio/pkg/logger"
	"portfolio/pkg/metrics"
	"portfolio/utils"
)

// SubmitHook 在联系消息落库后执行（页面缓存失效、事件投递）。
// 返回的错误只记录日志，不影响提交结果。
type SubmitHook interface {
	Name() string
	AfterSubmit(ctx context.Context, msg *model.ContactMessage) error
}

// DefaultHookTimeout 单个 hook 的最长执行时间
const DefaultHookTimeout = 2 * time.Second

// ContactService 联系表单的服务端处理：重新校验、写入、执行钩子
type ContactService struct {
	store       repository.MessageStore
	hooks       []SubmitHook
	hookTimeout time.Duration
}

func NewContactService(store repository.MessageStore, hooks ...SubmitHook) *ContactService {
	return &ContactService{store: store, hooks: hooks, hookTimeout: DefaultHookTimeout}
}

// WithHookTimeout 覆盖单个 hook 的超时，<=0 时忽略
func (s *ContactService) WithHookTimeout(d time.Duration) *ContactService {
	if d > 0 {
		s.hookTimeout = d
	}
	return s
}

// Submit 处理一次提交。客户端校验不可信，这里总是重新校验；
// 校验不通过时不写库。写库失败不重试，也不暴露内部错误。
func (s *ContactService) Submit(ctx context.Context, req dto.ContactFormRequest) dto.SubmitResult {
	start := time.Now()
	result := s.submit(ctx, req)
	metrics.GetMetrics().RecordSubmission(ctx, result.Kind().String(), time.Since(start))
	return result
}

func (s *ContactService) submit(ctx context.Context, req dto.ContactFormRequest) dto.SubmitResult {
	checked := validation.Validate(req.Fields())
	if !checked.Valid() {
		logger.WithContext(ctx).Info("Contact submission rejected",
			zap.Int("invalid_fields", len(checked.Errors)),
		)
		return dto.Rejected(checked.Errors)
	}

	msg := model.NewContactMessage(checked.Fields)
	if err := s.append(ctx, msg); err != nil {
		logger.WithContext(ctx).Error("Failed to store contact message",
			zap.String("email", utils.MaskEmail(msg.Email)),
			zap.Error(err),
		)
		return dto.Failed()
	}

	logger.WithContext(ctx).Info("Contact message stored",
		zap.String("contact_id", msg.ID.String()),
		zap.String("email", utils.MaskEmail(msg.Email)),
	)

	s.runHooks(ctx, msg)
	return dto.Accepted()
}

// append 存储层的 panic 按写入失败处理
func (s *ContactService) append(ctx context.Context, msg *model.ContactMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("message store panicked: %v", r)
		}
	}()

	return s.store.Append(ctx, msg)
}

// runHooks hook 不跟随请求取消，但各自受 hookTimeout 限制
func (s *ContactService) runHooks(ctx context.Context, msg *model.ContactMessage) {
	base := context.WithoutCancel(ctx)
	for _, hook := range s.hooks {
		hookCtx, cancel := context.WithTimeout(base, s.hookTimeout)
		err := runHook(hookCtx, hook, msg)
		cancel()
		if err != nil {
			metrics.GetMetrics().RecordHookFailure(ctx, hook.Name())
			logger.WithContext(ctx).Warn("Contact submit hook failed",
				zap.String("hook", hook.Name()),
				zap.String("contact_id", msg.ID.String()),
				zap.Error(err),
			)
		}
	}
}

func runHook(ctx context.Context, hook SubmitHook, msg *model.ContactMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook panicked: %v", r)
		}
	}()

	return hook.AfterSubmit(ctx, msg)
}
