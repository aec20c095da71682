// Package saga 跨存储的补偿式事务
//
// 下单时库存在MySQL、订单在MongoDB，两者无法放进同一个数据库事务，
// 于是把操作拆成若干步骤，每步带一个补偿操作。某步失败时按逆序执行
// 已完成步骤的补偿：
//
//	s := saga.New("create_order", 10*time.Second, log)
//	s.AddStep("reserve_stock", reserve, restock)
//	s.AddStep("insert_order", insert, nil)
//	err := s.Execute(ctx)
//
// 补偿操作必须幂等，且只依赖自己步骤的结果（用闭包捕获）。
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/restbookstore/pkg/metrics"
)

// Step Saga中的一个步骤
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error // 可以为nil
}

// Saga 一次补偿式事务，不可复用
type Saga struct {
	name     string
	steps    []Step
	executed []Step
	timeout  time.Duration
	log      logrus.FieldLogger
}

// CompensationError 补偿过程中出现的错误，需要人工介入
type CompensationError struct {
	Saga   string
	Cause  error   // 触发补偿的原始错误
	Failed []error // 各补偿步骤的错误
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("saga %s: %v (补偿失败%d步: %v)", e.Saga, e.Cause, len(e.Failed), errors.Join(e.Failed...))
}

func (e *CompensationError) Unwrap() error { return e.Cause }

// New 创建Saga，timeout<=0表示不限时
func New(name string, timeout time.Duration, log logrus.FieldLogger) *Saga {
	metrics.InitMetrics()
	return &Saga{
		name:    name,
		timeout: timeout,
		log:     log.WithField("saga", name),
	}
}

// AddStep 添加步骤，按添加顺序执行、逆序补偿
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{Name: name, Action: action, Compensate: compensate})
	return s
}

// Execute 执行全部步骤
// 某步失败或超时：逆序补偿已完成步骤，返回原始错误（errors.Is可穿透）
// 补偿本身也失败时返回*CompensationError
func (s *Saga) Execute(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		metrics.SagaExecutionsTotal.WithLabelValues(s.name, metrics.Result(err)).Inc()
		metrics.SagaExecutionDuration.WithLabelValues(s.name).Observe(time.Since(start).Seconds())
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return s.rollback(ctx, fmt.Errorf("saga %s 在步骤[%d:%s]前超时: %w", s.name, i, step.Name, ctxErr))
		}

		if step.Action != nil {
			if actErr := step.Action(ctx); actErr != nil {
				s.log.WithFields(logrus.Fields{
					"step":  step.Name,
					"index": i,
				}).WithError(actErr).Warn("saga步骤失败，开始补偿")
				return s.rollback(ctx, actErr)
			}
		}
		s.executed = append(s.executed, step)
	}

	return nil
}

// rollback 逆序补偿，单步补偿失败不影响其余步骤
// 补偿使用不带超时的context，但保留原context中的值（如事务、请求ID）
func (s *Saga) rollback(ctx context.Context, cause error) error {
	if len(s.executed) == 0 {
		return cause
	}
	metrics.SagaCompensationsTotal.WithLabelValues(s.name).Inc()

	cctx := context.WithoutCancel(ctx)
	var failed []error
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(cctx); err != nil {
			s.log.WithField("step", step.Name).WithError(err).Error("saga补偿失败，需要人工介入")
			failed = append(failed, fmt.Errorf("%s: %w", step.Name, err))
		}
	}
	s.executed = nil

	if len(failed) > 0 {
		return &CompensationError{Saga: s.name, Cause: cause, Failed: failed}
	}
	return cause
}
