package pipeline

import (
	"context"
	"fmt"

	"ap-agent/types"
	"ap-agent/vars"
)

// Extractor 字段提取器边界（LLM 调用）
// 失败只能表现为 error 或 nil 记录，两者对流水线等价：都是"没提取到数据"
type Extractor interface {
	Extract(ctx context.Context, invoiceText string, attempt int) (*types.InvoiceRecord, error)
}

// Validator 校验引擎边界
type Validator interface {
	Validate(ctx context.Context, invoice *types.InvoiceRecord) (*types.ValidationResult, error)
}

// Config 流水线配置
type Config struct {
	EnableReflection bool // 校验失败时是否让提取器重试
	MaxRetries       int  // 重试上限（不含首次）
}

func DefaultConfig() Config {
	return Config{
		EnableReflection: vars.EnableReflection,
		MaxRetries:       vars.MaxRetries,
	}
}

// 状态机: EXTRACT → VALIDATE → (REFLECT) → DECIDE
// REFLECT 只会回到 EXTRACT，DECIDE 永远是出口
type state int

const (
	stateExtract state = iota
	stateValidate
	stateReflect
	stateDecide
)

// Pipeline 决策流水线，单次调用同步跑完，每次调用的状态都是私有的
type Pipeline struct {
	extractor Extractor
	validator Validator
	cfg       Config
}

func NewPipeline(extractor Extractor, validator Validator, cfg Config) *Pipeline {
	return &Pipeline{extractor: extractor, validator: validator, cfg: cfg}
}

// runState 单次调用的局部状态，重试计数跟着它走，没有全局计数器
type runState struct {
	extracted *types.InvoiceRecord
	verdict   *types.ValidationResult
	notes     []string
	attempts  int
	retries   int
	infraErr  error
}

// Run 流水线入口：同步执行，总是产出恰好一个终态决策
//
// 返回的 error 只在基础设施故障时非 nil（参考数据源不可用等），此时
// outcome 仍然是一个带说明的 REJECTED 终态——单张发票的故障不往上炸。
func (p *Pipeline) Run(ctx context.Context, invoiceText string) (*types.PipelineOutcome, error) {
	rs := &runState{}

	for st := stateExtract; st != stateDecide; {
		switch st {
		case stateExtract:
			rs.attempts++
			data, err := p.extractor.Extract(ctx, invoiceText, rs.attempts)
			if err != nil || data == nil {
				// 提取失败降级为"无数据"，不触发校验
				rs.extracted = nil
				rs.verdict = nil
				if err != nil {
					rs.notes = append(rs.notes, fmt.Sprintf("❌ Extraction failed: %v", err))
				} else {
					rs.notes = append(rs.notes, "❌ Extraction produced no structured data.")
				}
				st = stateDecide
			} else {
				rs.extracted = data
				st = stateValidate
			}

		case stateValidate:
			verdict, err := p.validator.Validate(ctx, rs.extracted)
			if err != nil {
				// 存储故障不是业务拒绝，记下来并终止本次调用
				rs.verdict = nil
				rs.infraErr = err
				rs.notes = append(rs.notes, fmt.Sprintf("❌ Validation aborted: %v", err))
				st = stateDecide
				break
			}
			rs.verdict = verdict
			if !verdict.IsValid && p.cfg.EnableReflection && rs.retries < p.cfg.MaxRetries {
				st = stateReflect
			} else {
				rs.notes = append(rs.notes, verdict.Errors...)
				rs.notes = append(rs.notes, verdict.Advisories...)
				st = stateDecide
			}

		case stateReflect:
			// 给提取器再来一次的机会，丢弃失败轮的结论
			rs.retries++
			rs.notes = append(rs.notes, fmt.Sprintf("🤔 Attempt %d failed validation (%d issue(s)), retrying extraction...",
				rs.attempts, len(rs.verdict.Errors)))
			rs.verdict = nil
			st = stateExtract
		}
	}

	return p.decide(rs), rs.infraErr
}

// decide 终态映射
func (p *Pipeline) decide(rs *runState) *types.PipelineOutcome {
	outcome := &types.PipelineOutcome{
		ExtractedData:    rs.extracted,
		ValidationResult: rs.verdict,
		AnalysisNotes:    rs.notes,
		Attempts:         rs.attempts,
	}

	switch {
	case rs.verdict == nil:
		outcome.FinalDecision = types.DecisionRejected
	case rs.verdict.IsValid && rs.verdict.RequiresReview:
		outcome.FinalDecision = types.DecisionFlag
	case rs.verdict.IsValid:
		outcome.FinalDecision = types.DecisionPay
	default:
		outcome.FinalDecision = types.DecisionRejected
	}

	// 非 PAY 的结论必须带至少一条人类可读的说明
	if outcome.FinalDecision != types.DecisionPay && len(outcome.AnalysisNotes) == 0 {
		outcome.AnalysisNotes = append(outcome.AnalysisNotes, "❌ Invoice rejected with no recorded reason.")
	}
	return outcome
}
