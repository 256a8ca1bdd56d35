package form

// State 表单状态
type State int

const (
	StateIdle State = iota
	StateEditing
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome 一次 Submit 的结果
type Outcome int

const (
	// OutcomeIgnored 已有提交在途
	OutcomeIgnored Outcome = iota
	// OutcomeInvalid 本地校验失败，未发送
	OutcomeInvalid
	// OutcomeSent 服务端接受
	OutcomeSent
	// OutcomeRejected 服务端返回失败（校验拒绝或存储失败）
	OutcomeRejected
	// OutcomeTransportError 传输失败或超时
	OutcomeTransportError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeSent:
		return "sent"
	case OutcomeRejected:
		return "rejected"
	case OutcomeTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}
