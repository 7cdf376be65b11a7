package sink

// State — состояние Server.
//
// Жизненный цикл:
//
//	Idle → Listening → Summarizing → Terminated
//	                 ↘ Draining (отмена) ↗
type State int32

const (
	// StateIdle — Run ещё не вызван.
	StateIdle State = iota

	// StateListening — цикл приёма сообщений.
	StateListening

	// StateDraining — получена отмена, рассылается Sentinel.
	StateDraining

	// StateSummarizing — печать сводки.
	StateSummarizing

	// StateTerminated — endpoint'ы освобождены.
	StateTerminated
)

// String возвращает строковое представление State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateDraining:
		return "draining"
	case StateSummarizing:
		return "summarizing"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Источники отмены.
const (
	cancelNone      = ""
	cancelInterrupt = "interrupt"
	cancelRemote    = "remote"
)
