package workflow

import "github.com/hienhayho/KLTN-v2/internal/core/domain"

// StageEvent is the unit of inter-step communication. Each step consumes
// exactly one variant and emits exactly one variant; FinalAnswerEvent is
// terminal. The stage graph is a DAG, at most five edges per request.
type StageEvent interface {
	stageEvent()
}

// PreprocessEvent triggers translation, rewrite, classification and the
// history-answer shortcut.
type PreprocessEvent struct {
	Query   string
	History []domain.Message
}

// RetrieveEvent carries the resolved query into retrieval.
type RetrieveEvent struct {
	Query string
}

// AfterRetrieveEvent carries retrieval output into answer generation.
type AfterRetrieveEvent struct {
	Contexts []string
}

// AnswerEvent carries a generated or canned answer into finalization.
type AnswerEvent struct {
	Answer   string
	Contexts []string
}

// FinalAnswerEvent is the terminal event; exactly one is produced per run.
type FinalAnswerEvent struct {
	Answer     string
	FinalQuery string
	Contexts   []string
}

func (PreprocessEvent) stageEvent()    {}
func (RetrieveEvent) stageEvent()      {}
func (AfterRetrieveEvent) stageEvent() {}
func (AnswerEvent) stageEvent()        {}
func (FinalAnswerEvent) stageEvent()   {}
