package a2a

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ibranibeny/text2sql"
	"github.com/ibranibeny/text2sql/internal/logging"
)

// artifactRowLimit caps rows embedded in the query_result data artifact.
const artifactRowLimit = 50

// Handler implements the task lifecycle over the pipeline. Execution inside
// Send is synchronous: a task moves submitted -> working -> completed/failed
// within one call, so Cancel can realistically only affect a task it races
// ahead of. That simplification is deliberate; there is no preemption of an
// in-flight model call or query.
type Handler struct {
	pipeline text2sql.Pipeline
	store    *Store
	log      logrus.FieldLogger
}

// NewHandler creates a Handler backed by the given store.
func NewHandler(pipeline text2sql.Pipeline, store *Store, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{pipeline: pipeline, store: store, log: log}
}

// Send processes one tasks/send call: create (or fetch) the task, run the
// pipeline, and return the task in its terminal state.
func (h *Handler) Send(ctx context.Context, params SendParams) (*Task, error) {
	taskID := params.ID
	if taskID == "" {
		taskID = uuid.NewString()
	}

	task := h.store.Get(taskID)
	if task == nil {
		sessionID := params.SessionID
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		task = &Task{
			ID:        taskID,
			SessionID: sessionID,
			Status:    NewTaskStatus(TaskStateSubmitted, nil),
		}
	}

	task.Messages = append(task.Messages, params.Message)
	task.transition(NewTaskStatus(TaskStateWorking, nil))
	h.store.Put(task)

	question := extractQuestion(params.Message)
	if question == "" {
		h.fail(task, "No question found in the message. Please send a text question.")
		return task, nil
	}

	result, err := h.pipeline.ProcessQuestion(ctx, text2sql.QuestionRequest{
		Question:       question,
		ConversationID: task.SessionID,
	})
	if err != nil {
		h.log.WithError(err).Error("pipeline failure")
		h.fail(task, "Error processing query: "+logging.Mask(err.Error()))
		return task, nil
	}
	if result.Failed() {
		h.fail(task, "Error processing query: "+result.Error)
		return task, nil
	}

	agentMsg := Message{Role: "agent", Parts: []Part{TextPart(result.Answer)}}
	task.Artifacts = buildArtifacts(result)
	task.Messages = append(task.Messages, agentMsg)
	task.transition(NewTaskStatus(TaskStateCompleted, &agentMsg))
	h.store.Put(task)
	return task, nil
}

// Get returns the task by id, truncating history to the most recent
// historyLength entries when set. A historyLength of 0 means no truncation.
func (h *Handler) Get(params GetParams) (*Task, error) {
	task := h.store.Get(params.ID)
	if task == nil {
		return nil, text2sql.NewTaskNotFoundError(params.ID)
	}
	if params.HistoryLength != nil && *params.HistoryLength > 0 && len(task.History) > *params.HistoryLength {
		task.History = task.History[len(task.History)-*params.HistoryLength:]
	}
	return task, nil
}

// Cancel transitions a task to canceled if it has not finished. A task in a
// terminal state is left untouched and the call fails.
func (h *Handler) Cancel(params CancelParams) (*Task, error) {
	task := h.store.Get(params.ID)
	if task == nil {
		return nil, text2sql.NewTaskNotFoundError(params.ID)
	}
	switch task.Status.State {
	case TaskStateSubmitted, TaskStateWorking:
		msg := Message{Role: "agent", Parts: []Part{TextPart("Task was canceled by the user.")}}
		task.transition(NewTaskStatus(TaskStateCanceled, &msg))
		h.store.Put(task)
		return task, nil
	default:
		return nil, text2sql.NewTaskNotCancelableError(task.ID, string(task.Status.State))
	}
}

func (h *Handler) fail(task *Task, reason string) {
	msg := Message{Role: "agent", Parts: []Part{TextPart(reason)}}
	task.Messages = append(task.Messages, msg)
	task.transition(NewTaskStatus(TaskStateFailed, &msg))
	h.store.Put(task)
}

// extractQuestion joins the text parts of a message.
func extractQuestion(msg Message) string {
	var texts []string
	for _, part := range msg.Parts {
		if part.Type == "text" && part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.TrimSpace(strings.Join(texts, " "))
}

// buildArtifacts renders a successful AnswerResult as the two task
// artifacts: the prose answer and the structured query data.
func buildArtifacts(result *text2sql.AnswerResult) []Artifact {
	rows := [][]any{}
	columns := []string{}
	rowCount := 0
	if result.Result != nil {
		columns = result.Result.Columns
		rowCount = result.Result.RowCount()
		rows = result.Result.Rows
		if len(rows) > artifactRowLimit {
			rows = rows[:artifactRowLimit]
		}
	}
	return []Artifact{
		{
			Name:        "answer",
			Description: "Natural language answer to the user's question",
			Parts:       []Part{TextPart(result.Answer)},
			Index:       0,
		},
		{
			Name:        "query_result",
			Description: "Structured SQL query and result data",
			Parts: []Part{DataPart(map[string]any{
				"question":  result.Question,
				"sql":       result.SQL,
				"columns":   columns,
				"rows":      rows,
				"row_count": rowCount,
			})},
			Index: 1,
		},
	}
}
