// Package a2a exposes the pipeline as an agent-to-agent JSON-RPC server:
// task submission, status queries, cancellation, and agent-card discovery.
package a2a

import (
	"encoding/json"
	"time"
)

// TaskState is the lifecycle state of a task.
type TaskState string

const (
	TaskStateSubmitted TaskState = "submitted"
	TaskStateWorking   TaskState = "working"
	TaskStateCompleted TaskState = "completed"
	TaskStateFailed    TaskState = "failed"
	TaskStateCanceled  TaskState = "canceled"
)

// Part is one piece of message or artifact content. Type is "text" or
// "data"; exactly one of Text/Data is set accordingly.
type Part struct {
	Type string         `json:"type"`
	Text string         `json:"text,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

// TextPart builds a text content part.
func TextPart(text string) Part {
	return Part{Type: "text", Text: text}
}

// DataPart builds a structured data content part.
func DataPart(data map[string]any) Part {
	return Part{Type: "data", Data: data}
}

// Message is one user or agent message in a task's transcript.
type Message struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// TaskStatus is a task's state at one point in time.
type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`
	Timestamp string    `json:"timestamp"`
}

// NewTaskStatus stamps a status with the current UTC time.
func NewTaskStatus(state TaskState, msg *Message) TaskStatus {
	return TaskStatus{
		State:     state,
		Message:   msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Artifact is a named, typed piece of task output.
type Artifact struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parts       []Part `json:"parts"`
	Index       int    `json:"index"`
}

// Task wraps one pipeline run with lifecycle state, transcript, and output
// artifacts. Tasks live in the in-memory store for the process lifetime and
// are mutated only by the owning handler.
type Task struct {
	ID        string       `json:"id"`
	SessionID string       `json:"sessionId,omitempty"`
	Status    TaskStatus   `json:"status"`
	Messages  []Message    `json:"messages,omitempty"`
	Artifacts []Artifact   `json:"artifacts,omitempty"`
	History   []TaskStatus `json:"history,omitempty"`
}

// transition archives the current status into the history and applies the
// new one.
func (t *Task) transition(status TaskStatus) {
	t.History = append(t.History, t.Status)
	t.Status = status
}

// clone copies the task with fresh slice backing so the copy can be appended
// to and re-statused without touching the original. Parts and status messages
// are immutable once built and stay shared.
func (t *Task) clone() *Task {
	c := *t
	c.Messages = append([]Message(nil), t.Messages...)
	c.Artifacts = append([]Artifact(nil), t.Artifacts...)
	c.History = append([]TaskStatus(nil), t.History...)
	return &c
}

// SendParams are the parameters of tasks/send.
type SendParams struct {
	ID        string  `json:"id"`
	SessionID string  `json:"sessionId,omitempty"`
	Message   Message `json:"message"`
}

// GetParams are the parameters of tasks/get.
type GetParams struct {
	ID            string `json:"id"`
	HistoryLength *int   `json:"historyLength,omitempty"`
}

// CancelParams are the parameters of tasks/cancel.
type CancelParams struct {
	ID string `json:"id"`
}

// JSON-RPC 2.0 envelopes.

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

// JSON-RPC error codes; -32001/-32002 are the task-specific extensions.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInternalError  = -32603
	codeTaskNotFound   = -32001
	codeNotCancelable  = -32002
)
