package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/groblegark/okrd/internal/events"
	"github.com/groblegark/okrd/internal/idgen"
	"github.com/groblegark/okrd/internal/model"
)

type createTaskInput struct {
	KrID      string     `json:"kr_id"`
	Title     string     `json:"title"`
	Priority  *int       `json:"priority"`
	DueAt     *time.Time `json:"due_at"`
	CreatedBy string     `json:"created_by"`
}

type updateTaskInput struct {
	KrID     *string    `json:"kr_id"`
	Title    *string    `json:"title"`
	Status   *string    `json:"status"`
	Priority *int       `json:"priority"`
	DueAt    *time.Time `json:"due_at"`

	dueAtSet bool
}

// handleCreateTask handles POST /v1/tasks.
func (s *OkrServer) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in createTaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	task, err := s.createTask(r.Context(), in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (s *OkrServer) createTask(ctx context.Context, in createTaskInput) (*model.Task, error) {
	now := time.Now().UTC()
	task := &model.Task{
		KrID:      in.KrID,
		Title:     in.Title,
		Status:    model.TaskNotStarted,
		Priority:  2,
		DueAt:     in.DueAt,
		CreatedAt: now,
		CreatedBy: in.CreatedBy,
		UpdatedAt: now,
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if err := model.ValidateTask(task); err != nil {
		return nil, inputError(err.Error())
	}

	if task.KrID != "" {
		if _, err := s.store.GetKeyResult(ctx, task.KrID); errors.Is(err, sql.ErrNoRows) {
			return nil, inputError("key result not found: " + task.KrID)
		} else if err != nil {
			return nil, fmt.Errorf("get key result: %w", err)
		}
	}

	id, err := idgen.Generate(idgen.TaskPrefix)
	if err != nil {
		return nil, fmt.Errorf("generate task id: %w", err)
	}
	task.ID = id

	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.recordAndPublish(ctx, events.TopicTaskCreated, task.ID, task.CreatedBy, events.TaskCreated{Task: task})
	return task, nil
}

// handleListTasks handles GET /v1/tasks.
func (s *OkrServer) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.TaskFilter{
		KrID: q.Get("kr"),
		Sort: q.Get("sort"),
	}

	if v := q.Get("status"); v != "" {
		for _, st := range strings.Split(v, ",") {
			filter.Status = append(filter.Status, model.TaskStatus(st))
		}
	}
	if v := q.Get("priority"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Priority = &n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	tasks, total, err := s.store.ListTasks(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	// Ensure tasks is never null in JSON output.
	if tasks == nil {
		tasks = []*model.Task{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tasks": tasks,
		"total": total,
	})
}

// handleGetTask handles GET /v1/tasks/{id}.
func (s *OkrServer) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	task, err := s.store.GetTask(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// handleUpdateTask handles PATCH /v1/tasks/{id}.
func (s *OkrServer) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in updateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	// For HTTP/JSON, DueAt presence is inferred from non-nil.
	if in.DueAt != nil {
		in.dueAtSet = true
	}

	task, err := s.updateTask(r.Context(), id, in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (s *OkrServer) updateTask(ctx context.Context, id string, in updateTaskInput) (*model.Task, error) {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any)
	if in.KrID != nil && *in.KrID != task.KrID {
		task.KrID = *in.KrID
		changes["kr_id"] = *in.KrID
	}
	if in.Title != nil && *in.Title != task.Title {
		task.Title = *in.Title
		changes["title"] = *in.Title
	}
	if in.Status != nil && model.TaskStatus(*in.Status) != task.Status {
		task.Status = model.TaskStatus(*in.Status)
		changes["status"] = *in.Status
		// Keep CompletedAt consistent with the status transition.
		if task.Status == model.TaskCompleted {
			now := time.Now().UTC()
			task.CompletedAt = &now
		} else {
			task.CompletedAt = nil
		}
	}
	if in.Priority != nil && *in.Priority != task.Priority {
		task.Priority = *in.Priority
		changes["priority"] = *in.Priority
	}
	if in.dueAtSet {
		task.DueAt = in.DueAt
		changes["due_at"] = in.DueAt
	}

	if len(changes) == 0 {
		return task, nil
	}

	if err := model.ValidateTask(task); err != nil {
		return nil, inputError(err.Error())
	}
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}

	s.recordAndPublish(ctx, events.TopicTaskUpdated, task.ID, "", events.TaskUpdated{Task: task, Changes: changes})
	return task, nil
}

// handleCompleteTask handles POST /v1/tasks/{id}/complete.
// A completed task linked to a count-type KR contributes +1 to its current
// value when the KR has no check-ins, so completion may shift the KR's pace.
func (s *OkrServer) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	task, err := s.store.GetTask(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}

	if task.Status == model.TaskCompleted {
		writeJSON(w, http.StatusOK, task)
		return
	}

	now := time.Now().UTC()
	task.Status = model.TaskCompleted
	task.CompletedAt = &now
	if err := s.store.UpdateTask(r.Context(), task); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to complete task")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicTaskUpdated, task.ID, "", events.TaskUpdated{
		Task:    task,
		Changes: map[string]any{"status": string(model.TaskCompleted)},
	})

	writeJSON(w, http.StatusOK, task)
}

// handleDeleteTask handles DELETE /v1/tasks/{id}.
func (s *OkrServer) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.store.DeleteTask(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicTaskDeleted, id, "", events.TaskDeleted{TaskID: id})

	w.WriteHeader(http.StatusNoContent)
}
