package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/groblegark/okrd/internal/mindmap"
	"github.com/groblegark/okrd/internal/model"
	"github.com/groblegark/okrd/internal/progress"
)

// HTTPClient implements OkrClient using the okrd HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Plans ---

func (c *HTTPClient) CreatePlan(ctx context.Context, req *CreatePlanRequest) (*model.Plan, error) {
	var plan model.Plan
	if err := c.doJSON(ctx, http.MethodPost, "/v1/plans", req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *HTTPClient) GetPlan(ctx context.Context, id string) (*model.Plan, error) {
	var plan model.Plan
	if err := c.doJSON(ctx, http.MethodGet, "/v1/plans/"+url.PathEscape(id), nil, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *HTTPClient) ListPlans(ctx context.Context, year int) ([]*model.Plan, error) {
	path := "/v1/plans"
	if year > 0 {
		path += "?year=" + fmt.Sprintf("%d", year)
	}
	var resp struct {
		Plans []*model.Plan `json:"plans"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Plans, nil
}

func (c *HTTPClient) UpdatePlan(ctx context.Context, id string, req *UpdatePlanRequest) (*model.Plan, error) {
	var plan model.Plan
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/plans/"+url.PathEscape(id), req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *HTTPClient) DeletePlan(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/plans/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) GetPlanProgress(ctx context.Context, id string, asOf *time.Time) (*progress.PlanProgress, error) {
	path := "/v1/plans/" + url.PathEscape(id) + "/progress"
	if asOf != nil {
		path += "?as_of=" + url.QueryEscape(asOf.Format(time.RFC3339))
	}
	var pp progress.PlanProgress
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &pp); err != nil {
		return nil, err
	}
	return &pp, nil
}

func (c *HTTPClient) GetMindmap(ctx context.Context, id string, req *MindmapRequest) (*MindmapResponse, error) {
	q := url.Values{}
	if req != nil {
		if req.Layout != "" {
			q.Set("layout", req.Layout)
		}
		if req.Focus != "" {
			q.Set("focus", req.Focus)
		}
		if req.Direction != "" {
			q.Set("direction", req.Direction)
		}
		if req.ShowTasks != nil {
			q.Set("show_tasks", fmt.Sprintf("%t", *req.ShowTasks))
		}
		if req.ShowQuarters != nil {
			q.Set("show_quarters", fmt.Sprintf("%t", *req.ShowQuarters))
		}
	}

	path := "/v1/plans/" + url.PathEscape(id) + "/mindmap"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp MindmapResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) SavePositions(ctx context.Context, id, view string, positions map[string]mindmap.Position) error {
	body := map[string]any{"view": view, "positions": positions}
	return c.doJSON(ctx, http.MethodPut, "/v1/plans/"+url.PathEscape(id)+"/mindmap/positions", body, nil)
}

func (c *HTTPClient) ResetPositions(ctx context.Context, id, view string) error {
	path := "/v1/plans/" + url.PathEscape(id) + "/mindmap/positions"
	if view != "" {
		path += "?view=" + url.QueryEscape(view)
	}
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// --- Objectives ---

func (c *HTTPClient) CreateObjective(ctx context.Context, req *CreateObjectiveRequest) (*model.Objective, error) {
	var obj model.Objective
	if err := c.doJSON(ctx, http.MethodPost, "/v1/objectives", req, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

func (c *HTTPClient) GetObjective(ctx context.Context, id string) (*model.Objective, error) {
	var obj model.Objective
	if err := c.doJSON(ctx, http.MethodGet, "/v1/objectives/"+url.PathEscape(id), nil, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

func (c *HTTPClient) ListObjectives(ctx context.Context, planID string) ([]*model.Objective, error) {
	var resp struct {
		Objectives []*model.Objective `json:"objectives"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/objectives?plan="+url.QueryEscape(planID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Objectives, nil
}

func (c *HTTPClient) UpdateObjective(ctx context.Context, id string, req *UpdateObjectiveRequest) (*model.Objective, error) {
	var obj model.Objective
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/objectives/"+url.PathEscape(id), req, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

func (c *HTTPClient) DeleteObjective(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/objectives/"+url.PathEscape(id), nil, nil)
}

// --- Key results ---

func (c *HTTPClient) CreateKeyResult(ctx context.Context, req *CreateKeyResultRequest) (*model.KeyResult, error) {
	var kr model.KeyResult
	if err := c.doJSON(ctx, http.MethodPost, "/v1/krs", req, &kr); err != nil {
		return nil, err
	}
	return &kr, nil
}

func (c *HTTPClient) GetKeyResult(ctx context.Context, id string) (*model.KeyResult, error) {
	var kr model.KeyResult
	if err := c.doJSON(ctx, http.MethodGet, "/v1/krs/"+url.PathEscape(id), nil, &kr); err != nil {
		return nil, err
	}
	return &kr, nil
}

func (c *HTTPClient) ListKeyResults(ctx context.Context, req *ListKeyResultsRequest) (*ListKeyResultsResponse, error) {
	q := url.Values{}
	if req.ObjectiveID != "" {
		q.Set("objective", req.ObjectiveID)
	}
	if req.PlanID != "" {
		q.Set("plan", req.PlanID)
	}
	if len(req.KrType) > 0 {
		q.Set("type", strings.Join(req.KrType, ","))
	}
	if len(req.Direction) > 0 {
		q.Set("direction", strings.Join(req.Direction, ","))
	}
	if req.Year != nil {
		q.Set("year", fmt.Sprintf("%d", *req.Year))
	}
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	if req.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", req.Offset))
	}

	path := "/v1/krs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListKeyResultsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateKeyResult(ctx context.Context, id string, req *UpdateKeyResultRequest) (*model.KeyResult, error) {
	var kr model.KeyResult
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/krs/"+url.PathEscape(id), req, &kr); err != nil {
		return nil, err
	}
	return &kr, nil
}

func (c *HTTPClient) DeleteKeyResult(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/krs/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) AddCheckIn(ctx context.Context, krID string, req *AddCheckInRequest) (*model.CheckIn, error) {
	var ci model.CheckIn
	if err := c.doJSON(ctx, http.MethodPost, "/v1/krs/"+url.PathEscape(krID)+"/checkins", req, &ci); err != nil {
		return nil, err
	}
	return &ci, nil
}

func (c *HTTPClient) GetCheckIns(ctx context.Context, krID string) ([]*model.CheckIn, error) {
	var resp struct {
		CheckIns []*model.CheckIn `json:"check_ins"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/krs/"+url.PathEscape(krID)+"/checkins", nil, &resp); err != nil {
		return nil, err
	}
	return resp.CheckIns, nil
}

func (c *HTTPClient) GetKrProgress(ctx context.Context, krID string, asOf *time.Time) (*progress.KrProgress, error) {
	path := "/v1/krs/" + url.PathEscape(krID) + "/progress"
	if asOf != nil {
		path += "?as_of=" + url.QueryEscape(asOf.Format(time.RFC3339))
	}
	var kp progress.KrProgress
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &kp); err != nil {
		return nil, err
	}
	return &kp, nil
}

func (c *HTTPClient) SetQuarterTarget(ctx context.Context, krID string, quarter int, targetValue float64) (*model.QuarterTarget, error) {
	body := map[string]any{"quarter": quarter, "target_value": targetValue}
	var qt model.QuarterTarget
	if err := c.doJSON(ctx, http.MethodPut, "/v1/krs/"+url.PathEscape(krID)+"/quarters", body, &qt); err != nil {
		return nil, err
	}
	return &qt, nil
}

func (c *HTTPClient) GetQuarterTargets(ctx context.Context, krID string) ([]*model.QuarterTarget, error) {
	var resp struct {
		Quarters []*model.QuarterTarget `json:"quarters"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/krs/"+url.PathEscape(krID)+"/quarters", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Quarters, nil
}

func (c *HTTPClient) DeleteQuarterTarget(ctx context.Context, krID string, quarter int) error {
	return c.doJSON(ctx, http.MethodDelete,
		fmt.Sprintf("/v1/krs/%s/quarters/%d", url.PathEscape(krID), quarter), nil, nil)
}

// --- Tasks ---

func (c *HTTPClient) CreateTask(ctx context.Context, req *CreateTaskRequest) (*model.Task, error) {
	var task model.Task
	if err := c.doJSON(ctx, http.MethodPost, "/v1/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *HTTPClient) GetTask(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := c.doJSON(ctx, http.MethodGet, "/v1/tasks/"+url.PathEscape(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *HTTPClient) ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error) {
	q := url.Values{}
	if req.KrID != "" {
		q.Set("kr", req.KrID)
	}
	if len(req.Status) > 0 {
		q.Set("status", strings.Join(req.Status, ","))
	}
	if req.Priority != nil {
		q.Set("priority", fmt.Sprintf("%d", *req.Priority))
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	if req.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", req.Offset))
	}

	path := "/v1/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListTasksResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateTask(ctx context.Context, id string, req *UpdateTaskRequest) (*model.Task, error) {
	var task model.Task
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/tasks/"+url.PathEscape(id), req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *HTTPClient) CompleteTask(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := c.doJSON(ctx, http.MethodPost, "/v1/tasks/"+url.PathEscape(id)+"/complete", nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *HTTPClient) DeleteTask(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/tasks/"+url.PathEscape(id), nil, nil)
}

// --- Config ---

func (c *HTTPClient) SetConfig(ctx context.Context, key string, value json.RawMessage) (*model.Config, error) {
	body := map[string]json.RawMessage{"value": value}
	var cfg model.Config
	if err := c.doJSON(ctx, http.MethodPut, "/v1/configs/"+key, body, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *HTTPClient) GetConfig(ctx context.Context, key string) (*model.Config, error) {
	var cfg model.Config
	if err := c.doJSON(ctx, http.MethodGet, "/v1/configs/"+key, nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *HTTPClient) ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error) {
	path := "/v1/configs"
	if namespace != "" {
		path += "?namespace=" + url.QueryEscape(namespace)
	}
	var resp struct {
		Configs []*model.Config `json:"configs"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Configs, nil
}

func (c *HTTPClient) DeleteConfig(ctx context.Context, key string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/configs/"+key, nil, nil)
}

// --- Aggregates ---

func (c *HTTPClient) GetStats(ctx context.Context, year int) (*StatsResponse, error) {
	path := "/v1/stats"
	if year > 0 {
		path += "?year=" + fmt.Sprintf("%d", year)
	}
	var resp StatsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetEvents(ctx context.Context, entityID string) ([]*model.Event, error) {
	var resp struct {
		Events []*model.Event `json:"events"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/events/"+url.PathEscape(entityID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// Pass result=nil to discard the response body.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content — success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

// compile-time interface check
var _ OkrClient = (*HTTPClient)(nil)
