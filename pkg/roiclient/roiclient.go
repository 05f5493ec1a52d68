package roiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shouni/go-http-kit/httpkit"
)

// ROI is the normalized rectangle stored for a camera.
type ROI struct {
	ID             int64     `json:"id"`
	CameraID       int64     `json:"camera_id"`
	X              float64   `json:"roi_x"`
	Y              float64   `json:"roi_y"`
	W              float64   `json:"roi_w"`
	H              float64   `json:"roi_h"`
	CoordinateType string    `json:"coordinate_type"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Snapshot struct {
	Image       []byte
	ContentType string
	Width       int
	Height      int
}

// APIError is a non-2xx answer from the ROI service.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"error"`
	Details string `json:"details"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("roi api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("roi api: %d %s", e.Status, e.Message)
}

func (e *APIError) Detail() string {
	if e.Details != "" {
		return e.Details
	}
	return e.Message
}

// IClient talks to the gate ROI HTTP API.
type IClient interface {
	GetSnapshot(ctx context.Context, cameraID int64, fresh bool) (Snapshot, error)
	GetCameraROI(ctx context.Context, cameraID int64) (ROI, bool, error)
	PutCameraROI(ctx context.Context, cameraID int64, x, y, w, h float64) (ROI, error)
	PutGateROI(ctx context.Context, gateID, cameraID int64, coordinates [][]float64) error
}

type client struct {
	baseURL string
	http    httpkit.Doer
}

// New talks to the API on an httpkit client. The service usually runs on the
// same host or a private network, so the SSRF guard is off.
func New(baseURL string) IClient {
	return NewWithClient(baseURL, httpkit.New(httpkit.DefaultHTTPTimeout, httpkit.WithSkipNetworkValidation(true)))
}

func NewWithClient(baseURL string, httpClient httpkit.Doer) IClient {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *client) GetSnapshot(ctx context.Context, cameraID int64, fresh bool) (Snapshot, error) {
	path := fmt.Sprintf("/api/v1/cameras/%d/snapshot", cameraID)
	if fresh {
		path += "?" + url.Values{"refresh": {"true"}}.Encode()
	}

	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	width, _ := strconv.Atoi(resp.Header.Get("X-Frame-Width"))
	height, _ := strconv.Atoi(resp.Header.Get("X-Frame-Height"))

	return Snapshot{
		Image:       data,
		ContentType: resp.Header.Get("Content-Type"),
		Width:       width,
		Height:      height,
	}, nil
}

func (c *client) GetCameraROI(ctx context.Context, cameraID int64) (ROI, bool, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/cameras/%d/roi", cameraID), nil)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.Code == "ROI_NOT_CONFIGURED" {
			return ROI{}, false, nil
		}
		return ROI{}, false, err
	}
	defer resp.Body.Close()

	var roi ROI
	if err := jsoniter.NewDecoder(resp.Body).Decode(&roi); err != nil {
		return ROI{}, false, fmt.Errorf("decode roi: %w", err)
	}
	return roi, true, nil
}

func (c *client) PutCameraROI(ctx context.Context, cameraID int64, x, y, w, h float64) (ROI, error) {
	body := map[string]float64{"roi_x": x, "roi_y": y, "roi_w": w, "roi_h": h}

	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/cameras/%d/roi", cameraID), body)
	if err != nil {
		return ROI{}, err
	}
	defer resp.Body.Close()

	var roi ROI
	if err := jsoniter.NewDecoder(resp.Body).Decode(&roi); err != nil {
		return ROI{}, fmt.Errorf("decode roi: %w", err)
	}
	return roi, nil
}

func (c *client) PutGateROI(ctx context.Context, gateID, cameraID int64, coordinates [][]float64) error {
	body := map[string]interface{}{
		"gate_id":     gateID,
		"camera_id":   cameraID,
		"shape":       "rectangle",
		"coordinates": coordinates,
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/v1/rois", body)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// do sends the request and turns any non-2xx answer into an *APIError. The
// caller owns the body on success.
func (c *client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := jsoniter.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err := jsoniter.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return nil, apiErr
}
