package roiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/shouni/go-http-kit/httpkit"
)

func TestClient_GetSnapshot(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/cameras/3/snapshot" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("X-Frame-Width", "800")
		w.Header().Set("X-Frame-Height", "600")
		_, _ = w.Write([]byte("jpeg"))
	}))
	defer srv.Close()

	c := NewWithClient(srv.URL+"/", srv.Client())
	snap, err := c.GetSnapshot(context.Background(), 3, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "refresh=true" {
		t.Fatalf("expected refresh query, got %q", gotQuery)
	}
	if snap.Width != 800 || snap.Height != 600 || string(snap.Image) != "jpeg" || snap.ContentType != "image/jpeg" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestClient_GetCameraROI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/cameras/1/roi":
			_, _ = io.WriteString(w, `{"id":9,"camera_id":1,"roi_x":0.1,"roi_y":0.2,"roi_w":0.3,"roi_h":0.4,"coordinate_type":"normalized"}`)
		case "/api/v1/cameras/2/roi":
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"region of interest not configured","code":"ROI_NOT_CONFIGURED"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"camera not found","code":"CAMERA_NOT_FOUND"}`)
		}
	}))
	defer srv.Close()

	c := NewWithClient(srv.URL, srv.Client())
	ctx := context.Background()

	roi, ok, err := c.GetCameraROI(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("expected roi, got ok=%v err=%v", ok, err)
	}
	if roi.X != 0.1 || roi.H != 0.4 || roi.ID != 9 {
		t.Fatalf("unexpected roi %+v", roi)
	}

	if _, ok, err := c.GetCameraROI(ctx, 2); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	_, _, err = c.GetCameraROI(ctx, 3)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 404 || apiErr.Code != "CAMERA_NOT_FOUND" {
		t.Fatalf("expected camera not found APIError, got %v", err)
	}
}

func TestClient_PutCameraROI(t *testing.T) {
	var body map[string]float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		_ = jsoniter.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"id":1,"camera_id":4,"roi_x":0.1,"roi_y":0.1,"roi_w":0.2,"roi_h":0.2}`)
	}))
	defer srv.Close()

	c := NewWithClient(srv.URL, httpkit.New(0, httpkit.WithHTTPClient(srv.Client())))
	roi, err := c.PutCameraROI(context.Background(), 4, 0.1, 0.1, 0.2, 0.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body["roi_w"] != 0.2 || roi.CameraID != 4 {
		t.Fatalf("unexpected exchange body=%v roi=%+v", body, roi)
	}
}

func TestClient_PutCameraROIErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"error":"region of interest rejected","code":"EXCEEDS_FAR_EDGE","details":"rectangle extends past the frame edge"}`)
	}))
	defer srv.Close()

	_, err := NewWithClient(srv.URL, srv.Client()).PutCameraROI(context.Background(), 4, 0.9, 0.1, 0.2, 0.1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Detail() != "rectangle extends past the frame edge" {
		t.Fatalf("unexpected detail %q", apiErr.Detail())
	}
}

func TestClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWithClient(srv.URL, srv.Client()).PutGateROI(context.Background(), 1, 2, [][]float64{{0, 0}, {1, 1}})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 502 || apiErr.Detail() != "Bad Gateway" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestNew_ReachesLoopbackService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":2,"camera_id":5,"roi_x":0.1,"roi_y":0.1,"roi_w":0.5,"roi_h":0.5}`)
	}))
	defer srv.Close()

	roi, ok, err := New(srv.URL).GetCameraROI(context.Background(), 5)
	if err != nil || !ok {
		t.Fatalf("expected roi from loopback service, got ok=%v err=%v", ok, err)
	}
	if roi.CameraID != 5 || roi.W != 0.5 {
		t.Fatalf("unexpected roi %+v", roi)
	}
}
