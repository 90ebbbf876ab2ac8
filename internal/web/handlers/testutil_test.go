package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-id/internal/constants"
	"github.com/kozaktomas/face-id/internal/encoder"
	"github.com/kozaktomas/face-id/internal/recognizer"
	"github.com/kozaktomas/face-id/internal/store"
)

// fakeEncoder returns canned detections regardless of input.
type fakeEncoder struct {
	result *encoder.Result
	err    error
}

func (f *fakeEncoder) Encode(_ context.Context, _ []byte) (*encoder.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// singleFace builds an encoder result with one detection.
func singleFace(embedding []float32) *encoder.Result {
	return &encoder.Result{
		FacesCount: 1,
		Model:      "buffalo_l",
		Faces:      []encoder.Detection{{FaceIndex: 0, Dim: len(embedding), Embedding: embedding}},
	}
}

// noFace builds an encoder result without any detection.
func noFace() *encoder.Result {
	return &encoder.Result{FacesCount: 0, Model: "buffalo_l"}
}

// newTestHandler creates a faces handler backed by a temp-file store.
func newTestHandler(t *testing.T, enc encoder.Encoder) *FacesHandler {
	t.Helper()
	st := store.Open(filepath.Join(t.TempDir(), "faces.snapshot"))
	rec := recognizer.New(enc, st, constants.MaxImageSize)
	return NewFacesHandler(rec)
}

// testJPEG encodes a small valid JPEG image.
func testJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 16)), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// multipartRequest builds a multipart POST with an image file and form fields.
func multipartRequest(t *testing.T, path, filename string, imageData []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if filename != "" {
		part, err := writer.CreateFormFile("image", filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(imageData); err != nil {
			t.Fatal(err)
		}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
