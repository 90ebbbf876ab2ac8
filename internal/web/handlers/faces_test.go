package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAddFace(t *testing.T) {
	h := newTestHandler(t, &fakeEncoder{result: singleFace([]float32{0.1, 0.2})})

	req := multipartRequest(t, "/api/v1/faces/add", "alice.jpg", testJPEG(t),
		map[string]string{"user_id": "42", "name": "Alice"})
	recorder := httptest.NewRecorder()
	h.Add(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)

	var result map[string]any
	parseJSONResponse(t, recorder, &result)
	if result["user_id"] != "42" {
		t.Errorf("user_id = %v; want 42", result["user_id"])
	}
	if result["faces_detected"] != float64(1) {
		t.Errorf("faces_detected = %v; want 1", result["faces_detected"])
	}
}

func TestAddFaceNoFaceDetected(t *testing.T) {
	h := newTestHandler(t, &fakeEncoder{result: noFace()})

	req := multipartRequest(t, "/api/v1/faces/add", "empty.jpg", testJPEG(t),
		map[string]string{"user_id": "1"})
	recorder := httptest.NewRecorder()
	h.Add(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "no face found in image")
}

func TestAddFaceMissingUserID(t *testing.T) {
	h := newTestHandler(t, &fakeEncoder{result: singleFace([]float32{1})})

	req := multipartRequest(t, "/api/v1/faces/add", "a.jpg", testJPEG(t), nil)
	recorder := httptest.NewRecorder()
	h.Add(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "user_id is required")
}

func TestAddFaceNonNumericUserID(t *testing.T) {
	h := newTestHandler(t, &fakeEncoder{result: singleFace([]float32{1})})

	req := multipartRequest(t, "/api/v1/faces/add", "a.jpg", testJPEG(t),
		map[string]string{"user_id": "alice"})
	recorder := httptest.NewRecorder()
	h.Add(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "user_id must be an integer")
}

func TestAddFaceMissingImage(t *testing.T) {
	h := newTestHandler(t, &fakeEncoder{result: singleFace([]float32{1})})

	req := multipartRequest(t, "/api/v1/faces/add", "", nil,
		map[string]string{"user_id": "1"})
	recorder := httptest.NewRecorder()
	h.Add(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "image file is required")
}

func TestAddFaceUndecodableImage(t *testing.T) {
	h := newTestHandler(t, &fakeEncoder{result: singleFace([]float32{1})})

	// Allowed extension, but the bytes are not a decodable image.
	req := multipartRequest(t, "/api/v1/faces/add", "garbage.jpg", []byte("not an image"),
		map[string]string{"user_id": "1"})
	recorder := httptest.NewRecorder()
	h.Add(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "invalid image file")
	if h.recognizer.Count() != 0 {
		t.Errorf("store must stay empty, has %d records", h.recognizer.Count())
	}
}

func TestAddFaceUnsupportedExtension(t *testing.T) {
	h := newTestHandler(t, &fakeEncoder{result: singleFace([]float32{1})})

	req := multipartRequest(t, "/api/v1/faces/add", "document.pdf", testJPEG(t),
		map[string]string{"user_id": "1"})
	recorder := httptest.NewRecorder()
	h.Add(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "unsupported file type, use jpg or png")
}

func TestAddFaceStoresExtraMetadata(t *testing.T) {
	h := newTestHandler(t, &fakeEncoder{result: singleFace([]float32{1, 2})})

	req := multipartRequest(t, "/api/v1/faces/add", "a.jpg", testJPEG(t),
		map[string]string{"user_id": "5", "name": "Bob", "department": "ops"})
	recorder := httptest.NewRecorder()
	h.Add(recorder, req)
	assertStatusCode(t, recorder, http.StatusCreated)

	listRecorder := httptest.NewRecorder()
	h.List(listRecorder, httptest.NewRequest(http.MethodGet, "/api/v1/faces", nil))

	var result struct {
		Count int                 `json:"count"`
		Faces []map[string]string `json:"faces"`
	}
	parseJSONResponse(t, listRecorder, &result)
	if result.Count != 1 {
		t.Fatalf("count = %d; want 1", result.Count)
	}
	face := result.Faces[0]
	if face["name"] != "Bob" || face["department"] != "ops" {
		t.Errorf("metadata not stored: %v", face)
	}
	if face["user_id"] != "5" {
		t.Errorf("user_id = %q; want 5", face["user_id"])
	}
}

func TestIdentifyFace(t *testing.T) {
	h := newTestHandler(t, &fakeEncoder{result: singleFace([]float32{0.5, 0.5})})

	addReq := multipartRequest(t, "/api/v1/faces/add", "a.jpg", testJPEG(t),
		map[string]string{"user_id": "9", "name": "Carol"})
	addRecorder := httptest.NewRecorder()
	h.Add(addRecorder, addReq)
	assertStatusCode(t, addRecorder, http.StatusCreated)

	req := multipartRequest(t, "/api/v1/faces/identify", "probe.jpg", testJPEG(t), nil)
	recorder := httptest.NewRecorder()
	h.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var result map[string]any
	parseJSONResponse(t, recorder, &result)
	if result["identified"] != true {
		t.Errorf("identified = %v; want true", result["identified"])
	}
	if result["user_id"] != "9" {
		t.Errorf("user_id = %v; want 9", result["user_id"])
	}
	if result["distance"] != float64(0) {
		t.Errorf("distance = %v; want 0", result["distance"])
	}
	if result["confidence"] != float64(1) {
		t.Errorf("confidence = %v; want 1", result["confidence"])
	}
}

func TestIdentifyFaceNoMatch(t *testing.T) {
	h := newTestHandler(t, &fakeEncoder{result: singleFace([]float32{0, 0})})

	req := multipartRequest(t, "/api/v1/faces/identify", "probe.jpg", testJPEG(t), nil)
	recorder := httptest.NewRecorder()
	h.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)

	var result map[string]any
	parseJSONResponse(t, recorder, &result)
	if result["identified"] != false {
		t.Errorf("identified = %v; want false", result["identified"])
	}
}

func TestIdentifyFaceCustomTolerance(t *testing.T) {
	enc := &fakeEncoder{result: singleFace([]float32{0, 0})}
	h := newTestHandler(t, enc)

	addReq := multipartRequest(t, "/api/v1/faces/add", "a.jpg", testJPEG(t),
		map[string]string{"user_id": "1"})
	h.Add(httptest.NewRecorder(), addReq)

	// Probe is 0.5 away from the enrolled face.
	enc.result = singleFace([]float32{0.5, 0})

	req := multipartRequest(t, "/api/v1/faces/identify", "probe.jpg", testJPEG(t),
		map[string]string{"tolerance": "0.4"})
	recorder := httptest.NewRecorder()
	h.Identify(recorder, req)
	assertStatusCode(t, recorder, http.StatusNotFound)

	req = multipartRequest(t, "/api/v1/faces/identify", "probe.jpg", testJPEG(t),
		map[string]string{"tolerance": "0.5"})
	recorder = httptest.NewRecorder()
	h.Identify(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)
}

func TestIdentifyFaceInvalidTolerance(t *testing.T) {
	h := newTestHandler(t, &fakeEncoder{result: singleFace([]float32{1})})

	req := multipartRequest(t, "/api/v1/faces/identify", "probe.jpg", testJPEG(t),
		map[string]string{"tolerance": "-1"})
	recorder := httptest.NewRecorder()
	h.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "tolerance must be a positive number")
}

func TestIdentifyFaceUndecodableImage(t *testing.T) {
	h := newTestHandler(t, &fakeEncoder{result: singleFace([]float32{1})})

	req := multipartRequest(t, "/api/v1/faces/identify", "garbage.jpg", []byte("not an image"), nil)
	recorder := httptest.NewRecorder()
	h.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)

	var result map[string]any
	parseJSONResponse(t, recorder, &result)
	if result["identified"] != false {
		t.Errorf("identified = %v; want false", result["identified"])
	}
	if result["faces_detected"] != float64(0) {
		t.Errorf("faces_detected = %v; want 0", result["faces_detected"])
	}
}

func TestIdentifyFaceEncoderFailure(t *testing.T) {
	h := newTestHandler(t, &fakeEncoder{err: errors.New("connection refused")})

	req := multipartRequest(t, "/api/v1/faces/identify", "probe.jpg", testJPEG(t), nil)
	recorder := httptest.NewRecorder()
	h.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusInternalServerError)
}

func TestListFacesEmpty(t *testing.T) {
	h := newTestHandler(t, &fakeEncoder{result: noFace()})

	recorder := httptest.NewRecorder()
	h.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/faces", nil))

	assertStatusCode(t, recorder, http.StatusOK)

	var result map[string]any
	parseJSONResponse(t, recorder, &result)
	if result["count"] != float64(0) {
		t.Errorf("count = %v; want 0", result["count"])
	}
}

func TestDeleteFace(t *testing.T) {
	h := newTestHandler(t, &fakeEncoder{result: singleFace([]float32{1, 1})})

	addReq := multipartRequest(t, "/api/v1/faces/add", "a.jpg", testJPEG(t),
		map[string]string{"user_id": "3"})
	h.Add(httptest.NewRecorder(), addReq)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/faces/3", nil)
	req = requestWithChiParams(req, map[string]string{"userID": "3"})
	recorder := httptest.NewRecorder()
	h.Delete(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	if h.recognizer.Count() != 0 {
		t.Errorf("expected empty store after delete, got %d", h.recognizer.Count())
	}
}

func TestDeleteFaceUnknownUser(t *testing.T) {
	h := newTestHandler(t, &fakeEncoder{result: noFace()})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/faces/99", nil)
	req = requestWithChiParams(req, map[string]string{"userID": "99"})
	recorder := httptest.NewRecorder()
	h.Delete(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
}

func TestClearFaces(t *testing.T) {
	h := newTestHandler(t, &fakeEncoder{result: singleFace([]float32{1, 1})})

	for _, id := range []string{"1", "2"} {
		addReq := multipartRequest(t, "/api/v1/faces/add", "a.jpg", testJPEG(t),
			map[string]string{"user_id": id})
		h.Add(httptest.NewRecorder(), addReq)
	}

	recorder := httptest.NewRecorder()
	h.Clear(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/faces/clear", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	if h.recognizer.Count() != 0 {
		t.Errorf("expected empty store after clear, got %d", h.recognizer.Count())
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, &fakeEncoder{result: singleFace([]float32{1})})

	addReq := multipartRequest(t, "/api/v1/faces/add", "a.jpg", testJPEG(t),
		map[string]string{"user_id": "1"})
	h.Add(httptest.NewRecorder(), addReq)

	recorder := httptest.NewRecorder()
	h.Health(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assertStatusCode(t, recorder, http.StatusOK)

	var result map[string]any
	parseJSONResponse(t, recorder, &result)
	if result["status"] != "ok" {
		t.Errorf("status = %v; want ok", result["status"])
	}
	if result["faces_in_store"] != float64(1) {
		t.Errorf("faces_in_store = %v; want 1", result["faces_in_store"])
	}
}
