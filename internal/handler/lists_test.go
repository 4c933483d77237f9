package handler

import (
	"net/http"
	"reflect"
	"testing"

	"propertychat/internal/model"
)

func TestSavedList(t *testing.T) {
	router := newTestRouter(t)

	steps := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantField  string
		wantText   string
	}{
		{"save", http.MethodPost, "/api/saved", `{"propertyId": 2, "username": " Alice "}`, http.StatusCreated, "message", "Saved!"},
		{"save again", http.MethodPost, "/api/saved", `{"propertyId": 2, "username": "alice"}`, http.StatusOK, "message", "Already saved"},
		{"save another", http.MethodPost, "/api/saved", `{"propertyId": 4, "username": "alice"}`, http.StatusCreated, "message", "Saved!"},
		{"missing property", http.MethodPost, "/api/saved", `{"username": "alice"}`, http.StatusBadRequest, "error", "Property ID required"},
		{"missing username", http.MethodPost, "/api/saved", `{"propertyId": 2}`, http.StatusBadRequest, "error", "Username required"},
		{"blank username", http.MethodPost, "/api/saved", `{"propertyId": 2, "username": "  "}`, http.StatusBadRequest, "error", "Username required"},
		{"get without username", http.MethodGet, "/api/saved", "", http.StatusBadRequest, "error", "Username required"},
		{"remove", http.MethodDelete, "/api/saved/4?username=ALICE", "", http.StatusOK, "message", "Removed"},
		{"remove bad id", http.MethodDelete, "/api/saved/abc?username=alice", "", http.StatusBadRequest, "error", "Invalid property ID"},
	}

	for _, s := range steps {
		w := doRequest(router, s.method, s.path, s.body)
		if w.Code != s.wantStatus {
			t.Fatalf("%s: expected status %d, got %d: %s", s.name, s.wantStatus, w.Code, w.Body.String())
		}
		if got := decodeBody[map[string]string](t, w)[s.wantField]; got != s.wantText {
			t.Errorf("%s: %s = %q, want %q", s.name, s.wantField, got, s.wantText)
		}
	}

	w := doRequest(router, http.MethodGet, "/api/saved?username=alice", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if got := propertyIDs(decodeBody[[]model.Property](t, w)); !reflect.DeepEqual(got, []int64{2}) {
		t.Errorf("Saved = %v, want [2]", got)
	}

	w = doRequest(router, http.MethodGet, "/api/saved?username=nobody", "")
	if w.Body.String() != "[]" {
		t.Errorf("Expected empty array, got %s", w.Body.String())
	}
}

func TestComparisonList(t *testing.T) {
	router := newTestRouter(t)

	for _, body := range []string{
		`{"propertyId": 1, "username": "bob"}`,
		`{"propertyId": 2, "username": "bob"}`,
		`{"propertyId": 3, "username": "bob"}`,
	} {
		w := doRequest(router, http.MethodPost, "/api/comparison", body)
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		if got := decodeBody[map[string]string](t, w)["message"]; got != "Added to comparison!" {
			t.Errorf("message = %q", got)
		}
	}

	w := doRequest(router, http.MethodPost, "/api/comparison", `{"propertyId": 1, "username": "bob"}`)
	if got := decodeBody[map[string]string](t, w)["message"]; w.Code != http.StatusOK || got != "Already in comparison" {
		t.Errorf("Duplicate add = %d %q", w.Code, got)
	}

	w = doRequest(router, http.MethodPost, "/api/comparison", `{"propertyId": 4, "username": "bob"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400 for a full list, got %d", w.Code)
	}
	if got := decodeBody[map[string]string](t, w)["error"]; got != "Maximum 3 properties for comparison" {
		t.Errorf("error = %q", got)
	}

	w = doRequest(router, http.MethodGet, "/api/comparison?username=bob", "")
	if got := propertyIDs(decodeBody[[]model.Property](t, w)); len(got) != 3 {
		t.Errorf("Comparison = %v, want 3 entries", got)
	}

	w = doRequest(router, http.MethodDelete, "/api/comparison/2?username=bob", "")
	if got := decodeBody[map[string]string](t, w)["message"]; got != "Removed from comparison" {
		t.Errorf("message = %q", got)
	}

	w = doRequest(router, http.MethodDelete, "/api/comparison?username=bob", "")
	if got := decodeBody[map[string]string](t, w)["message"]; got != "Comparison list cleared" {
		t.Errorf("message = %q", got)
	}

	w = doRequest(router, http.MethodGet, "/api/comparison?username=bob", "")
	if w.Body.String() != "[]" {
		t.Errorf("Expected empty comparison, got %s", w.Body.String())
	}
}
