package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/givehope/donation-api/internal/notify"
)

func newNotificationRouter(t *testing.T) (*mux.Router, *notify.Service) {
	t.Helper()
	svc := notify.NewService(notify.NewMemoryStore(), zap.NewNop())
	t.Cleanup(svc.Close)

	r := mux.NewRouter()
	NewNotificationHandler(svc).RegisterRoutes(r.PathPrefix("/api/v1/notifications").Subrouter())
	return r, svc
}

func TestListNotifications(t *testing.T) {
	t.Parallel()

	router, svc := newNotificationRouter(t)
	svc.Success("Donation Successful!", "Thank you")
	svc.Info("Donation Pending", "Processing")

	req := httptest.NewRequest("GET", "/api/v1/notifications", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Data struct {
			Notifications []notify.Notification `json:"notifications"`
			UnreadCount   int                   `json:"unread_count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(resp.Data.Notifications) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(resp.Data.Notifications))
	}
	// Most recent first
	if resp.Data.Notifications[0].Title != "Donation Pending" {
		t.Errorf("Expected newest notification first, got %q", resp.Data.Notifications[0].Title)
	}
	if resp.Data.UnreadCount != 2 {
		t.Errorf("Expected unread count 2, got %d", resp.Data.UnreadCount)
	}
}

func TestMarkNotificationRead(t *testing.T) {
	t.Parallel()

	router, svc := newNotificationRouter(t)
	n := svc.Success("Donation Successful!", "Thank you")

	req := httptest.NewRequest("POST", "/api/v1/notifications/"+n.ID.String()+"/read", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if svc.UnreadCount() != 0 {
		t.Errorf("Expected unread count 0, got %d", svc.UnreadCount())
	}
}

func TestMarkNotificationRead_NotFound(t *testing.T) {
	t.Parallel()

	router, _ := newNotificationRouter(t)

	req := httptest.NewRequest("POST", "/api/v1/notifications/"+uuid.NewString()+"/read", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestDismissNotification_UnknownIDIsOK(t *testing.T) {
	t.Parallel()

	router, _ := newNotificationRouter(t)

	req := httptest.NewRequest("DELETE", "/api/v1/notifications/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestClearNotifications(t *testing.T) {
	t.Parallel()

	router, svc := newNotificationRouter(t)
	svc.Success("A", "a")
	svc.Error("B", "b")

	req := httptest.NewRequest("DELETE", "/api/v1/notifications", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if len(svc.All()) != 0 {
		t.Errorf("Expected empty history after clear, got %d", len(svc.All()))
	}
}

func TestToasts(t *testing.T) {
	t.Parallel()

	router, svc := newNotificationRouter(t)
	for i := 0; i < 7; i++ {
		svc.Info("Notice", "n")
	}

	req := httptest.NewRequest("GET", "/api/v1/notifications/toasts", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Data struct {
			Toasts []notify.Notification `json:"toasts"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Data.Toasts) != notify.MaxToasts {
		t.Errorf("Expected %d toasts, got %d", notify.MaxToasts, len(resp.Data.Toasts))
	}
}
