package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/givehope/donation-api/internal/events"
	"github.com/givehope/donation-api/internal/models"
)

// fakeDonationRepo is an in-memory DonationRepositoryInterface
type fakeDonationRepo struct {
	mu        sync.Mutex
	donations map[uuid.UUID]*models.Donation
	failAll   bool
}

func newFakeDonationRepo() *fakeDonationRepo {
	return &fakeDonationRepo{donations: make(map[uuid.UUID]*models.Donation)}
}

func (f *fakeDonationRepo) Create(ctx context.Context, d *models.Donation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return fmt.Errorf("boom")
	}
	copied := *d
	f.donations[d.ID] = &copied
	return nil
}

func (f *fakeDonationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, fmt.Errorf("boom")
	}
	d, ok := f.donations[id]
	if !ok {
		return nil, nil
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDonationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DonationStatus, txReference *string) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.donations[id]
	if !ok {
		return nil, nil
	}
	d.Status = status
	if txReference != nil {
		d.TxReference = txReference
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDonationRepo) ListPaginated(ctx context.Context, status *models.DonationStatus, page, pageSize int) ([]*models.Donation, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Donation
	for _, d := range f.donations {
		if status != nil && d.Status != *status {
			continue
		}
		copied := *d
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (f *fakeDonationRepo) SumConfirmed(ctx context.Context) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	totals := make(map[string]float64)
	for _, d := range f.donations {
		if d.Status == models.DonationStatusConfirmed {
			totals[d.Currency] += d.Amount
		}
	}
	return totals, nil
}

// fakeCampaignRepo is an in-memory CampaignRepositoryInterface
type fakeCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[uuid.UUID]*models.Campaign
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: make(map[uuid.UUID]*models.Campaign)}
}

func (f *fakeCampaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *c
	f.campaigns[c.ID] = &copied
	return nil
}

func (f *fakeCampaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCampaignRepo) List(ctx context.Context) ([]*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Campaign
	for _, c := range f.campaigns {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeCampaignRepo) AddToRaised(ctx context.Context, id uuid.UUID, amount float64) (*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok {
		return nil, nil
	}
	c.Raised += amount
	copied := *c
	return &copied, nil
}

// recordingBus captures published events
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(ctx context.Context, ev events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *recordingBus) signals() []events.Signal {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]events.Signal, 0, len(b.events))
	for _, ev := range b.events {
		out = append(out, ev.Signal)
	}
	return out
}

func newDonationRouter(donations *fakeDonationRepo, campaigns *fakeCampaignRepo, bus *recordingBus) *mux.Router {
	h := NewDonationHandler(donations, campaigns, events.NewEmitter(bus), zap.NewNop())
	r := mux.NewRouter()
	sub := r.PathPrefix("/api/v1/donations").Subrouter()
	h.RegisterRoutes(sub)
	h.RegisterConfirmationRoutes(sub)
	return r
}

func postJSON(t *testing.T, router *mux.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateDonation(t *testing.T) {
	t.Parallel()

	donations := newFakeDonationRepo()
	bus := &recordingBus{}
	router := newDonationRouter(donations, newFakeCampaignRepo(), bus)

	w := postJSON(t, router, "/api/v1/donations", map[string]any{
		"donor_name":  "Ada",
		"donor_email": "ada@example.com",
		"amount":      100,
		"currency":    "USD",
		"method":      "paypal",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	signals := bus.signals()
	if len(signals) != 1 || signals[0] != events.SignalDonationPending {
		t.Errorf("Expected one donation:pending event, got %v", signals)
	}

	var resp struct {
		Data models.Donation `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Data.Status != models.DonationStatusPending {
		t.Errorf("Expected status pending, got %s", resp.Data.Status)
	}
}

func TestCreateDonation_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing email", map[string]any{"donor_name": "Ada", "amount": 10, "currency": "USD", "method": "card"}},
		{"zero amount", map[string]any{"donor_name": "Ada", "donor_email": "a@b.co", "amount": 0, "currency": "USD", "method": "card"}},
		{"unsupported currency", map[string]any{"donor_name": "Ada", "donor_email": "a@b.co", "amount": 10, "currency": "XYZ", "method": "card"}},
		{"unknown method", map[string]any{"donor_name": "Ada", "donor_email": "a@b.co", "amount": 10, "currency": "USD", "method": "cheque"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			bus := &recordingBus{}
			router := newDonationRouter(newFakeDonationRepo(), newFakeCampaignRepo(), bus)

			w := postJSON(t, router, "/api/v1/donations", tt.body)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
			if len(bus.signals()) != 0 {
				t.Errorf("Expected no events for invalid request, got %v", bus.signals())
			}
		})
	}
}

func TestConfirmDonation_CreditsCampaignAndAnnouncesGoal(t *testing.T) {
	t.Parallel()

	donations := newFakeDonationRepo()
	campaigns := newFakeCampaignRepo()
	bus := &recordingBus{}
	router := newDonationRouter(donations, campaigns, bus)

	campaign := &models.Campaign{ID: uuid.New(), Name: "Clean Water", Currency: "USD", Goal: 100, Raised: 50}
	if err := campaigns.Create(context.Background(), campaign); err != nil {
		t.Fatal(err)
	}

	donation := &models.Donation{
		ID:         uuid.New(),
		CampaignID: &campaign.ID,
		DonorName:  "Ada",
		DonorEmail: "ada@example.com",
		Amount:     60,
		Currency:   "USD",
		Method:     "card",
		Status:     models.DonationStatusPending,
	}
	if err := donations.Create(context.Background(), donation); err != nil {
		t.Fatal(err)
	}

	w := postJSON(t, router, "/api/v1/donations/"+donation.ID.String()+"/confirm", map[string]any{})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	updated, _ := campaigns.GetByID(context.Background(), campaign.ID)
	if updated.Raised != 110 {
		t.Errorf("Expected raised 110, got %v", updated.Raised)
	}

	signals := bus.signals()
	wantSuccess, wantGoal := false, false
	for _, s := range signals {
		if s == events.SignalDonationSuccess {
			wantSuccess = true
		}
		if s == events.SignalCampaignGoalReached {
			wantGoal = true
		}
	}
	if !wantSuccess || !wantGoal {
		t.Errorf("Expected donation:success and campaign:goal-reached, got %v", signals)
	}
}

func TestConfirmDonation_AlreadyConfirmedIsIdempotent(t *testing.T) {
	t.Parallel()

	donations := newFakeDonationRepo()
	bus := &recordingBus{}
	router := newDonationRouter(donations, newFakeCampaignRepo(), bus)

	donation := &models.Donation{
		ID:       uuid.New(),
		Amount:   10,
		Currency: "USD",
		Method:   "card",
		Status:   models.DonationStatusConfirmed,
	}
	if err := donations.Create(context.Background(), donation); err != nil {
		t.Fatal(err)
	}

	w := postJSON(t, router, "/api/v1/donations/"+donation.ID.String()+"/confirm", map[string]any{})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if len(bus.signals()) != 0 {
		t.Errorf("Expected no events on repeat confirm, got %v", bus.signals())
	}
}

func TestFailDonation(t *testing.T) {
	t.Parallel()

	donations := newFakeDonationRepo()
	bus := &recordingBus{}
	router := newDonationRouter(donations, newFakeCampaignRepo(), bus)

	donation := &models.Donation{
		ID:       uuid.New(),
		Amount:   10,
		Currency: "USD",
		Method:   "crypto",
		Status:   models.DonationStatusPending,
	}
	if err := donations.Create(context.Background(), donation); err != nil {
		t.Fatal(err)
	}

	w := postJSON(t, router, "/api/v1/donations/"+donation.ID.String()+"/fail", map[string]any{
		"reason": "Card declined",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	signals := bus.signals()
	if len(signals) != 1 || signals[0] != events.SignalDonationError {
		t.Errorf("Expected one donation:error event, got %v", signals)
	}

	stored, _ := donations.GetByID(context.Background(), donation.ID)
	if stored.Status != models.DonationStatusFailed {
		t.Errorf("Expected status failed, got %s", stored.Status)
	}
}

func TestRecordConfirmations(t *testing.T) {
	t.Parallel()

	donations := newFakeDonationRepo()
	bus := &recordingBus{}
	router := newDonationRouter(donations, newFakeCampaignRepo(), bus)

	donation := &models.Donation{
		ID:       uuid.New(),
		Amount:   0.5,
		Currency: "BTC",
		Method:   "crypto",
		Status:   models.DonationStatusPending,
	}
	if err := donations.Create(context.Background(), donation); err != nil {
		t.Fatal(err)
	}

	path := "/api/v1/donations/" + donation.ID.String() + "/confirmations"

	// Below threshold: pending announcement, donation untouched
	w := postJSON(t, router, path, map[string]any{"confirmations": 2, "required": 6})
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
	}
	stored, _ := donations.GetByID(context.Background(), donation.ID)
	if stored.Status != models.DonationStatusPending {
		t.Errorf("Expected status still pending, got %s", stored.Status)
	}

	// At threshold: donation confirmed and announced
	w = postJSON(t, router, path, map[string]any{"confirmations": 6, "required": 6})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	stored, _ = donations.GetByID(context.Background(), donation.ID)
	if stored.Status != models.DonationStatusConfirmed {
		t.Errorf("Expected status confirmed, got %s", stored.Status)
	}

	signals := bus.signals()
	if len(signals) != 2 || signals[0] != events.SignalBlockchainPending || signals[1] != events.SignalBlockchainConfirmed {
		t.Errorf("Expected [blockchain:pending blockchain:confirmed], got %v", signals)
	}
}

func TestGetDonation_NotFound(t *testing.T) {
	t.Parallel()

	router := newDonationRouter(newFakeDonationRepo(), newFakeCampaignRepo(), &recordingBus{})

	req := httptest.NewRequest("GET", "/api/v1/donations/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}
