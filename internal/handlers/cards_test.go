package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kanban-board/backend/internal/handlers"
	"kanban-board/backend/internal/models"
	"kanban-board/backend/internal/repositories"

	"github.com/gin-gonic/gin"
)

type MockCardService struct {
	cards          map[uint]models.Card
	nextID         uint
	returnNotFound bool
	lastListQuery  repositories.ListQuery
}

func newMockCardService() *MockCardService {
	return &MockCardService{cards: map[uint]models.Card{}, nextID: 1}
}

func (m *MockCardService) CreateCard(input models.CardInput) (models.Card, error) {
	if errs := input.Validate(false); errs != nil {
		return models.Card{}, errs
	}
	card := models.Card{ID: m.nextID, IsActive: true, Tags: []string{}}
	input.ApplyTo(&card)
	m.cards[card.ID] = card
	m.nextID++
	return card, nil
}

func (m *MockCardService) GetCard(id uint) (models.Card, error) {
	if m.returnNotFound {
		return models.Card{}, repositories.ErrCardNotFound
	}
	card, ok := m.cards[id]
	if !ok {
		return models.Card{}, repositories.ErrCardNotFound
	}
	return card, nil
}

func (m *MockCardService) UpdateCard(id uint, input models.CardInput) (models.Card, error) {
	if errs := input.Validate(true); errs != nil {
		return models.Card{}, errs
	}
	card, ok := m.cards[id]
	if !ok {
		return models.Card{}, repositories.ErrCardNotFound
	}
	input.ApplyTo(&card)
	m.cards[id] = card
	return card, nil
}

func (m *MockCardService) DeleteCard(id uint) error {
	card, ok := m.cards[id]
	if !ok {
		return repositories.ErrCardNotFound
	}
	card.IsActive = false
	m.cards[id] = card
	return nil
}

func (m *MockCardService) RestoreCard(id uint) (models.Card, error) {
	card, ok := m.cards[id]
	if !ok {
		return models.Card{}, repositories.ErrCardNotFound
	}
	card.IsActive = true
	m.cards[id] = card
	return card, nil
}

func (m *MockCardService) ListCards(q repositories.ListQuery) ([]models.Card, error) {
	m.lastListQuery = q
	cards := make([]models.Card, 0, len(m.cards))
	for _, card := range m.cards {
		if card.IsActive || q.IncludeInactive {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

func setupCardRouter() (*MockCardService, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	mockService := newMockCardService()
	handler := handlers.NewCardHandler(mockService)

	router := gin.New()
	router.GET("/cards", handler.ListCards)
	router.POST("/cards", handler.CreateCard)
	router.GET("/cards/:id", handler.GetCard)
	router.PUT("/cards/:id", handler.UpdateCard)
	router.PATCH("/cards/:id", handler.UpdateCard)
	router.DELETE("/cards/:id", handler.DeleteCard)
	router.POST("/cards/:id/restore", handler.RestoreCard)

	return mockService, router
}

func postJSON(router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateCard(t *testing.T) {
	_, router := setupCardRouter()

	w := postJSON(router, "POST", "/cards", map[string]interface{}{
		"title":    "Persisted Card",
		"status":   "in-progress",
		"priority": "high",
		"tags":     []string{"urgent", "backend"},
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var card models.Card
	if err := json.Unmarshal(w.Body.Bytes(), &card); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if card.Title != "Persisted Card" {
		t.Errorf("Expected title 'Persisted Card', got %q", card.Title)
	}
	if !card.IsActive {
		t.Error("Expected created card to be active")
	}
}

func TestCreateCard_ValidationFailureReportsFields(t *testing.T) {
	_, router := setupCardRouter()

	w := postJSON(router, "POST", "/cards", map[string]interface{}{
		"title":    "Card",
		"status":   "backlog",
		"priority": "urgent",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var response struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if _, ok := response.Fields["priority"]; !ok {
		t.Errorf("Expected field-level error for priority, got %v", response.Fields)
	}
}

func TestCreateCard_InvalidJSON(t *testing.T) {
	_, router := setupCardRouter()

	req, _ := http.NewRequest("POST", "/cards", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCreateCard_ReadOnlyFieldsIgnored(t *testing.T) {
	_, router := setupCardRouter()

	w := postJSON(router, "POST", "/cards", map[string]interface{}{
		"title":     "Card",
		"status":    "backlog",
		"priority":  "low",
		"id":        777,
		"is_active": false,
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var card models.Card
	if err := json.Unmarshal(w.Body.Bytes(), &card); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if card.ID == 777 {
		t.Error("Expected client-supplied id to be ignored")
	}
	if !card.IsActive {
		t.Error("Expected is_active forced true regardless of payload")
	}
}

func TestGetCard_NotFound(t *testing.T) {
	_, router := setupCardRouter()

	req, _ := http.NewRequest("GET", "/cards/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestGetCard_NonNumericID(t *testing.T) {
	_, router := setupCardRouter()

	req, _ := http.NewRequest("GET", "/cards/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestUpdateCard_Partial(t *testing.T) {
	mock, router := setupCardRouter()

	created, _ := mock.CreateCard(cardPayload("Original"))

	w := postJSON(router, "PATCH", "/cards/1", map[string]interface{}{"title": "Renamed"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var card models.Card
	if err := json.Unmarshal(w.Body.Bytes(), &card); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if card.Title != "Renamed" {
		t.Errorf("Expected title 'Renamed', got %q", card.Title)
	}
	if card.Status != created.Status {
		t.Errorf("Expected status unchanged, got %q", card.Status)
	}
}

func TestUpdateCard_BlankPriorityRejected(t *testing.T) {
	mock, router := setupCardRouter()
	mock.CreateCard(cardPayload("Card"))

	w := postJSON(router, "PATCH", "/cards/1", map[string]interface{}{"priority": ""})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
	}

	var response struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if _, ok := response.Fields["priority"]; !ok {
		t.Errorf("Expected field-level error for priority, got %v", response.Fields)
	}

	if priority := mock.cards[1].Priority; priority != models.PriorityMedium {
		t.Errorf("Expected stored priority unchanged, got %q", priority)
	}
}

func TestUpdateCard_NotFound(t *testing.T) {
	_, router := setupCardRouter()

	w := postJSON(router, "PUT", "/cards/99", map[string]interface{}{"title": "Ghost"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestDeleteCard(t *testing.T) {
	mock, router := setupCardRouter()
	mock.CreateCard(cardPayload("Doomed"))

	req, _ := http.NewRequest("DELETE", "/cards/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status %d, got %d", http.StatusNoContent, w.Code)
	}
	if mock.cards[1].IsActive {
		t.Error("Expected card deactivated")
	}
}

func TestDeleteCard_NotFound(t *testing.T) {
	_, router := setupCardRouter()

	req, _ := http.NewRequest("DELETE", "/cards/5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestRestoreCard(t *testing.T) {
	mock, router := setupCardRouter()
	mock.CreateCard(cardPayload("Archived"))
	mock.DeleteCard(1)

	w := postJSON(router, "POST", "/cards/1/restore", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var card models.Card
	if err := json.Unmarshal(w.Body.Bytes(), &card); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !card.IsActive {
		t.Error("Expected restored card to be active")
	}
	if card.ID != 1 {
		t.Errorf("Expected id 1, got %d", card.ID)
	}
}

func TestListCards_QueryParamsParsed(t *testing.T) {
	mock, router := setupCardRouter()

	req, _ := http.NewRequest("GET",
		"/cards?status=backlog&priority=high&tags=backend,urgent&search=acme&ordering=-due_date&include_inactive=YES", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	q := mock.lastListQuery
	if q.Status != "backlog" || q.Priority != "high" {
		t.Errorf("Unexpected exact filters: %+v", q)
	}
	if q.Tags != "backend,urgent" {
		t.Errorf("Expected raw tags string, got %q", q.Tags)
	}
	if q.Search != "acme" {
		t.Errorf("Expected search 'acme', got %q", q.Search)
	}
	if q.Ordering != "-due_date" {
		t.Errorf("Expected ordering '-due_date', got %q", q.Ordering)
	}
	if !q.IncludeInactive {
		t.Error("Expected include_inactive=YES parsed as true")
	}
}

func TestListCards_IncludeInactiveDefaultsFalse(t *testing.T) {
	mock, router := setupCardRouter()

	for _, value := range []string{"", "false", "no", "0", "maybe"} {
		url := "/cards"
		if value != "" {
			url += "?include_inactive=" + value
		}
		req, _ := http.NewRequest("GET", url, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
		}
		if mock.lastListQuery.IncludeInactive {
			t.Errorf("Expected include_inactive=%q parsed as false", value)
		}
	}
}

func cardPayload(title string) models.CardInput {
	status := models.StatusBacklog
	priority := models.PriorityMedium
	return models.CardInput{Title: &title, Status: &status, Priority: &priority}
}
