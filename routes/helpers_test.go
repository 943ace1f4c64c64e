package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"tour-booking-server/config"
	"tour-booking-server/models"
	"tour-booking-server/repository"
	"tour-booking-server/services"
	"tour-booking-server/storage"
	"tour-booking-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	testAccessSecret  = "testsecret"
	testRefreshSecret = "testrefreshsecret"
)

type memoryRefreshStore struct {
	mu     sync.Mutex
	tokens map[string]bool
}

func newMemoryRefreshStore() *memoryRefreshStore {
	return &memoryRefreshStore{tokens: map[string]bool{}}
}

func (s *memoryRefreshStore) Save(_ context.Context, token string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = true
	return nil
}

func (s *memoryRefreshStore) Consume(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.tokens[token]
	delete(s.tokens, token)
	return ok, nil
}

func (s *memoryRefreshStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

type nopImageStore struct{}

func (nopImageStore) Upload(_ context.Context, publicID, _ string) (storage.UploadedImage, error) {
	return storage.UploadedImage{URL: "https://img.example.com/" + publicID, PublicID: publicID}, nil
}

func (nopImageStore) Destroy(context.Context, string) error { return nil }

type testEnv struct {
	app *iris.Application
	db  *gorm.DB
}

// buildTestApp wires the real services over an in-memory sqlite database.
func buildTestApp(t *testing.T) testEnv {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := storage.InitializeDB(config.Database{Driver: "sqlite", URL: "file:" + name + "?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := repository.NewStore(db)
	h := &Handler{
		Bookings:  services.NewBookingService(store),
		Tours:     services.NewTourService(store, nopImageStore{}),
		Search:    services.NewSearchService(store),
		Ratings:   services.NewRatingService(store),
		Approvals: services.NewApprovalService(store),
		Auth:      services.NewAuthService(store, services.WithPasswordCost(bcrypt.MinCost)),
		Tokens:    utils.NewTokenIssuer(testAccessSecret, testRefreshSecret, newMemoryRefreshStore()),
	}
	app := NewApp(h, Options{AccessTokenSecret: testAccessSecret, LogLevel: "disable"})
	if err := app.Build(); err != nil {
		t.Fatalf("failed to build app: %v", err)
	}
	return testEnv{app: app, db: db}
}

// signTestToken returns a signed access token for the given user and role
func signTestToken(id uint, role string) string {
	signer := jwt.NewSigner(jwt.HS256, []byte(testAccessSecret), time.Hour)
	token, _ := signer.Sign(utils.AccessToken{ID: id, Role: role})
	return string(token)
}

func (e testEnv) do(method, path string, form url.Values, token string) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	e.app.ServeHTTP(resp, req)
	return resp
}

func (e testEnv) doJSON(method, path, payload, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	e.app.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON body %q: %v", resp.Body.String(), err)
	}
}

func (e testEnv) seedUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{Username: username, Password: "x", Role: role}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (e testEnv) seedTour(t *testing.T, name string, price float64) *models.Tour {
	t.Helper()
	tour := &models.Tour{Name: name, Price: price}
	if err := e.db.Create(tour).Error; err != nil {
		t.Fatalf("seed tour: %v", err)
	}
	return tour
}

func (e testEnv) seedBooking(t *testing.T, userID, tourID uint, status models.BookingStatus, approved bool) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		UserID: userID, TourID: tourID, Status: status, Price: 10, NumberOfPeople: 1,
		DepartureDate: time.Now().UTC().AddDate(0, 0, 14), IsApproved: approved,
	}
	if err := e.db.Create(booking).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return booking
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}
