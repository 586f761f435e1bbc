package api

import (
	"bytes"
	"encoding/json"
	"io"
	"itinerary-planner-service/internal/adapters/gemini"
	"itinerary-planner-service/internal/adapters/repositories"
	"itinerary-planner-service/internal/api/dto"
	"itinerary-planner-service/internal/platform/db"
	"itinerary-planner-service/internal/services"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedPath = "../../data/seeds/locations.json"

type testServer struct {
	handler http.Handler
	token   string
}

func newTestServer(t *testing.T, withAdvisor bool, token string) *testServer {
	t.Helper()

	conn, err := db.OpenSqlite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, repositories.InitSchema(conn, repositories.Sqlite))
	require.NoError(t, repositories.SeedFromJSON(conn, repositories.Sqlite, seedPath))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := repositories.NewSQLItineraryRepository(conn, repositories.Sqlite)
	catalog := repositories.NewSQLLocationCatalog(conn, repositories.Sqlite)
	planner := services.NewPlanner(repo, catalog, services.DefaultTravelModel(), log)

	var advisor *services.Advisor
	if withAdvisor {
		advisor = services.NewAdvisor(gemini.NewMockTextGenerator(gemini.OfflineReplies()), nil, planner, "Osaka", log)
	}

	h := NewRouter(planner, advisor, RouterOptions{Token: token, DB: conn}, log)
	return &testServer{handler: h, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rdr)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) createDay(t *testing.T, start string, stops ...string) dto.DayResponse {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/v1/days", dto.CreateDayRequest{StartTime: start})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	day := decode[dto.DayResponse](t, rec)

	for _, name := range stops {
		rec := s.do(t, http.MethodPost, "/api/v1/days/"+day.ID+"/stops", dto.AddStopRequest{Name: name})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	return day
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false, "")

	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	res := decode[map[string]string](t, rec)
	assert.Equal(t, "ok", res["status"])
	assert.Equal(t, "ok", res["database"])
}

func TestTimeline_MixesCatalogAndCustomStops(t *testing.T) {
	s := newTestServer(t, false, "")
	day := s.createDay(t, "10:00", "Kansai Airport", "Grandma's house", "Namba")

	rec := s.do(t, http.MethodGet, "/api/v1/days/"+day.ID+"/timeline", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	tl := decode[dto.TimelineResponse](t, rec)
	require.Len(t, tl.Entries, 3)

	assert.Equal(t, "10:00", tl.Entries[0].ArrivalTime)
	assert.Equal(t, "11:00", tl.Entries[0].DepartureTime)
	assert.Equal(t, 0, tl.Entries[0].TravelTimeFromPrev)

	assert.Nil(t, tl.Entries[1].Coords)
	assert.Equal(t, "Free time", tl.Entries[1].Note)
	assert.Equal(t, 30, tl.Entries[1].TravelTimeFromPrev)
	assert.Equal(t, "11:30", tl.Entries[1].ArrivalTime)
	assert.Equal(t, "13:00", tl.Entries[1].DepartureTime)

	assert.Equal(t, "13:30", tl.Entries[2].ArrivalTime)
	assert.Equal(t, "15:30", tl.Entries[2].DepartureTime)

	assert.Equal(t, "15:30", tl.Summary.EndTime)
	assert.Equal(t, 60, tl.Summary.TotalTravelMinutes)
	assert.False(t, tl.Summary.CrossesMidnight)
}

func TestOptimize(t *testing.T) {
	s := newTestServer(t, false, "")

	short := s.createDay(t, "09:00", "Namba", "Dotonbori")
	rec := s.do(t, http.MethodPost, "/api/v1/days/"+short.ID+"/optimize", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	day := s.createDay(t, "09:00", "Kansai Airport", "Dotonbori", "Namba")
	rec = s.do(t, http.MethodPost, "/api/v1/days/"+day.ID+"/optimize", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	tl := decode[dto.TimelineResponse](t, rec)
	require.Len(t, tl.Entries, 3)
	assert.Equal(t, "Kansai Airport", tl.Entries[0].Name)
	assert.Equal(t, "Namba", tl.Entries[1].Name)
	assert.Equal(t, "Dotonbori", tl.Entries[2].Name)

	rec = s.do(t, http.MethodGet, "/api/v1/days/"+day.ID, nil)
	stored := decode[dto.DayResponse](t, rec)
	assert.Equal(t, "Namba", stored.Stops[1].Name, "optimized order should be persisted")
}

func TestEditStops(t *testing.T) {
	s := newTestServer(t, false, "")
	day := s.createDay(t, "09:00", "Namba", "Dotonbori", "Shinsaibashi")
	base := "/api/v1/days/" + day.ID

	rec := s.do(t, http.MethodPost, base+"/stops/0/move", dto.MoveStopRequest{Direction: "up"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Namba", decode[dto.DayResponse](t, rec).Stops[0].Name)

	rec = s.do(t, http.MethodPost, base+"/stops/0/move", dto.MoveStopRequest{Direction: "down"})
	require.Equal(t, http.StatusOK, rec.Code)
	moved := decode[dto.DayResponse](t, rec)
	assert.Equal(t, "Dotonbori", moved.Stops[0].Name)
	assert.Equal(t, "Namba", moved.Stops[1].Name)

	rec = s.do(t, http.MethodPost, base+"/stops/0/move", dto.MoveStopRequest{Direction: "sideways"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/stops/x/move", dto.MoveStopRequest{Direction: "up"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stopID := moved.Stops[2].ID
	rec = s.do(t, http.MethodPut, base+"/stops/"+stopID+"/duration", dto.DurationRequest{Minutes: 45})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 45, decode[dto.DayResponse](t, rec).Stops[2].Duration)

	rec = s.do(t, http.MethodPut, base+"/stops/"+stopID+"/duration", dto.DurationRequest{Minutes: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, base+"/stops/"+stopID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[dto.DayResponse](t, rec).Stops, 2)

	rec = s.do(t, http.MethodDelete, base+"/stops/"+stopID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPut, base+"/start-time", dto.StartTimeRequest{StartTime: "25:00"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, base+"/start-time", dto.StartTimeRequest{StartTime: "8:15"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "08:15", decode[dto.DayResponse](t, rec).StartTime)

	rec = s.do(t, http.MethodPost, base+"/stops", dto.AddStopRequest{Name: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDays_ListAndDelete(t *testing.T) {
	s := newTestServer(t, false, "")
	first := s.createDay(t, "09:00", "Namba")
	second := s.createDay(t, "10:00")
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, second.Number)

	rec := s.do(t, http.MethodGet, "/api/v1/days", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[dto.ListDaysResponse](t, rec).Days, 2)

	rec = s.do(t, http.MethodDelete, "/api/v1/days/"+first.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/days/"+first.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/days/"+first.ID+"/timeline", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateDay_RejectsUnknownFields(t *testing.T) {
	s := newTestServer(t, false, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/days", bytes.NewBufferString(`{"start":"09:00"}`))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchLocations(t *testing.T) {
	s := newTestServer(t, false, "")

	rec := s.do(t, http.MethodGet, "/api/v1/locations?q=umeda", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[dto.ListLocationsResponse](t, rec)
	require.Len(t, res.Locations, 2)
	assert.Equal(t, "Kita", res.Locations[0].Area)

	rec = s.do(t, http.MethodGet, "/api/v1/locations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[dto.ListLocationsResponse](t, rec).Locations)
}

func TestBearerAuth(t *testing.T) {
	s := newTestServer(t, false, "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/days", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/days", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "health stays open")
}

func TestSuggestions_NotConfigured(t *testing.T) {
	s := newTestServer(t, false, "")

	rec := s.do(t, http.MethodGet, "/api/v1/spots/Namba/info", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSuggestions_OfflineAdvisor(t *testing.T) {
	s := newTestServer(t, true, "")
	day := s.createDay(t, "09:00", "Namba")

	rec := s.do(t, http.MethodGet, "/api/v1/days/"+day.ID+"/suggestions", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	next := decode[dto.NextStopsResponse](t, rec)
	require.Len(t, next.Suggestions, 1)
	assert.Equal(t, "Kuromon Market", next.Suggestions[0].Name)

	rec = s.do(t, http.MethodGet, "/api/v1/spots/"+url.PathEscape("Osaka Castle")+"/guide", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	guide := decode[dto.SpotGuideResponse](t, rec)
	assert.Equal(t, "Osaka Castle", guide.Name)
	assert.NotEmpty(t, guide.Description)
	require.Len(t, guide.Food, 1)
	assert.Equal(t, "4.3", guide.Food[0].Rating)

	rec = s.do(t, http.MethodGet, "/api/v1/days/missing/suggestions", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
