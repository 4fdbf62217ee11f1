package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/parking-console/internal/config"
	"github.com/iliyamo/parking-console/internal/console"
	"github.com/iliyamo/parking-console/internal/console/consoletest"
	"github.com/iliyamo/parking-console/internal/handler"
	"github.com/iliyamo/parking-console/internal/middleware"
	"github.com/iliyamo/parking-console/internal/model"
	"github.com/iliyamo/parking-console/internal/router"
	"github.com/iliyamo/parking-console/internal/utils"
	"github.com/iliyamo/parking-console/internal/view"
)

var clock = time.Date(2024, 1, 1, 18, 0, 0, 0, time.Local)

func newServer(t *testing.T, cfg config.Config) (*echo.Echo, *consoletest.Lot) {
	t.Helper()
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	lot := consoletest.NewLot().
		AddSpace(model.ParkingSpace{ID: "S1", Location: "North Gate", Priority: 1}).
		AddSpace(model.ParkingSpace{ID: "S2", Location: "Library", Priority: 2}).
		AddUser(model.User{ID: "U1", FirstName: "Asha", LastName: "Rao"}).
		AddUser(model.User{ID: "U3", FirstName: "Dev", LastName: "Nair"}).
		AddReservation(model.Reservation{ID: "R3", UserID: "U3", SpaceID: "S2", Start: start, End: start.Add(time.Hour), Status: model.ReservationCompleted}).
		AddPayment(model.Payment{ID: "P3", ReservationID: "R3", Amount: model.Rupees(200), Timestamp: start})
	lot.Now = func() time.Time { return clock }

	c := console.New(console.Deps{
		Spaces:       lot.Spaces(),
		Users:        lot.Users(),
		Reservations: lot.Reservations(),
		Payments:     lot.Payments(),
		Now:          func() time.Time { return clock },
	})
	r, err := view.New()
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = r
	pass := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	router.RegisterRoutes(e, nil)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, nil), pass)
	router.RegisterConsole(e, handler.NewConsoleHandler(c),
		middleware.SessionAuth(cfg.JWTSecret, cfg.AuthEnabled(), cfg.Operator), pass)
	return e, lot
}

func openConfig() config.Config {
	return config.Config{JWTSecret: "secret", Operator: "admin", SessionTTLMin: 60}
}

func do(e *echo.Echo, method, target string, form url.Values, jsonResp bool) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	if jsonResp {
		req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type pageJSON struct {
	Screen  string           `json:"screen"`
	Notices []console.Notice `json:"notices"`
	Data    json.RawMessage  `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) pageJSON {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p pageJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func texts(p pageJSON) []string {
	out := make([]string, 0, len(p.Notices))
	for _, n := range p.Notices {
		out = append(out, n.Text)
	}
	return out
}

func TestHealth(t *testing.T) {
	e, _ := newServer(t, openConfig())
	rec := do(e, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRootRedirectsToDashboard(t *testing.T) {
	e, _ := newServer(t, openConfig())
	rec := do(e, http.MethodGet, "/", nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))
}

func TestDashboardJSON(t *testing.T) {
	e, _ := newServer(t, openConfig())
	p := decode(t, do(e, http.MethodGet, "/dashboard", nil, true))

	assert.Equal(t, "dashboard", p.Screen)
	var data console.DashboardData
	require.NoError(t, json.Unmarshal(p.Data, &data))
	require.Len(t, data.Spaces, 2)
	assert.Equal(t, "S1", data.Spaces[0].ID)
	assert.Equal(t, 2, data.Available)
}

func TestDashboardHTML(t *testing.T) {
	e, _ := newServer(t, openConfig())
	rec := do(e, http.MethodGet, "/dashboard", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<strong>S2</strong><br>Library")
	assert.Contains(t, rec.Body.String(), `<span class="who">admin</span>`)
}

func TestBookThroughForm(t *testing.T) {
	e, lot := newServer(t, openConfig())
	rec := do(e, http.MethodPost, "/reservations", url.Values{
		"user_id": {"u1"}, "space_id": {"S1"},
		"start_date": {"2024-01-01"}, "start_time": {"09:00"},
		"end_date": {"2024-01-01"}, "end_time": {"17:00"},
	}, false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div class="notice success">Reservation R001 booked: space S1 for user U1.</div>`)
	s, _ := lot.Space("S1")
	assert.Equal(t, model.SpaceOccupied, s.Status)
}

func TestBookRejectsReversedWindow(t *testing.T) {
	e, lot := newServer(t, openConfig())
	p := decode(t, do(e, http.MethodPost, "/reservations", url.Values{
		"user_id": {"U1"}, "space_id": {"S1"},
		"start_date": {"2024-01-01"}, "start_time": {"17:00"},
		"end_date": {"2024-01-01"}, "end_time": {"09:00"},
	}, true))

	assert.Contains(t, texts(p), "End time must be after start time.")
	assert.Zero(t, lot.Calls("Reservations.Book"))
}

func TestDeleteGuardOverHTTP(t *testing.T) {
	e, lot := newServer(t, openConfig())

	p := decode(t, do(e, http.MethodPost, "/users/u3/delete", url.Values{}, true))
	assert.Contains(t, texts(p), "Cannot delete user. User has pending payments.")
	_, ok := lot.User("U3")
	assert.True(t, ok)

	p = decode(t, do(e, http.MethodPost, "/users/delete", url.Values{"user_id": {"U1"}}, true))
	assert.Contains(t, texts(p), "User U1 deleted successfully.")
}

func TestUpdateAndFindUser(t *testing.T) {
	e, _ := newServer(t, openConfig())
	p := decode(t, do(e, http.MethodPost, "/users/U1", url.Values{
		"email": {"asha@uni.edu"}, "phone_num": {"555"}, "vehicle_no": {"ka01"},
		"user_type": {"Faculty"}, "status": {"Active"},
	}, true))
	assert.Contains(t, texts(p), "User U1 updated successfully!")

	p = decode(t, do(e, http.MethodGet, "/users?find=u1", nil, true))
	var data console.UsersData
	require.NoError(t, json.Unmarshal(p.Data, &data))
	require.NotNil(t, data.Found)
	assert.Equal(t, "KA01", data.Found.VehicleNo)
	assert.Equal(t, model.UserFaculty, data.Found.Type)
}

func TestReleaseAndPayOverHTTP(t *testing.T) {
	e, lot := newServer(t, openConfig())
	lot.AddReservation(model.Reservation{
		ID: "R9", UserID: "U1", SpaceID: "S1",
		Start: time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local),
		End:   time.Date(2024, 1, 1, 17, 0, 0, 0, time.Local),
	})

	p := decode(t, do(e, http.MethodPost, "/reservations/release", url.Values{"reservation_id": {"R9"}}, true))
	assert.Contains(t, texts(p), "Reservation R9 released. Bill of ₹160.00 generated.")
	bills := lot.PaymentsFor("U1")
	require.Len(t, bills, 1)

	p = decode(t, do(e, http.MethodPost, "/billing/pay", url.Values{"user_id": {"u1"}, "payment_id": {bills[0].ID}}, true))
	assert.Contains(t, texts(p), "Payment "+bills[0].ID+" marked as completed!")
	assert.Contains(t, texts(p), "No pending payments.")

	rec := do(e, http.MethodGet, "/billing?user=U1", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Payment History (Bills)")
	assert.NotContains(t, rec.Body.String(), "Total Amount Due")
}

func TestBadJSONBodyIs400(t *testing.T) {
	e, _ := newServer(t, openConfig())
	req := httptest.NewRequest(http.MethodPost, "/billing/pay", strings.NewReader("{"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func securedConfig(t *testing.T) config.Config {
	hash, err := utils.HashPassword("letmein", bcrypt.MinCost)
	require.NoError(t, err)
	cfg := openConfig()
	cfg.OperatorPassHash = hash
	return cfg
}

func TestSignInFlow(t *testing.T) {
	e, _ := newServer(t, securedConfig(t))

	rec := do(e, http.MethodGet, "/dashboard", nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	rec = do(e, http.MethodGet, "/login", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/login"`)

	rec = do(e, http.MethodPost, "/login", url.Values{"operator": {"admin"}, "password": {"nope"}}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid operator or password.")

	rec = do(e, http.MethodPost, "/login", url.Values{"operator": {"admin"}, "password": {"letmein"}}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignInJSONIssuesBearerToken(t *testing.T) {
	e, _ := newServer(t, securedConfig(t))

	rec := do(e, http.MethodPost, "/login", url.Values{"operator": {"admin"}, "password": {"letmein"}}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Operator string `json:"operator"`
		Token    string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "admin", resp.Operator)

	req := httptest.NewRequest(http.MethodGet, "/billing?user=U3", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+resp.Token)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	p := decode(t, rec)
	var data console.BillingData
	require.NoError(t, json.Unmarshal(p.Data, &data))
	assert.Equal(t, model.Rupees(200), data.TotalDue)
}

func TestLoginDisabledRedirects(t *testing.T) {
	e, _ := newServer(t, openConfig())
	rec := do(e, http.MethodGet, "/login", nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = do(e, http.MethodPost, "/logout", url.Values{}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}
