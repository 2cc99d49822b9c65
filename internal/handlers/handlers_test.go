package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sgeneral-iua/portal-sg/internal/apiclient"
	"github.com/sgeneral-iua/portal-sg/internal/auth"
	"github.com/sgeneral-iua/portal-sg/internal/logging"
	"github.com/sgeneral-iua/portal-sg/internal/middleware"
	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/sgeneral-iua/portal-sg/internal/redisclient"
	"github.com/sgeneral-iua/portal-sg/internal/requests"
	"github.com/sgeneral-iua/portal-sg/internal/requirements"
	"github.com/sgeneral-iua/portal-sg/internal/session"
	"github.com/sgeneral-iua/portal-sg/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testPassword = "secret123"

func ptr[T any](v T) *T { return &v }

// fakeAPI is an in-memory stand-in for the Secretaría API
type fakeAPI struct {
	mu             sync.Mutex
	form           models.FormData
	formUpdates    int
	countryCalls   int
	titles         []models.AvailableTitle
	created        []models.CreateRequestPayload
	requirements   map[int64][]models.RequirementItem
	uploads        []string
	reviews        []models.ReviewPayload
	forgotRequests []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		form: models.FormData{
			Person: models.FormPerson{IDPerson: 3, LastName: "Pérez", FirstName: "Ana", DocumentNumber: "30123456"},
		},
		titles: []models.AvailableTitle{
			{IDTitle: 5, TitleName: ptr("Licenciatura en Sistemas"), RequestTypeID: ptr(int64(1))},
			{IDTitle: 6, TitleName: ptr("Tecnicatura en Redes")},
		},
		requirements: map[int64][]models.RequirementItem{
			9: {
				requirementItem(11, 1, ""),
				requirementItem(12, models.RequirementStatusCompleted, "/files/12.pdf"),
				administrativeItem(13),
			},
		},
	}
}

func requirementItem(instanceID, statusID int64, filePath string) models.RequirementItem {
	item := models.RequirementItem{
		RequirementInstance: models.RequirementInstance{
			IDRequestRequirementInstance: instanceID,
			RequestID:                    ptr(int64(9)),
			CurrentRequirementStatusID:   ptr(statusID),
		},
		Requirement: &models.Requirement{IDRequirement: instanceID * 10, RequirementName: ptr("Documento " + strconv.FormatInt(instanceID, 10))},
		Status:      &models.RequirementStatus{IDRequirementInstanceStatus: statusID},
	}
	if filePath != "" {
		item.RequirementInstance.RequirementFilePath = ptr(filePath)
	}
	return item
}

func administrativeItem(instanceID int64) models.RequirementItem {
	item := requirementItem(instanceID, 1, "")
	item.Responsibility = ptr(models.ResponsibilityAdministrative)
	return item
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Password != testPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
			return
		}
		user := models.APIUser{ID: 42, Username: in.Username, RoleID: ptr(int64(100)), FirstName: ptr("Ana")}
		if in.Username == "revisor" {
			user = models.APIUser{ID: 7, Username: in.Username, RoleID: ptr(int64(200))}
		}
		writeJSON(w, http.StatusOK, models.LoginResponse{Token: "api-token-" + in.Username, User: user})
	})

	mux.HandleFunc("POST /api/auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		f.forgotRequests = append(f.forgotRequests, in["identifier"])
		f.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Usuario inexistente"})
	})

	mux.HandleFunc("GET /api/dashboard", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.DashboardData{})
	})

	mux.HandleFunc("GET /api/forms/{userId}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.form)
	})

	mux.HandleFunc("PUT /api/forms/{userId}", func(w http.ResponseWriter, r *http.Request) {
		var payload models.UpdateFormPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad payload"})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.formUpdates++
		f.form.Person.LastName = payload.Person.LastName
		f.form.Person.FirstName = payload.Person.FirstName
		f.form.Person.DocumentNumber = payload.Person.DocumentNumber
		writeJSON(w, http.StatusOK, f.form)
	})

	mux.HandleFunc("POST /api/forms/{userId}/pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="formulario.pdf"`)
		_, _ = w.Write([]byte("%PDF-1.4 test"))
	})

	mux.HandleFunc("GET /api/locations/countries", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.countryCalls++
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, []models.Country{{IDCountry: 1, CountryName: ptr("Argentina")}})
	})

	mux.HandleFunc("GET /api/titles/available", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.titles)
	})

	mux.HandleFunc("POST /api/requests", func(w http.ResponseWriter, r *http.Request) {
		var payload models.CreateRequestPayload
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.mu.Lock()
		f.created = append(f.created, payload)
		f.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]interface{}{"idRequest": 900, "currentStatus": "GENERADA"})
	})

	mux.HandleFunc("GET /api/requests/{requestId}/requirements", func(w http.ResponseWriter, r *http.Request) {
		requestID, _ := strconv.ParseInt(r.PathValue("requestId"), 10, 64)
		f.mu.Lock()
		items, ok := f.requirements[requestID]
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
			return
		}
		writeJSON(w, http.StatusOK, items)
	})

	mux.HandleFunc("POST /api/requests/{requestId}/requirements/{instanceId}/file", func(w http.ResponseWriter, r *http.Request) {
		instanceID, _ := strconv.ParseInt(r.PathValue("instanceId"), 10, 64)
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "missing file"})
			return
		}
		file.Close()
		if r.FormValue("nextStatusId") != "2" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad status"})
			return
		}
		f.mu.Lock()
		f.uploads = append(f.uploads, header.Filename+"@"+r.FormValue("userId"))
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, requirementItem(instanceID, models.RequirementStatusCompleted, "/files/"+header.Filename))
	})

	mux.HandleFunc("GET /api/requests/{requestId}/requirements/{instanceId}/file", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="titulo.pdf"`)
		_, _ = w.Write([]byte("contenido"))
	})

	mux.HandleFunc("PATCH /api/requests/{requestId}/requirements/{instanceId}/review", func(w http.ResponseWriter, r *http.Request) {
		instanceID, _ := strconv.ParseInt(r.PathValue("instanceId"), 10, 64)
		var payload models.ReviewPayload
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.mu.Lock()
		f.reviews = append(f.reviews, payload)
		f.mu.Unlock()
		item := requirementItem(instanceID, payload.NextStatusID, "/files/12.pdf")
		item.RequirementInstance.ReviewReason = payload.ReviewReason
		writeJSON(w, http.StatusOK, item)
	})

	return mux
}

type testEnv struct {
	t        *testing.T
	api      *fakeAPI
	sessions *session.Store
	registry *requirements.Registry
	router   *gin.Engine
}

func newTestEnv(t *testing.T, uploadMaxBytes int64) *testEnv {
	t.Helper()

	fake := newFakeAPI()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	client, err := apiclient.New(server.URL, server.Client(), nil)
	require.NoError(t, err)

	kv := redisclient.NewMemoryClient()
	sessions, err := session.NewStore(kv, time.Hour, "handlers-test-key", nil)
	require.NoError(t, err)

	registry := requirements.NewRegistry(nil)
	h := New(Deps{
		API:               client,
		Sessions:          sessions,
		Auth:              auth.NewService(client, sessions, registry, nil, nil),
		Requests:          requests.NewService(client, kv, nil),
		Registry:          registry,
		ReviewerThreshold: 200,
		UploadMaxBytes:    uploadMaxBytes,
		Logger:            logging.Logger,
	})

	router := gin.New()
	router.Use(middleware.RequestID())
	h.RegisterRoutes(router, middleware.SessionAuth(sessions))

	return &testEnv{t: t, api: fake, sessions: sessions, registry: registry, router: router}
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(path, token, fileName string, content []byte) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(e.t, err)
	_, err = part.Write(content)
	require.NoError(e.t, err)
	require.NoError(e.t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(username string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"username": username, "password": testPassword})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	var resp models.TokenResponse
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(e.t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t, 0)
	w := env.do(http.MethodGet, "/v1/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "healthy", body["services"].(map[string]interface{})["redis"])
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, 0)

	t.Run("success returns user without API token", func(t *testing.T) {
		w := env.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"username": "ana", "password": testPassword})
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "api-token-ana")
		body := decode(t, w)
		assert.Equal(t, "ana", body["user"].(map[string]interface{})["username"])
	})

	tests := []struct {
		name string
		body interface{}
	}{
		{"wrong password", map[string]string{"username": "ana", "password": "nope"}},
		{"missing password", map[string]string{"username": "ana"}},
		{"malformed body", "not an object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/v1/auth/login", "", tt.body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, auth.MsgInvalidCredentials, decode(t, w)["error"])
		})
	}
}

func TestLogoutDiscardsSession(t *testing.T) {
	env := newTestEnv(t, 0)
	token := env.login("ana")

	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/v1/form", token, nil).Code)
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/v1/requests/9/requirements", token, nil).Code)
	assert.Equal(t, 1, env.registry.Len())

	w := env.do(http.MethodPost, "/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.registry.Len())

	w = env.do(http.MethodGet, "/v1/dashboard", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestForgotPasswordAlwaysAnswersTheSame(t *testing.T) {
	env := newTestEnv(t, 0)

	w := env.do(http.MethodPost, "/v1/auth/forgot-password", "", map[string]string{"identifier": "nadie@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, auth.MsgResetLinkSent, decode(t, w)["message"])
	assert.Equal(t, []string{"nadie@example.com"}, env.api.forgotRequests)

	w = env.do(http.MethodPost, "/v1/auth/forgot-password", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetPasswordRejectsMismatch(t *testing.T) {
	env := newTestEnv(t, 0)
	w := env.do(http.MethodPost, "/v1/auth/reset-password", "", map[string]string{
		"token": "abc", "password": "longenough", "confirmPassword": "different1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, auth.MsgResetInvalid, decode(t, w)["error"])
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t, 0)

	for _, path := range []string{"/v1/dashboard", "/v1/form", "/v1/titles/available", "/v1/requests/9/requirements"} {
		w := env.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := env.do(http.MethodGet, "/v1/dashboard", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t, 0)
	token := env.login("ana")

	w := env.do(http.MethodGet, "/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["degraded"])
}

func TestCreateRequest(t *testing.T) {
	env := newTestEnv(t, 0)
	token := env.login("ana")

	// Nothing listed yet, so nothing to create from
	w := env.do(http.MethodPost, "/v1/requests", token, map[string]int64{"titleId": 6})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, requests.MsgTitlesNotLoaded, decode(t, w)["error"])
	assert.Empty(t, env.api.created)

	w = env.do(http.MethodGet, "/v1/titles/available", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["titles"], 2)

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"title without request type", map[string]int64{"titleId": 6}, http.StatusUnprocessableEntity},
		{"unknown title", map[string]int64{"titleId": 77}, http.StatusConflict},
		{"missing title", map[string]int64{}, http.StatusBadRequest},
		{"created", map[string]int64{"titleId": 5}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/v1/requests", token, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	require.Len(t, env.api.created, 1)
	assert.Equal(t, models.CreateRequestPayload{IDUser: 42, IDTitle: 5, IDRequestType: 1}, env.api.created[0])
}

func TestFormFlow(t *testing.T) {
	env := newTestEnv(t, 0)
	token := env.login("ana")

	w := env.do(http.MethodGet, "/v1/form", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode(t, w)
	assert.Equal(t, float64(0), view["currentStepIndex"])
	assert.Equal(t, "Ana", view["person"].(map[string]interface{})["firstName"])

	w = env.do(http.MethodPatch, "/v1/form/draft", token, map[string]interface{}{
		"person": map[string]interface{}{"firstName": "Ana María"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The draft survives between requests
	w = env.do(http.MethodGet, "/v1/form", token, nil)
	assert.Equal(t, "Ana María", decode(t, w)["person"].(map[string]interface{})["firstName"])

	w = env.do(http.MethodPost, "/v1/form/next", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(1), decode(t, w)["currentStepIndex"])
	assert.Equal(t, 1, env.api.formUpdates)
	assert.Equal(t, "Ana María", env.api.form.Person.FirstName)

	w = env.do(http.MethodPost, "/v1/form/previous", token, nil)
	assert.Equal(t, float64(0), decode(t, w)["currentStepIndex"])

	w = env.do(http.MethodGet, "/v1/form/pdf", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPost, "/v1/form/steps/3", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["isLastStep"])

	w = env.do(http.MethodPost, "/v1/form/next", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["completed"])

	w = env.do(http.MethodPost, "/v1/form/next", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodGet, "/v1/form/pdf", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4 test", w.Body.String())
}

func TestFormInvalidStepIsNotSent(t *testing.T) {
	env := newTestEnv(t, 0)
	env.api.form.Person.DocumentNumber = "12.345"
	token := env.login("ana")

	w := env.do(http.MethodPost, "/v1/form/save", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	view := decode(t, w)
	assert.NotNil(t, view["errorMessage"])
	assert.NotEmpty(t, view["fieldErrors"])
	assert.Equal(t, 0, env.api.formUpdates)
}

func TestFormDraftAppliesAsAWhole(t *testing.T) {
	env := newTestEnv(t, 0)
	token := env.login("ana")

	w := env.do(http.MethodPatch, "/v1/form/draft", token, map[string]interface{}{
		"person":  map[string]interface{}{"firstName": "Otra"},
		"address": map[string]interface{}{"countryId": 77},
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	view := decode(t, w)
	assert.Equal(t, "Ana", view["person"].(map[string]interface{})["firstName"])
	assert.Equal(t, wizard.MsgDraftRejected, view["errorMessage"])

	w = env.do(http.MethodGet, "/v1/form", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ana", decode(t, w)["person"].(map[string]interface{})["firstName"])
}

func TestFormBusyWhileLocked(t *testing.T) {
	env := newTestEnv(t, 0)
	token := env.login("ana")

	sess, err := env.sessions.Authenticate(context.Background(), token)
	require.NoError(t, err)
	release, err := env.sessions.Lock(context.Background(), sess.ID, wizardLock)
	require.NoError(t, err)
	defer release()

	w := env.do(http.MethodPost, "/v1/form/next", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, env.api.formUpdates)
}

func TestCountriesAreCachedPerSession(t *testing.T) {
	env := newTestEnv(t, 0)
	token := env.login("ana")

	for i := 0; i < 2; i++ {
		w := env.do(http.MethodGet, "/v1/locations/countries", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Argentina")
	}
	assert.Equal(t, 1, env.api.countryCalls)

	w := env.do(http.MethodGet, "/v1/locations/countries/abc/provinces", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func itemsOf(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	items, ok := decode(t, w)["items"].([]interface{})
	require.True(t, ok, w.Body.String())
	return items
}

func TestListRequirements(t *testing.T) {
	env := newTestEnv(t, 0)

	t.Run("graduate does not see administrative items", func(t *testing.T) {
		w := env.do(http.MethodGet, "/v1/requests/9/requirements", env.login("ana"), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, itemsOf(t, w), 2)
	})

	t.Run("reviewer sees every item", func(t *testing.T) {
		w := env.do(http.MethodGet, "/v1/requests/9/requirements", env.login("revisor"), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, itemsOf(t, w), 3)
		assert.Equal(t, true, decode(t, w)["reviewer"])
	})

	t.Run("fetch failure is reported in the body", func(t *testing.T) {
		token := env.login("ana")
		w := env.do(http.MethodGet, "/v1/requests/99/requirements", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, requirements.MsgFetchFailed, decode(t, w)["fetchError"])

		w = env.upload("/v1/requests/99/requirements/1/file", token, "a.pdf", []byte("x"))
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestUploadRequirement(t *testing.T) {
	env := newTestEnv(t, 0)
	token := env.login("ana")

	w := env.upload("/v1/requests/9/requirements/11/file", token, "dni.pdf", []byte("%PDF dni"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	item := decode(t, w)
	assert.Equal(t, string(requirements.StateUploaded), item["state"])
	assert.Equal(t, requirements.MsgUploaded, item["successMessage"])
	assert.Equal(t, []string{"dni.pdf@42"}, env.api.uploads)

	w = env.upload("/v1/requests/9/requirements/13/file", token, "x.pdf", []byte("x"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadRequirementTooLarge(t *testing.T) {
	env := newTestEnv(t, 8)
	token := env.login("ana")

	w := env.upload("/v1/requests/9/requirements/11/file", token, "big.pdf", bytes.Repeat([]byte("a"), 64))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Empty(t, env.api.uploads)
}

func TestDownloadRequirement(t *testing.T) {
	env := newTestEnv(t, 0)
	token := env.login("ana")

	w := env.do(http.MethodGet, "/v1/requests/9/requirements/12/file", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "titulo.pdf")
	assert.Equal(t, "contenido", w.Body.String())

	w = env.do(http.MethodGet, "/v1/requests/9/requirements/11/file", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviewRequirement(t *testing.T) {
	env := newTestEnv(t, 0)
	reviewer := env.login("revisor")

	t.Run("graduate cannot review", func(t *testing.T) {
		w := env.do(http.MethodPost, "/v1/requests/9/requirements/12/review", env.login("ana"), map[string]int64{"nextStatusId": 3})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("invalid decision", func(t *testing.T) {
		w := env.do(http.MethodPost, "/v1/requests/9/requirements/12/review", reviewer, map[string]int64{"nextStatusId": 5})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("item without document", func(t *testing.T) {
		w := env.do(http.MethodPost, "/v1/requests/9/requirements/11/review", reviewer, map[string]int64{"nextStatusId": 3})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("reject with the stored comment", func(t *testing.T) {
		w := env.do(http.MethodPut, "/v1/requests/9/requirements/12/comment", reviewer, map[string]string{"comment": "Falta la firma"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Falta la firma", decode(t, w)["reviewComment"])

		w = env.do(http.MethodPost, "/v1/requests/9/requirements/12/review", reviewer, map[string]int64{"nextStatusId": 4})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		item := decode(t, w)
		assert.Equal(t, string(requirements.StateRejected), item["state"])
		assert.Equal(t, requirements.MsgRejected, item["successMessage"])

		require.Len(t, env.api.reviews, 1)
		review := env.api.reviews[0]
		assert.Equal(t, models.RequirementStatusRejected, review.NextStatusID)
		assert.Equal(t, int64(7), review.ReviewerUserID)
		require.NotNil(t, review.ReviewReason)
		assert.Equal(t, "Falta la firma", *review.ReviewReason)
	})

	t.Run("rejected item takes no further decision", func(t *testing.T) {
		w := env.do(http.MethodPost, "/v1/requests/9/requirements/12/review", reviewer, map[string]int64{"nextStatusId": 3})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
