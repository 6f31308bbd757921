package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vstopensource/formfill/pkg/model"
	"github.com/vstopensource/formfill/pkg/store"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, uid string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   uid,
		"email": uid + "@example.org",
		"name":  "Ada Lovelace",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func testServer(t *testing.T, forms ...model.FormSchema) (*Server, store.DocumentStore) {
	t.Helper()
	st := store.NewMemory()
	for _, form := range forms {
		doc, err := store.Encode(form)
		if err != nil {
			t.Fatalf("encode form: %v", err)
		}
		if err := st.Set(context.Background(), store.CollectionForms, form.ID, doc); err != nil {
			t.Fatalf("seed form: %v", err)
		}
	}
	srv, err := New(st, testSecret)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv, st
}

func signupForm() model.FormSchema {
	return model.FormSchema{
		ID:     "signup",
		Name:   "Volunteer Signup",
		Status: model.StatusActive,
		Fields: []model.FieldDef{
			{ID: "name", Type: model.FieldTypeText, Label: "Name", Order: 1, Required: true},
			{ID: "notes", Type: model.FieldTypeTextarea, Label: "Notes", Order: 2},
		},
		Settings: model.Settings{
			AllowMultipleSubmissions: true,
			ConfirmationMessage:      "Thanks for signing up!",
			RedirectType:             model.RedirectDashboard,
		},
	}
}

func doRequest(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestFormPageRequiresToken(t *testing.T) {
	srv, _ := testServer(t, signupForm())
	rec := doRequest(srv, httptest.NewRequest(http.MethodGet, "/forms/signup", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/forms/signup", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = doRequest(srv, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	var body DefinedError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Code != ErrTokenInvalid.Code {
		t.Fatalf("code = %d", body.Code)
	}
}

func TestFormPageRenders(t *testing.T) {
	srv, _ := testServer(t, signupForm())
	req := httptest.NewRequest(http.MethodGet, "/forms/signup", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1"))

	rec := doRequest(srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	html := rec.Body.String()
	for _, want := range []string{"Volunteer Signup", `data-field-id="name"`, "formfill-runtime.js"} {
		if !strings.Contains(html, want) {
			t.Fatalf("page missing %q:\n%s", want, html)
		}
	}
}

func TestFormPageNotFound(t *testing.T) {
	srv, _ := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/forms/nope", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1"))

	rec := doRequest(srv, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "error-panel") {
		t.Fatal("expected error panel markup")
	}
}

func TestFormPageUnavailable(t *testing.T) {
	form := signupForm()
	form.Status = model.StatusDraft
	srv, _ := testServer(t, form)

	req := httptest.NewRequest(http.MethodGet, "/forms/signup", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1"))
	rec := doRequest(srv, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not currently active") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestHistoryEmptyState(t *testing.T) {
	srv, _ := testServer(t, signupForm())
	req := httptest.NewRequest(http.MethodGet, "/forms/signup?viewHistory=true", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1"))

	rec := doRequest(srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "haven't submitted") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestSubmitAndHistory(t *testing.T) {
	srv, st := testServer(t, signupForm())
	token := signToken(t, "u1")

	payload := `{"values":{"name":"Ada","notes":"hello"}}`
	req := httptest.NewRequest(http.MethodPost, "/forms/signup/submissions", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	rec := doRequest(srv, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp submitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.SubmissionID == "" || resp.RedirectURL != "/dashboard" || resp.Reload {
		t.Fatalf("response = %+v", resp)
	}
	if resp.ConfirmationMessage != "Thanks for signing up!" {
		t.Fatalf("confirmation = %q", resp.ConfirmationMessage)
	}

	if _, err := st.Get(context.Background(), store.CollectionSubmissions, resp.SubmissionID); err != nil {
		t.Fatalf("stored submission missing: %v", err)
	}

	histReq := httptest.NewRequest(http.MethodGet, "/forms/signup?viewHistory=true", nil)
	histReq.Header.Set("Authorization", "Bearer "+token)
	histRec := doRequest(srv, histReq)
	if histRec.Code != http.StatusOK {
		t.Fatalf("history status = %d", histRec.Code)
	}
	html := histRec.Body.String()
	if !strings.Contains(html, "Ada") || !strings.Contains(html, "Name") {
		t.Fatalf("history missing joined answer:\n%s", html)
	}
}

func TestSubmitValidationFailure(t *testing.T) {
	srv, st := testServer(t, signupForm())

	payload := `{"values":{"notes":"no name"}}`
	req := httptest.NewRequest(http.MethodPost, "/forms/signup/submissions", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1"))
	req.Header.Set("Content-Type", "application/json")

	rec := doRequest(srv, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Name is required.") {
		t.Fatalf("body = %s", rec.Body.String())
	}

	if entries, _ := st.Query(context.Background(), store.CollectionSubmissions, store.Query{}); len(entries) != 0 {
		t.Fatal("rejected submission must not be stored")
	}
}

func TestSubmitBlocksResubmission(t *testing.T) {
	form := signupForm()
	form.Settings.AllowMultipleSubmissions = false
	srv, _ := testServer(t, form)
	token := signToken(t, "u1")

	submit := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/forms/signup/submissions",
			strings.NewReader(`{"values":{"name":"Ada"}}`))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		return doRequest(srv, req)
	}

	if rec := submit(); rec.Code != http.StatusCreated {
		t.Fatalf("first submit status = %d", rec.Code)
	}
	if rec := submit(); rec.Code != http.StatusConflict {
		t.Fatalf("second submit status = %d", rec.Code)
	}
}

func TestSubmitBadPayload(t *testing.T) {
	srv, _ := testServer(t, signupForm())
	req := httptest.NewRequest(http.MethodPost, "/forms/signup/submissions", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1"))
	req.Header.Set("Content-Type", "application/json")

	rec := doRequest(srv, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := testServer(t)
	rec := doRequest(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAssetsServed(t *testing.T) {
	srv, _ := testServer(t)
	rec := doRequest(srv, httptest.NewRequest(http.MethodGet, "/assets/formfill.css", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ".formfill-form") {
		t.Fatal("stylesheet content missing")
	}
}
