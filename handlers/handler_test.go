package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"payment-tracker-api/apperr"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidations(); err != nil {
		panic(err)
	}
}

func bindStatus(t *testing.T, dst any, body string) (int, map[string]any) {
	t.Helper()
	h := New(nil, nil, nil, nil)
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		if h.bindJSON(c, dst) {
			c.Status(http.StatusNoContent)
		}
	})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func TestPaymentRequestBinding(t *testing.T) {
	cases := []struct {
		body  string
		want  int
		field string
	}{
		{`{"customer_id": 1, "amount": "500.00"}`, http.StatusNoContent, ""},
		{`{"customer_id": 1, "amount": 500}`, http.StatusNoContent, ""},
		{`{"customer_id": 1, "amount": "500.001"}`, http.StatusBadRequest, "amount"},
		{`{"customer_id": 1, "amount": "100000000"}`, http.StatusBadRequest, "amount"},
		{`{"description": "` + string(bytes.Repeat([]byte("x"), 256)) + `"}`, http.StatusBadRequest, "description"},
		{`{"customer_id": "abc"}`, http.StatusBadRequest, ""},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			var req PaymentRequest
			code, body := bindStatus(t, &req, tc.body)
			if code != tc.want {
				t.Fatalf("status = %d, want %d (%v)", code, tc.want, body)
			}
			if tc.field != "" && body["field"] != tc.field {
				t.Errorf("field = %v, want %s", body["field"], tc.field)
			}
		})
	}
}

func TestUserRequestBinding(t *testing.T) {
	var ok RegisterRequest
	if code, body := bindStatus(t, &ok, `{"username":"bob","password":"password123","user_type":"employee"}`); code != http.StatusNoContent {
		t.Fatalf("valid registration rejected: %v", body)
	}
	if ok.Username != "bob" || ok.UserType == nil || *ok.UserType != "employee" {
		t.Errorf("decoded = %+v", ok)
	}

	var bad RegisterRequest
	code, body := bindStatus(t, &bad, `{"username":"bob","password":"password123","user_type":"manager"}`)
	if code != http.StatusBadRequest || body["field"] != "user_type" {
		t.Errorf("bad user_type: %d %v", code, body)
	}

	var short RegisterRequest
	code, body = bindStatus(t, &short, `{"username":"bob","password":"short"}`)
	if code != http.StatusBadRequest || body["field"] != "password" {
		t.Errorf("short password: %d %v", code, body)
	}
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{apperr.ErrPermissionDenied, http.StatusForbidden, apperr.ErrPermissionDenied.Error()},
		{apperr.ErrInvalidPage, http.StatusNotFound, "invalid page"},
		{apperr.Validation("email", "a record with this email already exists"), http.StatusBadRequest, "a record with this email already exists"},
		{fmt.Errorf("audit: %w", apperr.ErrSystemAccountMissing), http.StatusInternalServerError, "internal server error"},
		{errors.New("driver: bad connection"), http.StatusInternalServerError, "internal server error"},
	}
	h := New(nil, nil, nil, nil)
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			h.respondError(c, tc.err)
			if w.Code != tc.status {
				t.Errorf("status = %d, want %d", w.Code, tc.status)
			}
			var body map[string]any
			_ = json.Unmarshal(w.Body.Bytes(), &body)
			if body["error"] != tc.message {
				t.Errorf("error = %v, want %q", body["error"], tc.message)
			}
		})
	}
}
