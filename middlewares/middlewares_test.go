package middlewares

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/models"
	"github.com/alpnix/HackAtDavidson/utils"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth struct {
	claims *utils.Claims
}

func (s stubAuth) Authenticate(_ context.Context, token string) (*utils.Claims, error) {
	if token != "good" {
		return nil, apperrors.NewAuthError(apperrors.CodeForbidden, "Invalid or expired token")
	}
	return s.claims, nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var resp utils.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return resp
}

// newAuthRouter mounts the JWT middleware and, when roleCheck is not nil, a role gate after it.
func newAuthRouter(role models.StaffRole, roleCheck gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := []gin.HandlerFunc{JWTAuthMiddleware(stubAuth{claims: &utils.Claims{UserID: 9, Role: role}})}
	if roleCheck != nil {
		chain = append(chain, roleCheck)
	}
	chain = append(chain, func(c *gin.Context) {
		utils.Success(c, "ok", gin.H{"user": CurrentUserID(c)})
	})
	r.GET("/p", chain...)
	return r
}

func TestJWTAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   int
	}{
		{"missing", "", http.StatusUnauthorized, apperrors.CodeAuthMissing},
		{"bad format", "Token good", http.StatusUnauthorized, apperrors.CodeAuthFormat},
		{"invalid", "Bearer bad", http.StatusForbidden, apperrors.CodeForbidden},
		{"valid", "Bearer good", http.StatusOK, 0},
	}
	r := newAuthRouter(models.RoleLogistics, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/p", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := decode(t, w).Code; got != tt.wantCode {
				t.Errorf("code = %d, want %d", got, tt.wantCode)
			}
		})
	}
}

func TestRoleAuthMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		role     models.StaffRole
		required []models.StaffRole
		want     int
	}{
		{"matching role", models.RoleFinance, []models.StaffRole{models.RoleFinance}, http.StatusOK},
		{"other role", models.RoleSocial, []models.StaffRole{models.RoleFinance}, http.StatusForbidden},
		{"president is root", models.RolePresident, []models.StaffRole{models.RoleFinance}, http.StatusOK},
		{"no roles listed", models.RoleAdvisor, nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/p", nil)
			req.Header.Set("Authorization", "Bearer good")
			w := httptest.NewRecorder()
			newAuthRouter(tt.role, RoleAuthMiddleware(tt.required...)).ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestSessionIssuesAndKeepsCookie(t *testing.T) {
	r := gin.New()
	r.Use(Session(false))
	r.GET("/s", func(c *gin.Context) { c.String(http.StatusOK, SessionID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s", nil))
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie {
		t.Fatalf("cookies = %v", cookies)
	}
	sid := cookies[0].Value
	if w.Body.String() != sid || !cookies[0].HttpOnly {
		t.Fatalf("body = %q cookie = %+v", w.Body.String(), cookies[0])
	}

	req := httptest.NewRequest(http.MethodGet, "/s", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sid})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != sid {
		t.Errorf("session changed: %q != %q", w.Body.String(), sid)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("cookie reissued for a valid session")
	}

	req = httptest.NewRequest(http.MethodGet, "/s", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "forged"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() == "forged" {
		t.Error("malformed session id accepted")
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(slogDiscard()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Header().Get(HeaderRequestID) == "" {
		t.Error("missing generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(HeaderRequestID); got != "abc-123" {
		t.Errorf("request id = %q", got)
	}
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
