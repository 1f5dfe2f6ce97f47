package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
)

func newEnforcer(t *testing.T) *casbin.Enforcer {
	t.Helper()
	m := casbinmodel.NewModel()
	m.AddDef("r", "r", "sub, obj, act")
	m.AddDef("p", "p", "sub, obj, act")
	m.AddDef("g", "g", "_, _")
	m.AddDef("e", "e", "some(where (p.eft == allow))")
	m.AddDef("m", "m", `g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")`)
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		t.Fatalf("enforcer: %v", err)
	}
	e.AddPolicy("admin", "/v1/*", "*")
	return e
}

// injectUser stores a subject the way the bearer middleware does.
func injectUser(sub string) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		r, w := humachi.Unwrap(ctx)
		r = r.WithContext(context.WithValue(r.Context(), UserKey(), sub))
		next(humachi.NewContext(ctx.Operation(), r, w))
	}
}

// guardedAPI builds an API with one guarded list route; handled reports
// whether the handler ran.
func guardedAPI(t *testing.T, sub string, resolve RoleResolver, handled *bool) http.Handler {
	t.Helper()
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("test", "1.0.0"))
	if sub != "" {
		api.UseMiddleware(injectUser(sub))
	}
	api.UseMiddleware(RBAC(newEnforcer(t), resolve))
	huma.Register(api, huma.Operation{
		OperationID: "listForms",
		Method:      http.MethodGet,
		Path:        "/v1/forms",
	}, func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		*handled = true
		return &struct{}{}, nil
	})
	return router
}

func TestRBACBlocksNonAdmin(t *testing.T) {
	var handled bool
	srv := guardedAPI(t, "viewer", nil, &handled)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/forms", nil))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if handled {
		t.Fatal("handler must not run for a denied subject")
	}
}

func TestRBACBlocksAnonymous(t *testing.T) {
	var handled bool
	srv := guardedAPI(t, "", nil, &handled)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/forms", nil))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if handled {
		t.Fatal("handler must not run without a subject")
	}
}

func TestRBACAllowsResolvedRole(t *testing.T) {
	var handled bool
	resolve := func(_ context.Context, user string) ([]string, error) {
		if user == "1" {
			return []string{"admin"}, nil
		}
		return nil, nil
	}
	srv := guardedAPI(t, "1", resolve, &handled)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/forms", nil))

	if w.Code >= 300 {
		t.Fatalf("status = %d, want success", w.Code)
	}
	if !handled {
		t.Fatal("handler must run for an admin role")
	}
}
