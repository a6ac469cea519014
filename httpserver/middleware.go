package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// TenantHeader carries the tenant of the request.
const TenantHeader = "X-Tenant-ID"

type ctxKey int

const keyTenantID ctxKey = iota

// tenantContext resolves the tenant from the request header,
// falling back to the configured default.
func (s *Server) tenantContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := values.StringsCoalesce(r.Header.Get(TenantHeader), s.cfg.DefaultTenant)
		ctx := context.WithValue(r.Context(), keyTenantID, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestTenantID(ctx context.Context) string {
	if v, ok := ctx.Value(keyTenantID).(string); ok {
		return v
	}
	return ""
}

// requestLogger logs every request with its status and duration.
// Bodies are never logged here, they may carry PHI.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		logger.ContextKV(r.Context(), xlog.INFO,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"tenant", requestTenantID(r.Context()),
			"request_id", chimw.GetReqID(r.Context()),
			"elapsed", time.Since(started).String(),
		)
	})
}
