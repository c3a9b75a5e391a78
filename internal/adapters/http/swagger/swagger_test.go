package swagger_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	swagger "github.com/arguswatch/argus/internal/adapters/http/swagger"
	"github.com/smartystreets/goconvey/convey"
)

func TestSwaggerRoutes(t *testing.T) {
	convey.Convey("Given the docs routes registered on a mux", t, func() {
		mux := http.NewServeMux()
		swagger.Register(context.Background(), mux)

		convey.Convey("When fetching the docs page", func() {
			req := httptest.NewRequest(http.MethodGet, "/docs", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			convey.Convey("Then the ReDoc page is served", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(rec.Header().Get("Content-Type"), convey.ShouldContainSubstring, "text/html")
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "redoc")
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "/openapi.yaml")
			})
		})

		convey.Convey("When fetching the OpenAPI document", func() {
			req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			convey.Convey("Then the embedded spec is served", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(rec.Header().Get("Content-Type"), convey.ShouldContainSubstring, "application/yaml")
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "openapi: 3.0.3")
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "/api/v1/evaluations")
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "AR_[0-9a-f]{43}")
			})
		})

		convey.Convey("When registering with a nil mux", func() {
			convey.Convey("Then it should panic", func() {
				convey.So(func() { swagger.Register(context.Background(), nil) }, convey.ShouldPanic)
			})
		})
	})
}
