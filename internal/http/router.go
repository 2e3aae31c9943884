// Package adminapi wires the loopback HTTP listener: health, Prometheus
// metrics, and a read-only view of the holiday document for ops spot-checks.
// It is not a public surface; everything that changes state goes through the
// bots.
package adminapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopcrew/go-shop-bots/internal/domain"
	"github.com/shopcrew/go-shop-bots/internal/http/middleware"
	"github.com/shopcrew/go-shop-bots/internal/store"
	"github.com/shopcrew/go-shop-bots/internal/utils"
)

// NewRouter builds the admin engine. Middleware order: RequestID first so
// logs and panics carry the correlation id.
func NewRouter(holidays *store.Holidays) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/holidays", listHolidays(holidays))

	return r
}

// listHolidays returns every admin's-eye view of the request log: the pending
// queue by default, or any status via ?status=. Paged with ?page= and
// ?limit=.
func listHolidays(holidays *store.Holidays) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := domain.HolidayStatus(c.DefaultQuery("status", string(domain.HolidayPending)))
		if status != "" && !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"code": "bad_status", "message": "status must be pending, approved or rejected"})
			return
		}

		page := utils.AtoiDefault(c.Query("page"), 1)
		limit := utils.ClampLimit(utils.AtoiDefault(c.Query("limit"), 50))
		if page < 1 {
			page = 1
		}

		all := holidays.ByStatus(status)
		start := (page - 1) * limit
		if start > len(all) {
			start = len(all)
		}
		end := start + limit
		if end > len(all) {
			end = len(all)
		}

		c.JSON(http.StatusOK, gin.H{
			"total": len(all),
			"page":  page,
			"items": all[start:end],
		})
	}
}

// Serve runs the engine on addr with conservative timeouts. Blocks until the
// listener fails; callers run it in a goroutine.
func Serve(addr string, engine *gin.Engine) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
