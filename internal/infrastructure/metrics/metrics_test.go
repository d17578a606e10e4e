package metrics_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/metrics"
)

func TestCollector_ContadoresDeDominio(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.New(reg)

	c.StatusChanged(lifecycle.KindBudget, "approved")
	c.StatusChanged(lifecycle.KindBudget, "approved")
	c.ShareAccessed(lifecycle.ShareInvoice, ports.OutcomeDenied)
	c.EmailProcessed(ports.OutcomeSent)
	c.PaymentRecorded("approved")

	n, err := testutil.GatherAndCount(reg, "gestion_status_changes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = testutil.GatherAndCount(reg, "gestion_share_accesses_total", "gestion_emails_processed_total", "gestion_payments_recorded_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCollector_MiddlewareUsaLaRutaRegistrada(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.New(reg)
	app := fiber.New()
	app.Use(c.Middleware())
	app.Get("/items/:id", func(ctx *fiber.Ctx) error { return ctx.SendStatus(fiber.StatusNoContent) })

	for _, id := range []string{"a", "b", "c"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/items/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}

	n, err := testutil.GatherAndCount(reg, "gestion_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "una sola serie para /items/:id")
}
