package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssbags/storefront/internal/domain"
	apperrors "github.com/ssbags/storefront/pkg/errors"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer admin-tok" {
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Admin access required"})
			return
		}
		next(w, r)
	}
}

func TestAdmin_RequiresToken(t *testing.T) {
	var calls atomic.Int32
	srv := newBackend(t, func(r chi.Router) {
		r.Get("/admin/customers", func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			writeJSON(w, http.StatusOK, map[string]any{"customers": []any{}})
		})
	})
	c := newClient(t, srv)

	_, err := c.Admin("").Customers(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Zero(t, calls.Load())
}

func TestAdmin_ForbiddenToken(t *testing.T) {
	srv := newBackend(t, func(r chi.Router) {
		r.Get("/admin/customers", requireAdmin(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"customers": []any{}})
		}))
	})
	c := newClient(t, srv)

	_, err := c.Admin("customer-tok").Customers(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Contains(t, err.Error(), "Admin access required")
}

func TestAdmin_Stats(t *testing.T) {
	srv := newBackend(t, func(r chi.Router) {
		r.Get("/admin/stats/users", requireAdmin(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"count": 12}`)
		}))
		r.Get("/admin/stats/products", requireAdmin(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"count": 30}`)
		}))
		r.Get("/admin/stats/orders", requireAdmin(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"count": 7, "total_sales": 45000.50}`)
		}))
	})
	c := newClient(t, srv)

	stats, err := c.Admin("admin-tok").Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 12, stats.Users)
	assert.Equal(t, 30, stats.Products)
	assert.Equal(t, 7, stats.Orders)
	assert.True(t, stats.TotalSales.Equal(decimal.RequireFromString("45000.5")))
}

func TestAdmin_StatsFailsWhenOneCallFails(t *testing.T) {
	srv := newBackend(t, func(r chi.Router) {
		r.Get("/admin/stats/{name}", func(w http.ResponseWriter, r *http.Request) {
			if chi.URLParam(r, "name") == "products" {
				writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
				return
			}
			_, _ = io.WriteString(w, `{"count": 1}`)
		})
	})
	c := newClient(t, srv)

	_, err := c.Admin("admin-tok").Stats(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAdmin_OrdersLimit(t *testing.T) {
	var limit string
	srv := newBackend(t, func(r chi.Router) {
		r.Get("/admin/orders", requireAdmin(func(w http.ResponseWriter, r *http.Request) {
			limit = r.URL.Query().Get("limit")
			_, _ = io.WriteString(w, `{"orders":[{"id":1,"customer_name":"Hina","total_amount":900,"status":"pending"}]}`)
		}))
	})
	c := newClient(t, srv)

	orders, err := c.Admin("admin-tok").Orders(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "5", limit)
	require.Len(t, orders, 1)
	assert.Equal(t, "Hina", orders[0].CustomerName)

	_, err = c.Admin("admin-tok").Orders(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, limit)
}

func TestAdmin_UpdateOrderStatus(t *testing.T) {
	var body map[string]string
	srv := newBackend(t, func(r chi.Router) {
		r.Put("/admin/orders/{id}", requireAdmin(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "11", chi.URLParam(r, "id"))
			decodeBody(t, r, &body)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Order status updated"})
		}))
	})
	c := newClient(t, srv)
	admin := c.Admin("admin-tok")

	require.NoError(t, admin.UpdateOrderStatus(context.Background(), 11, domain.OrderShipped))
	assert.Equal(t, map[string]string{"status": "shipped"}, body)

	err := admin.UpdateOrderStatus(context.Background(), 11, "lost")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestAdmin_DeactivateCustomer(t *testing.T) {
	var body map[string]string
	srv := newBackend(t, func(r chi.Router) {
		r.Put("/admin/customers/{id}", requireAdmin(func(w http.ResponseWriter, r *http.Request) {
			decodeBody(t, r, &body)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Customer updated"})
		}))
	})
	c := newClient(t, srv)

	require.NoError(t, c.Admin("admin-tok").DeactivateCustomer(context.Background(), 4))
	assert.Equal(t, "inactive", body["status"])
}

func TestAdmin_Report(t *testing.T) {
	srv := newBackend(t, func(r chi.Router) {
		r.Get("/admin/reports", requireAdmin(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "monthly", r.URL.Query().Get("period"))
			_, _ = io.WriteString(w, `{"report_data":[{"date":"2024-01-01","orders":4,"revenue":20000}],"total_orders":4,"total_revenue":20000}`)
		}))
	})
	c := newClient(t, srv)
	admin := c.Admin("admin-tok")

	report, err := admin.Report(context.Background(), domain.PeriodMonthly)
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, 4, report.TotalOrders)
	assert.True(t, report.AverageOrderValue().Equal(decimal.NewFromInt(5000)))

	_, err = admin.Report(context.Background(), "weekly")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestAdmin_CreateProduct(t *testing.T) {
	var got domain.ProductInput
	srv := newBackend(t, func(r chi.Router) {
		r.Post("/products", requireAdmin(func(w http.ResponseWriter, r *http.Request) {
			decodeBody(t, r, &got)
			writeJSON(w, http.StatusOK, map[string]any{"message": "Product created", "id": 21})
		}))
	})
	c := newClient(t, srv)
	in := domain.ProductInput{
		Name: "Tote", Description: "Canvas tote", Price: decimal.NewFromInt(2500),
		Stock: 3, Category: "Handbags", CategoryID: 2,
	}

	id, err := c.Admin("admin-tok").CreateProduct(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, 21, id)
	assert.Equal(t, "Tote", got.Name)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(2500)))
}

func TestAdmin_CreateProductValidation(t *testing.T) {
	c, err := New(nil, "http://127.0.0.1:1/api", testLogger())
	require.NoError(t, err)
	admin := c.Admin("admin-tok")

	_, err = admin.CreateProduct(context.Background(), domain.ProductInput{Name: "Tote"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = admin.CreateProduct(context.Background(), domain.ProductInput{
		Name: "Tote", Description: "d", Category: "Handbags", CategoryID: 2, Price: decimal.Zero,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "price")
}

func TestAdmin_UploadProductImages(t *testing.T) {
	srv := newBackend(t, func(r chi.Router) {
		r.Post("/products/{id}/images", requireAdmin(func(w http.ResponseWriter, r *http.Request) {
			if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
				return
			}
			files := r.MultipartForm.File["files"]
			if !assert.Len(t, files, 2) {
				return
			}
			assert.Equal(t, "front.png", files[0].Filename)
			assert.Equal(t, "image/png", files[0].Header.Get("Content-Type"))
			writeJSON(w, http.StatusOK, map[string]any{
				"message":    "2 images uploaded successfully",
				"image_urls": []string{"/uploads/front.png", "/uploads/back.png"},
			})
		}))
	})
	c := newClient(t, srv)

	urls, err := c.Admin("admin-tok").UploadProductImages(context.Background(), 3, []ImageFile{
		{Name: "front.png", Data: pngHeader},
		{Name: "back.png", Data: pngHeader},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/front.png", "/uploads/back.png"}, urls)
}

func TestAdmin_UploadProductImagesRejectsBadFiles(t *testing.T) {
	c, err := New(nil, "http://127.0.0.1:1/api", testLogger())
	require.NoError(t, err)
	admin := c.Admin("admin-tok")
	ctx := context.Background()

	_, err = admin.UploadProductImages(ctx, 3, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	six := make([]ImageFile, MaxUploadFiles+1)
	for i := range six {
		six[i] = ImageFile{Name: "a.png", Data: pngHeader}
	}
	_, err = admin.UploadProductImages(ctx, 3, six)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Maximum 5 images")

	_, err = admin.UploadProductImages(ctx, 3, []ImageFile{{Name: "notes.txt", Data: []byte("just text")}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "not an image")

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, MaxUploadFileSize)...)
	_, err = admin.UploadProductImages(ctx, 3, []ImageFile{{Name: "huge.png", Data: big}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "larger than 5MB")
}
