package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ssbags/storefront/internal/domain"
	apperrors "github.com/ssbags/storefront/pkg/errors"
	"github.com/ssbags/storefront/pkg/validator"
)

// Upload limits enforced before anything is sent.
const (
	MaxUploadFiles    = 5
	MaxUploadFileSize = 5 << 20
)

// ListProducts fetches the public catalog.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var resp struct {
		Products []domain.Product `json:"products"`
	}
	err := c.do(ctx, request{op: "list products", method: http.MethodGet, path: "products"}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// Categories fetches the active product categories.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var resp struct {
		Categories []domain.Category `json:"categories"`
	}
	err := c.do(ctx, request{op: "list categories", method: http.MethodGet, path: "categories"}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// ProductImages lists the stored images of a product.
func (c *Client) ProductImages(ctx context.Context, productID int) ([]domain.ProductImage, error) {
	var resp struct {
		Images []domain.ProductImage `json:"images"`
	}
	err := c.do(ctx, request{
		op:     "list product images",
		method: http.MethodGet,
		path:   fmt.Sprintf("products/%d/images", productID),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Images, nil
}

func validateProduct(in domain.ProductInput) error {
	if err := validator.Validate(in); err != nil {
		return apperrors.Validation(err)
	}
	if !in.Price.IsPositive() {
		return apperrors.InvalidInput("price must be greater than 0")
	}
	if in.CategoryID <= 0 {
		return apperrors.InvalidInput("category is required")
	}
	return nil
}

// CreateProduct adds a product and returns its id.
func (a *Admin) CreateProduct(ctx context.Context, in domain.ProductInput) (int, error) {
	if err := validateProduct(in); err != nil {
		return 0, err
	}
	var resp struct {
		ID int `json:"id"`
	}
	err := a.do(ctx, request{
		op:     "create product",
		method: http.MethodPost,
		path:   "products",
		body:   in,
	}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// UpdateProduct replaces the editable fields of a product.
func (a *Admin) UpdateProduct(ctx context.Context, id int, in domain.ProductInput) error {
	if err := validateProduct(in); err != nil {
		return err
	}
	return a.do(ctx, request{
		op:     "update product",
		method: http.MethodPut,
		path:   fmt.Sprintf("products/%d", id),
		body:   in,
	}, nil)
}

// DeleteProduct removes a product.
func (a *Admin) DeleteProduct(ctx context.Context, id int) error {
	return a.do(ctx, request{
		op:     "delete product",
		method: http.MethodDelete,
		path:   fmt.Sprintf("products/%d", id),
	}, nil)
}

// DeleteProductImage removes one stored image of a product.
func (a *Admin) DeleteProductImage(ctx context.Context, productID, imageID int) error {
	return a.do(ctx, request{
		op:     "delete product image",
		method: http.MethodDelete,
		path:   fmt.Sprintf("products/%d/images/%d", productID, imageID),
	}, nil)
}

// ImageFile is one file to upload.
type ImageFile struct {
	Name string
	Data []byte
}

// UploadProductImages sends up to MaxUploadFiles images in one multipart
// request and returns their stored URLs. Every file must be an image of at
// most MaxUploadFileSize bytes.
func (a *Admin) UploadProductImages(ctx context.Context, productID int, files []ImageFile) ([]string, error) {
	if len(files) == 0 {
		return nil, apperrors.InvalidInput("no images selected")
	}
	if len(files) > MaxUploadFiles {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Maximum %d images allowed per upload", MaxUploadFiles))
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		if len(f.Data) > MaxUploadFileSize {
			return nil, apperrors.InvalidInput(fmt.Sprintf("%s is larger than 5MB", f.Name))
		}
		mtype := mimetype.Detect(f.Data)
		if !strings.HasPrefix(mtype.String(), "image/") {
			return nil, apperrors.InvalidInput(fmt.Sprintf("%s is not an image (%s)", f.Name, mtype.String()))
		}
		part, err := mw.CreatePart(filePartHeader(f.Name, mtype.String()))
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, bytes.NewReader(f.Data)); err != nil {
			return nil, fmt.Errorf("write form file: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	var resp struct {
		ImageURLs []string `json:"image_urls"`
	}
	err := a.do(ctx, request{
		op:          "upload images",
		method:      http.MethodPost,
		path:        fmt.Sprintf("products/%d/images", productID),
		raw:         &buf,
		contentType: mw.FormDataContentType(),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.ImageURLs, nil
}
