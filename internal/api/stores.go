package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// Attachment is a file sent with a store form.
type Attachment struct {
	Field string // gstCertificate, shopPhoto or chequePhoto
	Path  string
}

// StoreDocumentFields are the file fields accepted by the store endpoints.
var StoreDocumentFields = []string{"gstCertificate", "shopPhoto", "chequePhoto"}

// CreateStoreByMerchantID creates a store under a merchant.
func (c *Client) CreateStoreByMerchantID(ctx context.Context, merchantID string, in models.StoreInput, files ...Attachment) (models.Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	body, err := c.sendMultipart(ctx, http.MethodPost, "/merchants/"+url.PathEscape(merchantID)+"/create-store", storeFields(in), files)
	if err != nil {
		return nil, err
	}
	return decodeOne(body)
}

// FetchStoresByMerchantID lists the stores of a merchant.
func (c *Client) FetchStoresByMerchantID(ctx context.Context, merchantID string) ([]models.Record, error) {
	return c.list(ctx, models.EntityStore, "/get-stores-by-merchant/"+url.PathEscape(merchantID), nil)
}

// FetchAllStores lists every store.
func (c *Client) FetchAllStores(ctx context.Context) ([]models.Record, error) {
	return c.list(ctx, models.EntityStore, "/get-all-stores", nil)
}

// FetchStoreByID fetches one store.
func (c *Client) FetchStoreByID(ctx context.Context, storeID string) (models.Record, error) {
	return c.byID(ctx, models.EntityStore, "/get-store-by-id", storeID)
}

// UpdateStoreByID updates a store. Attachments replace stored documents.
func (c *Client) UpdateStoreByID(ctx context.Context, storeID string, in models.StoreInput, files ...Attachment) (models.Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	body, err := c.sendMultipart(ctx, http.MethodPut, "/stores/"+url.PathEscape(storeID), storeFields(in), files)
	if err != nil {
		return nil, err
	}
	c.invalidate(models.EntityStore, storeID)
	return decodeOne(body)
}

// UploadStores bulk-creates stores for a merchant from a CSV or
// spreadsheet file. The response is returned as sent by the backend.
func (c *Client) UploadStores(ctx context.Context, merchantID, path string) (models.Record, error) {
	body, err := c.sendMultipart(ctx, http.MethodPost, "/upload-store/"+url.PathEscape(merchantID), nil,
		[]Attachment{{Field: "file", Path: path}})
	if err != nil {
		return nil, err
	}
	return decodeOne(body)
}

// storeFields flattens a store payload into form fields in a fixed order
func storeFields(in models.StoreInput) [][2]string {
	data, _ := json.Marshal(in)
	var m map[string]any
	_ = json.Unmarshal(data, &m)

	fields := make([][2]string, 0, len(m))
	for _, key := range []string{"Name", "Address", "Phone", "Email", "State", "GSTIN", "GroupId",
		"AffiliateId", "AccountId", "IsActive", "pinCode", "ifscCode", "accountNumber"} {
		v, ok := m[key]
		if !ok {
			continue
		}
		s := models.ValueText(v)
		if s == "" {
			continue
		}
		fields = append(fields, [2]string{key, s})
	}
	return fields
}

// sendMultipart sends form fields and files as multipart/form-data
func (c *Client) sendMultipart(ctx context.Context, method, path string, fields [][2]string, files []Attachment) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", f[0], err)
		}
	}
	for _, a := range files {
		if err := attachFile(w, a); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := c.newRequest(ctx, method, path, nil, &buf, w.FormDataContentType())
	if err != nil {
		return nil, err
	}
	return c.send(req)
}

func attachFile(w *multipart.Writer, a Attachment) error {
	f, err := os.Open(a.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", a.Path, err)
	}
	defer f.Close()

	part, err := w.CreateFormFile(a.Field, filepath.Base(a.Path))
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", a.Field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read %s: %w", a.Path, err)
	}
	return nil
}
