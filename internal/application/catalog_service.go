package application

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pasarku/pasarku/internal/domain/entity"
	"github.com/pasarku/pasarku/internal/infrastructure/kv"
	"github.com/pasarku/pasarku/pkg/apperr"
	"github.com/pasarku/pasarku/pkg/helpers"
)

// CatalogService owns product records, the per-seller product index and
// the optional Elasticsearch/GCS integrations for search and images.
type CatalogService struct {
	KV        kv.Store
	ES        *elasticsearch.Client
	ESIndex   string
	GCS       *storage.Client
	GCSBucket string
	Logger    *logrus.Logger
}

type CreateProductInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Image       string
	Category    string
}

// List returns every product record under the products: prefix. No
// pagination or filtering; callers narrow client-side.
func (s *CatalogService) List(ctx context.Context) ([]entity.Product, error) {
	return kv.List[entity.Product](ctx, s.KV, ProductPrefix)
}

// Get loads one product.
func (s *CatalogService) Get(ctx context.Context, id string) (*entity.Product, error) {
	var p entity.Product
	ok, err := s.KV.Get(ctx, ProductKey(id), &p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("product not found")
	}
	return &p, nil
}

// Create writes a new product and appends its id to the seller's index.
// The two writes are not transactional; a crash in between leaves an
// orphaned product record.
func (s *CatalogService) Create(ctx context.Context, sellerID string, in CreateProductInput) (*entity.Product, error) {
	var seller entity.User
	ok, err := s.KV.Get(ctx, UserKey(sellerID), &seller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("user not found")
	}

	p := &entity.Product{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Image:       in.Image,
		Category:    in.Category,
		SellerID:    seller.ID,
		SellerName:  seller.Name,
		Status:      entity.ProductAvailable,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.KV.Set(ctx, ProductKey(p.ID), p); err != nil {
		return nil, err
	}
	if err := s.KV.Update(ctx, UserProductsKey(sellerID), func(cur []byte) (any, error) {
		return kv.AppendID(cur, p.ID)
	}); err != nil {
		return nil, err
	}

	s.indexProduct(ctx, p)
	return p, nil
}

// Update shallow-merges the provided fields onto the stored record,
// preserving the id. Field values are not validated; whatever the
// caller sends lands in the store.
func (s *CatalogService) Update(ctx context.Context, callerID, productID string, patch map[string]any) (map[string]any, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, callerID, p); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	merged := map[string]any{}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return nil, err
	}
	for k, v := range patch {
		merged[k] = v
	}
	merged["id"] = productID

	if err := s.KV.Set(ctx, ProductKey(productID), merged); err != nil {
		return nil, err
	}

	// Reindex when the merged record still parses as a product.
	b, _ := json.Marshal(merged)
	var updated entity.Product
	if err := json.Unmarshal(b, &updated); err == nil {
		s.indexProduct(ctx, &updated)
	}
	return merged, nil
}

// Delete removes the record, then the id from the seller's index. A
// second delete of the same id reports not found.
func (s *CatalogService) Delete(ctx context.Context, callerID, productID string) error {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, callerID, p); err != nil {
		return err
	}

	deleted, err := s.KV.Delete(ctx, ProductKey(productID))
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("product not found")
	}
	if err := s.KV.Update(ctx, UserProductsKey(p.SellerID), func(cur []byte) (any, error) {
		return kv.RemoveID(cur, productID)
	}); err != nil {
		return err
	}

	s.removeFromIndex(ctx, productID)
	return nil
}

// UploadImage stores the image in GCS and points the product at its
// public URL.
func (s *CatalogService) UploadImage(ctx context.Context, callerID, productID string, r io.Reader, filename, contentType string) (string, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return "", err
	}
	if err := s.authorize(ctx, callerID, p); err != nil {
		return "", err
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", apperr.Internal("image storage not configured")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("products", productID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}

	p.Image = url
	if err := s.KV.Set(ctx, ProductKey(productID), p); err != nil {
		return "", err
	}
	s.indexProduct(ctx, p)
	return url, nil
}

// authorize allows the product's seller or an admin.
func (s *CatalogService) authorize(ctx context.Context, callerID string, p *entity.Product) error {
	if callerID == p.SellerID {
		return nil
	}
	var caller entity.User
	ok, err := s.KV.Get(ctx, UserKey(callerID), &caller)
	if err != nil {
		return err
	}
	if ok && caller.IsAdmin() {
		return nil
	}
	return apperr.Forbidden("not allowed to modify this product")
}

// Search runs a multi_match query over the products index.
func (s *CatalogService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description", "category"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

// indexProduct ships the product document to Elasticsearch, best effort.
func (s *CatalogService) indexProduct(ctx context.Context, p *entity.Product) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	b, _ := json.Marshal(p)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", p.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("product_id", p.ID).Warn("es index response error")
	}
}

func (s *CatalogService) removeFromIndex(ctx context.Context, productID string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: productID}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", productID).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}
