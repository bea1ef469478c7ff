package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/shopassist/backend/internal/domain"
)

// catalogFile is the document form of a catalog file. A bare list of
// products is accepted as well.
type catalogFile struct {
	Products []domain.Product `json:"products" yaml:"products"`
}

// FileRepository reads the catalog from a YAML or JSON file on every load,
// so a refresh picks up edits without a restart
type FileRepository struct {
	path string
}

// NewFileRepository creates a repository for the file at path
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// ListProducts reads and decodes the catalog file
func (r *FileRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	products, err := decodeProducts(data, filepath.Ext(r.path))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", r.path, err)
	}

	if err := validateProducts(products); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", r.path, err)
	}

	log.Debug().Str("component", "catalog").Str("path", r.path).Int("products", len(products)).Msg("loaded catalog file")
	return products, nil
}

var _ domain.CatalogRepository = (*FileRepository)(nil)

func decodeProducts(data []byte, ext string) ([]domain.Product, error) {
	if strings.EqualFold(ext, ".json") {
		return decodeJSON(data)
	}
	return decodeYAML(data)
}

func decodeJSON(data []byte) ([]domain.Product, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []domain.Product{}, nil
	}

	if trimmed[0] == '[' {
		var products []domain.Product
		if err := json.Unmarshal(trimmed, &products); err != nil {
			return nil, err
		}
		return products, nil
	}

	var doc catalogFile
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return doc.Products, nil
}

func decodeYAML(data []byte) ([]domain.Product, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return []domain.Product{}, nil
	}

	body := root.Content[0]
	if body.Kind == yaml.SequenceNode {
		var products []domain.Product
		if err := body.Decode(&products); err != nil {
			return nil, err
		}
		return products, nil
	}

	var doc catalogFile
	if err := body.Decode(&doc); err != nil {
		return nil, err
	}
	return doc.Products, nil
}

const maxRating = 5

// validateProducts rejects entries without an id or name, duplicate ids and
// out-of-range price, stock, rating or review count
func validateProducts(products []domain.Product) error {
	seen := make(map[string]struct{}, len(products))
	for i, p := range products {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("product %d has no id", i)
		}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("product %q has no name", p.ID)
		}
		if p.Price < 0 || (p.OriginalPrice != nil && *p.OriginalPrice < 0) {
			return fmt.Errorf("product %q has a negative price", p.ID)
		}
		if p.Stock < 0 {
			return fmt.Errorf("product %q has negative stock %d", p.ID, p.Stock)
		}
		if p.Rating < 0 || p.Rating > maxRating {
			return fmt.Errorf("product %q has rating %.2f outside [0, %d]", p.ID, p.Rating, maxRating)
		}
		if p.ReviewCount < 0 {
			return fmt.Errorf("product %q has negative review count %d", p.ID, p.ReviewCount)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("duplicate product id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
