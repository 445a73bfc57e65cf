package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"gorm.io/gorm"

	"github.com/Skotchmaster/weld_shop/internal/logging"
	"github.com/Skotchmaster/weld_shop/internal/repo"
	"github.com/Skotchmaster/weld_shop/internal/transport"
)

// ImageFetcher downloads a remote image so it can be re-hosted in the
// object store.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// HTTPImageFetcher fetches over plain HTTP with a hard timeout per
// image.
type HTTPImageFetcher struct {
	Client *http.Client
}

func NewHTTPImageFetcher() *HTTPImageFetcher {
	return &HTTPImageFetcher{Client: &http.Client{Timeout: 30 * time.Second}}
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("image fetch: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return nil, "", err
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return data, ct, nil
}

// CsvService drives bulk product creation through Catalog, so imported
// rows pass the same validation, search mirroring and event publishing
// as single-product creates.
type CsvService struct {
	Repo    *repo.GormRepo
	Assets  *AssetCoordinator
	Fetcher ImageFetcher
	Catalog *ProductService
}

// ImportResult reports the outcome of a bulk import. Rows fail
// independently; one broken row never aborts the batch.
type ImportResult struct {
	Message  string                  `json:"message"`
	Imported int                     `json:"importedCount"`
	Products []transport.ProductView `json:"products"`
	Failed   int                     `json:"failedCount"`
	Errors   []string                `json:"errors,omitempty"`
}

// headerAliases maps recognized column names (lowered, trimmed) to
// canonical target fields. Russian merchant exports use their own
// headings.
var headerAliases = map[string]string{
	"name":         "name",
	"title":        "name",
	"наименование": "name",
	"название":     "name",
	"товар":        "name",
	"description":  "description",
	"описание":     "description",
	"price":        "price",
	"цена":         "price",
	"стоимость":    "price",
	"category":     "categoryId",
	"categoryid":   "categoryId",
	"category_id":  "categoryId",
	"категория":    "categoryId",
	"image":        "imageUrl",
	"imageurl":     "imageUrl",
	"image_url":    "imageUrl",
	"фото":         "imageUrl",
	"изображение":  "imageUrl",
	"картинка":     "imageUrl",
}

// TargetFields lists the canonical import columns in display order.
var TargetFields = []string{"name", "description", "price", "categoryId", "imageUrl"}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

func cleanCell(s string) string {
	s = htmlTagRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(s)
}

var csvDecoders = []struct {
	name string
	enc  encoding.Encoding
}{
	{"utf-8", unicode.UTF8},
	{"windows-1251", charmap.Windows1251},
	{"iso-8859-1", charmap.ISO8859_1},
}

// decodeAndParse tries every encoding and delimiter pair and keeps the
// first combination that yields a consistent table with a recognizable
// header. Merchant CSVs carry no reliable declaration of either.
func decodeAndParse(raw []byte) (headers []string, rows [][]string, err error) {
	type candidate struct {
		headers []string
		rows    [][]string
		score   int
	}
	var best *candidate

	for _, dec := range csvDecoders {
		decoded, decErr := dec.enc.NewDecoder().Bytes(raw)
		if decErr != nil || !utf8.Valid(decoded) {
			continue
		}
		text := strings.TrimPrefix(string(decoded), "\uFEFF")

		for _, delim := range []rune{',', ';'} {
			r := csv.NewReader(strings.NewReader(text))
			r.Comma = delim
			r.FieldsPerRecord = -1
			r.LazyQuotes = true

			records, readErr := r.ReadAll()
			if readErr != nil || len(records) == 0 {
				continue
			}

			score := 0
			for _, h := range records[0] {
				if _, ok := headerAliases[strings.ToLower(cleanCell(h))]; ok {
					score++
				}
			}
			if best == nil || score > best.score {
				best = &candidate{headers: records[0], rows: records[1:], score: score}
			}
		}
	}

	if best == nil {
		return nil, nil, fmt.Errorf("%w: unable to parse CSV", ErrValidation)
	}
	if best.score == 0 {
		return nil, nil, fmt.Errorf("%w: no recognizable columns in CSV header", ErrValidation)
	}
	for i, h := range best.headers {
		best.headers[i] = cleanCell(h)
	}
	return best.headers, best.rows, nil
}

// mapRow projects one raw record onto the canonical fields using the
// header alias table. Unknown columns are ignored.
func mapRow(headers []string, record []string) transport.CsvRow {
	var row transport.CsvRow
	for i, h := range headers {
		if i >= len(record) {
			break
		}
		val := cleanCell(record[i])
		switch headerAliases[strings.ToLower(h)] {
		case "name":
			row.Name = val
		case "description":
			row.Description = val
		case "price":
			row.Price = val
		case "categoryId":
			row.CategoryID = val
		case "imageUrl":
			row.ImageURL = val
		}
	}
	return row
}

// Preview parses the upload and returns the header mapping plus every
// normalized row. Nothing is written.
func (s *CsvService) Preview(ctx context.Context, raw []byte) (*transport.CsvPreview, error) {
	headers, records, err := decodeAndParse(raw)
	if err != nil {
		return nil, err
	}

	preview := make([]transport.CsvRow, 0, len(records))
	for _, rec := range records {
		preview = append(preview, mapRow(headers, rec))
	}

	return &transport.CsvPreview{
		CsvHeaders:   headers,
		TargetFields: TargetFields,
		PreviewData:  preview,
		TotalRows:    len(records),
	}, nil
}

// parsePrice accepts "1 234,56" and "1234.56" alike; anything
// unparseable imports as zero.
func parsePrice(raw string) decimal.Decimal {
	cleaned := strings.NewReplacer(" ", "", " ", "", "₽", "", ",", ".").Replace(raw)
	p, err := decimal.NewFromString(cleaned)
	if err != nil || p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// Import creates a product per row. targetCategoryID, when nonzero,
// overrides any category column. An image that cannot be fetched
// downgrades the row to an import without image.
func (s *CsvService) Import(ctx context.Context, raw []byte, targetCategoryID uint) (*ImportResult, error) {
	headers, records, err := decodeAndParse(raw)
	if err != nil {
		return nil, err
	}

	if targetCategoryID != 0 {
		if _, err := s.Repo.GetCategory(ctx, targetCategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: category %d not found", ErrValidation, targetCategoryID)
			}
			return nil, err
		}
	}

	l := logging.FromContext(ctx).With("svc", "csv.import")
	result := &ImportResult{}

	result.Products = make([]transport.ProductView, 0, len(records))
	for i, rec := range records {
		rowNum := i + 2 // header is line 1
		view, err := s.importRow(ctx, headers, rec, targetCategoryID)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("строка %d: %v", rowNum, err))
			l.Warn("row import failed", "row", rowNum, "error", err)
			continue
		}
		result.Imported++
		result.Products = append(result.Products, *view)
	}

	result.Message = fmt.Sprintf("Импортировано товаров: %d", result.Imported)
	l.Info("import finished", "imported", result.Imported, "failed", result.Failed)
	return result, nil
}

func (s *CsvService) importRow(ctx context.Context, headers, rec []string, targetCategoryID uint) (*transport.ProductView, error) {
	row := mapRow(headers, rec)
	if row.Name == "" {
		return nil, errors.New("пустое название")
	}

	categoryID := targetCategoryID
	if categoryID == 0 {
		parsed, err := strconv.ParseUint(row.CategoryID, 10, 32)
		if err != nil || parsed == 0 {
			return nil, fmt.Errorf("категория не определена: %q", row.CategoryID)
		}
		categoryID = uint(parsed)
	}
	if _, err := s.Repo.GetCategory(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("категория %d не найдена", categoryID)
		}
		return nil, err
	}

	req := transport.ProductRequest{
		Name:        row.Name,
		Description: row.Description,
		Price:       parsePrice(row.Price),
		CategoryID:  categoryID,
	}

	var uploadedKey string
	if row.ImageURL != "" && s.Fetcher != nil {
		if key, err := s.rehostImage(ctx, row.ImageURL); err != nil {
			logging.FromContext(ctx).Warn("image skipped", "url", row.ImageURL, "error", err)
		} else {
			uploadedKey = key
			req.ImageURL = &key
		}
	}

	view, err := s.Catalog.Create(ctx, req, nil)
	if err != nil {
		if uploadedKey != "" {
			s.Assets.Compensate(ctx, uploadedKey)
		}
		return nil, err
	}
	return view, nil
}

func (s *CsvService) rehostImage(ctx context.Context, url string) (string, error) {
	data, contentType, err := s.Fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return s.Assets.Upload(ctx, data, path.Base(url), contentType)
}
