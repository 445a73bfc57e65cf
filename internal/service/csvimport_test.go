package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/Skotchmaster/weld_shop/internal/search"
)

type fakeFetcher struct {
	fail bool
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, string, error) {
	if f.fail {
		return nil, "", errors.New("connection refused")
	}
	return []byte("image-bytes-for-" + url), "image/jpeg", nil
}

func newCsvService(env *testEnv, fetcher ImageFetcher) *CsvService {
	return &CsvService{
		Repo:    env.Repo,
		Assets:  env.Assets,
		Fetcher: fetcher,
		Catalog: &ProductService{Repo: env.Repo, Assets: env.Assets},
	}
}

func TestCsvPreviewUTF8Comma(t *testing.T) {
	env := newTestEnv(t)
	svc := newCsvService(env, nil)

	raw := []byte("name,description,price,category_id\n" +
		"Электроды,Пачка 5кг,1200.50,3\n" +
		"Маска,<b>Хамелеон</b>,2 500,3\n")

	preview, err := svc.Preview(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, []string{"name", "description", "price", "category_id"}, preview.CsvHeaders)
	require.Equal(t, TargetFields, preview.TargetFields)
	require.Equal(t, 2, preview.TotalRows)
	require.Equal(t, "Электроды", preview.PreviewData[0].Name)
	require.Equal(t, "Хамелеон", preview.PreviewData[1].Description, "HTML tags are stripped")
}

func TestCsvPreviewWindows1251Semicolon(t *testing.T) {
	env := newTestEnv(t)
	svc := newCsvService(env, nil)

	utf8Text := "Название;Цена;Категория\nИнвертор сварочный;15000;2\n"
	raw, err := charmap.Windows1251.NewEncoder().Bytes([]byte(utf8Text))
	require.NoError(t, err)

	preview, err := svc.Preview(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, 1, preview.TotalRows)
	require.Equal(t, "Инвертор сварочный", preview.PreviewData[0].Name)
	require.Equal(t, "15000", preview.PreviewData[0].Price)
	require.Equal(t, "2", preview.PreviewData[0].CategoryID)
}

func TestCsvPreviewReturnsEveryRow(t *testing.T) {
	env := newTestEnv(t)
	svc := newCsvService(env, nil)

	var b strings.Builder
	b.WriteString("name,price\n")
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, "Товар %d,%d\n", i, 100+i)
	}

	preview, err := svc.Preview(context.Background(), []byte(b.String()))
	require.NoError(t, err)
	require.Equal(t, 12, preview.TotalRows)
	require.Len(t, preview.PreviewData, 12)
}

func TestCsvSingleColumnImports(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newCsvService(env, nil)
	cat := env.createCategory(t, "c")

	res, err := svc.Import(ctx, []byte("name\nЭлектроды\nПроволока\n"), cat.ID)
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)

	products, err := env.Repo.ListProductsByCategory(ctx, cat.ID)
	require.NoError(t, err)
	require.Len(t, products, 2)
}

func TestCsvPreviewRejectsUnrecognizableHeader(t *testing.T) {
	env := newTestEnv(t)
	svc := newCsvService(env, nil)

	_, err := svc.Preview(context.Background(), []byte("emitter;flux;capacitance\n1;2;3\n"))
	require.ErrorIs(t, err, ErrValidation)
}

func TestParsePrice(t *testing.T) {
	cases := map[string]int64{
		"1200":      1200,
		"1 250":     1250,
		"2 500": 2500,
		"":          0,
		"договорная": 0,
		"-5":        0,
	}
	for raw, want := range cases {
		require.True(t, decimal.NewFromInt(want).Equal(parsePrice(raw)), "price %q", raw)
	}
	require.True(t, decimal.RequireFromString("1200.50").Equal(parsePrice("1200,50")))
}

func TestCsvImportIsolatesBrokenRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newCsvService(env, nil)
	cat := env.createCategory(t, "Расходники")

	raw := []byte("название,цена,категория\n" +
		"Электроды,700," + itoa(cat.ID) + "\n" +
		",100," + itoa(cat.ID) + "\n" + // empty name fails
		"Проволока,не цена," + itoa(cat.ID) + "\n" + // bad price imports at zero
		"Держатель,500,424242\n") // unknown category fails

	res, err := svc.Import(ctx, raw, 0)
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)
	require.Equal(t, 2, res.Failed)
	require.Len(t, res.Errors, 2)
	require.Len(t, res.Products, 2, "created products come back in the response")
	require.Equal(t, "Электроды", res.Products[0].Name)
	require.Equal(t, "Импортировано товаров: 2", res.Message)

	products, err := env.Repo.ListProductsByCategory(ctx, cat.ID)
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.True(t, decimal.Zero.Equal(products[1].Price))
}

func TestCsvImportTargetCategoryOverride(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newCsvService(env, nil)
	ignored := env.createCategory(t, "из файла")
	target := env.createCategory(t, "целевая")

	raw := []byte("name,price,categoryId\nТовар,100," + itoa(ignored.ID) + "\n")

	res, err := svc.Import(ctx, raw, target.ID)
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)

	products, err := env.Repo.ListProductsByCategory(ctx, target.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)

	_, err = svc.Import(ctx, raw, 90210)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCsvImportRehostsImages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newCsvService(env, &fakeFetcher{})
	cat := env.createCategory(t, "c")

	raw := []byte("name,price,image\nМаска,2500,http://supplier.ru/mask.jpg\n")
	res, err := svc.Import(ctx, raw, cat.ID)
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	require.Equal(t, 1, env.Store.Len())

	products, err := env.Repo.ListProductsByCategory(ctx, cat.ID)
	require.NoError(t, err)
	require.NotNil(t, products[0].ImageRef)
}

func TestCsvImportMirrorsToSearchIndex(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var mu sync.Mutex
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	svc := newCsvService(env, nil)
	svc.Catalog.Search = search.NewIndex(client, "products")
	cat := env.createCategory(t, "c")

	res, err := svc.Import(ctx, []byte("name,price\nЭлектроды,700\n"), cat.ID)
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	require.Len(t, res.Products, 1)

	mu.Lock()
	defer mu.Unlock()
	require.Contains(t, requests, "PUT /products/_doc/"+itoa(res.Products[0].ID))
}

func TestCsvImportSurvivesImageFetchFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newCsvService(env, &fakeFetcher{fail: true})
	cat := env.createCategory(t, "c")

	raw := []byte("name,price,image\nМаска,2500,http://supplier.ru/broken.jpg\n")
	res, err := svc.Import(ctx, raw, cat.ID)
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported, "row imports without the image")
	require.Equal(t, 0, res.Failed)

	products, err := env.Repo.ListProductsByCategory(ctx, cat.ID)
	require.NoError(t, err)
	require.Nil(t, products[0].ImageRef)
}
