package parser

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"avito_bot/internal/model"
)

func loadFixture(t *testing.T, path string) *goquery.Document {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test-only fixture loading
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("parse fixture %s: %v", path, err)
	}
	return doc
}

func fragment(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	sel := doc.Find(`div[data-marker="item"]`)
	if sel.Length() != 1 {
		t.Fatalf("fragment must contain exactly one item, got %d", sel.Length())
	}
	return sel.First()
}

func TestItems(t *testing.T) {
	doc := loadFixture(t, "../../testdata/listing.html")
	if got := Items(doc).Length(); got != 3 {
		t.Errorf("expected 3 item fragments, got %d", got)
	}
}

func TestExtractAdFromListingFixture(t *testing.T) {
	doc := loadFixture(t, "../../testdata/listing.html")
	sel := Items(doc)

	ad, err := ExtractAd(sel.Eq(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &model.Advertisement{
		ID:             2111000001,
		URL:            "/domodedovo/kvartiry/2-k._kvartira_54m_59_et._2111000001",
		Title:          "2-к. квартира, 54 м², 5/9 эт.",
		Price:          8350000,
		Address:        "Каширское шоссе, 83",
		ApproxDateText: "Сегодня в 12:34",
	}
	if diff := cmp.Diff(want, ad); diff != "" {
		t.Errorf("ad mismatch (-want +got):\n%s", diff)
	}

	// Second fragment has no address marker in any form: skip, no error.
	ad, err = ExtractAd(sel.Eq(1))
	if err != nil {
		t.Fatalf("expected skip without error, got: %v", err)
	}
	if ad != nil {
		t.Fatalf("expected nil ad for addressless fragment, got %+v", ad)
	}

	// Third fragment exercises the geo-address css fallback and the DOM-id
	// fallback for the item id.
	ad, err = ExtractAd(sel.Eq(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(int64(2111000003), ad.ID); diff != "" {
		t.Errorf("id mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("Советская улица, 50", ad.Address); diff != "" {
		t.Errorf("address mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractAdSchemaErrors(t *testing.T) {
	const validItem = `<div data-marker="item" data-item-id="42">
		<a data-marker="item-title" href="/x/y_42">Квартира</a>
		<meta itemprop="price" content="100">
		<div data-marker="item-address">Адрес</div>
		<div data-marker="item-date">Сегодня в 10:00</div>
	</div>`

	tests := []struct {
		name       string
		html       string
		wantMarker string
	}{
		{
			name: "missing title anchor",
			html: `<div data-marker="item" data-item-id="42">
				<meta itemprop="price" content="100">
				<div data-marker="item-address">Адрес</div>
				<div data-marker="item-date">Сегодня в 10:00</div>
			</div>`,
			wantMarker: "item-title",
		},
		{
			name: "missing price meta",
			html: `<div data-marker="item" data-item-id="42">
				<a data-marker="item-title" href="/x/y_42">Квартира</a>
				<div data-marker="item-address">Адрес</div>
				<div data-marker="item-date">Сегодня в 10:00</div>
			</div>`,
			wantMarker: "itemprop=price",
		},
		{
			name: "non-numeric price",
			html: `<div data-marker="item" data-item-id="42">
				<a data-marker="item-title" href="/x/y_42">Квартира</a>
				<meta itemprop="price" content="договорная">
				<div data-marker="item-address">Адрес</div>
				<div data-marker="item-date">Сегодня в 10:00</div>
			</div>`,
			wantMarker: "itemprop=price",
		},
		{
			name: "missing date marker",
			html: `<div data-marker="item" data-item-id="42">
				<a data-marker="item-title" href="/x/y_42">Квартира</a>
				<meta itemprop="price" content="100">
				<div data-marker="item-address">Адрес</div>
			</div>`,
			wantMarker: "item-date",
		},
		{
			name: "missing item id in any form",
			html: `<div data-marker="item">
				<a data-marker="item-title" href="/x/y_42">Квартира</a>
				<meta itemprop="price" content="100">
				<div data-marker="item-address">Адрес</div>
				<div data-marker="item-date">Сегодня в 10:00</div>
			</div>`,
			wantMarker: "data-item-id",
		},
		{
			name: "non-numeric dom id",
			html: `<div data-marker="item" id="inotanumber">
				<a data-marker="item-title" href="/x/y_42">Квартира</a>
				<meta itemprop="price" content="100">
				<div data-marker="item-address">Адрес</div>
				<div data-marker="item-date">Сегодня в 10:00</div>
			</div>`,
			wantMarker: "data-item-id",
		},
	}

	// Sanity check: the base fragment itself extracts cleanly.
	if _, err := ExtractAd(fragment(t, validItem)); err != nil {
		t.Fatalf("valid fragment must extract: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractAd(fragment(t, tt.html))
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
			if diff := cmp.Diff(tt.wantMarker, schemaErr.Marker); diff != "" {
				t.Errorf("marker mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractAdFallbackAddressMarkers(t *testing.T) {
	tests := []struct {
		name        string
		addressHTML string
		want        string
	}{
		{
			name:        "legacy item-address class",
			addressHTML: `<div class="item-address">Лесная улица, 7</div>`,
			want:        "Лесная улица, 7",
		},
		{
			name:        "geo-address css fallback",
			addressHTML: `<span class="geo-address-line">Полевая улица, 3</span>`,
			want:        "Полевая улица, 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := `<div data-marker="item" data-item-id="7">
				<a data-marker="item-title" href="/x/y_7">Квартира</a>
				<meta itemprop="price" content="100">
				` + tt.addressHTML + `
				<div data-marker="item-date">Вчера в 10:00</div>
			</div>`
			ad, err := ExtractAd(fragment(t, html))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, ad.Address); diff != "" {
				t.Errorf("address mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseDetail(t *testing.T) {
	doc := loadFixture(t, "../../testdata/detail.html")

	detail, err := ParseDetail(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff("№ 2111000001 · Сегодня в 12:34", detail.DateText); diff != "" {
		t.Errorf("date text mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(detail.Description, "Просторная светлая квартира") {
		t.Errorf("unexpected description: %q", detail.Description)
	}
}

func TestParseDetailFallbackAndErrors(t *testing.T) {
	parse := func(t *testing.T, html string) (*Detail, error) {
		t.Helper()
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			t.Fatalf("parse html: %v", err)
		}
		return ParseDetail(doc)
	}

	t.Run("html description fallback", func(t *testing.T) {
		detail, err := parse(t, `<html><body>
			<div class="title-info-metadata-item-redesign">Вчера в 20:00</div>
			<div class="item-description-html"><p>Описание из html-блока.</p></div>
		</body></html>`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff("Описание из html-блока.", detail.Description); diff != "" {
			t.Errorf("description mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing date metadata", func(t *testing.T) {
		_, err := parse(t, `<html><body>
			<div class="item-description-text">Описание.</div>
		</body></html>`)
		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			t.Fatalf("expected SchemaError, got %v", err)
		}
	})

	t.Run("missing description", func(t *testing.T) {
		_, err := parse(t, `<html><body>
			<div class="title-info-metadata-item-redesign">Вчера в 20:00</div>
		</body></html>`)
		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			t.Fatalf("expected SchemaError, got %v", err)
		}
		if diff := cmp.Diff("item-description", schemaErr.Marker); diff != "" {
			t.Errorf("marker mismatch (-want +got):\n%s", diff)
		}
	})
}
