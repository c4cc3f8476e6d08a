// Package parser extracts advertisement records from the fixed markup of
// the listing and detail pages.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"avito_bot/internal/model"
)

// SchemaError reports a required markup marker that is missing or
// malformed. It means the page structure has changed and extraction is no
// longer trustworthy, so callers must surface it loudly instead of
// swallowing it.
type SchemaError struct {
	Marker string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("page schema changed: marker %q: %s", e.Marker, e.Reason)
	}
	return fmt.Sprintf("page schema changed: marker %q not found", e.Marker)
}

// Items returns the item fragments of a listing page.
func Items(doc *goquery.Document) *goquery.Selection {
	return doc.Find(`div[data-marker="item"]`)
}

// ExtractAd converts one item fragment into an Advertisement with the
// listing-view fields populated. A (nil, nil) return means the fragment
// carries no address marker in any known form and must be skipped; a
// SchemaError means a required marker is gone.
func ExtractAd(sel *goquery.Selection) (*model.Advertisement, error) {
	title := sel.Find(`a[data-marker="item-title"]`).First()
	if title.Length() == 0 {
		return nil, &SchemaError{Marker: "item-title"}
	}
	href, ok := title.Attr("href")
	if !ok || href == "" {
		return nil, &SchemaError{Marker: "item-title", Reason: "anchor has no href"}
	}

	priceMeta := sel.Find(`meta[itemprop="price"]`).First()
	if priceMeta.Length() == 0 {
		return nil, &SchemaError{Marker: "itemprop=price"}
	}
	content, _ := priceMeta.Attr("content")
	price, err := strconv.ParseInt(strings.TrimSpace(content), 10, 64)
	if err != nil {
		return nil, &SchemaError{Marker: "itemprop=price", Reason: fmt.Sprintf("non-numeric content %q", content)}
	}

	// Promoted and relocated items legitimately carry no address marker at
	// all. That is a skip, not schema drift.
	address := sel.Find(`div[data-marker="item-address"]`).First()
	if address.Length() == 0 {
		address = sel.Find("div.item-address").First()
	}
	if address.Length() == 0 {
		address = sel.Find(`span[class*="geo-address"]`).First()
	}
	if address.Length() == 0 {
		return nil, nil
	}

	dateDiv := sel.Find(`div[data-marker="item-date"]`).First()
	if dateDiv.Length() == 0 {
		return nil, &SchemaError{Marker: "item-date"}
	}

	id, err := itemID(sel)
	if err != nil {
		return nil, err
	}

	return &model.Advertisement{
		ID:             id,
		URL:            href,
		Title:          strings.TrimSpace(title.Text()),
		Price:          price,
		Address:        strings.TrimSpace(address.Text()),
		ApproxDateText: strings.TrimSpace(dateDiv.Text()),
	}, nil
}

// itemID prefers the explicit data-item-id attribute and falls back to the
// DOM id with its "i" prefix stripped.
func itemID(sel *goquery.Selection) (int64, error) {
	raw, ok := sel.Attr("data-item-id")
	if !ok {
		domID, hasID := sel.Attr("id")
		if !hasID {
			return 0, &SchemaError{Marker: "data-item-id", Reason: "fragment has neither data-item-id nor id"}
		}
		raw = strings.TrimPrefix(domID, "i")
	}

	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &SchemaError{Marker: "data-item-id", Reason: fmt.Sprintf("non-numeric id %q", raw)}
	}
	return id, nil
}

// Detail holds the fields extracted from an ad's own page.
type Detail struct {
	DateText    string
	Description string
}

// ParseDetail extracts the posting-date text and the description from a
// detail page. Both markers are required.
func ParseDetail(doc *goquery.Document) (*Detail, error) {
	meta := doc.Find("div.title-info-metadata-item-redesign").First()
	if meta.Length() == 0 {
		return nil, &SchemaError{Marker: "title-info-metadata-item-redesign"}
	}

	desc := doc.Find("div.item-description-text").First()
	if desc.Length() == 0 {
		desc = doc.Find("div.item-description-html").First()
	}
	if desc.Length() == 0 {
		return nil, &SchemaError{Marker: "item-description"}
	}

	return &Detail{
		DateText:    strings.TrimSpace(meta.Text()),
		Description: strings.TrimSpace(desc.Text()),
	}, nil
}
