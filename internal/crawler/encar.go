package crawler

import (
	"fmt"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/encarworker/helpers"
	"sjsage522/encarworker/pkg/errors"
)

// DetailURLPrefix is the public detail page of a listing
const DetailURLPrefix = "https://fem.encar.com/cars/detail/"

// Row field selectors
const (
	linkSelector    = "a.newLink._link"
	titleSelector   = "span.cls"
	detailsSelector = "span.dtl"
	yearSelector    = "span.yer"
	mileageSelector = "span.km"
	priceSelector   = "td.prc_hs strong"
)

// Extractor turns car list rows into listings
type Extractor struct {
	translator Translator
}

// NewExtractor creates an extractor. A nil translator keeps titles as-is.
func NewExtractor(translator Translator) *Extractor {
	return &Extractor{translator: translator}
}

// Extract yields one (Listing, nil) per ad row and one (Listing{}, err) per
// row that could not be parsed. Header and spacer rows are skipped silently.
// Consumers may keep ranging after an error.
func (e *Extractor) Extract(link string, rows []Row) iter.Seq2[Listing, error] {
	return func(yield func(Listing, error) bool) {
		for _, row := range rows {
			listing, ok, err := e.parseRow(link, row)
			if err != nil {
				if !yield(Listing{}, err) {
					return
				}
				continue
			}
			if !ok {
				continue
			}
			if !yield(listing, nil) {
				return
			}
		}
	}
}

// parseRow extracts a listing from a single row. ok is false for rows that
// carry no ad.
func (e *Extractor) parseRow(link string, row Row) (listing Listing, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewExtraction(link, fmt.Sprintf("row %d panicked", row.Index), fmt.Errorf("%v", r))
		}
	}()

	s := row.Selection
	if s == nil || s.Find("td").Length() == 0 {
		return Listing{}, false, nil
	}

	anchor := s.Find(linkSelector).First()
	if anchor.Length() == 0 {
		return Listing{}, false, nil
	}

	href, _ := anchor.Attr("href")
	id, err := helpers.QueryParam(href, "carid")
	if err != nil {
		return Listing{}, false, errors.NewExtraction(link, fmt.Sprintf("row %d has no car id", row.Index), err)
	}

	title := text(s, titleSelector)
	if e.translator != nil {
		title = e.translator.Translate(title)
	}

	return Listing{
		ID:      id,
		Title:   title,
		Details: text(s, detailsSelector),
		Year:    helpers.TrimLastRune(text(s, yearSelector)),
		Mileage: text(s, mileageSelector),
		Price:   text(s, priceSelector),
	}, true, nil
}

// text returns the trimmed text of the first match of selector, or ""
func text(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).First().Text())
}

// DetailURL returns the public detail page of a listing
func DetailURL(id string) string {
	return DetailURLPrefix + id
}
