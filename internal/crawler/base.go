package crawler

import (
	"errors"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
)

const (
	// CarListSelector matches the results table of an Encar search page
	CarListSelector = "table.car_list"
	// CarRowSelector matches the rows of the results table
	CarRowSelector = "table.car_list tr"
)

var (
	// ErrTableNotFound is returned when the page has no car list table
	ErrTableNotFound = errors.New("car list table not found")
	// ErrNoRows is returned when the car list table has no rows
	ErrNoRows = errors.New("car list table has no rows")
)

// createDocument creates a goquery document from a reader
func createDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// RowsFromHTML parses a search page and returns the rows of every car list
// table, in document order
func RowsFromHTML(reader io.Reader) ([]Row, error) {
	doc, err := createDocument(reader)
	if err != nil {
		return nil, err
	}

	tables := doc.Find(CarListSelector)
	if tables.Length() == 0 {
		return nil, ErrTableNotFound
	}

	var rows []Row
	tables.Find("tr").Each(func(i int, s *goquery.Selection) {
		rows = append(rows, Row{Index: i, Selection: s})
	})
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	return rows, nil
}
