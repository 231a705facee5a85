// Package htmltable extracts data from HTML tables.
//
// It locates a table in an HTML document through one of three entry
// points: FindFirst takes the first table in document order, FindByID
// matches a table by its HTML id, and FindByHeaders matches a table by
// the set of headers in its first row. Each reports absence through a
// boolean, since the document may contain no matching table. Once a
// table is found, its rows can be iterated and cells accessed either
// positionally or by header name.
//
// Malformed markup never fails: the underlying parser repairs it on a
// best-effort basis, so "not found" is the only absence signal.
package htmltable

import (
	"fmt"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Table is a parsed HTML table: a map from header name to zero-based
// column position, and an ordered grid of data-cell strings.
//
// Headers come from the <th> cells of the table's first row. When that
// row carries at least one <th>, it is excluded from the data grid;
// otherwise the header map is empty and every row, the first included,
// is data. Cell values are the trimmed inner HTML of each <td>, with
// nested markup preserved verbatim. Callers that need the plain text of
// a cell re-parse its content as a fragment.
type Table struct {
	headers map[string]int
	data    [][]string
}

// FindFirst returns the first table in doc, in document order.
func FindFirst(doc string) (*Table, bool) {
	d, err := parse(doc)
	if err != nil {
		return nil, false
	}
	tbl := d.Find("table").First()
	if tbl.Length() == 0 {
		return nil, false
	}
	return fromSelection(tbl), true
}

// FindByID returns the table in doc whose id attribute equals id.
//
// The id is interpolated into a "table#<id>" selector verbatim, without
// CSS escaping. An id that does not form a valid selector yields not
// found.
func FindByID(doc, id string) (*Table, bool) {
	sel, err := cascadia.Compile(fmt.Sprintf("table#%s", id))
	if err != nil {
		return nil, false
	}
	d, err := parse(doc)
	if err != nil {
		return nil, false
	}
	tbl := d.FindMatcher(sel).First()
	if tbl.Length() == 0 {
		return nil, false
	}
	return fromSelection(tbl), true
}

// FindByHeaders returns the first table in doc whose first-row header
// cells contain every name in headers. Order does not matter; matching
// is exact on the trimmed cell content.
//
// An empty headers slice is equivalent to FindFirst.
func FindByHeaders(doc string, headers []string) (*Table, bool) {
	if len(headers) == 0 {
		return FindFirst(doc)
	}
	d, err := parse(doc)
	if err != nil {
		return nil, false
	}
	var found *goquery.Selection
	d.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		cells := cellContents(tbl.Find("tr").First().Find("th"))
		if containsAll(cells, headers) {
			found = tbl
			return false
		}
		return true
	})
	if found == nil {
		return nil, false
	}
	return fromSelection(found), true
}

// Headers returns the map from header name to zero-based column
// position. It is empty when the table's first row had no <th> cells.
// Duplicate header names keep the last position.
func (t *Table) Headers() map[string]int {
	return t.headers
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.data)
}

// Row returns a view over data row i. It panics if i is out of range.
func (t *Table) Row(i int) Row {
	return Row{headers: t.headers, cells: t.data[i]}
}

// Rows returns an iterator over the table's data rows in original
// order, keyed by zero-based row index. The sequence is restartable.
func (t *Table) Rows() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		for i, cells := range t.data {
			if !yield(i, Row{headers: t.headers, cells: cells}) {
				return
			}
		}
	}
}

// Row is a read-only view over one data row of a Table. It borrows the
// table's storage and must not outlive it.
//
// Cells can be addressed by header name through Get when the table has
// a header row, or positionally through Cells. Rows shorter than the
// header count are legal; Get simply reports absence past the row's
// end.
type Row struct {
	headers map[string]int
	cells   []string
}

// Get returns the cell underneath header. The boolean is false when the
// header is unknown or the row has no cell at that position.
func (r Row) Get(header string) (string, bool) {
	i, ok := r.headers[header]
	if !ok || i >= len(r.cells) {
		return "", false
	}
	return r.cells[i], true
}

// Cells returns the row's cells in document order.
func (r Row) Cells() []string {
	return r.cells
}

// Len returns the number of cells in the row.
func (r Row) Len() int {
	return len(r.cells)
}

func parse(doc string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(doc))
}

// fromSelection builds a Table from a table element. Rows are the
// element's <tr> descendants in document order.
func fromSelection(tbl *goquery.Selection) *Table {
	rows := tbl.Find("tr")

	headers := make(map[string]int)
	rows.First().Find("th").Each(func(i int, th *goquery.Selection) {
		headers[cellContent(th)] = i
	})

	data := make([][]string, 0, rows.Length())
	rows.Each(func(i int, tr *goquery.Selection) {
		if i == 0 && len(headers) > 0 {
			return
		}
		cells := make([]string, 0, tr.Find("td").Length())
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, cellContent(td))
		})
		data = append(data, cells)
	})

	return &Table{headers: headers, data: data}
}

// cellContent returns the trimmed inner HTML of the selection's first
// element. Nested markup is kept as-is.
func cellContent(s *goquery.Selection) string {
	h, err := s.Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(h)
}

func cellContents(s *goquery.Selection) []string {
	out := make([]string, 0, s.Length())
	s.Each(func(_ int, cell *goquery.Selection) {
		out = append(out, cellContent(cell))
	})
	return out
}

func containsAll(cells, want []string) bool {
	for _, w := range want {
		found := false
		for _, c := range cells {
			if c == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
