// Package member maps the group-member table of a saved
// qun.qq.com/member.html page to typed membership records.
package member

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"qq-member-export/htmltable"
)

// TableID is the id of the member table on the saved page.
const TableID = "groupMember"

// Error definitions for the member package.
var (
	// ErrTableNotFound is returned when the page has no table with
	// id "groupMember".
	ErrTableNotFound = errors.New("member: table #groupMember not found")

	// ErrFieldMissing is returned when a row lacks a required cell.
	ErrFieldMissing = errors.New("member: required cell missing")

	// ErrSpanNotFound is returned when a name cell carries no <span>.
	ErrSpanNotFound = errors.New("member: no <span> in cell")

	// ErrUnknownGender is returned for a gender cell outside the three
	// known tokens.
	ErrUnknownGender = errors.New("member: unrecognized gender")
)

// Gender is the member's gender as displayed on the page.
type Gender int

const (
	GenderUnknown Gender = iota
	GenderMale
	GenderFemale
)

// String returns the source-locale display form, which is also what the
// exported file carries.
func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "男"
	case GenderFemale:
		return "女"
	default:
		return "未知"
	}
}

// Member is one converted group-membership record. All fields except
// Gender are kept verbatim: dates and the Q-age tenure keep their
// original formatting (e.g. "2018/02/26", "11年").
type Member struct {
	QQName         string
	GroupName      string
	QQNumber       string
	Gender         Gender
	QQAge          string
	JoinedDate     string
	LastSpokenDate string
}

// Cells are addressed by position, not header name: the header row of
// this page template is unreliable or absent in saved snapshots. The
// header strings below only label errors.
var columns = []struct {
	header string
	index  int
}{
	{"成员", 2},
	{"群昵称", 3},
	{"QQ号", 4},
	{"性别", 5},
	{"Q龄", 6},
	{"入群时间", 7},
	{"最后发言", 8},
}

const (
	colQQName = iota
	colGroupName
	colQQNumber
	colGender
	colQQAge
	colJoinedDate
	colLastSpoken
)

// FromHTML extracts every member row from doc. It fails atomically: the
// first bad row aborts with no partial result.
func FromHTML(doc string) ([]Member, error) {
	table, ok := htmltable.FindByID(doc, TableID)
	if !ok {
		return nil, ErrTableNotFound
	}

	members := make([]Member, 0, table.Len())
	for i, row := range table.Rows() {
		m, err := fromRow(i, row)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

func fromRow(i int, row htmltable.Row) (Member, error) {
	cells := row.Cells()
	cell := func(col int) (string, error) {
		c := columns[col]
		if c.index >= len(cells) {
			return "", fmt.Errorf("%w: header %q at row %d", ErrFieldMissing, c.header, i)
		}
		return cells[c.index], nil
	}

	var m Member

	raw, err := cell(colQQName)
	if err != nil {
		return Member{}, err
	}
	m.QQName, err = spanText(raw, columns[colQQName].header, i)
	if err != nil {
		return Member{}, err
	}

	raw, err = cell(colGroupName)
	if err != nil {
		return Member{}, err
	}
	m.GroupName, err = nestedSpanText(raw, columns[colGroupName].header, i)
	if err != nil {
		return Member{}, err
	}

	if m.QQNumber, err = cell(colQQNumber); err != nil {
		return Member{}, err
	}

	raw, err = cell(colGender)
	if err != nil {
		return Member{}, err
	}
	if m.Gender, err = parseGender(raw, i); err != nil {
		return Member{}, err
	}

	if m.QQAge, err = cell(colQQAge); err != nil {
		return Member{}, err
	}
	if m.JoinedDate, err = cell(colJoinedDate); err != nil {
		return Member{}, err
	}
	if m.LastSpokenDate, err = cell(colLastSpoken); err != nil {
		return Member{}, err
	}

	return m, nil
}

// spanText re-parses a cell's raw inner HTML as a fragment and returns
// the trimmed content of its first <span>. The extractor keeps nested
// markup inside cells verbatim, so this second parse is where the
// human-readable name is dug out.
func spanText(rawHTML, header string, row int) (string, error) {
	frag, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("%w: header %q at row %d", ErrSpanNotFound, header, row)
	}
	span := frag.Find("span").First()
	if span.Length() == 0 {
		return "", fmt.Errorf("%w: header %q at row %d", ErrSpanNotFound, header, row)
	}
	inner, err := span.Html()
	if err != nil {
		return "", fmt.Errorf("%w: header %q at row %d", ErrSpanNotFound, header, row)
	}
	return strings.TrimSpace(inner), nil
}

// nestedSpanText handles group-nickname cells where the first span's
// content is itself markup wrapping another span. It unwraps exactly
// one extra level.
func nestedSpanText(rawHTML, header string, row int) (string, error) {
	name, err := spanText(rawHTML, header, row)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(name, "<") {
		return spanText(name, header, row)
	}
	return name, nil
}

func parseGender(s string, row int) (Gender, error) {
	switch s {
	case "男":
		return GenderMale, nil
	case "女":
		return GenderFemale, nil
	case "未知":
		return GenderUnknown, nil
	}
	return GenderUnknown, fmt.Errorf("%w: %q at row %d", ErrUnknownGender, s, row)
}
