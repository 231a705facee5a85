package member

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memberRow builds one <tr> in the shape of the saved member page: two
// leading cells, the seven tracked cells, and one trailing cell.
func memberRow(name, nickname, number, gender, age, joined, lastSpoken string) string {
	cells := []string{"", "1", name, nickname, number, gender, age, joined, lastSpoken, ""}
	var b strings.Builder
	b.WriteString("<tr>")
	for _, c := range cells {
		fmt.Fprintf(&b, "<td>%s</td>", c)
	}
	b.WriteString("</tr>")
	return b.String()
}

func memberPage(rows ...string) string {
	return fmt.Sprintf(`<html><body><table id="groupMember">%s</table></body></html>`,
		strings.Join(rows, "\n"))
}

func TestFromHTML(t *testing.T) {
	t.Parallel()

	doc := memberPage(memberRow(
		`<a class="group-master-a"><i class="icon-group-master"></i></a>
			<img id="useIcon1452313818" src="//q4.qlogo.cn/g?b=qq&amp;nk=1452313818&amp;s=140">
			<span> 秘书组 </span>`,
		`<span class="white"> 打工人 </span>`,
		"1452313818", "男", "11年", "2018/02/26", "2021/11/01",
	))

	members, err := FromHTML(doc)
	require.NoError(t, err)
	require.Len(t, members, 1)

	m := members[0]
	assert.Equal(t, "秘书组", m.QQName)
	assert.Equal(t, "打工人", m.GroupName)
	assert.Equal(t, "1452313818", m.QQNumber)
	assert.Equal(t, GenderMale, m.Gender)
	assert.Equal(t, "11年", m.QQAge)
	assert.Equal(t, "2018/02/26", m.JoinedDate)
	assert.Equal(t, "2021/11/01", m.LastSpokenDate)
}

func TestFromHTMLTrimsSpanContent(t *testing.T) {
	t.Parallel()

	doc := memberPage(memberRow(
		"<span> Alice </span>", "<span> nick </span>",
		"10001", "女", "5年", "2020/01/01", "2020/02/02",
	))

	members, err := FromHTML(doc)
	require.NoError(t, err)
	assert.Equal(t, "Alice", members[0].QQName)
	assert.Equal(t, GenderFemale, members[0].Gender)
}

func TestFromHTMLUnwrapsDoubleNestedNickname(t *testing.T) {
	t.Parallel()

	doc := memberPage(memberRow(
		"<span>A</span>", "<span><span> X </span></span>",
		"10002", "未知", "1年", "2021/03/04", "2021/03/05",
	))

	members, err := FromHTML(doc)
	require.NoError(t, err)
	assert.Equal(t, "X", members[0].GroupName)
	assert.Equal(t, GenderUnknown, members[0].Gender)
}

func TestFromHTMLTableMissing(t *testing.T) {
	t.Parallel()

	_, err := FromHTML(`<html><table id="other"><tr><td>x</td></tr></table></html>`)
	require.ErrorIs(t, err, ErrTableNotFound)
}

func TestFromHTMLSpanMissing(t *testing.T) {
	t.Parallel()

	doc := memberPage(memberRow(
		"no span here", "<span>n</span>",
		"10003", "男", "2年", "2021/01/01", "2021/01/02",
	))

	_, err := FromHTML(doc)
	require.ErrorIs(t, err, ErrSpanNotFound)
	assert.Contains(t, err.Error(), "成员")
	assert.Contains(t, err.Error(), "row 0")
}

func TestFromHTMLCellMissing(t *testing.T) {
	t.Parallel()

	// Only three cells; position 3 (群昵称) and beyond are absent.
	doc := memberPage("<tr><td></td><td>1</td><td><span>A</span></td></tr>")

	_, err := FromHTML(doc)
	require.ErrorIs(t, err, ErrFieldMissing)
	assert.Contains(t, err.Error(), "群昵称")
	assert.Contains(t, err.Error(), "row 0")
}

func TestFromHTMLUnknownGender(t *testing.T) {
	t.Parallel()

	doc := memberPage(
		memberRow("<span>A</span>", "<span>a</span>", "1", "男", "1年", "2020/01/01", "2020/01/02"),
		memberRow("<span>B</span>", "<span>b</span>", "2", "保密", "2年", "2020/01/01", "2020/01/02"),
	)

	members, err := FromHTML(doc)
	require.ErrorIs(t, err, ErrUnknownGender)
	assert.Contains(t, err.Error(), "保密")
	assert.Contains(t, err.Error(), "row 1")
	// Mapping is atomic: the good first row must not leak out.
	assert.Nil(t, members)
}

func TestGenderString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "男", GenderMale.String())
	assert.Equal(t, "女", GenderFemale.String())
	assert.Equal(t, "未知", GenderUnknown.String())
}
