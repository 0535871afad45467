package services

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	"github.com/yungbote/educator-assistant-backend/internal/data/repos/testutil"
)

func rosterWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportXLSX(t *testing.T) {
	h := newHarness(t)
	sec := testutil.SeedSection(t, h.ctx, h.db, h.educator.ID, "7B")

	buf := rosterWorkbook(t, [][]interface{}{
		{"First Name", "Last Name", "Email", "Guardian Email"},
		{"Nicole", "Smith", "nicole@example.com", "parent@example.com"},
		{"  ", " ", "", ""},
		{"Marcus", "Lee", "not-an-email", ""},
		{"Ana", "", "", ""},
		{"Marcus", "Lee", "Marcus@Example.com", ""},
	})

	res, err := h.students.ImportXLSX(h.ctx, buf, &sec.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 4, res.Errors[0].Row)
	assert.Equal(t, 5, res.Errors[1].Row)

	inSection, err := h.students.List(h.ctx, repos.StudentFilter{SectionID: &sec.ID})
	require.NoError(t, err)
	require.Len(t, inSection, 2)
	emails := []string{inSection[0].Email, inSection[1].Email}
	assert.ElementsMatch(t, []string{"nicole@example.com", "marcus@example.com"}, emails)
}

func TestImportXLSXRejectsBadInput(t *testing.T) {
	h := newHarness(t)

	_, err := h.students.ImportXLSX(h.ctx, bytes.NewBufferString("not a workbook"), nil)
	requireAPIError(t, err, http.StatusBadRequest, "invalid_spreadsheet")

	buf := rosterWorkbook(t, [][]interface{}{{"name"}, {"Nicole Smith"}})
	_, err = h.students.ImportXLSX(h.ctx, buf, nil)
	requireAPIError(t, err, http.StatusBadRequest, "invalid_spreadsheet")
}
