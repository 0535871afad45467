package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/platform/apierr"
	"github.com/yungbote/educator-assistant-backend/internal/platform/validate"
)

// RosterColumns is the header row expected by ImportXLSX.
var RosterColumns = []string{"first_name", "last_name", "email", "guardian_name", "guardian_email", "student_number"}

type ImportRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportResult struct {
	Created int              `json:"created"`
	Skipped int              `json:"skipped"`
	Errors  []ImportRowError `json:"errors"`
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	return strings.ReplaceAll(h, "-", "_")
}

// ImportXLSX reads the first sheet; row 1 is the header. Invalid rows are
// reported and skipped, valid rows are created together.
func (ss *studentService) ImportXLSX(ctx context.Context, r io.Reader, sectionID *uuid.UUID) (*ImportResult, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := ss.checkSection(ctx, educatorID, sectionID); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apierr.BadRequest("invalid_spreadsheet", fmt.Errorf("open spreadsheet: %w", err))
	}
	defer func() {
		if cErr := f.Close(); cErr != nil {
			ss.log.Warn("close spreadsheet failed", "error", cErr)
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, apierr.BadRequest("invalid_spreadsheet", errors.New("spreadsheet has no sheets"))
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apierr.BadRequest("invalid_spreadsheet", fmt.Errorf("read rows: %w", err))
	}
	if len(rows) == 0 {
		return nil, apierr.BadRequest("invalid_spreadsheet", errors.New("spreadsheet is empty"))
	}

	col := map[string]int{}
	for i, h := range rows[0] {
		col[normalizeHeader(h)] = i
	}
	for _, required := range []string{"first_name", "last_name"} {
		if _, ok := col[required]; !ok {
			return nil, apierr.BadRequest("invalid_spreadsheet", fmt.Errorf("missing %s column", required))
		}
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	res := &ImportResult{Errors: []ImportRowError{}}
	var toCreate []*types.Student
	for i, row := range rows[1:] {
		rowNum := i + 2
		in := StudentInput{
			SectionID:     sectionID,
			FirstName:     cell(row, "first_name"),
			LastName:      cell(row, "last_name"),
			Email:         cell(row, "email"),
			GuardianName:  cell(row, "guardian_name"),
			GuardianEmail: cell(row, "guardian_email"),
			StudentNumber: cell(row, "student_number"),
		}
		in.normalize()
		if in.FirstName == "" && in.LastName == "" && in.Email == "" {
			res.Skipped++
			continue
		}
		if err := validate.Struct(in); err != nil {
			res.Errors = append(res.Errors, ImportRowError{Row: rowNum, Error: err.Error()})
			continue
		}
		toCreate = append(toCreate, &types.Student{
			EducatorID:    educatorID,
			SectionID:     in.SectionID,
			FirstName:     in.FirstName,
			LastName:      in.LastName,
			Email:         in.Email,
			GuardianName:  in.GuardianName,
			GuardianEmail: in.GuardianEmail,
			StudentNumber: in.StudentNumber,
		})
	}

	created, err := ss.studentRepo.Create(ctx, nil, toCreate)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("create imported students: %w", err))
	}
	res.Created = len(created)
	ss.log.Info("roster imported", "educator_id", educatorID, "created", res.Created, "row_errors", len(res.Errors))
	return res, nil
}
