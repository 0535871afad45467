package services

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	"github.com/yungbote/educator-assistant-backend/internal/domain/gradebook"
	"github.com/yungbote/educator-assistant-backend/internal/platform/apierr"
)

const gradebookSheet = "Gradebook"

// ExportSectionXLSX writes one row per student with a percentage column per
// assessment title (ordered by first graded date), then the average and letter.
func (gs *gradeService) ExportSectionXLSX(ctx context.Context, sectionID uuid.UUID, w io.Writer) error {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return err
	}
	section, err := gs.sectionRepo.GetByID(ctx, nil, educatorID, sectionID)
	if err != nil {
		return apierr.Internal(err)
	}
	if section == nil {
		return apierr.NotFound("section")
	}
	students, err := gs.studentRepo.List(ctx, nil, educatorID, repos.StudentFilter{SectionID: &sectionID})
	if err != nil {
		return apierr.Internal(err)
	}
	ids := make([]uuid.UUID, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	grades, err := gs.gradeRepo.ListByStudentIDs(ctx, nil, educatorID, ids)
	if err != nil {
		return apierr.Internal(err)
	}

	var titles []string
	seen := map[string]bool{}
	cells := map[uuid.UUID]map[string]float64{}
	totals := map[uuid.UUID]float64{}
	counts := map[uuid.UUID]int{}
	for _, g := range grades {
		if !seen[g.Title] {
			seen[g.Title] = true
			titles = append(titles, g.Title)
		}
		if cells[g.StudentID] == nil {
			cells[g.StudentID] = map[string]float64{}
		}
		cells[g.StudentID][g.Title] = round1(g.Percentage())
		totals[g.StudentID] += g.Percentage()
		counts[g.StudentID]++
	}

	f := excelize.NewFile()
	defer func() {
		if cErr := f.Close(); cErr != nil {
			gs.log.Warn("close workbook failed", "error", cErr)
		}
	}()
	if err := f.SetSheetName("Sheet1", gradebookSheet); err != nil {
		return apierr.Internal(err)
	}

	header := []interface{}{"Student", "Student Number"}
	for _, t := range titles {
		header = append(header, t)
	}
	header = append(header, "Average", "Letter")
	if err := f.SetSheetRow(gradebookSheet, "A1", &header); err != nil {
		return apierr.Internal(err)
	}

	for i, s := range students {
		row := []interface{}{s.LastName + ", " + s.FirstName, s.StudentNumber}
		for _, t := range titles {
			if v, ok := cells[s.ID][t]; ok {
				row = append(row, v)
			} else {
				row = append(row, "")
			}
		}
		if n := counts[s.ID]; n > 0 {
			avg := round1(totals[s.ID] / float64(n))
			row = append(row, avg, gradebook.LetterFor(avg))
		} else {
			row = append(row, "", "")
		}
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apierr.Internal(err)
		}
		if err := f.SetSheetRow(gradebookSheet, cellName, &row); err != nil {
			return apierr.Internal(err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return apierr.Internal(fmt.Errorf("write workbook: %w", err))
	}
	gs.log.Info("gradebook exported", "section_id", sectionID, "students", len(students), "assessments", len(titles))
	return nil
}
