package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/educator-assistant-backend/internal/domain"
)

func SeedEducator(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.Educator {
	tb.Helper()
	e := &types.Educator{
		Email:     email,
		Password:  "pw",
		FirstName: "Ada",
		LastName:  "Teacher",
		School:    "springfield",
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed educator: %v", err)
	}
	return e
}

func SeedSection(tb testing.TB, ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, name string) *types.Section {
	tb.Helper()
	s := &types.Section{EducatorID: educatorID, Name: name, GradeLevel: "7", AcademicYear: "2024-2025"}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed section: %v", err)
	}
	return s
}

func SeedSubject(tb testing.TB, ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, name string) *types.Subject {
	tb.Helper()
	s := &types.Subject{EducatorID: educatorID, Name: name}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed subject: %v", err)
	}
	return s
}

func SeedStudent(tb testing.TB, ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, sectionID *uuid.UUID, first, last string) *types.Student {
	tb.Helper()
	s := &types.Student{
		EducatorID:    educatorID,
		SectionID:     sectionID,
		FirstName:     first,
		LastName:      last,
		GuardianEmail: first + "." + last + ".parent@example.com",
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed student: %v", err)
	}
	return s
}

func SeedGrade(tb testing.TB, ctx context.Context, tx *gorm.DB, studentID uuid.UUID, subjectID *uuid.UUID, title string, score, max float64, at time.Time) *types.Grade {
	tb.Helper()
	g := &types.Grade{
		StudentID: studentID,
		SubjectID: subjectID,
		Title:     title,
		Score:     score,
		MaxScore:  max,
		GradedAt:  at,
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed grade: %v", err)
	}
	return g
}
