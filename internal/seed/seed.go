// Package seed generates a demo classroom: an educator, sections, subjects,
// students with grade histories and a weekly timetable.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/domain/calendar"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

type Options struct {
	EducatorEmail      string
	Password           string
	School             string
	Sections           int
	StudentsPerSection int
	GradesPerStudent   int
	// RandSeed makes the generated data reproducible.
	RandSeed uint64
	Now      func() time.Time
}

func DefaultOptions() Options {
	return Options{
		EducatorEmail:      "demo@educator.local",
		Password:           "demo-password",
		School:             "demo",
		Sections:           2,
		StudentsPerSection: 12,
		GradesPerStudent:   6,
		RandSeed:           42,
		Now:                time.Now,
	}
}

type Summary struct {
	EducatorID uuid.UUID `json:"educator_id"`
	Skipped    bool      `json:"skipped"`
	Sections   int       `json:"sections"`
	Subjects   int       `json:"subjects"`
	Students   int       `json:"students"`
	Grades     int       `json:"grades"`
	Schedules  int       `json:"schedules"`
}

var (
	firstNames = []string{
		"Nicole", "Marcus", "Priya", "Jonathan", "Aisha", "Diego", "Mei", "Samuel", "Olivia", "Kwame",
		"Sofia", "Liam", "Hana", "Mateo", "Zara", "Ethan", "Amara", "Noah", "Leila", "Oscar",
	}
	lastNames = []string{
		"Smith", "Lee", "Patel", "Smithers", "Okafor", "Garcia", "Chen", "Johnson", "Nguyen", "Mensah",
		"Rossi", "Murphy", "Tanaka", "Silva", "Khan", "Brown", "Diallo", "Wilson", "Haddad", "Novak",
	}
	subjectNames = []struct{ name, code string }{
		{"Math", "MA"}, {"Science", "SC"}, {"English", "EN"}, {"History", "HI"},
	}
	gradeTitles = []string{"Quiz", "Homework", "Lab", "Test", "Project", "Essay"}
)

type Seeder struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, log *logger.Logger) *Seeder {
	return &Seeder{db: db, log: log.With("service", "Seeder")}
}

// Run seeds everything in one transaction. An educator that already owns
// sections is left alone and the summary reports Skipped.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sections <= 0 || opts.StudentsPerSection <= 0 {
		return nil, errors.New("sections and students per section must be positive")
	}
	if opts.Sections*opts.StudentsPerSection > len(firstNames)*len(lastNames) {
		return nil, fmt.Errorf("at most %d students can be generated", len(firstNames)*len(lastNames))
	}
	rng := rand.New(rand.NewPCG(opts.RandSeed, opts.RandSeed^0x9e3779b97f4a7c15))
	sum := &Summary{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ed, err := s.educator(tx, opts)
		if err != nil {
			return err
		}
		sum.EducatorID = ed.ID

		var existing int64
		if err := tx.Model(&types.Section{}).Where("educator_id = ?", ed.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			sum.Skipped = true
			return nil
		}

		subjects := make([]*types.Subject, 0, len(subjectNames))
		for _, sn := range subjectNames {
			sub := &types.Subject{EducatorID: ed.ID, Name: sn.name, Code: sn.code}
			if err := tx.Create(sub).Error; err != nil {
				return fmt.Errorf("create subject: %w", err)
			}
			subjects = append(subjects, sub)
		}
		sum.Subjects = len(subjects)

		names := uniqueNames(rng, opts.Sections*opts.StudentsPerSection)
		now := opts.Now().UTC()
		weekStart := mondayOf(now)
		year := academicYear(now)

		for i := 0; i < opts.Sections; i++ {
			sec := &types.Section{
				EducatorID:   ed.ID,
				Name:         fmt.Sprintf("%d%c", 5+i/2, 'A'+rune(i%2)),
				GradeLevel:   fmt.Sprint(5 + i/2),
				AcademicYear: year,
			}
			if err := tx.Create(sec).Error; err != nil {
				return fmt.Errorf("create section: %w", err)
			}
			sum.Sections++

			for j, sub := range subjects {
				start := weekStart.AddDate(0, 0, j%5).Add(time.Duration(8+i*2+j/5) * time.Hour)
				sched := &types.Schedule{
					EducatorID: ed.ID,
					SectionID:  &sec.ID,
					SubjectID:  &sub.ID,
					Title:      fmt.Sprintf("%s %s", sub.Name, sec.Name),
					Location:   fmt.Sprintf("Room %d", 10+i),
					StartsAt:   start,
					EndsAt:     start.Add(50 * time.Minute),
					Recurrence: calendar.RecurrenceWeekly,
				}
				if err := tx.Create(sched).Error; err != nil {
					return fmt.Errorf("create schedule: %w", err)
				}
				sum.Schedules++
			}

			for k := 0; k < opts.StudentsPerSection; k++ {
				n := names[i*opts.StudentsPerSection+k]
				st := &types.Student{
					EducatorID:    ed.ID,
					SectionID:     &sec.ID,
					FirstName:     n[0],
					LastName:      n[1],
					Email:         emailFor(n[0], n[1], "students."+domainFor(opts.School)),
					GuardianName:  "Parent of " + n[0],
					GuardianEmail: emailFor(n[0], n[1], "parents."+domainFor(opts.School)),
					StudentNumber: fmt.Sprintf("S%04d", sum.Students+1),
				}
				if err := tx.Create(st).Error; err != nil {
					return fmt.Errorf("create student: %w", err)
				}
				sum.Students++

				grades := gradeHistory(rng, st.ID, subjects, opts.GradesPerStudent, now)
				if len(grades) > 0 {
					if err := tx.Create(&grades).Error; err != nil {
						return fmt.Errorf("create grades: %w", err)
					}
					sum.Grades += len(grades)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("seed complete",
		"educator_id", sum.EducatorID,
		"skipped", sum.Skipped,
		"sections", sum.Sections,
		"students", sum.Students,
		"grades", sum.Grades,
	)
	return sum, nil
}

func (s *Seeder) educator(tx *gorm.DB, opts Options) (*types.Educator, error) {
	email := strings.ToLower(strings.TrimSpace(opts.EducatorEmail))
	if email == "" {
		return nil, errors.New("educator email required")
	}
	var ed types.Educator
	err := tx.Where("email = ?", email).Take(&ed).Error
	if err == nil {
		return &ed, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	ed = types.Educator{
		Email:     email,
		Password:  string(hash),
		FirstName: "Demo",
		LastName:  "Educator",
		School:    opts.School,
	}
	if err := tx.Create(&ed).Error; err != nil {
		return nil, fmt.Errorf("create educator: %w", err)
	}
	return &ed, nil
}

// uniqueNames draws n distinct first/last pairs. The first two share a first
// name so the roster always has an ambiguous reference to try.
func uniqueNames(rng *rand.Rand, n int) [][2]string {
	seen := map[[2]string]bool{}
	out := make([][2]string, 0, n)
	add := func(p [2]string) {
		if !seen[p] && len(out) < n {
			seen[p] = true
			out = append(out, p)
		}
	}
	add([2]string{"Nicole", "Smith"})
	add([2]string{"Nicole", "Jones"})
	for len(out) < n {
		add([2]string{firstNames[rng.IntN(len(firstNames))], lastNames[rng.IntN(len(lastNames))]})
	}
	return out
}

// gradeHistory spreads count grades over the last count weeks around a
// per-student ability with a small drift, so trends come out mixed.
func gradeHistory(rng *rand.Rand, studentID uuid.UUID, subjects []*types.Subject, count int, now time.Time) []*types.Grade {
	ability := clamp(rng.NormFloat64()*12+76, 35, 98)
	drift := rng.NormFloat64() * 2.5
	out := make([]*types.Grade, 0, count)
	for i := 0; i < count; i++ {
		sub := subjects[i%len(subjects)]
		pct := clamp(ability+drift*float64(i)+rng.NormFloat64()*6, 0, 100)
		const maxScore = 50.0
		out = append(out, &types.Grade{
			StudentID: studentID,
			SubjectID: &sub.ID,
			Title:     fmt.Sprintf("%s %d", gradeTitles[i%len(gradeTitles)], i/len(gradeTitles)+1),
			Category:  strings.ToLower(gradeTitles[i%len(gradeTitles)]),
			Score:     math.Round(pct/100*maxScore*2) / 2,
			MaxScore:  maxScore,
			GradedAt:  now.AddDate(0, 0, -7*(count-i)),
		})
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func mondayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func academicYear(t time.Time) string {
	y := t.Year()
	if t.Month() < time.August {
		y--
	}
	return fmt.Sprintf("%d-%d", y, y+1)
}

func domainFor(school string) string {
	s := strings.ToLower(strings.Join(strings.Fields(school), ""))
	if s == "" {
		s = "school"
	}
	return s + ".example.org"
}

func emailFor(first, last, domain string) string {
	return strings.ToLower(first+"."+last) + "@" + domain
}
