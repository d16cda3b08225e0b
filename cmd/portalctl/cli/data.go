// Package cli holds the portalctl subcommands that work on portal data.
package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/natefinch/atomic"

	"github.com/svit-college/curriculum-portal/internal/announcements"
	"github.com/svit-college/curriculum-portal/internal/app"
	"github.com/svit-college/curriculum-portal/internal/auth"
	"github.com/svit-college/curriculum-portal/internal/calendar"
	"github.com/svit-college/curriculum-portal/internal/curriculum"
	"github.com/svit-college/curriculum-portal/internal/resources"
)

// SeedReport counts the records written by Seed.
type SeedReport struct {
	Users         int
	Announcements int
	Events        int
	Resources     int
	Curriculum    int
}

// Seed copies the demo catalogue into stores. Records keep their content but
// take whatever identifiers the store assigns.
func Seed(ctx context.Context, stores app.Stores, users []auth.User) (SeedReport, error) {
	var report SeedReport
	for _, u := range users {
		if _, err := stores.Users.Create(ctx, u); err != nil {
			return report, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		report.Users++
	}
	for _, a := range announcements.Seed() {
		if _, err := stores.Announcements.Create(ctx, a); err != nil {
			return report, fmt.Errorf("seed announcement %q: %w", a.Title, err)
		}
		report.Announcements++
	}
	for _, e := range calendar.Seed() {
		if _, err := stores.Events.Create(ctx, e); err != nil {
			return report, fmt.Errorf("seed event %q: %w", e.Title, err)
		}
		report.Events++
	}
	for _, r := range resources.Seed() {
		if _, err := stores.Resources.Create(ctx, r); err != nil {
			return report, fmt.Errorf("seed resource %q: %w", r.Title, err)
		}
		report.Resources++
	}
	for _, e := range curriculum.Seed() {
		if _, err := stores.Curriculum.Create(ctx, e); err != nil {
			return report, fmt.Errorf("seed curriculum %q: %w", e.Title, err)
		}
		report.Curriculum++
	}
	return report, nil
}

// ExportCurriculum writes every entry, drafts included, as an XLSX workbook
// at path. The file is replaced atomically.
func ExportCurriculum(ctx context.Context, svc *curriculum.Service, path string) (int, error) {
	entries, err := svc.List(ctx, curriculum.Schema.Reset())
	if err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	if err := curriculum.Workbook.Write(&buf, entries); err != nil {
		return 0, err
	}
	if err := atomic.WriteFile(path, io.Reader(&buf)); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return len(entries), nil
}
