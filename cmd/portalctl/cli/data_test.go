package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/svit-college/curriculum-portal/internal/announcements"
	"github.com/svit-college/curriculum-portal/internal/app"
	"github.com/svit-college/curriculum-portal/internal/auth"
	"github.com/svit-college/curriculum-portal/internal/calendar"
	"github.com/svit-college/curriculum-portal/internal/curriculum"
	"github.com/svit-college/curriculum-portal/internal/resources"
	"github.com/svit-college/curriculum-portal/internal/shared"
)

func emptyStores() app.Stores {
	return app.Stores{
		Users:         auth.NewMemoryRepository(nil, 0),
		Announcements: announcements.NewMemoryRepository(nil, 0),
		Events:        calendar.NewMemoryRepository(nil, 0),
		Resources:     resources.NewMemoryRepository(nil, 0),
		Curriculum:    curriculum.NewMemoryRepository(nil, 0),
	}
}

func TestSeedCopiesCatalogue(t *testing.T) {
	users, err := auth.SeedWithCost(bcrypt.MinCost)
	require.NoError(t, err)
	stores := emptyStores()

	report, err := Seed(context.Background(), stores, users)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Users: 3, Announcements: 3, Events: 7, Resources: 7, Curriculum: 8}, report)

	_, err = Seed(context.Background(), stores, users)
	assert.ErrorIs(t, err, shared.ErrEmailTaken)
}

func TestExportCurriculumWritesWorkbook(t *testing.T) {
	svc := curriculum.NewService(curriculum.NewMemoryRepository(curriculum.Seed(), 0), nil, nil)
	path := filepath.Join(t.TempDir(), "curriculum.xlsx")

	n, err := ExportCurriculum(context.Background(), svc, path)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	header, err := f.GetCellValue("Curriculum", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Title", header)
}
