package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/khrees2412/talentmatch/internal/config"
	"github.com/khrees2412/talentmatch/internal/matching"
	"github.com/khrees2412/talentmatch/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWithSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabasePath:   filepath.Join(t.TempDir(), "app.db"),
		MinScore:       40,
		ScoreWorkers:   2,
	}

	a, err := Build(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Redis)
	require.NotNil(t, a.Service)

	company := &models.Company{UserID: 1, CompanyName: "Acme"}
	require.NoError(t, a.Store.CreateCompany(ctx, company))

	_, err = a.Service.PostingStats(ctx, matching.Principal{UserID: 1, Role: models.ActorRecruiter, CompanyID: company.ID})
	assert.NoError(t, err)
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.Config{DatabaseDriver: "mysql"})
	assert.Error(t, err)
}

func TestContextRoundTrip(t *testing.T) {
	a := &App{}
	ctx := SetAppInContext(context.Background(), a)
	assert.Same(t, a, GetAppFromContext(ctx))
	assert.Nil(t, GetAppFromContext(context.Background()))
}
