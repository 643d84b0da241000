package services

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
	"github.com/AnshRaj112/mindhaven-backend/internal/integrations/googlefit"
	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/store/memory"
	"github.com/AnshRaj112/mindhaven-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeActivity struct {
	token string
	date  string
	sum   googlefit.Summary
	err   error
}

func (f *fakeActivity) DailySummary(_ context.Context, accessToken, date string) (googlefit.Summary, error) {
	f.token, f.date = accessToken, date
	return f.sum, f.err
}

func newFitnessFixture(t *testing.T) (*FitnessService, *fakeActivity, *memory.Store) {
	t.Helper()
	st := memory.New()
	_, err := st.UpsertUser(context.Background(), models.User{FirebaseUID: "u", Email: "u@example.com"})
	require.NoError(t, err)

	cipher, err := utils.NewTokenCipher(base64.StdEncoding.EncodeToString([]byte(strings.Repeat("f", 32))))
	require.NoError(t, err)

	src := &fakeActivity{sum: googlefit.Summary{Steps: 8421, Calories: 1930.5, HeartRate: 71}}
	svc := NewFitnessService(st, st, map[string]ActivitySource{models.ProviderGoogleFit: src}, cipher, zap.NewNop())
	return svc, src, st
}

func TestFitnessConnectSyncDisconnect(t *testing.T) {
	ctx := context.Background()
	svc, src, st := newFitnessFixture(t)

	u, err := svc.Connect(ctx, "u", models.ProviderGoogleFit, "ya29.token")
	require.NoError(t, err)
	assert.True(t, u.ConnectedAccounts[models.ProviderGoogleFit])

	stored, err := st.GetUser(ctx, "u")
	require.NoError(t, err)
	assert.NotContains(t, stored.FitnessTokens[models.ProviderGoogleFit], "ya29")

	snap, err := svc.Sync(ctx, "u", models.ProviderGoogleFit, "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, "ya29.token", src.token)
	assert.Equal(t, "2025-01-01", src.date)
	assert.Equal(t, int64(8421), snap.Steps)

	src.sum.Steps = 9000
	again, err := svc.Sync(ctx, "u", models.ProviderGoogleFit, "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, snap.ID, again.ID)

	recent, err := svc.Recent(ctx, "u", 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, int64(9000), recent[0].Steps)

	u, err = svc.Disconnect(ctx, "u", models.ProviderGoogleFit)
	require.NoError(t, err)
	assert.False(t, u.ConnectedAccounts[models.ProviderGoogleFit])

	_, err = svc.Sync(ctx, "u", models.ProviderGoogleFit, "2025-01-02")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestFitnessErrors(t *testing.T) {
	ctx := context.Background()
	svc, src, _ := newFitnessFixture(t)

	_, err := svc.Connect(ctx, "u", "strava", "tok")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Connect(ctx, "u", models.ProviderGoogleFit, " ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Connect(ctx, "ghost", models.ProviderGoogleFit, "tok")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Connect(ctx, "u", models.ProviderGoogleFit, "tok")
	require.NoError(t, err)

	_, err = svc.Sync(ctx, "u", models.ProviderGoogleFit, "yesterday")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	src.err = googlefit.ErrUnauthorized
	_, err = svc.Sync(ctx, "u", models.ProviderGoogleFit, "2025-01-01")
	assert.True(t, apperr.Is(err, apperr.KindUpstream))

	recent, err := svc.Recent(ctx, "u", 5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
