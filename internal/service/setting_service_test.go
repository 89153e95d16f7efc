package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type mockSettingRepo struct {
	settings map[string]*models.VideoSetting
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{settings: make(map[string]*models.VideoSetting)}
}

func (m *mockSettingRepo) Create(ctx context.Context, setting *models.VideoSetting) error {
	if setting.ID == "" {
		setting.ID = "generated-setting"
	}
	m.settings[setting.ID] = setting
	return nil
}

func (m *mockSettingRepo) Update(ctx context.Context, setting *models.VideoSetting) error {
	m.settings[setting.ID] = setting
	return nil
}

func (m *mockSettingRepo) FindFirst(ctx context.Context) (*models.VideoSetting, error) {
	for _, s := range m.settings {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSettingRepo) FindByID(ctx context.Context, id string) (*models.VideoSetting, error) {
	s, ok := m.settings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *mockSettingRepo) Count(ctx context.Context) (int, error) {
	return len(m.settings), nil
}

func (m *mockSettingRepo) Delete(ctx context.Context, id string) (bool, error) {
	_, ok := m.settings[id]
	delete(m.settings, id)
	return ok, nil
}

func newSettingService(repo *mockSettingRepo) *SettingService {
	return NewSettingService(repo, validator.New(), zap.NewNop())
}

func TestSettingServiceCreateSingleton(t *testing.T) {
	repo := newMockSettingRepo()
	svc := newSettingService(repo)

	setting, err := svc.Create(context.Background(), VideoSettingRequest{PricePerVideo: 25, MaxVideoLength: 45})
	require.NoError(t, err)
	assert.Equal(t, 25.0, setting.PricePerVideo)

	// only one settings row may ever exist
	_, err = svc.Create(context.Background(), VideoSettingRequest{PricePerVideo: 30, MaxVideoLength: 60})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSettingServiceCreateValidatesPositiveValues(t *testing.T) {
	svc := newSettingService(newMockSettingRepo())

	_, err := svc.Create(context.Background(), VideoSettingRequest{PricePerVideo: -5, MaxVideoLength: 45})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSettingServiceGetMissing(t *testing.T) {
	svc := newSettingService(newMockSettingRepo())

	_, err := svc.Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSettingServiceUpdate(t *testing.T) {
	repo := newMockSettingRepo()
	repo.settings["s1"] = &models.VideoSetting{ID: "s1", PricePerVideo: 25, MaxVideoLength: 45}
	svc := newSettingService(repo)

	setting, err := svc.Update(context.Background(), "s1", VideoSettingRequest{PricePerVideo: 30, MaxVideoLength: 60})
	require.NoError(t, err)
	assert.Equal(t, 30.0, setting.PricePerVideo)
	assert.Equal(t, 60, setting.MaxVideoLength)
}

func TestSettingServiceDeleteMissing(t *testing.T) {
	svc := newSettingService(newMockSettingRepo())

	err := svc.Delete(context.Background(), "absent")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
