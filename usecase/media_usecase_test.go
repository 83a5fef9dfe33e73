package usecase_test

import (
	"context"
	"testing"

	"auto-post/domain/model"
	"auto-post/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAssetStorage struct {
	mock.Mock
}

func (m *MockAssetStorage) ListAssetRefs(ctx context.Context, folderID string) ([]model.AssetRef, error) {
	args := m.Called(ctx, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AssetRef), args.Error(1)
}

func (m *MockAssetStorage) FetchBytes(ctx context.Context, ref model.AssetRef) ([]byte, string, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func TestMediaUsecase_FetchPreservesOrder(t *testing.T) {
	storage := new(MockAssetStorage)
	refs := []model.AssetRef{
		{ID: "a", Name: "01_front.jpg", MimeType: "image/jpeg"},
		{ID: "b", Name: "02_side.jpg", MimeType: "image/jpeg"},
	}
	storage.On("ListAssetRefs", mock.Anything, "folder-1").Return(refs, nil)
	storage.On("FetchBytes", mock.Anything, refs[0]).Return([]byte("front"), "image/jpeg", nil)
	storage.On("FetchBytes", mock.Anything, refs[1]).Return([]byte("side"), "image/jpeg", nil)

	u := usecase.NewMediaUsecase(storage, testLogger())

	assets, err := u.Fetch(context.Background(), "folder-1")

	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "01_front.jpg", assets[0].Filename)
	assert.Equal(t, "02_side.jpg", assets[1].Filename)
	assert.Equal(t, []byte("front"), assets[0].Content)
}

func TestMediaUsecase_EmptyFolder(t *testing.T) {
	storage := new(MockAssetStorage)
	storage.On("ListAssetRefs", mock.Anything, "folder-empty").Return([]model.AssetRef{}, nil)

	u := usecase.NewMediaUsecase(storage, testLogger())

	_, err := u.Fetch(context.Background(), "folder-empty")

	var emptyErr *model.EmptyMediaError
	require.ErrorAs(t, err, &emptyErr)
}

func TestMediaUsecase_MissingFolder(t *testing.T) {
	storage := new(MockAssetStorage)
	storage.On("ListAssetRefs", mock.Anything, "folder-missing").
		Return(nil, &model.NotFoundError{Kind: "folder", Ref: "folder-missing"})

	u := usecase.NewMediaUsecase(storage, testLogger())

	_, err := u.Fetch(context.Background(), "folder-missing")

	var nf *model.NotFoundError
	require.ErrorAs(t, err, &nf)
}
