package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"hue-panel/internal/domain/model"
)

func TestConfigService(t *testing.T) {
	repo := new(MockConfigRepo)
	repo.On("Load", mock.Anything).Return(&model.BridgeConfig{BridgeIP: "10.0.0.2"})
	repo.On("Save", mock.Anything, &model.BridgeConfig{BridgeIP: "10.0.0.3", Username: "u"}).Return(nil)

	s := NewConfigService(repo)
	assert.Equal(t, "10.0.0.2", s.GetConfig(context.Background()).BridgeIP)
	assert.NoError(t, s.UpdateConfig(context.Background(), " 10.0.0.3", "u "))
	assert.ErrorIs(t, s.UpdateConfig(context.Background(), "", "u"), ErrBridgeIPRequired)
	repo.AssertNumberOfCalls(t, "Save", 1)
}
