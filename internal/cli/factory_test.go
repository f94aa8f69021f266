package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/remnawizard/internal/config"
	"github.com/aretw0/remnawizard/internal/logging"
	"github.com/aretw0/remnawizard/pkg/domain"
)

const hexKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestBuild_RequiresPanelUnlessDryRun(t *testing.T) {
	_, err := Build(config.Default(), BuildOptions{}, logging.NewNop())
	assert.ErrorIs(t, err, config.ErrMissing)

	stack, err := Build(config.Default(), BuildOptions{DryRun: true}, logging.NewNop())
	require.NoError(t, err)
	assert.Nil(t, stack.Health)
	assert.NoError(t, stack.Close())
}

func TestBuild_DryRunWizardWorks(t *testing.T) {
	stack, err := Build(config.Config{AdminIDs: "7", MaxInputSize: 64}, BuildOptions{DryRun: true}, logging.NewNop())
	require.NoError(t, err)

	reply, err := stack.Wizard.Handle(context.Background(), domain.Envelope{UserID: 7, Token: domain.TokenBegin})
	require.NoError(t, err)
	assert.Equal(t, domain.StepUsername, reply.Step)
}

func TestBuild_ExtraAdmins(t *testing.T) {
	stack, err := Build(config.Default(), BuildOptions{DryRun: true, ExtraAdmins: []int64{99}}, logging.NewNop())
	require.NoError(t, err)

	reply, err := stack.Wizard.Handle(context.Background(), domain.Envelope{UserID: 99, Token: domain.TokenBegin})
	require.NoError(t, err)
	assert.False(t, reply.Denied)
}

func TestBuild_RedisAndEncryption(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Config{
		AdminIDs:   "7",
		RedisAddr:  mr.Addr(),
		SessionKey: hexKey,
	}

	stack, err := Build(cfg, BuildOptions{DryRun: true}, logging.NewNop())
	require.NoError(t, err)
	defer stack.Close()
	require.NotNil(t, stack.Health)
	assert.NoError(t, stack.Health.Ping(context.Background()))

	_, err = stack.Wizard.Handle(context.Background(), domain.Envelope{UserID: 7, Token: domain.TokenBegin})
	require.NoError(t, err)
	ids, err := stack.Wizard.Sessions().List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.UserID{7}, ids)
}

func TestBuild_FileStore(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{AdminIDs: "7", SessionDir: dir}

	stack, err := Build(cfg, BuildOptions{DryRun: true}, logging.NewNop())
	require.NoError(t, err)
	_, err = stack.Wizard.Handle(context.Background(), domain.Envelope{UserID: 7, Token: domain.TokenBegin})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "7.json"))

	// A second process sees the wizard in progress.
	again, err := Build(cfg, BuildOptions{DryRun: true}, logging.NewNop())
	require.NoError(t, err)
	s, err := again.Wizard.Sessions().Load(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.StepUsername, s.CurrentStep)
}

func TestBuild_ConfigErrors(t *testing.T) {
	for name, cfg := range map[string]config.Config{
		"admins":  {AdminIDs: "nope"},
		"key":     {SessionKey: "beef"},
		"catalog": {SquadCatalog: "/does/not/exist.yaml"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Build(cfg, BuildOptions{DryRun: true}, logging.NewNop())
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger(config.Config{LogLevel: "debug", LogFormat: "json"})
	assert.NoError(t, err)
	_, err = NewLogger(config.Config{LogLevel: "loud"})
	assert.Error(t, err)
}
