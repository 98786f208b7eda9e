package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavedefi/whitelist-dapp/client/core/wallet"
	"github.com/mavedefi/whitelist-dapp/internal/config"
	"github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/log"
	"github.com/mavedefi/whitelist-dapp/internal/testutil/fakechain"
	"github.com/mavedefi/whitelist-dapp/pkg/contracts/whitelist"
)

func writeArtifact(t *testing.T, abiJSON, bytecode string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Whitelist.json")
	doc := `{"_format":"hh-sol-artifact-1","contractName":"Whitelist","sourceName":"contracts/Whitelist.sol","abi":` +
		abiJSON + `,"bytecode":"` + bytecode + `"}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func newDeployer(t *testing.T, chain *fakechain.Backend, artifactPath string) (*deployer, *bytes.Buffer, *wallet.RecordingAlerter) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Contract.ArtifactPath = artifactPath
	cfg.Wallet.PrivateKey = hex.EncodeToString(crypto.FromECDSA(key))

	var out bytes.Buffer
	alerts := &wallet.RecordingAlerter{}
	return &deployer{
		cfg:     cfg,
		dial:    wallet.StaticDialer(chain),
		alerter: alerts,
		out:     &out,
		logger:  log.NewNop(),
	}, &out, alerts
}

func TestDeploy_PrintsAddress(t *testing.T) {
	chain := fakechain.New(4)
	d, out, _ := newDeployer(t, chain, writeArtifact(t, whitelist.ABI, "0x6080604052"))

	res, err := d.run(context.Background())
	require.NoError(t, err)

	line := strings.TrimSpace(out.String())
	require.True(t, strings.HasPrefix(line, "Whitelist Contract Address: 0x"), line)
	addr := strings.TrimPrefix(line, "Whitelist Contract Address: ")
	assert.True(t, common.IsHexAddress(addr))
	assert.Equal(t, res.ContractAddress, common.HexToAddress(addr))

	code, err := chain.CodeAt(context.Background(), res.ContractAddress, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, code)
}

func TestDeploy_Failures(t *testing.T) {
	goodArtifact := func(t *testing.T) string { return writeArtifact(t, whitelist.ABI, "0x6080604052") }

	tests := []struct {
		name     string
		chainID  int64
		artifact func(t *testing.T) string
		setup    func(d *deployer, chain *fakechain.Backend)
		wantErr  error
	}{
		{
			name:     "错误网络",
			chainID:  1,
			artifact: goodArtifact,
			wantErr:  wallet.ErrWrongNetwork,
		},
		{
			name:     "产物不存在",
			chainID:  4,
			artifact: func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.json") },
		},
		{
			name:     "产物缺少方法",
			chainID:  4,
			artifact: func(t *testing.T) string { return writeArtifact(t, `[]`, "0x6080604052") },
		},
		{
			name:     "未配置私钥",
			chainID:  4,
			artifact: goodArtifact,
			setup:    func(d *deployer, _ *fakechain.Backend) { d.cfg.Wallet.PrivateKey = "" },
			wantErr:  wallet.ErrNoSigner,
		},
		{
			name:     "发送失败",
			chainID:  4,
			artifact: goodArtifact,
			setup:    func(_ *deployer, chain *fakechain.Backend) { chain.FailNextSend(nil) },
			wantErr:  fakechain.ErrInjected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := fakechain.New(tt.chainID)
			d, out, _ := newDeployer(t, chain, tt.artifact(t))
			if tt.setup != nil {
				tt.setup(d, chain)
			}

			_, err := d.run(context.Background())
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, out.String())
		})
	}
}

func TestDeploy_KeystorePasswordPrompt(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	ks := keystore.NewKeyStore(t.TempDir(), keystore.LightScryptN, keystore.LightScryptP)
	acct, err := ks.ImportECDSA(key, "s3cret")
	require.NoError(t, err)

	t.Run("提示输入密码", func(t *testing.T) {
		d, out, _ := newDeployer(t, fakechain.New(4), writeArtifact(t, whitelist.ABI, "0x6080604052"))
		d.cfg.Wallet.PrivateKey = ""
		d.cfg.Wallet.KeystorePath = acct.URL.Path

		var prompts []string
		d.password = func(prompt string) (string, error) {
			prompts = append(prompts, prompt)
			return "s3cret", nil
		}

		_, err := d.run(context.Background())
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Whitelist Contract Address: 0x")
		require.Len(t, prompts, 1)
		assert.Contains(t, prompts[0], acct.URL.Path)
	})

	t.Run("无终端", func(t *testing.T) {
		d, out, _ := newDeployer(t, fakechain.New(4), writeArtifact(t, whitelist.ABI, "0x6080604052"))
		d.cfg.Wallet.PrivateKey = ""
		d.cfg.Wallet.KeystorePath = acct.URL.Path
		d.password = func(string) (string, error) { return "", wallet.ErrNoTerminal }

		_, err := d.run(context.Background())
		require.ErrorIs(t, err, wallet.ErrNoTerminal)
		assert.Empty(t, out.String())
	})
}

func TestDeploy_WrongNetworkAlerts(t *testing.T) {
	d, _, alerts := newDeployer(t, fakechain.New(1), writeArtifact(t, whitelist.ABI, "0x6080604052"))

	_, err := d.run(context.Background())
	require.ErrorIs(t, err, wallet.ErrWrongNetwork)
	assert.Equal(t, []string{"Change the network to Rinkeby."}, alerts.Messages())
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	logger := log.NewNop()
	cmd := newRootCmd(&logger)
	cmd.SetArgs([]string{"extra"})
	assert.Error(t, cmd.Execute())
}
