package contract

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavedefi/whitelist-dapp/client/core/wallet"
	"github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/log"
	"github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/metrics"
	"github.com/mavedefi/whitelist-dapp/internal/testutil/fakechain"
	"github.com/mavedefi/whitelist-dapp/pkg/contracts/whitelist"
)

func newService(t *testing.T, chain *fakechain.Backend, address common.Address) (*WhitelistService, *metrics.Collector) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	connector := wallet.NewConnector(wallet.StaticDialer(chain), wallet.Options{Key: key}, nil, log.NewNop())
	collector := metrics.NewCollector()
	return NewWhitelistService(connector, address, collector, log.NewNop()), collector
}

func TestWhitelistService_JoinFlow(t *testing.T) {
	ctx := context.Background()
	chain := fakechain.New(4)
	svc, collector := newService(t, chain, chain.SeedWhitelist(10))

	n, err := svc.NumberOfWhitelisted(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	_, member, err := svc.IsWhitelisted(ctx)
	require.NoError(t, err)
	assert.False(t, member)

	tx, err := svc.SubmitJoin(ctx)
	require.NoError(t, err)
	receipt, err := svc.WaitMined(ctx, tx)
	require.NoError(t, err)
	assert.NotNil(t, receipt.BlockNumber)

	account, member, err := svc.IsWhitelisted(ctx)
	require.NoError(t, err)
	assert.True(t, member)
	assert.NotEqual(t, common.Address{}, account)

	n, err = svc.NumberOfWhitelisted(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	capacity, err := svc.MaxWhitelisted(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), capacity)

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.ContractCalls().WithLabelValues(OpJoin, metrics.ResultOK)))
}

func TestWhitelistService_DuplicateJoin(t *testing.T) {
	ctx := context.Background()
	chain := fakechain.New(4)
	svc, collector := newService(t, chain, chain.SeedWhitelist(10))

	tx, err := svc.SubmitJoin(ctx)
	require.NoError(t, err)
	_, err = svc.WaitMined(ctx, tx)
	require.NoError(t, err)

	_, err = svc.SubmitJoin(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), whitelist.RevertAlreadyWhitelisted)
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.ContractCalls().WithLabelValues(OpJoin, metrics.ResultError)))
}

func TestWhitelistService_RevertedReceipt(t *testing.T) {
	ctx := context.Background()
	chain := fakechain.New(4)
	svc, _ := newService(t, chain, chain.SeedWhitelist(10))

	chain.RevertNext()
	tx, err := svc.SubmitJoin(ctx)
	require.NoError(t, err)
	_, err = svc.WaitMined(ctx, tx)
	assert.ErrorIs(t, err, ErrTransactionFailed)
}

func TestWhitelistService_WrongNetwork(t *testing.T) {
	chain := fakechain.New(1)
	svc, _ := newService(t, chain, chain.SeedWhitelist(10))

	_, err := svc.NumberOfWhitelisted(context.Background())
	assert.ErrorIs(t, err, wallet.ErrWrongNetwork)
}

func TestWhitelistService_NoAddress(t *testing.T) {
	svc, _ := newService(t, fakechain.New(4), common.Address{})
	_, err := svc.NumberOfWhitelisted(context.Background())
	assert.ErrorIs(t, err, ErrNoContractAddress)
}

func TestWhitelistService_Deploy(t *testing.T) {
	ctx := context.Background()
	chain := fakechain.New(4)
	svc, _ := newService(t, chain, common.Address{})

	res, err := svc.Deploy(ctx, DeployRequest{
		Bytecode:       []byte{0x60, 0x80, 0x60, 0x40, 0x52},
		MaxWhitelisted: whitelist.DefaultMaxWhitelistedAddresses,
	})
	require.NoError(t, err)
	assert.NotEqual(t, common.Address{}, res.ContractAddress)
	assert.Equal(t, res.ContractAddress, svc.Address())

	capacity, err := svc.MaxWhitelisted(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), capacity)
}

func TestWhitelistService_DeployErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, fakechain.New(4), common.Address{})

	_, err := svc.Deploy(ctx, DeployRequest{Bytecode: []byte{0x60}, MaxWhitelisted: 0})
	assert.Error(t, err)

	_, err = svc.Deploy(ctx, DeployRequest{MaxWhitelisted: 10})
	assert.Error(t, err)

	chain := fakechain.New(4)
	chain.FailNextSend(nil)
	svc, _ = newService(t, chain, common.Address{})
	_, err = svc.Deploy(ctx, DeployRequest{Bytecode: []byte{0x60}, MaxWhitelisted: 10})
	assert.ErrorIs(t, err, fakechain.ErrInjected)
}
