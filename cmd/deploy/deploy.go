package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mavedefi/whitelist-dapp/client/core/contract"
	"github.com/mavedefi/whitelist-dapp/client/core/wallet"
	"github.com/mavedefi/whitelist-dapp/internal/config"
	"github.com/mavedefi/whitelist-dapp/pkg/contracts/artifact"
	"github.com/mavedefi/whitelist-dapp/pkg/contracts/whitelist"
	logiface "github.com/mavedefi/whitelist-dapp/pkg/interfaces/infrastructure/log"
)

// deployer 一次性部署
type deployer struct {
	cfg      *config.Config
	dial     wallet.Dialer
	alerter  wallet.Alerter
	password wallet.PasswordFunc
	out      io.Writer
	logger   logiface.Logger
}

// run 加载编译产物，部署合约并输出地址
func (d *deployer) run(ctx context.Context) (*contract.DeployResult, error) {
	art, err := artifact.Load(d.cfg.Contract.ArtifactPath)
	if err != nil {
		return nil, err
	}
	if err := whitelist.CheckABI(art.ABI()); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", d.cfg.Contract.ArtifactPath, err)
	}
	capacity, err := d.cfg.MaxWhitelisted()
	if err != nil {
		return nil, err
	}

	src, err := d.cfg.KeySource().WithPassword(d.password)
	if err != nil {
		return nil, err
	}
	key, err := src.LoadKey()
	if err != nil {
		return nil, fmt.Errorf("load wallet key: %w", err)
	}
	opts := d.cfg.ConnectorOptions()
	opts.Key = key

	connector := wallet.NewConnector(d.dial, opts, d.alerter, d.logger)
	defer func() {
		if err := connector.Close(); err != nil {
			d.logger.Warnf("关闭链连接失败: %v", err)
		}
	}()

	svc := contract.NewWhitelistService(connector, common.Address{}, nil, d.logger)
	d.logger.Infof("部署 Whitelist 合约: network=%s max=%d", connector.Network(), capacity)
	res, err := svc.Deploy(ctx, contract.DeployRequest{
		Bytecode:       art.Code(),
		MaxWhitelisted: capacity,
	})
	if err != nil {
		return nil, err
	}

	if _, err := fmt.Fprintf(d.out, "Whitelist Contract Address: %s\n", res.ContractAddress.Hex()); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	return res, nil
}
