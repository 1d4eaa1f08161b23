// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/stakemesh/ledger/ledger"
	"github.com/stakemesh/ledger/log"
	"github.com/stakemesh/ledger/lvldb"
	"github.com/stakemesh/ledger/metrics"
	"github.com/stakemesh/ledger/staking"
	"github.com/stakemesh/ledger/staking/stake"
)

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".stakepool")
}

func initLogger(ctx *cli.Context) {
	var level slog.Level
	switch ctx.GlobalInt(verbosityFlag.Name) {
	case 0:
		level = log.LevelError
	case 1:
		level = log.LevelWarn
	case 2:
		level = log.LevelInfo
	case 3:
		level = log.LevelDebug
	default:
		level = log.LevelTrace
	}
	lvl := new(slog.LevelVar)
	lvl.Set(level)

	var handler slog.Handler
	if ctx.GlobalBool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stderr, lvl)
	} else {
		useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, lvl, useColor)
	}
	log.SetDefault(handler)
}

func startMetrics(ctx *cli.Context) {
	if !ctx.GlobalBool(enableMetricsFlag.Name) {
		return
	}
	metrics.InitializePrometheusMetrics()
	addr := ctx.GlobalString(metricsAddrFlag.Name)
	go func() {
		if err := http.ListenAndServe(addr, metrics.HTTPHandler()); err != nil {
			log.Root().Warn("metrics server stopped", "err", err)
		}
	}()
}

func openStore(ctx *cli.Context) (*lvldb.LevelDB, error) {
	dataDir := ctx.GlobalString(dataDirFlag.Name)
	if dataDir == "" {
		return nil, errors.New("data directory is not set")
	}
	path := filepath.Join(dataDir, ctx.GlobalString(poolFlag.Name))
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, errors.Wrap(err, "create data directory")
	}
	return lvldb.New(path, lvldb.Options{})
}

// journalToken settles transfers outside the ledger; here they are only
// journaled for the operator to act on.
type journalToken struct{}

func (journalToken) TransferIn(from ledger.Address, amount *big.Int) error {
	log.Root().Info("transfer in", "from", from, "amount", amount)
	return nil
}

func (journalToken) TransferOut(to ledger.Address, amount *big.Int) error {
	log.Root().Info("transfer out", "to", to, "amount", amount)
	return nil
}

func loadOptions(ctx *cli.Context) (staking.Options, error) {
	opts := staking.Options{Token: journalToken{}}
	if admin := ctx.GlobalString(adminFlag.Name); admin != "" {
		addr, err := ledger.ParseAddress(admin)
		if err != nil {
			return staking.Options{}, errors.Wrap(err, "parse admin address")
		}
		opts.Admin = *addr
	}
	var members []ledger.Address
	for _, raw := range strings.Split(ctx.GlobalString(whitelistFlag.Name), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		addr, err := ledger.ParseAddress(raw)
		if err != nil {
			return staking.Options{}, errors.Wrap(err, "parse whitelist address")
		}
		members = append(members, *addr)
	}
	opts.Whitelist = staking.NewMapWhitelist(members...)
	return opts, nil
}

// loadParams builds initialization parameters from the command's flags.
// Commands other than init do not carry these flags; the defaults are only
// ever persisted when the store has not been initialized yet.
func loadParams(ctx *cli.Context) (staking.Params, error) {
	amountOr := func(flag cli.StringFlag, fallback int64) (*big.Int, error) {
		raw := ctx.String(flag.Name)
		if raw == "" {
			return big.NewInt(fallback), nil
		}
		amount, err := parseAmount(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "parse --%s", flag.Name)
		}
		return amount, nil
	}
	minStake, err := amountOr(minStakeFlag, 1)
	if err != nil {
		return staking.Params{}, err
	}
	maxPoolSize, err := amountOr(maxPoolSizeFlag, 0)
	if err != nil {
		return staking.Params{}, err
	}
	threshold, err := amountOr(capThresholdFlag, 0)
	if err != nil {
		return staking.Params{}, err
	}
	genesisTime := ctx.Uint64(genesisFlag.Name)
	if genesisTime == 0 {
		genesisTime = uint64(time.Now().Unix())
	}
	days := ctx.Uint64(unstakingDaysFlag.Name)
	if days == 0 {
		days = 7
	}
	return staking.Params{
		GenesisTime:               genesisTime,
		MinStake:                  minStake,
		MaxPoolSize:               maxPoolSize,
		UnstakingDays:             days,
		RewardRatePerDayBps:       ctx.Uint64(rewardRateFlag.Name),
		WithdrawalCapBps:          ctx.Uint64(capBpsFlag.Name),
		DailyWithdrawalThreshold:  threshold,
		RequireClaimBeforeUnstake: ctx.Bool(requireClaimFlag.Name),
		EnforceWithdrawalCap:      ctx.Bool(enforceCapFlag.Name),
	}, nil
}

func openVault(ctx *cli.Context) (*staking.VaultPool, func(), error) {
	store, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	opts, err := loadOptions(ctx)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	params, err := loadParams(ctx)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	pool, err := staking.NewVault(store, params, opts)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return pool, func() { store.Close() }, nil
}

func openOpen(ctx *cli.Context) (*staking.OpenPool, func(), error) {
	store, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	opts, err := loadOptions(ctx)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	params, err := loadParams(ctx)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	pool, err := staking.NewOpen(store, params, opts)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return pool, func() { store.Close() }, nil
}

func selectedKind(ctx *cli.Context) (staking.Kind, error) {
	name := ctx.GlobalString(poolFlag.Name)
	kind, ok := staking.ParseKind(name)
	if !ok {
		return 0, errors.Errorf("unknown pool variant %q", name)
	}
	return kind, nil
}

func requiredAddress(ctx *cli.Context, flag cli.StringFlag) (ledger.Address, error) {
	raw := ctx.String(flag.Name)
	if raw == "" {
		return ledger.Address{}, errors.Errorf("--%s is required", flag.Name)
	}
	addr, err := ledger.ParseAddress(raw)
	if err != nil {
		return ledger.Address{}, errors.Wrapf(err, "parse --%s", flag.Name)
	}
	return *addr, nil
}

func requiredAmount(ctx *cli.Context) (*big.Int, error) {
	raw := ctx.String(amountFlag.Name)
	if raw == "" {
		return nil, errors.Errorf("--%s is required", amountFlag.Name)
	}
	return parseAmount(raw)
}

func parseAmount(raw string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, errors.Errorf("invalid amount %q", raw)
	}
	return amount, nil
}

func opTime(ctx *cli.Context) uint64 {
	if now := ctx.Uint64(nowFlag.Name); now != 0 {
		return now
	}
	return uint64(time.Now().Unix())
}

func idsByRole(
	byBeneficiary, byWallet, byUnstaker func(ledger.Address) ([]stake.ID, error),
	role string,
	addr ledger.Address,
) ([]stake.ID, error) {
	switch role {
	case "beneficiary":
		return byBeneficiary(addr)
	case "wallet":
		return byWallet(addr)
	case "unstaker":
		return byUnstaker(addr)
	default:
		return nil, errors.Errorf("unknown role %q (beneficiary|wallet|unstaker)", role)
	}
}
