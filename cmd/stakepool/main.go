// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"math/big"
	"os"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/stakemesh/ledger/staking"
	"github.com/stakemesh/ledger/staking/stake"
)

var (
	version   string
	gitCommit string
)

func fullVersion() string {
	if gitCommit == "" {
		return version + "-dev"
	}
	return fmt.Sprintf("%s-%.8s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "stakepool",
		Usage:     "operate a StakeMesh staking pool ledger",
		Copyright: "2026 The StakeMesh developers",
		Flags: []cli.Flag{
			dataDirFlag,
			poolFlag,
			adminFlag,
			whitelistFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Commands: []cli.Command{
			{
				Name:  "init",
				Usage: "initialize a pool database",
				Flags: []cli.Flag{
					genesisFlag,
					minStakeFlag,
					maxPoolSizeFlag,
					unstakingDaysFlag,
					rewardRateFlag,
					capBpsFlag,
					capThresholdFlag,
					requireClaimFlag,
					enforceCapFlag,
				},
				Action: initAction,
			},
			{
				Name:   "stake",
				Usage:  "deposit tokens into the pool",
				Flags:  []cli.Flag{fromFlag, beneficiaryFlag, amountFlag, splitFlag, nowFlag},
				Action: stakeAction,
			},
			{
				Name:   "request-unstake",
				Usage:  "start the unstaking time lock of a stake",
				Flags:  []cli.Flag{fromFlag, idFlag, nowFlag},
				Action: requestUnstakeAction,
			},
			{
				Name:   "unstake",
				Usage:  "settle a stake after its time lock (open pool accepts --amount for partial withdrawals)",
				Flags:  []cli.Flag{fromFlag, idFlag, amountFlag, nowFlag},
				Action: unstakeAction,
			},
			{
				Name:   "claim",
				Usage:  "pay out the pending reward of a vault stake",
				Flags:  []cli.Flag{fromFlag, idFlag, nowFlag},
				Action: claimAction,
			},
			{
				Name:   "add-reward",
				Usage:  "inject reward tokens into the open pool",
				Flags:  []cli.Flag{fromFlag, amountFlag, nowFlag},
				Action: addRewardAction,
			},
			{
				Name:   "request-split",
				Usage:  "queue a reward split change (beneficiary only)",
				Flags:  []cli.Flag{fromFlag, idFlag, splitFlag, nowFlag},
				Action: requestSplitAction,
			},
			{
				Name:   "reassign-wallet",
				Usage:  "point the stake's payouts at a new wallet (unstaker only)",
				Flags:  []cli.Flag{fromFlag, idFlag, targetFlag, nowFlag},
				Action: reassignWalletAction,
			},
			{
				Name:   "reassign-unstaker",
				Usage:  "hand the unstaker role to a new address (unstaker only)",
				Flags:  []cli.Flag{fromFlag, idFlag, targetFlag, nowFlag},
				Action: reassignUnstakerAction,
			},
			{
				Name:   "info",
				Usage:  "show a stake record",
				Flags:  []cli.Flag{idFlag, nowFlag},
				Action: infoAction,
			},
			{
				Name:   "stakes",
				Usage:  "list stake ids by address",
				Flags:  []cli.Flag{addressFlag, roleFlag},
				Action: stakesAction,
			},
			{
				Name:   "params",
				Usage:  "show the pool's configuration and aggregates",
				Action: paramsAction,
			},
			{
				Name:   "set-rate",
				Usage:  "change the vault reward rate (admin only)",
				Flags:  []cli.Flag{fromFlag, rewardRateFlag, nowFlag},
				Action: setRateAction,
			},
			{
				Name:   "set-duration",
				Usage:  "change the unstaking time lock (admin only)",
				Flags:  []cli.Flag{fromFlag, unstakingDaysFlag, nowFlag},
				Action: setDurationAction,
			},
			{
				Name:   "set-cap",
				Usage:  "change the open pool's daily withdrawal cap (admin only)",
				Flags:  []cli.Flag{fromFlag, capBpsFlag, capThresholdFlag, nowFlag},
				Action: setCapAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initAction(ctx *cli.Context) error {
	initLogger(ctx)
	startMetrics(ctx)

	kind, err := selectedKind(ctx)
	if err != nil {
		return err
	}
	var closer func()
	if kind == staking.KindVault {
		_, closer, err = openVault(ctx)
	} else {
		_, closer, err = openOpen(ctx)
	}
	if err != nil {
		return err
	}
	defer closer()
	fmt.Printf("%s pool ready at %s\n", kind, ctx.GlobalString(dataDirFlag.Name))
	return nil
}

func stakeAction(ctx *cli.Context) error {
	initLogger(ctx)
	startMetrics(ctx)

	from, err := requiredAddress(ctx, fromFlag)
	if err != nil {
		return err
	}
	beneficiary := from
	if ctx.String(beneficiaryFlag.Name) != "" {
		if beneficiary, err = requiredAddress(ctx, beneficiaryFlag); err != nil {
			return err
		}
	}
	amount, err := requiredAmount(ctx)
	if err != nil {
		return err
	}
	splitBps := uint32(ctx.Uint64(splitFlag.Name))

	kind, err := selectedKind(ctx)
	if err != nil {
		return err
	}
	var id stake.ID
	if kind == staking.KindVault {
		pool, closer, err := openVault(ctx)
		if err != nil {
			return err
		}
		defer closer()
		id, err = pool.StakeFor(from, beneficiary, amount, splitBps, opTime(ctx))
		if err != nil {
			return err
		}
	} else {
		pool, closer, err := openOpen(ctx)
		if err != nil {
			return err
		}
		defer closer()
		id, err = pool.StakeFor(from, beneficiary, amount, splitBps, opTime(ctx))
		if err != nil {
			return err
		}
	}
	fmt.Printf("stake %d created\n", id)
	return nil
}

func requestUnstakeAction(ctx *cli.Context) error {
	initLogger(ctx)
	startMetrics(ctx)

	from, err := requiredAddress(ctx, fromFlag)
	if err != nil {
		return err
	}
	id := stake.ID(ctx.Uint64(idFlag.Name))

	kind, err := selectedKind(ctx)
	if err != nil {
		return err
	}
	if kind == staking.KindVault {
		pool, closer, err := openVault(ctx)
		if err != nil {
			return err
		}
		defer closer()
		return pool.RequestUnstake(from, id, opTime(ctx))
	}
	pool, closer, err := openOpen(ctx)
	if err != nil {
		return err
	}
	defer closer()
	return pool.RequestUnstake(from, id, opTime(ctx))
}

func unstakeAction(ctx *cli.Context) error {
	initLogger(ctx)
	startMetrics(ctx)

	from, err := requiredAddress(ctx, fromFlag)
	if err != nil {
		return err
	}
	id := stake.ID(ctx.Uint64(idFlag.Name))

	kind, err := selectedKind(ctx)
	if err != nil {
		return err
	}
	if kind == staking.KindVault {
		if ctx.String(amountFlag.Name) != "" {
			return errors.New("the vault pool settles the full principal; --amount is not supported")
		}
		pool, closer, err := openVault(ctx)
		if err != nil {
			return err
		}
		defer closer()
		return pool.Unstake(from, id, opTime(ctx))
	}

	pool, closer, err := openOpen(ctx)
	if err != nil {
		return err
	}
	defer closer()
	var amount *big.Int
	if ctx.String(amountFlag.Name) != "" {
		if amount, err = requiredAmount(ctx); err != nil {
			return err
		}
	}
	return pool.Unstake(from, id, amount, opTime(ctx))
}

func claimAction(ctx *cli.Context) error {
	initLogger(ctx)
	startMetrics(ctx)

	from, err := requiredAddress(ctx, fromFlag)
	if err != nil {
		return err
	}
	pool, closer, err := openVault(ctx)
	if err != nil {
		return err
	}
	defer closer()
	return pool.Claim(from, stake.ID(ctx.Uint64(idFlag.Name)), opTime(ctx))
}

func addRewardAction(ctx *cli.Context) error {
	initLogger(ctx)
	startMetrics(ctx)

	from, err := requiredAddress(ctx, fromFlag)
	if err != nil {
		return err
	}
	amount, err := requiredAmount(ctx)
	if err != nil {
		return err
	}
	pool, closer, err := openOpen(ctx)
	if err != nil {
		return err
	}
	defer closer()
	return pool.AddReward(from, amount, opTime(ctx))
}

func requestSplitAction(ctx *cli.Context) error {
	initLogger(ctx)
	startMetrics(ctx)

	from, err := requiredAddress(ctx, fromFlag)
	if err != nil {
		return err
	}
	id := stake.ID(ctx.Uint64(idFlag.Name))
	newBps := uint32(ctx.Uint64(splitFlag.Name))

	kind, err := selectedKind(ctx)
	if err != nil {
		return err
	}
	if kind == staking.KindVault {
		pool, closer, err := openVault(ctx)
		if err != nil {
			return err
		}
		defer closer()
		return pool.RequestSplitUpdate(from, id, newBps, opTime(ctx))
	}
	pool, closer, err := openOpen(ctx)
	if err != nil {
		return err
	}
	defer closer()
	return pool.RequestSplitUpdate(from, id, newBps, opTime(ctx))
}

func reassignWalletAction(ctx *cli.Context) error {
	initLogger(ctx)
	startMetrics(ctx)

	from, err := requiredAddress(ctx, fromFlag)
	if err != nil {
		return err
	}
	target, err := requiredAddress(ctx, targetFlag)
	if err != nil {
		return err
	}
	id := stake.ID(ctx.Uint64(idFlag.Name))

	kind, err := selectedKind(ctx)
	if err != nil {
		return err
	}
	if kind == staking.KindVault {
		pool, closer, err := openVault(ctx)
		if err != nil {
			return err
		}
		defer closer()
		return pool.ReassignPayoutWallet(from, id, target, opTime(ctx))
	}
	pool, closer, err := openOpen(ctx)
	if err != nil {
		return err
	}
	defer closer()
	return pool.ReassignPayoutWallet(from, id, target, opTime(ctx))
}

func reassignUnstakerAction(ctx *cli.Context) error {
	initLogger(ctx)
	startMetrics(ctx)

	from, err := requiredAddress(ctx, fromFlag)
	if err != nil {
		return err
	}
	target, err := requiredAddress(ctx, targetFlag)
	if err != nil {
		return err
	}
	id := stake.ID(ctx.Uint64(idFlag.Name))

	kind, err := selectedKind(ctx)
	if err != nil {
		return err
	}
	if kind == staking.KindVault {
		pool, closer, err := openVault(ctx)
		if err != nil {
			return err
		}
		defer closer()
		return pool.ReassignUnstaker(from, id, target, opTime(ctx))
	}
	pool, closer, err := openOpen(ctx)
	if err != nil {
		return err
	}
	defer closer()
	return pool.ReassignUnstaker(from, id, target, opTime(ctx))
}

func infoAction(ctx *cli.Context) error {
	initLogger(ctx)

	id := stake.ID(ctx.Uint64(idFlag.Name))
	kind, err := selectedKind(ctx)
	if err != nil {
		return err
	}
	if kind == staking.KindVault {
		pool, closer, err := openVault(ctx)
		if err != nil {
			return err
		}
		defer closer()
		st, err := pool.GetStake(id)
		if err != nil {
			return err
		}
		if st == nil {
			return errors.Errorf("unknown stake %d", id)
		}
		pending, err := pool.PendingReward(id, opTime(ctx))
		if err != nil {
			return err
		}
		printStakeRecord(st)
		fmt.Printf("pending reward:  %v\n", pending)
		return nil
	}

	pool, closer, err := openOpen(ctx)
	if err != nil {
		return err
	}
	defer closer()
	st, err := pool.GetStake(id)
	if err != nil {
		return err
	}
	if st == nil {
		return errors.Errorf("unknown stake %d", id)
	}
	claimable, err := pool.Claimable(id)
	if err != nil {
		return err
	}
	printStakeRecord(st)
	fmt.Printf("pool shares:     %v\n", st.PoolShares())
	fmt.Printf("claimable:       %v\n", claimable)
	return nil
}

func printStakeRecord(st *stake.Stake) {
	fmt.Printf("stake:           %d\n", st.ID())
	fmt.Printf("beneficiary:     %v\n", st.Beneficiary())
	fmt.Printf("payout wallet:   %v\n", st.PayoutWallet())
	fmt.Printf("unstaker:        %v\n", st.Unstaker())
	fmt.Printf("principal:       %v\n", st.Principal())
	fmt.Printf("split:           %d bps\n", st.SplitBps())
	fmt.Printf("paid out reward: %v\n", st.PaidOutReward())
	if st.Unstaking() {
		fmt.Printf("unstaking since: %d\n", st.UnstakeRequestTime())
	}
}

func stakesAction(ctx *cli.Context) error {
	initLogger(ctx)

	addr, err := requiredAddress(ctx, addressFlag)
	if err != nil {
		return err
	}
	kind, err := selectedKind(ctx)
	if err != nil {
		return err
	}

	var ids []stake.ID
	role := ctx.String(roleFlag.Name)
	if kind == staking.KindVault {
		pool, closer, err := openVault(ctx)
		if err != nil {
			return err
		}
		defer closer()
		ids, err = idsByRole(pool.StakesByBeneficiary, pool.StakesByPayoutWallet, pool.StakesByUnstaker, role, addr)
		if err != nil {
			return err
		}
	} else {
		pool, closer, err := openOpen(ctx)
		if err != nil {
			return err
		}
		defer closer()
		ids, err = idsByRole(pool.StakesByBeneficiary, pool.StakesByPayoutWallet, pool.StakesByUnstaker, role, addr)
		if err != nil {
			return err
		}
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func paramsAction(ctx *cli.Context) error {
	initLogger(ctx)

	kind, err := selectedKind(ctx)
	if err != nil {
		return err
	}
	if kind == staking.KindVault {
		pool, closer, err := openVault(ctx)
		if err != nil {
			return err
		}
		defer closer()
		if err := printCommonParams(pool); err != nil {
			return err
		}
		rate, err := pool.RewardRate()
		if err != nil {
			return err
		}
		fmt.Printf("reward rate:        %d bps/day\n", rate)
		return nil
	}

	pool, closer, err := openOpen(ctx)
	if err != nil {
		return err
	}
	defer closer()
	if err := printCommonParams(pool); err != nil {
		return err
	}
	poolSize, shareAmount, err := pool.PoolTotals()
	if err != nil {
		return err
	}
	fmt.Printf("total pool size:    %v\n", poolSize)
	fmt.Printf("total share amount: %v\n", shareAmount)
	used, err := pool.DailyWithdrawalsUsed(opTime(ctx))
	if err != nil {
		return err
	}
	fmt.Printf("withdrawn today:    %v\n", used)
	return nil
}

func printCommonParams(pool interface {
	Kind() staking.Kind
	MinStake() (*big.Int, error)
	UnstakingDuration() (uint64, error)
	TokensStaked() (*big.Int, error)
}) error {
	minStake, err := pool.MinStake()
	if err != nil {
		return err
	}
	duration, err := pool.UnstakingDuration()
	if err != nil {
		return err
	}
	staked, err := pool.TokensStaked()
	if err != nil {
		return err
	}
	fmt.Printf("pool:               %v\n", pool.Kind())
	fmt.Printf("min stake:          %v\n", minStake)
	fmt.Printf("unstaking duration: %ds\n", duration)
	fmt.Printf("tokens staked:      %v\n", staked)
	return nil
}

func setRateAction(ctx *cli.Context) error {
	initLogger(ctx)
	startMetrics(ctx)

	from, err := requiredAddress(ctx, fromFlag)
	if err != nil {
		return err
	}
	pool, closer, err := openVault(ctx)
	if err != nil {
		return err
	}
	defer closer()
	return pool.SetRewardRate(from, ctx.Uint64(rewardRateFlag.Name), opTime(ctx))
}

func setDurationAction(ctx *cli.Context) error {
	initLogger(ctx)
	startMetrics(ctx)

	from, err := requiredAddress(ctx, fromFlag)
	if err != nil {
		return err
	}
	days := ctx.Uint64(unstakingDaysFlag.Name)

	kind, err := selectedKind(ctx)
	if err != nil {
		return err
	}
	if kind == staking.KindVault {
		pool, closer, err := openVault(ctx)
		if err != nil {
			return err
		}
		defer closer()
		return pool.SetUnstakingDuration(from, days, opTime(ctx))
	}
	pool, closer, err := openOpen(ctx)
	if err != nil {
		return err
	}
	defer closer()
	return pool.SetUnstakingDuration(from, days, opTime(ctx))
}

func setCapAction(ctx *cli.Context) error {
	initLogger(ctx)
	startMetrics(ctx)

	from, err := requiredAddress(ctx, fromFlag)
	if err != nil {
		return err
	}
	pool, closer, err := openOpen(ctx)
	if err != nil {
		return err
	}
	defer closer()
	if err := pool.SetWithdrawalCapBps(from, ctx.Uint64(capBpsFlag.Name), opTime(ctx)); err != nil {
		return err
	}
	if raw := ctx.String(capThresholdFlag.Name); raw != "" {
		threshold, err := parseAmount(raw)
		if err != nil {
			return err
		}
		return pool.SetDailyWithdrawalThreshold(from, threshold, opTime(ctx))
	}
	return nil
}
