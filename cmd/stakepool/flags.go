// Copyright (c) 2026 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for pool databases",
	}
	poolFlag = cli.StringFlag{
		Name:  "pool",
		Value: "vault",
		Usage: "pool variant to operate on (vault|open)",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-4)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "serve prometheus metrics over HTTP",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	adminFlag = cli.StringFlag{
		Name:  "admin",
		Usage: "admin address",
	}
	whitelistFlag = cli.StringFlag{
		Name:  "whitelist",
		Usage: "comma separated addresses allowed to stake in the vault pool",
	}

	fromFlag = cli.StringFlag{
		Name:  "from",
		Usage: "caller address",
	}
	beneficiaryFlag = cli.StringFlag{
		Name:  "beneficiary",
		Usage: "beneficiary address (defaults to --from)",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "token amount",
	}
	splitFlag = cli.Uint64Flag{
		Name:  "split-bps",
		Usage: "reward share of the payout wallet, in basis points",
	}
	idFlag = cli.Uint64Flag{
		Name:  "id",
		Usage: "stake id",
	}
	nowFlag = cli.Uint64Flag{
		Name:  "now",
		Usage: "operation time as unix seconds (defaults to the wall clock)",
	}
	targetFlag = cli.StringFlag{
		Name:  "to",
		Usage: "target address",
	}
	addressFlag = cli.StringFlag{
		Name:  "address",
		Usage: "address to query",
	}
	roleFlag = cli.StringFlag{
		Name:  "role",
		Value: "beneficiary",
		Usage: "index to query (beneficiary|wallet|unstaker)",
	}

	// pool initialization
	genesisFlag = cli.Uint64Flag{
		Name:  "genesis",
		Usage: "genesis time as unix seconds (defaults to the wall clock)",
	}
	minStakeFlag = cli.StringFlag{
		Name:  "min-stake",
		Value: "1",
		Usage: "minimum amount per stake",
	}
	maxPoolSizeFlag = cli.StringFlag{
		Name:  "max-pool-size",
		Value: "0",
		Usage: "total staked token cap of the open pool (0 for uncapped)",
	}
	unstakingDaysFlag = cli.Uint64Flag{
		Name:  "unstaking-days",
		Value: 7,
		Usage: "unstaking time lock in days (1-20)",
	}
	rewardRateFlag = cli.Uint64Flag{
		Name:  "reward-rate-bps",
		Usage: "vault reward rate in bps of principal per day",
	}
	capBpsFlag = cli.Uint64Flag{
		Name:  "withdrawal-cap-bps",
		Usage: "daily withdrawal cap of the open pool, in bps of staked tokens (0 disables)",
	}
	capThresholdFlag = cli.StringFlag{
		Name:  "withdrawal-threshold",
		Value: "0",
		Usage: "pool size below which the withdrawal cap stays dormant",
	}
	requireClaimFlag = cli.BoolFlag{
		Name:  "require-claim",
		Usage: "reject unstake requests while unclaimed reward exists",
	}
	enforceCapFlag = cli.BoolFlag{
		Name:  "enforce-cap",
		Usage: "reject withdrawals beyond the daily cap instead of only logging them",
	}
)
