package deploy

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"memecoin-creator/internal/network"
)

// DefaultPreflightTimeout bounds all RPC calls of one preflight run.
const DefaultPreflightTimeout = 10 * time.Second

// CheckName identifies a specific preflight check.
type CheckName string

const (
	CheckRPCReachable    CheckName = "rpc_reachable"
	CheckChainIDMatch    CheckName = "chain_id_match"
	CheckDeployerBalance CheckName = "deployer_balance"
)

// CheckResult is the result of a single preflight check.
type CheckResult struct {
	Name    CheckName `json:"name" yaml:"name"`
	Passed  bool      `json:"passed" yaml:"passed"`
	Message string    `json:"message" yaml:"message"`
}

// PreflightReport collects the results of all checks.
type PreflightReport struct {
	OK       bool          `json:"ok" yaml:"ok"`
	Network  string        `json:"network" yaml:"network"`
	Deployer string        `json:"deployer" yaml:"deployer"`
	Balance  string        `json:"balance,omitempty" yaml:"balance,omitempty"`
	Checks   []CheckResult `json:"checks" yaml:"checks"`
}

// Preflight runs read-only checks that a plan could be deployed.
type Preflight struct {
	client  network.Client
	timeout time.Duration
}

// NewPreflight creates a preflight runner over client.
func NewPreflight(client network.Client) *Preflight {
	return &Preflight{client: client, timeout: DefaultPreflightTimeout}
}

// WithTimeout sets a custom timeout for the RPC calls.
func (p *Preflight) WithTimeout(d time.Duration) *Preflight {
	p.timeout = d
	return p
}

// Run checks the endpoint is reachable, serves plan's chain and that the
// deployer holds a non-zero balance. Check failures are reported, not returned.
func (p *Preflight) Run(ctx context.Context, plan *Plan) (*PreflightReport, error) {
	if !plan.HasDeployer() {
		return nil, ErrNoDeployerKey
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	report := &PreflightReport{
		OK:       true,
		Network:  plan.Network.Name,
		Deployer: plan.Deployer.Hex(),
	}

	reachable := p.checkReachable(ctx)
	report.add(reachable)
	if !reachable.Passed {
		// Nothing else can succeed without a connection.
		return report, nil
	}

	report.add(p.checkChainID(ctx, plan.Network.ID))

	balanceResult, balance := p.checkBalance(ctx, plan.Deployer, plan.Network)
	report.add(balanceResult)
	if balance != nil {
		report.Balance = toNative(balance, plan.Network.Decimals) + " " + plan.Network.NativeCurrency
	}

	return report, nil
}

func (r *PreflightReport) add(c CheckResult) {
	r.Checks = append(r.Checks, c)
	if !c.Passed {
		r.OK = false
	}
}

func (p *Preflight) checkReachable(ctx context.Context) CheckResult {
	result := CheckResult{Name: CheckRPCReachable}

	block, err := p.client.BlockNumber(ctx)
	if err != nil {
		result.Message = fmt.Sprintf("RPC endpoint unreachable: %v", err)
		return result
	}

	result.Passed = true
	result.Message = fmt.Sprintf("Connected, latest block %d", block)
	return result
}

func (p *Preflight) checkChainID(ctx context.Context, expected uint64) CheckResult {
	result := CheckResult{Name: CheckChainIDMatch}

	actual, err := p.client.ChainID(ctx)
	if err != nil {
		result.Message = fmt.Sprintf("Failed to get chain ID: %v", err)
		return result
	}
	if actual != expected {
		result.Message = fmt.Sprintf("Chain ID mismatch: expected %d, got %d", expected, actual)
		return result
	}

	result.Passed = true
	result.Message = fmt.Sprintf("Chain ID %d confirmed", expected)
	return result
}

func (p *Preflight) checkBalance(ctx context.Context, deployer common.Address, chain network.Chain) (CheckResult, *big.Int) {
	result := CheckResult{Name: CheckDeployerBalance}

	balance, err := p.client.BalanceAt(ctx, deployer)
	if err != nil {
		result.Message = fmt.Sprintf("Failed to get deployer balance: %v", err)
		return result, nil
	}
	if balance.Sign() <= 0 {
		result.Message = fmt.Sprintf("Deployer %s has no %s to pay for gas", deployer.Hex(), chain.NativeCurrency)
		return result, balance
	}

	result.Passed = true
	result.Message = fmt.Sprintf("Deployer balance %s %s", toNative(balance, chain.Decimals), chain.NativeCurrency)
	return result, balance
}

// toNative formats a base-unit amount in whole native units with 4 decimals.
func toNative(amount *big.Int, decimals uint8) string {
	return decimal.NewFromBigInt(amount, -int32(decimals)).StringFixed(4)
}
