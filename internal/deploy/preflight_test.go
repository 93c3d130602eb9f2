package deploy

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	chainID    uint64
	balance    *big.Int
	blockErr   error
	balanceErr error
}

func (f *fakeClient) ChainID(context.Context) (uint64, error) { return f.chainID, nil }

func (f *fakeClient) BlockNumber(context.Context) (uint64, error) {
	if f.blockErr != nil {
		return 0, f.blockErr
	}
	return 100, nil
}

func (f *fakeClient) BalanceAt(context.Context, common.Address) (*big.Int, error) {
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return f.balance, nil
}

func testPlan(t *testing.T) *Plan {
	t.Helper()
	plan, err := NewPlan(DefaultModule(), amoy(t), testKey)
	require.NoError(t, err)
	return plan
}

func TestPreflight_AllPass(t *testing.T) {
	client := &fakeClient{chainID: 80002, balance: big.NewInt(1_500_000_000_000_000_000)}

	report, err := NewPreflight(client).Run(context.Background(), testPlan(t))
	require.NoError(t, err)

	assert.True(t, report.OK)
	require.Len(t, report.Checks, 3)
	assert.Equal(t, CheckRPCReachable, report.Checks[0].Name)
	assert.Equal(t, CheckChainIDMatch, report.Checks[1].Name)
	assert.Equal(t, CheckDeployerBalance, report.Checks[2].Name)
	assert.Equal(t, "1.5000 POL", report.Balance)
	assert.Equal(t, testDeployer, report.Deployer)
}

func TestPreflight_Unreachable(t *testing.T) {
	client := &fakeClient{blockErr: errors.New("dial tcp: connection refused")}

	report, err := NewPreflight(client).Run(context.Background(), testPlan(t))
	require.NoError(t, err)

	assert.False(t, report.OK)
	require.Len(t, report.Checks, 1)
	assert.Contains(t, report.Checks[0].Message, "connection refused")
}

func TestPreflight_WrongChainAndEmptyBalance(t *testing.T) {
	client := &fakeClient{chainID: 11155111, balance: big.NewInt(0)}

	report, err := NewPreflight(client).Run(context.Background(), testPlan(t))
	require.NoError(t, err)

	assert.False(t, report.OK)
	require.Len(t, report.Checks, 3)
	assert.False(t, report.Checks[1].Passed)
	assert.Contains(t, report.Checks[1].Message, "expected 80002, got 11155111")
	assert.False(t, report.Checks[2].Passed)
	assert.Equal(t, "0.0000 POL", report.Balance)
}

func TestPreflight_RequiresDeployer(t *testing.T) {
	plan, err := NewPlan(DefaultModule(), amoy(t), "")
	require.NoError(t, err)

	_, err = NewPreflight(&fakeClient{}).Run(context.Background(), plan)
	assert.ErrorIs(t, err, ErrNoDeployerKey)
}

func TestPreflight_BalanceUsesChainDecimals(t *testing.T) {
	plan := testPlan(t)
	plan.Network.Decimals = 6
	plan.Network.NativeCurrency = "TST"
	client := &fakeClient{chainID: 80002, balance: big.NewInt(2_500_000)}

	report, err := NewPreflight(client).Run(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, "2.5000 TST", report.Balance)
	assert.Equal(t, "Deployer balance 2.5000 TST", report.Checks[2].Message)
}
