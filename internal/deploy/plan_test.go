package deploy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"memecoin-creator/internal/network"
)

// Well-known development key (first Hardhat account).
const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

const testDeployer = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

func amoy(t *testing.T) network.Chain {
	t.Helper()
	c, ok := network.ByID(network.PolygonAmoyID)
	require.True(t, ok)
	return c
}

func TestDeployerFromKey(t *testing.T) {
	addr, err := DeployerFromKey(testKey)
	require.NoError(t, err)
	assert.Equal(t, testDeployer, addr.Hex())

	addr, err = DeployerFromKey("0x" + testKey)
	require.NoError(t, err)
	assert.Equal(t, testDeployer, addr.Hex())

	_, err = DeployerFromKey("")
	assert.ErrorIs(t, err, ErrNoDeployerKey)

	_, err = DeployerFromKey("not-hex")
	assert.Error(t, err)
}

func TestPlan_YAML(t *testing.T) {
	plan, err := NewPlan(DefaultModule(), amoy(t), testKey)
	require.NoError(t, err)

	out, err := plan.YAML()
	require.NoError(t, err)

	var doc PlanDocument
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, "MemeToken", doc.Contract)
	assert.Equal(t, uint64(80002), doc.ChainID)
	assert.Equal(t, testDeployer, doc.Deployer)
	assert.Equal(t, "1000000000000000000000", doc.Args.InitialSupply)
	assert.Equal(t, "1000", doc.Display["initialSupply"])
	assert.Equal(t, "https://amoy.polygonscan.com/address/"+testDeployer, doc.ExplorerURL)
	assert.Nil(t, doc.Features)
}

func TestPlan_JSONWithoutDeployer(t *testing.T) {
	m := DefaultModule()
	m.Advanced = true
	m.Features.CanPause = true

	plan, err := NewPlan(m, amoy(t), "")
	require.NoError(t, err)
	assert.False(t, plan.HasDeployer())

	out, err := plan.JSON()
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.NotContains(t, doc, "deployer")
	features := doc["features"].(map[string]interface{})
	assert.Equal(t, true, features["canPause"])
	assert.Equal(t, false, features["canBurn"])
}
