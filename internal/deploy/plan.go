package deploy

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"gopkg.in/yaml.v3"

	"memecoin-creator/internal/network"
)

// ErrNoDeployerKey is returned when a plan needs a deployer and no key is set.
var ErrNoDeployerKey = errors.New("deployer private key is not configured")

// Plan is a module bound to a network and a deployer account.
type Plan struct {
	Module   *Module
	Network  network.Chain
	Deployer common.Address
}

// PlanDocument is the serialized form of a Plan.
type PlanDocument struct {
	Contract    string            `json:"contract" yaml:"contract"`
	Network     string            `json:"network" yaml:"network"`
	ChainID     uint64            `json:"chainId" yaml:"chainId"`
	Deployer    string            `json:"deployer,omitempty" yaml:"deployer,omitempty"`
	ExplorerURL string            `json:"explorerUrl,omitempty" yaml:"explorerUrl,omitempty"`
	Decimals    uint8             `json:"decimals" yaml:"decimals"`
	Args        ArgsDocument      `json:"args" yaml:"args"`
	Features    map[string]bool   `json:"features,omitempty" yaml:"features,omitempty"`
	Display     map[string]string `json:"display" yaml:"display"`
}

// ArgsDocument holds constructor arguments; supplies are base-unit integers.
type ArgsDocument struct {
	Name          string `json:"name" yaml:"name"`
	Symbol        string `json:"symbol" yaml:"symbol"`
	Description   string `json:"description" yaml:"description"`
	Image         string `json:"image" yaml:"image"`
	InitialSupply string `json:"initialSupply" yaml:"initialSupply"`
	MaxSupply     string `json:"maxSupply" yaml:"maxSupply"`
}

// DeployerFromKey derives the account address of a hex private key.
// A leading 0x is accepted.
func DeployerFromKey(hexKey string) (common.Address, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return common.Address{}, ErrNoDeployerKey
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return common.Address{}, fmt.Errorf("parse deployer key: %w", err)
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

// NewPlan binds m to chain. An empty key leaves the deployer unset.
func NewPlan(m *Module, chain network.Chain, deployerKey string) (*Plan, error) {
	p := &Plan{Module: m, Network: chain}
	if deployerKey == "" {
		return p, nil
	}
	addr, err := DeployerFromKey(deployerKey)
	if err != nil {
		return nil, err
	}
	p.Deployer = addr
	return p, nil
}

// HasDeployer reports whether a deployer address is known.
func (p *Plan) HasDeployer() bool {
	return p.Deployer != (common.Address{})
}

// Document converts the plan to its serialized form.
func (p *Plan) Document() PlanDocument {
	m := p.Module
	doc := PlanDocument{
		Contract: m.Contract,
		Network:  p.Network.Name,
		ChainID:  p.Network.ID,
		Decimals: m.Decimals,
		Args: ArgsDocument{
			Name:          m.Args.Name,
			Symbol:        m.Args.Symbol,
			Description:   m.Args.Description,
			Image:         m.Args.Image,
			InitialSupply: m.Args.InitialSupply.String(),
			MaxSupply:     m.Args.MaxSupply.String(),
		},
		Display: map[string]string{
			"initialSupply": FormatUnits(m.Args.InitialSupply, m.Decimals),
			"maxSupply":     FormatUnits(m.Args.MaxSupply, m.Decimals),
		},
	}
	if p.HasDeployer() {
		doc.Deployer = p.Deployer.Hex()
		doc.ExplorerURL = p.Network.AddressURL(doc.Deployer)
	}
	if m.Advanced {
		f := m.Features
		doc.Features = map[string]bool{
			"canBurn":               f.CanBurn,
			"canMint":               f.CanMint,
			"canPause":              f.CanPause,
			"blacklistEnabled":      f.BlacklistEnabled,
			"deflationEnabled":      f.DeflationEnabled,
			"superDeflationEnabled": f.SuperDeflationEnabled,
		}
	}
	return doc
}

// YAML renders the plan as YAML.
func (p *Plan) YAML() ([]byte, error) {
	out, err := yaml.Marshal(p.Document())
	if err != nil {
		return nil, fmt.Errorf("marshal plan yaml: %w", err)
	}
	return out, nil
}

// JSON renders the plan as indented JSON.
func (p *Plan) JSON() ([]byte, error) {
	out, err := json.MarshalIndent(p.Document(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal plan json: %w", err)
	}
	return out, nil
}
