package communityissuance

import "math/big"

// engineState abstracts Community Issuance persistence away from the engine.
type engineState interface {
	GetIssuanceState() (*IssuanceState, error)
	PutIssuanceState(s *IssuanceState) error
}

// IssuanceState tracks cumulative LOAN issuance against the deployment-time
// emission schedule.
type IssuanceState struct {
	DeploymentUnixSeconds int64
	TotalLOANIssued       *big.Int
}

// NewGenesisIssuanceState returns the zero-value issuance state stamped with
// deployedAt as the emission schedule's epoch.
func NewGenesisIssuanceState(deployedAtUnixSeconds int64) *IssuanceState {
	return &IssuanceState{
		DeploymentUnixSeconds: deployedAtUnixSeconds,
		TotalLOANIssued:       big.NewInt(0),
	}
}
