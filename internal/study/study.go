// Package study holds the literal inputs of the change-point network
// simulation study: the ground-truth model arrays and the grid of
// estimation settings swept across simulation runs.
//
// Changing the study means editing the constants below.
package study

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/nvandessel/simgen/internal/grid"
	"github.com/nvandessel/simgen/internal/npy"
	"github.com/nvandessel/simgen/internal/npz"
)

// Archive member names.
const (
	LamMatName           = "lam_mat"
	RhoMatName           = "rho_mat"
	GroupSizesName       = "group_sizes"
	ChangePointTimesName = "change_point_times"
)

// Grid parameter names, outermost first.
const (
	NumNodesName  = "num_nodes"
	NumGroupsName = "num_groups"
	NCaviName     = "n_cavi"
	DeltaPiName   = "delta_pi"
	DeltaRhoName  = "delta_rho"
	DeltaLamName  = "delta_lam"
)

// LamMat returns the group-pairwise event rate matrix.
func LamMat() *mat.Dense {
	return mat.NewDense(2, 2, []float64{
		5, 3,
		2, 8,
	})
}

// RhoMat returns the group-pairwise correlation matrix.
func RhoMat() *mat.Dense {
	return mat.NewDense(2, 2, []float64{
		0.6, 0.1,
		0.2, 0.7,
	})
}

// GroupSizes returns the node count of each group.
func GroupSizes() []int64 {
	return []int64{300, 200}
}

// ChangePointTimes returns the candidate change-point time indices.
func ChangePointTimes() []int64 {
	return []int64{40, 41, 42, 43, 44, 45}
}

// Matrices returns the model arrays in archive order.
func Matrices() ([]npz.Entry, error) {
	groups, err := npy.NewInt64([]int{2}, GroupSizes())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", GroupSizesName, err)
	}
	times, err := npy.NewInt64([]int{6}, ChangePointTimes())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ChangePointTimesName, err)
	}
	return []npz.Entry{
		{Name: LamMatName, Array: npy.FromDense(LamMat())},
		{Name: RhoMatName, Array: npy.FromDense(RhoMat())},
		{Name: GroupSizesName, Array: groups},
		{Name: ChangePointTimesName, Array: times},
	}, nil
}

// Params returns the swept enumerations in nesting order.
// delta_lam spans 1 down to 1e-5 to probe tolerance sensitivity of the
// downstream CAVI fit.
func Params() []grid.Param {
	return []grid.Param{
		grid.Ints(NumNodesName, 500),
		grid.Ints(NumGroupsName, 2),
		grid.Ints(NCaviName, 2),
		grid.Ints(DeltaPiName, 1),
		grid.Ints(DeltaRhoName, 1),
		{Name: DeltaLamName, Values: []grid.Value{
			grid.Int(1),
			grid.Float(1e-1),
			grid.Float(1e-3),
			grid.Float(1e-5),
		}},
	}
}
