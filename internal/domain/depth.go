package domain

// DepthStep is one configured disassembly step of a product type.
// StepID is hierarchical ("5", "5_1_1"); BranchID names the branch the step
// belongs to, ParentBranch the branch it forked from ("" for the trunk).
type DepthStep struct {
	StepID       string
	BranchID     string
	ParentBranch string
	Components   []string // component names released at this step
}

// DepthPath is the ordered (possibly branching) step sequence of one
// product type.
type DepthPath struct {
	ProductType string
	Steps       []DepthStep
}

// DepthPoint is one (product type, step) row of the depth/break-even table.
type DepthPoint struct {
	ProductType      string
	StepID           string
	BranchID         string
	Components       string // comma-joined released component names
	StepProfit       float64
	CumulativeProfit float64
	BaselineCost     float64
	BreakEven        bool // true only at the break-even step of its branch
}

// DepthCurve is the full profitability profile of one product type,
// including the per-branch break-even outcome. A nil BreakEvenStep means
// the branch never reaches the baseline; it is never reported as step zero
// or as the last step.
type DepthCurve struct {
	ProductType   string
	BaselineCost  float64
	Points        []DepthPoint
	BreakEvenStep map[string]*string // branch id -> first step with cumulative >= baseline
}
