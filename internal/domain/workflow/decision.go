package workflow

// Decision represents an action an approver can take on a stage
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
	DecisionPay     Decision = "PAY"
)

// String returns the string representation of the decision
func (d Decision) String() string {
	return string(d)
}

// IsRejection returns true for the rejecting decision
func (d Decision) IsRejection() bool {
	return d == DecisionReject
}
