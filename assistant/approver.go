package assistant

import "context"

// Approver decides whether a tool call may run.
type Approver interface {
	Approve(ctx context.Context, toolName, input string) (bool, error)
}

type ApproverFunc func(ctx context.Context, toolName, input string) (bool, error)

func (f ApproverFunc) Approve(ctx context.Context, toolName, input string) (bool, error) {
	return f(ctx, toolName, input)
}

// OnlyFor applies approver to the named tools and lets every other call through.
func OnlyFor(approver Approver, toolNames ...string) Approver {
	guarded := make(map[string]struct{}, len(toolNames))
	for _, n := range toolNames {
		guarded[n] = struct{}{}
	}
	return ApproverFunc(func(ctx context.Context, toolName, input string) (bool, error) {
		if _, ok := guarded[toolName]; !ok {
			return true, nil
		}
		return approver.Approve(ctx, toolName, input)
	})
}
