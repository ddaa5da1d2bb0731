// Package kernel implements the cooperative, non-preemptive task loop
// spec §4.F describes: a fixed list of run-to-completion tasks, each a
// private Init/Run/Error state machine, driven by a single goroutine that
// never context-switches mid-task.
package kernel

import (
	"context"

	"freetribe/errcode"
)

// State is a task's private state. Tasks may define additional
// task-specific substates beyond these three, but every task goes through
// at least this progression — the scheduler itself never inspects it.
type State int

const (
	Init State = iota
	Run
	Error
)

// Task is one cooperative kernel task: a single-shot Init routine, a
// run-to-completion Step called once per outer loop iteration while in
// Run, and an ErrorHook invoked when the task lands in Error. The kernel
// never preempts Step — it must return quickly and never block.
type Task interface {
	// Name identifies the task for logging.
	Name() string
	// TaskInit runs repeatedly from State while Init fails; it must be
	// idempotent. Returning errcode.Success transitions to Run.
	TaskInit(ctx context.Context) errcode.Code
	// Step runs once per outer loop iteration while in Run. It must not
	// block. A non-Success return transitions per errorCheck.
	Step(ctx context.Context) errcode.Code
	// ErrorHook is called every iteration while the task is in Error —
	// the task-local analogue of the unrecoverable-error hook.
	ErrorHook()
}

type taskState struct {
	task  Task
	state State
}

// Kernel is the for-loop over a fixed list of task functions — run to
// completion, never preempted, never context-switched, per spec §4.F.
type Kernel struct {
	tasks []*taskState
}

// New returns a Kernel with the given tasks, run in the order given on
// every outer iteration. The task list is fixed at construction; the spec
// gives the kernel no mechanism to add or remove tasks at runtime.
func New(tasks ...Task) *Kernel {
	k := &Kernel{}
	for _, t := range tasks {
		k.tasks = append(k.tasks, &taskState{task: t, state: Init})
	}
	return k
}

// RunOnce drives every task through exactly one state-machine step, in
// list order. A caller typically calls this in a tight loop (or gated by a
// tick) for the lifetime of the process.
func (k *Kernel) RunOnce(ctx context.Context) {
	for _, ts := range k.tasks {
		k.stepTask(ctx, ts)
	}
}

func (k *Kernel) stepTask(ctx context.Context, ts *taskState) {
	switch ts.state {
	case Init:
		if errorCheck(ts.task.TaskInit(ctx)) == errcode.Success {
			ts.state = Run
		}
		// Remain in Init until initialization succeeds. No backoff; the
		// task's own TaskInit is responsible for not spinning hot if that
		// matters to it.

	case Run:
		if errorCheck(ts.task.Step(ctx)) != errcode.Success {
			ts.state = Error
		}
		// Remain in Run otherwise.

	case Error:
		ts.task.ErrorHook()
		// Error is terminal; the kernel does not attempt recovery.

	default:
		// Unreachable state: record and transition to Error, mirroring the
		// source's default-arm-catches-unreachable-states convention.
		ts.task.ErrorHook()
		ts.state = Error
	}
}

// errorCheck is the single point where a task return code is converted
// into a state transition decision: Success stays, Warning stays (the
// caller is expected to have logged it already), anything else is treated
// as Error.
func errorCheck(c errcode.Code) errcode.Code {
	switch c {
	case errcode.Success, errcode.Warning:
		return errcode.Success
	default:
		return c
	}
}
