package kernel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freetribe/errcode"
)

type fakeTask struct {
	name        string
	initFails   int // number of TaskInit calls that fail before succeeding
	initCalls   int
	stepResults []errcode.Code
	stepCalls   int
	errorHooks  int
	order       *[]string // when set, TaskInit appends name to it
}

func (f *fakeTask) Name() string { return f.name }

func (f *fakeTask) TaskInit(ctx context.Context) errcode.Code {
	f.initCalls++
	if f.order != nil {
		*f.order = append(*f.order, f.name)
	}
	if f.initCalls <= f.initFails {
		return errcode.Error
	}
	return errcode.Success
}

func (f *fakeTask) Step(ctx context.Context) errcode.Code {
	f.stepCalls++
	if f.stepCalls > len(f.stepResults) {
		return errcode.Success
	}
	return f.stepResults[f.stepCalls-1]
}

func (f *fakeTask) ErrorHook() { f.errorHooks++ }

func TestTaskRemainsInInitUntilSuccess(t *testing.T) {
	ft := &fakeTask{name: "t", initFails: 3}
	k := New(ft)

	for i := 0; i < 3; i++ {
		k.RunOnce(context.Background())
		assert.Equal(t, 0, ft.stepCalls, "must not step before init succeeds")
	}
	k.RunOnce(context.Background())
	assert.Equal(t, 4, ft.initCalls)

	k.RunOnce(context.Background())
	assert.Equal(t, 1, ft.stepCalls)
}

// TestErrorIsTerminalAndHookInvokedEveryIteration is spec property 4: the
// kernel never observes state=Error in two consecutive iterations without
// the unrecoverable-error hook having run in between — here the hook runs
// every single iteration while in Error, which trivially satisfies it.
func TestErrorIsTerminalAndHookInvokedEveryIteration(t *testing.T) {
	ft := &fakeTask{name: "t", stepResults: []errcode.Code{errcode.Error}}
	k := New(ft)

	k.RunOnce(context.Background()) // init succeeds
	k.RunOnce(context.Background()) // step fails -> Error
	require.Equal(t, Error, k.tasks[0].state)

	k.RunOnce(context.Background())
	k.RunOnce(context.Background())
	assert.GreaterOrEqual(t, ft.errorHooks, 2)
	assert.Equal(t, 1, ft.stepCalls, "Step must not be called again once in Error")
}

func TestWarningDoesNotTransitionToError(t *testing.T) {
	ft := &fakeTask{name: "t", stepResults: []errcode.Code{errcode.Warning, errcode.Warning}}
	k := New(ft)
	k.RunOnce(context.Background())
	k.RunOnce(context.Background())
	k.RunOnce(context.Background())
	assert.Equal(t, Run, k.tasks[0].state)
	assert.Equal(t, 0, ft.errorHooks)
}

func TestMultipleTasksRunInOrder(t *testing.T) {
	var order []string
	a := &fakeTask{name: "a", order: &order}
	b := &fakeTask{name: "b", order: &order}
	k := New(a, b)
	k.RunOnce(context.Background())
	assert.Equal(t, []string{"a", "b"}, order)
}
