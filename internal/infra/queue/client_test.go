package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"agentdesk/internal/worker/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	tasks  []*asynq.Task
	opts   [][]asynq.Option
	retErr error
	closed bool
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	f.opts = append(f.opts, opts)
	if f.retErr != nil {
		return nil, f.retErr
	}
	return &asynq.TaskInfo{Type: task.Type(), Queue: tasks.QueueDefault}, nil
}

func (f *fakeEnqueuer) Close() error {
	f.closed = true
	return nil
}

func TestEnqueueRegenerate(t *testing.T) {
	fake := &fakeEnqueuer{}
	c := &asynqClient{client: fake}

	require.NoError(t, c.EnqueueRegenerate(context.Background(), 12, 3))
	require.Len(t, fake.tasks, 1)
	assert.Equal(t, tasks.TypeRegenerateMessage, fake.tasks[0].Type())

	var p tasks.RegenerateMessagePayload
	require.NoError(t, json.Unmarshal(fake.tasks[0].Payload(), &p))
	assert.Equal(t, tasks.RegenerateMessagePayload{MessageID: 12, UserID: 3}, p)

	var queue string
	for _, o := range fake.opts[0] {
		if o.Type() == asynq.QueueOpt {
			queue = o.Value().(string)
		}
	}
	assert.Equal(t, tasks.QueueDefault, queue)

	require.NoError(t, c.Close())
	assert.True(t, fake.closed)
}

func TestEnqueueRegenerateDuplicateIsNotAnError(t *testing.T) {
	c := &asynqClient{client: &fakeEnqueuer{retErr: asynq.ErrDuplicateTask}}
	assert.NoError(t, c.EnqueueRegenerate(context.Background(), 1, 1))
}

func TestEnqueueRegenerateError(t *testing.T) {
	c := &asynqClient{client: &fakeEnqueuer{retErr: errors.New("redis down")}}
	err := c.EnqueueRegenerate(context.Background(), 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}
