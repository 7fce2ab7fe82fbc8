package policy_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/policy"
	"github.com/stretchr/testify/assert"
)

func TestOwnerPolicy(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	task := &domain.Task{ID: uuid.New(), UserID: owner}
	p := policy.OwnerPolicy{}

	for _, action := range []policy.Action{policy.ActionView, policy.ActionUpdate, policy.ActionDelete} {
		t.Run(string(action), func(t *testing.T) {
			assert.Equal(t, policy.Allow, p.Authorize(owner, task, action))
			assert.Equal(t, policy.Deny, p.Authorize(other, task, action))
		})
	}
}

func TestOwnerPolicy_DeniesDegenerateInputs(t *testing.T) {
	owner := uuid.New()
	p := policy.OwnerPolicy{}

	assert.False(t, p.Authorize(owner, nil, policy.ActionView).Allowed())
	assert.NotPanics(t, func() {
		var missing *domain.Task
		assert.False(t, p.Authorize(owner, missing, policy.ActionDelete).Allowed())
	})
	assert.False(t, p.Authorize(uuid.Nil, &domain.Task{UserID: uuid.Nil}, policy.ActionView).Allowed())
	assert.False(t, p.Authorize(owner, &domain.Task{UserID: owner}, policy.Action("archive")).Allowed())
}

func TestHelpers(t *testing.T) {
	owner := uuid.New()
	task := &domain.Task{UserID: owner}
	p := policy.OwnerPolicy{}

	assert.True(t, policy.CanView(p, owner, task))
	assert.True(t, policy.CanUpdate(p, owner, task))
	assert.True(t, policy.CanDelete(p, owner, task))
	assert.False(t, policy.CanDelete(p, uuid.New(), task))
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "allow", policy.Allow.String())
	assert.Equal(t, "deny", policy.Deny.String())
}
