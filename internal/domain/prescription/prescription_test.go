package prescription

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrescription(t *testing.T) {
	p, err := NewPrescription(uuid.New(), uuid.New(), "prescriptions/abc.jpg")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
	assert.True(t, p.IsPending())

	_, err = NewPrescription(uuid.New(), uuid.New(), "")
	assert.Error(t, err)
}

func TestPrescription_Approve(t *testing.T) {
	p, err := NewPrescription(uuid.New(), uuid.New(), "prescriptions/abc.jpg")
	require.NoError(t, err)

	pharmacist := uuid.New()
	require.NoError(t, p.Approve(pharmacist))

	assert.Equal(t, StatusApproved, p.Status)
	require.NotNil(t, p.ReviewedBy)
	assert.Equal(t, pharmacist, *p.ReviewedBy)
	assert.NotNil(t, p.ReviewedAt)
	assert.Empty(t, p.RejectionReason)

	// decisions are terminal
	assert.Error(t, p.Approve(pharmacist))
	assert.Error(t, p.Reject(pharmacist, "nope"))
}

func TestPrescription_Reject(t *testing.T) {
	p, err := NewPrescription(uuid.New(), uuid.New(), "prescriptions/abc.jpg")
	require.NoError(t, err)

	pharmacist := uuid.New()
	assert.Error(t, p.Reject(pharmacist, ""), "reason is required")

	require.NoError(t, p.Reject(pharmacist, "blurry image"))
	assert.Equal(t, StatusRejected, p.Status)
	assert.Equal(t, "blurry image", p.RejectionReason)

	assert.Error(t, p.Approve(pharmacist))
}
