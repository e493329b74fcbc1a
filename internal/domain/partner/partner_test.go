package partner

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backoffice/internal/domain/shared"
)

func TestNewCustomer(t *testing.T) {
	t.Run("normalizes contact fields", func(t *testing.T) {
		c, err := NewCustomer(uuid.New(), ContactInfo{Name: " Ada ", Email: "ADA@Example.com ", Phone: " 0712 "}, "vip")

		require.NoError(t, err)
		assert.Equal(t, "Ada", c.Name)
		assert.Equal(t, "ada@example.com", c.Email)
		assert.Equal(t, "0712", c.Phone)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewCustomer(uuid.New(), ContactInfo{Name: ""}, "")
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects bad email", func(t *testing.T) {
		_, err := NewCustomer(uuid.New(), ContactInfo{Name: "Bob", Email: "not-an-email"}, "")
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestSupplier_Update(t *testing.T) {
	s, err := NewSupplier(uuid.New(), ContactInfo{Name: "Wholesale Ltd"}, "Kim")
	require.NoError(t, err)

	require.NoError(t, s.Update(ContactInfo{Name: "Wholesale Group"}, "Lee"))
	assert.Equal(t, "Wholesale Group", s.Name)
	assert.Equal(t, "Lee", s.ContactPerson)
	assert.Equal(t, 2, s.Version)
}
