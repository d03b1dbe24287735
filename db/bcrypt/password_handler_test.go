package bcrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewPasswordHandler(t *testing.T) {
	costTests := []struct {
		cost int
		want int
	}{
		{0, bcrypt.DefaultCost},
		{bcrypt.MinCost, bcrypt.MinCost},
		{bcrypt.MaxCost + 1, bcrypt.DefaultCost},
	}
	for i, test := range costTests {
		ph := NewPasswordHandler(test.cost)
		assert.Equal(t, test.want, ph.cost, "Test %v", i)
	}
}

func TestPasswordHandler(t *testing.T) {
	ph := NewPasswordHandler(bcrypt.MinCost)
	hash, err := ph.Hash("s3cr3t_p4ss")
	require.NoError(t, err)
	isCorrectTests := []struct {
		hash     []byte
		password string
		want     bool
		wantErr  bool
	}{
		{hash, "s3cr3t_p4ss", true, false},
		{hash, "wrong_pass", false, false},
		{[]byte("not a hash"), "s3cr3t_p4ss", false, true},
	}
	for i, test := range isCorrectTests {
		got, err := ph.IsCorrect(test.hash, test.password)
		switch {
		case test.wantErr:
			assert.Error(t, err, "Test %v", i)
		default:
			assert.NoError(t, err, "Test %v", i)
			assert.Equal(t, test.want, got, "Test %v", i)
		}
	}
}
