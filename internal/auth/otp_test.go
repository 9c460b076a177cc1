package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallenge_IssueAndVerify(t *testing.T) {
	m := NewChallengeManager()

	id, code, err := m.Issue("contact@downtownmed.com")
	require.NoError(t, err)
	require.Len(t, code, 6)

	email, err := m.Verify(id, code)
	require.NoError(t, err)
	assert.Equal(t, "contact@downtownmed.com", email)
}

func TestChallenge_VerifyConsumesChallenge(t *testing.T) {
	m := NewChallengeManager()

	id, code, err := m.Issue("contact@downtownmed.com")
	require.NoError(t, err)

	_, err = m.Verify(id, code)
	require.NoError(t, err)

	// the same code cannot complete a second login
	_, err = m.Verify(id, code)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestChallenge_WrongCodeRejected(t *testing.T) {
	m := NewChallengeManager()

	id, code, err := m.Issue("contact@downtownmed.com")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	_, err = m.Verify(id, wrong)
	require.Error(t, err)

	// a failed attempt does not consume the challenge
	_, err = m.Verify(id, code)
	assert.NoError(t, err)
}

func TestChallenge_ResendInvalidatesPriorCode(t *testing.T) {
	m := NewChallengeManager()

	id, first, err := m.Issue("contact@downtownmed.com")
	require.NoError(t, err)

	second, err := m.Resend(id)
	require.NoError(t, err)
	require.Len(t, second, 6)
	assert.NotEqual(t, first, second)

	_, err = m.Verify(id, first)
	require.Error(t, err, "stale code must not verify after resend")

	_, err = m.Verify(id, second)
	assert.NoError(t, err)
}

func TestChallenge_UnknownID(t *testing.T) {
	m := NewChallengeManager()

	_, err := m.Resend("missing")
	assert.ErrorIs(t, err, ErrChallengeNotFound)

	_, err = m.Verify("missing", "123456")
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestChallenge_Abandon(t *testing.T) {
	m := NewChallengeManager()

	id, code, err := m.Issue("contact@downtownmed.com")
	require.NoError(t, err)

	m.Abandon(id)

	_, err = m.Verify(id, code)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}
