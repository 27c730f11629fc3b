package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	token, err := Generate("secret", "op-7", "L1", "operator", "mes-dispatch", 10)
	require.NoError(t, err)

	claims, err := Parse("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "op-7", claims.WorkerID)
	assert.Equal(t, "L1", claims.Line)
	assert.Equal(t, "operator", claims.Role)
	assert.Equal(t, "mes-dispatch", claims.Issuer)
}

func TestParse_Rejects(t *testing.T) {
	token, err := Generate("secret", "op-7", "", "operator", "mes", 10)
	require.NoError(t, err)

	_, err = Parse("other", token)
	assert.Error(t, err, "firma incorrecta")

	expired, err := Generate("secret", "op-7", "", "operator", "mes", -1)
	require.NoError(t, err)
	_, err = Parse("secret", expired)
	assert.Error(t, err, "token expirado")

	_, err = Parse("", token)
	assert.Error(t, err)

	_, err = Generate("", "op-7", "", "operator", "mes", 10)
	assert.Error(t, err)
}
