package jwt_test

import (
	"testing"

	"github.com/jhoicas/retail-ledger/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestGenerateParse(t *testing.T) {
	p := jwt.Principal{UserID: "u-1", CompanyID: "c-1", Role: "admin"}
	token, err := jwt.Generate(secret, "retail-ledger", p, 5)
	require.NoError(t, err)

	got, err := jwt.Parse(secret, "retail-ledger", token)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestParse_Rechazos(t *testing.T) {
	p := jwt.Principal{UserID: "u-1", CompanyID: "c-1"}
	token, err := jwt.Generate(secret, "retail-ledger", p, 5)
	require.NoError(t, err)

	_, err = jwt.Parse("otro-secret", "retail-ledger", token)
	assert.Error(t, err, "firma incorrecta")

	_, err = jwt.Parse(secret, "otro-emisor", token)
	assert.Error(t, err, "emisor distinto")

	expired, err := jwt.Generate(secret, "retail-ledger", p, -1)
	require.NoError(t, err)
	_, err = jwt.Parse(secret, "retail-ledger", expired)
	assert.Error(t, err, "token expirado")

	noCompany, err := jwt.Generate(secret, "retail-ledger", jwt.Principal{UserID: "u-1"}, 5)
	require.NoError(t, err)
	_, err = jwt.Parse(secret, "retail-ledger", noCompany)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "x", jwt.Principal{}, 5)
	assert.Error(t, err)
}
