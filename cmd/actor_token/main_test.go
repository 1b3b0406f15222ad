package main

import (
	"testing"
	"time"

	"github.com/juju/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyance/governance/infrastructure/service/jwt"
)

func TestMint(t *testing.T) {
	token, err := mint("s3cret", time.Hour, "compliance-bot", "Compliance Bot")
	require.NoError(t, err)

	svc, err := jwt.NewJWTService("s3cret", time.Hour, clock.WallClock)
	require.NoError(t, err)
	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "compliance-bot", claims.Subject)
	assert.Equal(t, "Compliance Bot", claims.Name)

	_, err = mint("s3cret", time.Hour, "", "")
	assert.Error(t, err)

	_, err = mint("", time.Hour, "someone", "")
	assert.ErrorIs(t, err, jwt.ErrMissingSecret)
}
