package cmd

import (
	"bytes"
	"strings"
	"testing"

	"ticket-storefront/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashWebhookSecretCmd(t *testing.T) {
	var out bytes.Buffer
	c := newHashWebhookSecretCmd()
	c.SetOut(&out)
	c.SetErr(&out)
	c.SetArgs([]string{"s3cret"})

	require.NoError(t, c.Execute())

	hash := strings.TrimSpace(out.String())
	assert.True(t, utils.CompareSecretHash(hash, "s3cret"))
	assert.False(t, utils.CompareSecretHash(hash, "other"))
}

func TestHashWebhookSecretCmd_RequiresArg(t *testing.T) {
	c := newHashWebhookSecretCmd()
	c.SetOut(new(bytes.Buffer))
	c.SetErr(new(bytes.Buffer))
	c.SetArgs(nil)

	assert.Error(t, c.Execute())
}
