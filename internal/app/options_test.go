package app

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOptionsDefaultsValidate(t *testing.T) {
	opts := NewOptions()
	require.NoError(t, opts.Complete())
	assert.NoError(t, opts.Validate())
}

func TestQueryOptionsValidateRejectsNonPositiveValues(t *testing.T) {
	q := NewQueryOptions()
	q.ListLimit = 0
	q.LLMTimeout = 0

	errs := q.Validate()
	assert.Len(t, errs, 2)
}

func TestAddFlagsRegistersEveryPrefix(t *testing.T) {
	opts := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.AddFlags(fs)

	for _, name := range []string{
		"log.level",
		"milvus.address",
		"embedding.llm.provider",
		"chat.llm.provider",
		"cache.enabled",
		"query.list-limit",
	} {
		assert.NotNil(t, fs.Lookup(name), "expected flag %q to be registered", name)
	}
}
