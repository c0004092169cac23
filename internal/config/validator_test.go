package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"unknown backend", func(c *Config) { c.Store.Backend = "postgres" }, "store.backend"},
		{"empty db path", func(c *Config) { c.DB.Path = "" }, "db.path"},
		{"neo4j without uri", func(c *Config) {
			c.Store.Backend = BackendNeo4j
			c.Neo4j.URI = ""
		}, "neo4j.uri"},
		{"empty server addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"level of one", func(c *Config) { c.Estimate.Levels = []float64{0.5, 1} }, "estimate.levels[1]"},
		{"level of zero", func(c *Config) { c.Estimate.Levels = []float64{0} }, "estimate.levels[0]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(c)
			errs := c.Validate()
			if tc.wantField == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, tc.wantField, errs[0].Field)
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	one := ValidationErrors{{Field: "a", Value: 1, Message: "bad"}}
	assert.Equal(t, "a: bad (got: 1)", one.Error())

	two := ValidationErrors{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}
	assert.Contains(t, two.Error(), "2 validation errors")
	assert.Contains(t, two.Error(), "2. b: worse")
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	isolate(t)
	t.Setenv("MEDIANTREE_STORE_BACKEND", "mongo")

	v, err := New(nil)
	require.NoError(t, err)
	_, err = Load(v)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "store.backend", verrs[0].Field)
}
