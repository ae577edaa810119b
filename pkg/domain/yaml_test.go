package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/provview/pkg/domain"
)

func TestParseYAML_Scalars(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want domain.Value
	}{
		{"Int", "10", domain.Number(10)},
		{"Float", "0.25", domain.Number(0.25)},
		{"Bool", "True", domain.Bool(true)},
		{"Null", "~", domain.Null()},
		{"String", "hello", domain.String("hello")},
		{"QuotedNumber", `"10"`, domain.String("10")},
		{"Timestamp", "2024-01-02T03:04:05.000001-07:00", domain.String("2024-01-02T03:04:05.000001-07:00")},
		{"Ref", "!ref 'environment:plugins:feature-table'", domain.String("q2-feature-table")},
		{"NoProvenance", "!no-provenance 'a1b2'", domain.String("a1b2")},
		{"Cite", "!cite 'framework|qiime2:2024.2.0|0'", domain.String("framework|qiime2:2024.2.0|0")},
		{"Empty", "", domain.Null()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParseYAML([]byte(tt.in))
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	inf, err := domain.ParseYAML([]byte(".inf"))
	require.NoError(t, err)
	n, _ := inf.AsNumber()
	assert.True(t, math.IsInf(n, 1))
}

func TestParseYAML_Metadata(t *testing.T) {
	got, err := domain.ParseYAML([]byte("!metadata 'a1,b2:sample-metadata.tsv'"))
	require.NoError(t, err)
	file, ok := domain.MetadataFile(got)
	require.True(t, ok)
	assert.Equal(t, "sample-metadata.tsv", file)
	assert.Equal(t, []string{"a1", "b2"}, domain.ParameterArtifacts(got))

	got, err = domain.ParseYAML([]byte("!metadata 'sample-metadata.tsv'"))
	require.NoError(t, err)
	file, ok = domain.MetadataFile(got)
	require.True(t, ok)
	assert.Equal(t, "sample-metadata.tsv", file)
	assert.Empty(t, domain.ParameterArtifacts(got))
}

func TestParseYAML_Containers(t *testing.T) {
	src := `
zeta: 1
alpha:
  - !set [b, a]
  - {key: value}
anchor: &x shared
alias: *x
`
	got, err := domain.ParseYAML([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "anchor", "alias"}, keys(got))

	alpha, _ := got.Get("alpha")
	set := alpha.Items()[0]
	assert.True(t, set.Equal(domain.Sequence(domain.String("b"), domain.String("a"))))

	alias, _ := got.Get("alias")
	assert.True(t, alias.Equal(domain.String("shared")))

	_, err = domain.ParseYAML([]byte("key: [unclosed"))
	assert.Error(t, err)
}

func TestValue_MarshalYAML(t *testing.T) {
	v := domain.Mapping(
		domain.M("zeta", domain.Number(1.5)),
		domain.M("alpha", domain.Sequence(domain.Bool(true), domain.Null())),
		domain.M("name", domain.String("10")),
	)
	data, err := yaml.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "zeta: 1.5\nalpha:\n    - true\n    - null\nname: \"10\"\n", string(data))

	back, err := domain.ParseYAML(data)
	require.NoError(t, err)
	assert.True(t, v.Equal(back))
}
