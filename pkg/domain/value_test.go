package domain_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/provview/pkg/domain"
)

func TestValue_MappingOrder(t *testing.T) {
	v := domain.Mapping(
		domain.M("z", domain.Number(1)),
		domain.M("a", domain.String("x")),
		domain.M("z", domain.Number(2)),
	)
	require.Equal(t, 2, v.Len())
	assert.Equal(t, "z", v.Members()[0].Key)

	z, ok := v.Get("z")
	require.True(t, ok)
	n, _ := z.AsNumber()
	assert.Equal(t, 2.0, n)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"z":2,"a":"x"}`, string(data))

	appended := v.With("m", domain.Bool(true))
	assert.Equal(t, []string{"z", "a", "m"}, keys(appended))
	assert.Equal(t, []string{"z", "a"}, keys(v), "With must not modify the receiver")
}

func keys(v domain.Value) []string {
	var out []string
	for _, m := range v.Members() {
		out = append(out, m.Key)
	}
	return out
}

func TestValue_Accessors(t *testing.T) {
	doc := domain.Mapping(domain.M("action", domain.Mapping(
		domain.M("plugin", domain.String("q2-dada2")),
		domain.M("inputs", domain.Sequence(domain.String("a"), domain.Null())),
	)))

	plugin, ok := doc.Lookup("action", "plugin")
	require.True(t, ok)
	s, ok := plugin.AsString()
	assert.True(t, ok)
	assert.Equal(t, "q2-dada2", s)

	_, ok = doc.Lookup("action", "missing")
	assert.False(t, ok)

	inputs, _ := doc.Lookup("action", "inputs")
	assert.Equal(t, domain.KindSequence, inputs.Kind())
	assert.Len(t, inputs.Items(), 2)
	assert.True(t, inputs.Items()[1].IsNull())
	assert.Nil(t, plugin.Items())
	assert.Nil(t, inputs.Members())

	_, isBool := plugin.AsBool()
	assert.False(t, isBool)
}

func TestValue_Scalar(t *testing.T) {
	tests := []struct {
		value domain.Value
		want  string
	}{
		{domain.Null(), "null"},
		{domain.Bool(false), "false"},
		{domain.Number(0.5), "0.5"},
		{domain.Number(10), "10"},
		{domain.String("text"), "text"},
		{domain.Sequence(domain.Number(1), domain.String("a")), `[1,"a"]`},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.Scalar())
		})
	}
}

func TestValue_Equal(t *testing.T) {
	a := domain.Mapping(domain.M("x", domain.Number(1)), domain.M("y", domain.Sequence(domain.String("s"))))
	b := domain.Mapping(domain.M("x", domain.Number(1)), domain.M("y", domain.Sequence(domain.String("s"))))
	swapped := domain.Mapping(domain.M("y", domain.Sequence(domain.String("s"))), domain.M("x", domain.Number(1)))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(swapped))
	assert.False(t, domain.Number(1).Equal(domain.String("1")))
	assert.True(t, domain.Null().Equal(domain.Value{}))
	assert.False(t, domain.Sequence().Equal(domain.Sequence().Append(domain.Null())))
}

func TestFromInterface(t *testing.T) {
	v, err := domain.FromInterface(map[string]any{
		"n":    3,
		"list": []any{"a", true, nil},
	})
	require.NoError(t, err)

	n, ok := v.Get("n")
	require.True(t, ok)
	assert.True(t, n.Equal(domain.Number(3)))

	list, _ := v.Get("list")
	assert.True(t, list.Equal(domain.Sequence(domain.String("a"), domain.Bool(true), domain.Null())))
	assert.Equal(t, map[string]any{"n": 3.0, "list": []any{"a", true, nil}}, v.Interface())

	_, err = domain.FromInterface(struct{}{})
	assert.Error(t, err)
}

func TestValue_NonFiniteNumbers(t *testing.T) {
	doc, err := domain.ParseYAML([]byte("max_ee: .inf\nmin: -.inf\nratio: .nan\nn: 2\n"))
	require.NoError(t, err)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"max_ee":".inf","min":"-.inf","ratio":".nan","n":2}`, string(data))

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, "max_ee: .inf\nmin: -.inf\nratio: .nan\nn: 2\n", string(out))

	back, err := domain.ParseYAML(out)
	require.NoError(t, err)
	n, _ := back.Get("min")
	f, _ := n.AsNumber()
	assert.True(t, math.IsInf(f, -1))

	assert.Equal(t, ".inf", domain.Number(math.Inf(1)).Scalar())
}
