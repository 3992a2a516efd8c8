package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgumentStates_MarshalJSON_PreservesParamOrder(t *testing.T) {
	states := &ArgumentStates{
		Symbol: "XML_Parse",
		Params: []ParamState{
			{Name: "parser", States: []string{"p"}},
			{Name: "s", States: []string{"\"doc\"", "NULL"}},
			{Name: "len", States: []string{"0", "getchar()"}},
			{Name: "isFinal", States: []string{"1"}},
		},
	}

	data, err := json.Marshal(states)
	require.NoError(t, err)

	assert.Equal(t,
		`{"XML_Parse":{"parser":["p"],"s":["\"doc\"","NULL"],"len":["0","getchar()"],"isFinal":["1"]}}`,
		string(data))
}

func TestArgumentStates_MarshalJSON_NilStatesBecomeEmptyArray(t *testing.T) {
	states := &ArgumentStates{
		Symbol: "free_fn",
		Params: []ParamState{{Name: "param1", Nondet: true}},
	}

	data, err := json.Marshal(states)
	require.NoError(t, err)

	assert.Equal(t, `{"free_fn":{"param1":[]}}`, string(data))
}

func TestEmptyArgumentStates(t *testing.T) {
	data, err := json.Marshal(EmptyArgumentStates("unused"))
	require.NoError(t, err)

	assert.Equal(t, `{"unused":{}}`, string(data))
}
