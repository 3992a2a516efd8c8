package model

import (
	"bytes"
	"encoding/json"
)

// ParamState is the observed state space of one parameter position across
// every call site of a symbol. States keeps first-seen order because the
// downstream consumer matches parameters by call order, not by name.
type ParamState struct {
	Name   string
	States []string
	Nondet bool // at least one argument could not be reduced to a finite value
}

// ArgumentStates is the analysis result for one symbol across a set of
// translation units, before serialization into an artifact.
type ArgumentStates struct {
	Symbol    Symbol
	Params    []ParamState
	CallSites int
	DefinedIn []Path
}

// MarshalJSON renders the artifact in the shape consumed downstream:
//
//	{"XML_Parse": {"param1": ["0", "getchar()"], "param2": ["NULL"]}}
//
// Parameters are written in call order; encoding/json maps would lose it.
func (a *ArgumentStates) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	if err := writeJSONString(&buf, string(a.Symbol)); err != nil {
		return nil, err
	}

	buf.WriteString(":{")

	for i, param := range a.Params {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := writeJSONString(&buf, param.Name); err != nil {
			return nil, err
		}

		buf.WriteByte(':')

		states := param.States
		if states == nil {
			states = []string{}
		}

		encoded, err := json.Marshal(states)
		if err != nil {
			return nil, err
		}

		buf.Write(encoded)
	}

	buf.WriteString("}}")

	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	encoded, err := json.Marshal(s)
	if err != nil {
		return err
	}

	buf.Write(encoded)

	return nil
}

// EmptyArgumentStates is the artifact body recorded when the invocation ran
// against a translation-unit set with nothing to observe.
func EmptyArgumentStates(symbol Symbol) *ArgumentStates {
	return &ArgumentStates{Symbol: symbol}
}
