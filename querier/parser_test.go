package querier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperators(t *testing.T) {
	tests := map[string]Expression{
		"age == 30": {Field: "age", Op: OpEq, Value: "30"},
		"age != 30": {Field: "age", Op: OpNe, Value: "30"},
		"age > 30":  {Field: "age", Op: OpGt, Value: "30"},
		"age >= 30": {Field: "age", Op: OpGte, Value: "30"},
		"age < 30":  {Field: "age", Op: OpLt, Value: "30"},
		"age <= 30": {Field: "age", Op: OpLte, Value: "30"},
	}

	for input, expected := range tests {
		actual, ok := Parse(input)
		require.True(t, ok, "Parse(%q) should match", input)
		assert.Equal(t, expected, actual, "Parse(%q)", input)
	}
}

func TestParseWhitespace(t *testing.T) {
	tests := map[string]Expression{
		"age>30":            {Field: "age", Op: OpGt, Value: "30"},
		"age>=30":           {Field: "age", Op: OpGte, Value: "30"},
		"age   <=   30":     {Field: "age", Op: OpLte, Value: "30"},
		"  age == 30  ":     {Field: "age", Op: OpEq, Value: "30"},
		"city == New York":  {Field: "city", Op: OpEq, Value: "New York"},
		"city == New  York": {Field: "city", Op: OpEq, Value: "New  York"},
	}

	for input, expected := range tests {
		actual, ok := Parse(input)
		require.True(t, ok, "Parse(%q) should match", input)
		assert.Equal(t, expected, actual, "Parse(%q)", input)
	}
}

func TestParseQuoteStripping(t *testing.T) {
	tests := map[string]string{
		`name == "Bob"`:      "Bob",
		`name == 'Bob'`:      "Bob",
		`name == Bob`:        "Bob",
		`name == "Bob Jr."`:  "Bob Jr.",
		`name == "Bob'`:      `"Bob'`, // mismatched quotes stay put
		`name == '"quoted"'`: `"quoted"`,
		`name == ""`:         "",
	}

	for input, expectedValue := range tests {
		actual, ok := Parse(input)
		require.True(t, ok, "Parse(%q) should match", input)
		assert.Equal(t, expectedValue, actual.Value, "Parse(%q)", input)
	}
}

func TestParseFieldNames(t *testing.T) {
	tests := map[string]string{
		"user_name == x": "user_name",
		"a1 == x":        "a1",
		"_hidden == x":   "_hidden",
		"X9_z == x":      "X9_z",
	}

	for input, expectedField := range tests {
		actual, ok := Parse(input)
		require.True(t, ok, "Parse(%q) should match", input)
		assert.Equal(t, expectedField, actual.Field, "Parse(%q)", input)
	}
}

func TestParseNoMatch(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"age",
		"age 30",
		"age = 30",  // single = is not an operator
		"age ! 30",  // bare ! is not an operator
		"> 30",      // missing field
		"== 30",     // missing field
		"age >",     // missing value
		"age >=   ", // missing value
		"na-me == x",
		"$x == 5",
	}

	for _, input := range inputs {
		_, ok := Parse(input)
		assert.False(t, ok, "Parse(%q) should not match", input)
	}
}
