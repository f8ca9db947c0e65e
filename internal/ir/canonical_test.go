package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalScalars(t *testing.T) {
	tests := []struct {
		name     string
		input    IRValue
		expected string
	}{
		{"string", IRString("cover"), `"cover"`},
		{"empty string", IRString(""), `""`},
		{"int", IRInt(42), "42"},
		{"negative int", IRInt(-7), "-7"},
		{"max int64", IRInt(9223372036854775807), "9223372036854775807"},
		{"bool true", IRBool(true), "true"},
		{"bool false", IRBool(false), "false"},
		{"empty array", IRArray{}, "[]"},
		{"empty object", IRObject{}, "{}"},
		{"args", Args(IRInt(1), IRString("blur")), `[1,"blur"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortsNestedKeys(t *testing.T) {
	obj := IRObject{
		"selected_resize_mode": IRString("center"),
		"image":                IRObject{"uri": IRString("file:///a.jpg")},
		"is_full_screen":       IRBool(false),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t,
		`{"image":{"uri":"file:///a.jpg"},"is_full_screen":false,"selected_resize_mode":"center"}`,
		string(result))
}

func TestMarshalCanonicalUTF16KeyOrder(t *testing.T) {
	// U+10000 encodes as the surrogate pair D800 DC00, which sorts before E000.
	obj := IRObject{
		"\uE000":     IRInt(1),
		"\U00010000": IRInt(2),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(result))
}

func TestMarshalCanonicalEscaping(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"carriage return", "a\rb", `"a\rb"`},
		{"backspace", "a\bb", `"a\bb"`},
		{"form feed", "a\fb", `"a\fb"`},
		{"other control", "a\x01b", `"a\u0001b"`},
		{"unit separator", "\x1f", `"\u001f"`},
		{"html untouched", "<a & b>", `"<a & b>"`},
		{"line separator literal", "a\u2028b", "\"a\u2028b\""},
		{"paragraph separator literal", "a\u2029b", "\"a\u2029b\""},
		{"backslash before u2028 text", `\u2028`, `"\\u2028"`},
		{"delete untouched", "\x7f", "\"\x7f\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(IRString(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalNFC(t *testing.T) {
	composed, err := MarshalCanonical(IRObject{"caf\u00e9": IRString("caf\u00e9")})
	require.NoError(t, err)

	decomposed, err := MarshalCanonical(IRObject{"cafe\u0301": IRString("cafe\u0301")})
	require.NoError(t, err)

	assert.Equal(t, composed, decomposed)
}

func TestMarshalCanonicalRejectsNull(t *testing.T) {
	_, err := MarshalCanonical(IRNull{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null")

	_, err = MarshalCanonical(nil)
	require.Error(t, err)

	_, err = MarshalCanonical(IRObject{"image": IRNull{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `object["image"]`)

	_, err = MarshalCanonical(Args(IRInt(1), IRNull{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array[1]")
}

func TestMarshalCanonicalIdempotent(t *testing.T) {
	values := []IRValue{
		IRString("hello"),
		IRInt(42),
		Args(IRInt(1), IRString("two"), IRBool(false)),
		IRObject{
			"filters": IRArray{
				IRObject{"id": IRString("0"), "name": IRString("blur"), "amount": IRInt(50)},
			},
			"next_id": IRInt(1),
		},
	}

	for _, original := range values {
		first, err := MarshalCanonical(original)
		require.NoError(t, err)

		decoded, err := UnmarshalIRValue(first)
		require.NoError(t, err)

		second, err := MarshalCanonical(decoded)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	}
}

func TestMustMarshalCanonicalPanics(t *testing.T) {
	assert.Panics(t, func() { MustMarshalCanonical(IRNull{}) })
	assert.Equal(t, `"x"`, string(MustMarshalCanonical(IRString("x"))))
}
