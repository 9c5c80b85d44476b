package lang

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExtension(t *testing.T) {
	cases := []struct {
		ext  string
		want Language
	}{
		{"cpp", Cpp}, {".CPP", Cpp}, {"cc", Cpp}, {"h", Cpp},
		{"rs", Rust}, {"py", Python}, {"v", Verilog},
		{"sql", SQL}, {"js", JavaScript}, {"lua", Lua},
	}
	for _, c := range cases {
		got, err := ResolveExtension(c.ext)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestResolveExtension_Unsupported(t *testing.T) {
	_, err := ResolveExtension("exe")
	require.Error(t, err)
}

func TestResolveTag(t *testing.T) {
	got, err := ResolveTag("PYTHON")
	require.NoError(t, err)
	assert.Equal(t, Python, got)

	_, err = ResolveTag("cobol")
	require.Error(t, err)
}

func TestRegistry_AllLanguagesRegistered(t *testing.T) {
	reg := NewRegistry()
	for _, l := range []Language{Cpp, Rust, Python, Verilog, SQL, JavaScript, Lua} {
		tok, err := reg.Tokenizer(l)
		require.NoError(t, err)
		require.NotNil(t, tok)
	}
}

func TestRegistry_UnknownLanguage(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Tokenizer(Language("cobol"))
	require.Error(t, err)
}

func TestVerilogTokenizer_KeepsSemicolons(t *testing.T) {
	reg := NewRegistry()
	tok, err := reg.Tokenizer(Verilog)
	require.NoError(t, err)

	tokens, err := tok.Tokenize(context.Background(), []byte("module test (); reg test_reg;\nendmodule"))
	require.NoError(t, err)
	require.NotEmpty(t, tokens)

	var sawSemicolon bool
	for _, tk := range tokens {
		if tk.Spelling == ";" {
			sawSemicolon = true
		}
	}
	assert.True(t, sawSemicolon, "verilog tokenizer must preserve semicolons")

	assert.Equal(t, "module", tokens[0].Spelling)
	assert.EqualValues(t, 1, tokens[0].Line)
	assert.EqualValues(t, 1, tokens[0].Column)
}

func TestVerilogTokenizer_SizedLiteral(t *testing.T) {
	reg := NewRegistry()
	tok, _ := reg.Tokenizer(Verilog)
	tokens, err := tok.Tokenize(context.Background(), []byte("wire [7:0] x = 8'hFF;"))
	require.NoError(t, err)

	var sawLiteral bool
	for _, tk := range tokens {
		if tk.Spelling == "8'hFF" {
			sawLiteral = true
		}
	}
	assert.True(t, sawLiteral)
}

func TestHashSpelling_Deterministic(t *testing.T) {
	a := hashSpelling("module", keywordBase, keywordRange)
	b := hashSpelling("module", keywordBase, keywordRange)
	assert.Equal(t, a, b)

	c := hashSpelling("endmodule", keywordBase, keywordRange)
	assert.NotEqual(t, a, c, "distinct keywords should usually hash to distinct kinds")
}
