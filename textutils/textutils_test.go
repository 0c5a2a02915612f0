package textutils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndentString(t *testing.T) {
	require := require.New(t)

	require.Equal(`  Hello
  World`,
		IndentString(`Hello
World`, "  ", 1),
	)

	require.Equal(`  Hello
  World
`,
		IndentString(`Hello
World
`, "  ", 1),
	)

	require.Equal(`  Hello
  World
`,
		IndentString(`Hello
World
  `, "  ", 1),
	)

	require.Equal(`  Hello

  World
`,
		IndentString(`Hello

World
`, "  ", 1),
	)
}

func TestStripComments(t *testing.T) {
	require := require.New(t)

	require.Equal("#define A 1 \n#define B 2\n",
		StripComments("#define A 1 // one\n#define B 2\n"))
	require.Equal("int   x;",
		StripComments("int /* the x */ x;"))
	require.Equal("\n \n#define C 3",
		StripComments("/* multi\nline */\n#define C 3"))
	require.Equal(`#define URL "http://example.org" `,
		StripComments(`#define URL "http://example.org" // site`))
	require.Equal(`#define SLASH '/'`,
		StripComments(`#define SLASH '/'`))
	require.Equal("int a;",
		StripComments("int a;/* unterminated"))
}

func TestJoinContinuations(t *testing.T) {
	require := require.New(t)

	require.Equal("#define X (A |   B)\n", JoinContinuations("#define X (A | \\\n B)\n"))
	require.Equal("#define X (A |   B)\n", JoinContinuations("#define X (A | \\\r\n B)\r\n"))
}

func TestCollapseSpace(t *testing.T) {
	require.Equal(t, "int foo ( int x );", CollapseSpace("  int\tfoo (\n  int x\n);\n"))
}

func TestStripCalls(t *testing.T) {
	require := require.New(t)

	require.Equal("extern int foo (int)   ;",
		StripCalls("extern int foo (int) __attribute__ ((__nonnull__ (1))) ;", "__attribute__"))
	require.Equal("int   x;",
		StripCalls("int __attribute__ x;", "__attribute__"))
	require.Equal("int my__attribute__x;",
		StripCalls("int my__attribute__x;", "__attribute__"))
	require.Equal("int   bar(void);",
		StripCalls("int __asm__ (\"bar\") bar(void);", "__asm__"))
}
