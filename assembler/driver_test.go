package assembler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestAssembleSimpleProgram(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.asm", "LDI R0 #5\nHLT\n")

	words, err := Assemble(path)
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.EqualValues(t, 0b0111<<12|5, words[0])
	assert.EqualValues(t, 0b1100<<12, words[1])
}

func TestAssembleResolvesForwardLabel(t *testing.T) {
	dir := t.TempDir()
	// BR nzp .END ; LDI R0 #1 ; .END HLT
	src := "BR nzp .END\nLDI R0 #1\n.END\nHLT\n"
	path := writeFile(t, dir, "main.asm", src)

	words, err := Assemble(path)
	require.NoError(t, err)
	require.Len(t, words, 3)
	// BR is at address 0, base = 1, target .END = 2, offset = 1
	assert.EqualValues(t, 1, int16(words[0]<<7)>>7)
}

func TestAssembleRejectsDuplicateLabel(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.asm", ".L\nHLT\n.L\nHLT\n")

	_, err := Assemble(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate label")
}

func TestAssembleRejectsUnknownIdentifier(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.asm", "NOSUCHTHING R0\n")

	_, err := Assemble(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognised identifier")
}

func TestAssembleResolvesInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "child.asm", "HLT\n")
	root := writeFile(t, dir, "main.asm", `INCLUDE "child.asm"`+"\n")

	words, err := Assemble(root)
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.EqualValues(t, 0b1100<<12, words[0])
}

func TestIncludeOnceSkipsSecondInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "child.asm", "WORD #1\n")
	root := writeFile(t, dir, "main.asm",
		`INCLUDE_ONCE "child.asm"`+"\n"+`INCLUDE_ONCE "child.asm"`+"\nHLT\n")

	words, err := Assemble(root)
	require.NoError(t, err)
	// one WORD from the single effective include, plus HLT
	require.Len(t, words, 2)
}

func TestPlainIncludeDoesNotDeduplicate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "child.asm", "WORD #1\n")
	root := writeFile(t, dir, "main.asm",
		`INCLUDE "child.asm"`+"\n"+`INCLUDE "child.asm"`+"\n")

	words, err := Assemble(root)
	require.NoError(t, err)
	require.Len(t, words, 2)
}

func TestRecursiveIncludeIsDetected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.asm", `INCLUDE "b.asm"`+"\n")
	root := writeFile(t, dir, "b.asm", `INCLUDE "a.asm"`+"\n")
	_ = root

	_, err := Assemble(filepath.Join(dir, "a.asm"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recursive")
}

func TestMacroDefinitionAndInvocation(t *testing.T) {
	dir := t.TempDir()
	src := "%macro LOADTWO #2\nLDI $0 #1\nLDI $1 #2\n%endmacro\nLOADTWO R0 R1\nHLT\n"
	path := writeFile(t, dir, "main.asm", src)

	words, err := Assemble(path)
	require.NoError(t, err)
	require.Len(t, words, 3)
	assert.EqualValues(t, 0b0111<<12|1, words[0])
	assert.EqualValues(t, 0b0111<<12|1<<9|2, words[1])
	assert.EqualValues(t, 0b1100<<12, words[2])
}

func TestMacroRedefinitionOverwritesSilently(t *testing.T) {
	dir := t.TempDir()
	src := "%macro M #0\nHLT\n%endmacro\n%macro M #0\nRET\n%endmacro\nM\n"
	path := writeFile(t, dir, "main.asm", src)

	words, err := Assemble(path)
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.EqualValues(t, 0b1011<<12, words[0])
}

func TestMacroMissingArgumentIsAnError(t *testing.T) {
	dir := t.TempDir()
	src := "%macro M #1\nLDI $0 #1\n%endmacro\nM\n"
	path := writeFile(t, dir, "main.asm", src)

	_, err := Assemble(path)
	require.Error(t, err)
}

func TestAsciiAndBlockDirectives(t *testing.T) {
	dir := t.TempDir()
	src := `ASCII "hi"` + "\nBLK #2\n"
	path := writeFile(t, dir, "main.asm", src)

	words, err := Assemble(path)
	require.NoError(t, err)
	assert.Equal(t, []uint16{'h', 'i', 0, 0, 0}, words)
}

func TestErrorReportIncludesBacktrace(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.asm", "NOSUCHTHING\n")

	_, err := Assemble(path)
	require.Error(t, err)
	var asmErr *Error
	require.ErrorAs(t, err, &asmErr)
	assert.Contains(t, asmErr.Report(), "main.asm")
}
