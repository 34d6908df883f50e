package types

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestTypeLen(t *testing.T) {
	require.Equal(t, 4, IntType.Len())
	require.Equal(t, StringLen+4, StringType.Len())
	require.Equal(t, 0, Type(99).Len())
}

func TestParseType(t *testing.T) {
	tp, err := ParseType("INT")
	require.NoError(t, err)
	require.Equal(t, IntType, tp)

	tp, err = ParseType(" string ")
	require.NoError(t, err)
	require.Equal(t, StringType, tp)

	_, err = ParseType("float")
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestIntField_SerializeParse(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewIntField(-42).Serialize(&buf))
	require.Equal(t, IntType.Len(), buf.Len())

	f, err := IntType.Parse(&buf)
	require.NoError(t, err)
	require.Equal(t, NewIntField(-42), f)
}

func TestStringField_SerializeParse(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewStringField("hello").Serialize(&buf))
	require.Equal(t, StringType.Len(), buf.Len())

	f, err := StringType.Parse(&buf)
	require.NoError(t, err)
	require.Equal(t, NewStringField("hello"), f)
}

func TestStringField_Truncates(t *testing.T) {
	long := strings.Repeat("x", StringLen+10)
	f := NewStringField(long)
	require.Len(t, f.Value, StringLen)

	var buf bytes.Buffer
	require.NoError(t, StringField{Value: long}.Serialize(&buf))
	require.Equal(t, StringType.Len(), buf.Len())

	got, err := StringType.Parse(&buf)
	require.NoError(t, err)
	require.Equal(t, f, got)
}

func TestStringField_TruncatesOnRuneBoundary(t *testing.T) {
	// the two-byte rune straddles the StringLen limit
	s := strings.Repeat("x", StringLen-1) + "é"
	f := NewStringField(s)
	require.Equal(t, strings.Repeat("x", StringLen-1), f.Value)
	require.True(t, utf8.ValidString(f.Value))

	var buf bytes.Buffer
	require.NoError(t, StringField{Value: s}.Serialize(&buf))
	got, err := StringType.Parse(&buf)
	require.NoError(t, err)
	require.Equal(t, f, got)
}

func TestParse_ShortInput(t *testing.T) {
	_, err := IntType.Parse(bytes.NewReader([]byte{1, 2}))
	require.Error(t, err)

	_, err = StringType.Parse(bytes.NewReader(make([]byte, 10)))
	require.Error(t, err)
}

func TestCompare(t *testing.T) {
	one, two := NewIntField(1), NewIntField(2)

	ok, err := one.Compare(LessThan, two)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = two.Compare(GreaterThanOrEqual, two)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = one.Compare(NotEquals, one)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = NewStringField("apple").Compare(LessThan, NewStringField("banana"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = NewStringField("pineapple").Compare(Like, NewStringField("apple"))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCompare_DifferentTypes(t *testing.T) {
	_, err := NewIntField(1).Compare(Equals, NewStringField("1"))
	require.ErrorIs(t, err, ErrTypeMismatch)

	_, err = NewStringField("1").Compare(Equals, NewIntField(1))
	require.ErrorIs(t, err, ErrTypeMismatch)

	require.False(t, NewIntField(1).Equals(NewStringField("1")))
}

func TestField_AsMapKey(t *testing.T) {
	m := map[Field]int{}
	m[NewIntField(7)]++
	m[NewIntField(7)]++
	m[NewStringField("7")]++

	require.Len(t, m, 2)
	require.Equal(t, 2, m[NewIntField(7)])
}
