package delta

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		base string
		next string
	}{
		{"append", "hello", "hello world"},
		{"prepend", "world", "hello world"},
		{"shrink", "hello world", "hello"},
		{"replace", "The quick brown fox", "The slow brown dog"},
		{"identical", "same text", "same text"},
		{"unicode", "Grüße aus Köln", "Grüße aus Düsseldorf, 東京"},
		{"multiline", "line one\nline two\n", "line one\nline 2\nline three\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			patch, err := EncodeDelta([]byte(tc.next), []byte(tc.base))
			require.NoError(t, err)

			got, err := DecodePatch(patch, []byte(tc.base), len(tc.next))
			require.NoError(t, err)
			assert.Equal(t, tc.next, got)
		})
	}
}

func TestRoundTripRandomText(t *testing.T) {
	faker := gofakeit.New(42)
	for i := 0; i < 20; i++ {
		base := faker.Paragraph(3, 4, 12, "\n")
		next := base[:len(base)/2] + faker.Sentence(8) + base[len(base)/2:]

		patch, err := EncodeDelta([]byte(next), []byte(base))
		require.NoError(t, err)

		got, err := DecodePatch(patch, []byte(base), len(next)*2)
		require.NoError(t, err)
		require.Equal(t, next, got)
	}
}

func TestDeltaIsSmallerForSmallEdits(t *testing.T) {
	base := strings.Repeat("Lorem ipsum dolor sit amet, consectetur adipiscing elit. ", 200)
	next := base + "One more sentence."

	patch, err := EncodeDelta([]byte(next), []byte(base))
	require.NoError(t, err)
	assert.Less(t, len(patch), len(next)/4)
}

func TestDecodeRejectsOutputAboveBound(t *testing.T) {
	patch, err := EncodeDelta([]byte("hello world"), []byte("hello"))
	require.NoError(t, err)

	_, err = DecodePatch(patch, []byte("hello"), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProcessing)
}

func TestDecodeWithoutLengthHint(t *testing.T) {
	patch, err := EncodeDelta([]byte("hello world"), []byte("hello"))
	require.NoError(t, err)

	got, err := DecodePatch(patch, []byte("hello"), 0)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodePatch([]byte("definitely not zlib"), []byte("hello"), 11)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProcessing))
}

func TestDecodeRejectsTruncatedDelta(t *testing.T) {
	patch, err := EncodeDelta([]byte("hello world"), []byte("hello"))
	require.NoError(t, err)

	_, err = DecodePatch(patch[:len(patch)/2], []byte("hello"), 11)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProcessing)
}

func TestDecodeRejectsInvalidUTF8(t *testing.T) {
	invalid := []byte{'o', 'k', 0xff, 0xfe}
	patch, err := EncodeDelta(invalid, []byte("ok"))
	require.NoError(t, err)

	_, err = DecodePatch(patch, []byte("ok"), len(invalid))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProcessing)
}

func TestEncodeIsDeterministic(t *testing.T) {
	base := []byte("version one of the article")
	next := []byte("version two of the article, now longer")

	first, err := EncodeDelta(next, base)
	require.NoError(t, err)
	second, err := EncodeDelta(next, base)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first, second))
}
