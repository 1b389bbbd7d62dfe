package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/gccpr/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `version = 1

[[slots]]
id = 1
default = ["lower_cf", "eh"]

[[slots.passes]]
name = "p1"

[[slots.passes]]
name = "p2"
requires = ["p1"]

[[slots]]
id = 2
default = ["ipa_inline"]

[[slots.passes]]
name = "p1"

[[slots.passes]]
name = "dce"
max = 2

[[slots]]
id = 3
required = ["expand"]

[[slots.passes]]
name = "ccp"

[[slots.passes]]
name = "expand"
requires = ["ccp"]
`

func mustParse(t *testing.T) *Catalog {
	t.Helper()

	c, err := Parse([]byte(testCatalog))
	require.NoError(t, err)
	return c
}

func TestCatalogPassSlot(t *testing.T) {
	t.Parallel()

	c := mustParse(t)
	ctx := context.Background()

	tests := []struct {
		name string
		pass string
		hint domain.Slot
		want domain.Slot
	}{
		{name: "unique pass", pass: "ccp", want: domain.Slot3},
		{name: "shared pass without hint resolves lowest slot", pass: "p1", want: domain.Slot1},
		{name: "shared pass follows hint", pass: "p1", hint: domain.Slot2, want: domain.Slot2},
		{name: "hint matching owner", pass: "dce", hint: domain.Slot2, want: domain.Slot2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.PassSlot(ctx, tt.pass, tt.hint)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := c.PassSlot(ctx, "unknown", domain.SlotNone)
	require.ErrorIs(t, err, domain.ErrUnknownPass)

	_, err = c.PassSlot(ctx, "dce", domain.Slot1)
	require.ErrorIs(t, err, domain.ErrUnknownPass)
}

func TestCatalogSequenceIsLegal(t *testing.T) {
	t.Parallel()

	c := mustParse(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		slot     domain.Slot
		sequence []string
		want     bool
	}{
		{name: "empty slot without required passes", slot: domain.Slot1, want: true},
		{name: "ordered dependency", slot: domain.Slot1, sequence: []string{"p1", "p2"}, want: true},
		{name: "dependency after dependant", slot: domain.Slot1, sequence: []string{"p2", "p1"}, want: false},
		{name: "unknown pass", slot: domain.Slot1, sequence: []string{"dce"}, want: false},
		{name: "max respected", slot: domain.Slot2, sequence: []string{"dce", "dce"}, want: true},
		{name: "max exceeded", slot: domain.Slot2, sequence: []string{"dce", "dce", "dce"}, want: false},
		{name: "required pass missing", slot: domain.Slot3, sequence: []string{"ccp"}, want: false},
		{name: "required pass present", slot: domain.Slot3, sequence: []string{"ccp", "expand"}, want: true},
		{name: "empty under-specified slot", slot: domain.Slot3, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.SequenceIsLegal(ctx, tt.sequence, tt.slot)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalogCandidateNextActions(t *testing.T) {
	t.Parallel()

	c := mustParse(t)
	ctx := context.Background()

	got, err := c.CandidateNextActions(ctx, nil, domain.Slot1)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, got)

	got, err = c.CandidateNextActions(ctx, []string{"p1"}, domain.Slot1)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, got)

	got, err = c.CandidateNextActions(ctx, []string{"p1", "p2"}, domain.Slot1)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = c.CandidateNextActions(ctx, []string{"dce"}, domain.Slot2)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "dce"}, got)
}

func TestCatalogDefaultSequenceIsACopy(t *testing.T) {
	t.Parallel()

	c := mustParse(t)
	got, err := c.DefaultSequence(context.Background(), domain.Slot1)
	require.NoError(t, err)
	assert.Equal(t, []string{"lower_cf", "eh"}, got)

	got[0] = "mutated"
	again, err := c.DefaultSequence(context.Background(), domain.Slot1)
	require.NoError(t, err)
	assert.Equal(t, "lower_cf", again[0])

	empty, err := c.DefaultSequence(context.Background(), domain.Slot3)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "future version", data: "version = 9\n", wantErr: "unsupported pass catalog schema version"},
		{name: "bad slot", data: "[[slots]]\nid = 4\n", wantErr: "invalid slot"},
		{name: "duplicate slot", data: "[[slots]]\nid = 1\n[[slots]]\nid = 1\n", wantErr: "declared twice"},
		{name: "reserved name", data: "[[slots]]\nid = 1\n[[slots.passes]]\nname = \"none_pass\"\n", wantErr: "reserved"},
		{name: "unknown dependency", data: "[[slots]]\nid = 1\n[[slots.passes]]\nname = \"a\"\nrequires = [\"b\"]\n", wantErr: "requires unknown pass"},
		{name: "malformed toml", data: "[[slots]\n", wantErr: "decode pass catalog"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestSharedLoadsOncePerPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "passes.toml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))

	first, err := Shared(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("version = 9\n"), 0o644))

	second, err := Shared(path)
	require.NoError(t, err)
	assert.Same(t, first, second)
}
