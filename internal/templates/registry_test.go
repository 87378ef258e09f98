package templates

import (
	"os"
	"path/filepath"
	"testing"

	"return-notifier/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_BuiltIns(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	for _, key := range []string{
		"NewPositionAdded",
		"PositionStatusHasChanged",
		"complaintEmployeeEmailSubject",
		"complaintEmployeeEmailBody",
		"complaintClientEmailSubject",
		"complaintClientEmailBody",
		"complaintClientSmsBody",
	} {
		_, ok := r.Lookup(key, 0)
		assert.True(t, ok, key)
	}
}

func TestRegistry_Render(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	out, err := r.Render("PositionStatusHasChanged", map[string]string{"FROM": "Pending", "TO": "Rejected"}, 10)
	require.NoError(t, err)
	assert.Equal(t, "Position status has changed from Pending to Rejected", out)

	out, err = r.Render("PositionStatusHasChanged", nil, 10)
	require.NoError(t, err)
	assert.Equal(t, "Position status has changed from  to", out)

	_, err = r.Render("unknownKey", nil, 10)
	assert.True(t, errors.Is(err, errors.ErrCodeTemplateNotFound))
}

func TestRegistry_Render_ValuesAreNotExpanded(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	vars := map[string]string{
		"COMPLAINT_NUMBER": "A{{DATE}}",
		"DATE":             "2024-01-01",
		"DIFFERENCES":      "x {{UNKNOWN}}",
	}

	for i := 0; i < 100; i++ {
		out, err := r.Render("complaintClientSmsBody", vars, 0)
		require.NoError(t, err)
		require.Equal(t, "Return A{{DATE}}: x {{UNKNOWN}}", out)
	}
}

func TestLoad_ResellerOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
templates:
  NewPositionAdded: "Nowa pozycja"
resellers:
  "42":
    PositionStatusHasChanged: "{{FROM}} -> {{TO}}"
`), 0o600))

	r, err := Load(path)
	require.NoError(t, err)

	out, err := r.Render("NewPositionAdded", nil, 1)
	require.NoError(t, err)
	assert.Equal(t, "Nowa pozycja", out)

	out, err = r.Render("PositionStatusHasChanged", map[string]string{"FROM": "A", "TO": "B"}, 42)
	require.NoError(t, err)
	assert.Equal(t, "A -> B", out)

	out, err = r.Render("PositionStatusHasChanged", map[string]string{"FROM": "A", "TO": "B"}, 7)
	require.NoError(t, err)
	assert.Equal(t, "Position status has changed from A to B", out)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resellers:\n  abc:\n    k: v\n"), 0o600))
	_, err = Load(path)
	assert.ErrorContains(t, err, "not an id")
}
