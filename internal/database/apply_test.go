package database

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buccaneer33/spectr-cars-claude/internal/config"
	"github.com/buccaneer33/spectr-cars-claude/internal/converter"
)

const camryXML = `<catalog>
  <mark name="Toyota">
    <folder name="Camry" id="G1">
      <modification name="2.5 AT (181 л.с.) FWD" id="M1">
        <years>2018 - 2023</years>
      </modification>
    </folder>
  </mark>
</catalog>`

func TestExpectedCounts(t *testing.T) {
	script := strings.Join([]string{
		"-- Update sequences",
		`SELECT setval('"Country_id_seq"', 3, true);`,
		`SELECT setval('"DriveType_id_seq"', 1, false);`,
		`SELECT setval('"Specification_id_seq"', 1001, true);`,
		"",
		"COMMIT;",
	}, "\n")

	assert.Equal(t, map[string]int64{
		"Country":       3,
		"DriveType":     0,
		"Specification": 1001,
	}, ExpectedCounts(script))
}

func TestVerify(t *testing.T) {
	expected := map[string]int64{"Brand": 2, "Model": 5}

	assert.NoError(t, Verify(expected, map[string]int64{"Brand": 2, "Model": 5, "City": 9}))

	err := Verify(expected, map[string]int64{"Brand": 4, "Model": 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Brand: want 2 rows, have 4")
	assert.NotContains(t, err.Error(), "Model")
}

func TestConnectRequiresURL(t *testing.T) {
	_, err := Connect(context.Background(), "")
	assert.Error(t, err)
}

// TestApplyIntegration loads a generated dump into a database that already
// has the catalog schema.
func TestApplyIntegration(t *testing.T) {
	dsn := os.Getenv("SEEDER_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("skipping integration test: set SEEDER_TEST_DATABASE_URL to run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conv := converter.New(config.Default(), config.DefaultTables(), nil)
	dump, _, err := conv.Convert(strings.NewReader(camryXML))
	require.NoError(t, err)

	a, err := Connect(ctx, dsn)
	require.NoError(t, err)
	defer a.Close(ctx)

	require.NoError(t, a.Apply(ctx, string(dump)))

	expected := ExpectedCounts(string(dump))
	actual, err := a.Counts(ctx, Tables(expected))
	require.NoError(t, err)
	assert.NoError(t, Verify(expected, actual))
}
