package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "tgscraper/pkg/errors"
	"tgscraper/pkg/models"
)

func sampleRecords() []models.FileRecord {
	return []models.FileRecord{
		{
			Filename:   "report.pdf",
			MessageID:  42,
			Date:       time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC),
			Sender:     "Alice Smith",
			Caption:    "quarterly report, \"final\" version\nwith a newline",
			FileSizeMB: 1.25,
			MessageURL: "https://t.me/testgroup/42",
		},
		{
			Filename:   "file_777.zip",
			MessageID:  777,
			Date:       time.Date(2024, 3, 16, 9, 0, 0, 0, time.UTC),
			Sender:     "@bob",
			Caption:    "",
			FileSizeMB: 10.0,
			MessageURL: "https://t.me/testgroup/777",
		},
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	records := sampleRecords()

	require.NoError(t, WriteCSV(path, records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{
		"report.pdf", "42", "2024-03-15 14:30:00", "Alice Smith",
		"quarterly report, \"final\" version\nwith a newline", "1.25",
		"https://t.me/testgroup/42",
	}, rows[1])
	assert.Equal(t, "10", rows[2][5])
}

func TestWriteCSVEmptyStillWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	require.NoError(t, WriteCSV(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(Header, ",")+"\n", string(data))
}

func TestWriteCSVReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, WriteCSV(path, sampleRecords()))
	require.NoError(t, WriteCSV(path, nil))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteCSVFailureLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing", "out.csv")

	err := WriteCSV(path, sampleRecords())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypePersistence))

	leftovers, err := filepath.Glob(filepath.Join(dir, "*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	records := sampleRecords()

	require.NoError(t, WriteJSON(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)

	assert.Equal(t, "report.pdf", decoded[0]["filename"])
	assert.Equal(t, float64(42), decoded[0]["message_id"])
	assert.Equal(t, "2024-03-15 14:30:00", decoded[0]["date"])
	assert.Equal(t, 1.25, decoded[0]["file_size_mb"])
	assert.Equal(t, "file_777.zip", decoded[1]["filename"])
}

func TestWriteJSONEmptyIsAnArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	require.NoError(t, WriteJSON(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestJSONPath(t *testing.T) {
	assert.Equal(t, "scraped_files.json", JSONPath("scraped_files.csv"))
	assert.Equal(t, "out/files.json", JSONPath("out/files.csv"))
	assert.Equal(t, "report.json", JSONPath("report"))
}
